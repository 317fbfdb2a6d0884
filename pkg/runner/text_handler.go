package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/switchboard/pkg/domain"
)

// DefaultSender is the sender identity of interactive sessions.
const DefaultSender = "local"

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer
	Sender   domain.Sender
	Verbose  bool

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithSender sets the sender identity attached to every line.
func WithSender(id string) TextHandlerOption {
	return func(h *TextHandler) {
		h.Sender = domain.Sender{ID: id, Username: id}
	}
}

// WithVerbose prints the resolved address, source and confidence before each reply.
func WithVerbose(verbose bool) TextHandlerOption {
	return func(h *TextHandler) {
		h.Verbose = verbose
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
		Sender: domain.Sender{ID: DefaultSender, Username: DefaultSender},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// The pump reads in its own goroutine so Input can return on cancellation while a read blocks.
func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			close(h.inputChan)
			return
		}
	}
}

func (h *TextHandler) Input(ctx context.Context) (domain.Message, error) {
	h.initPump()

	select {
	case <-ctx.Done():
		return domain.Message{}, ctx.Err()
	default:
		fmt.Fprint(h.Writer, "> ")
	}

	select {
	case <-ctx.Done():
		return domain.Message{}, ctx.Err()
	case res, ok := <-h.inputChan:
		if !ok {
			return domain.Message{}, io.EOF
		}
		if res.err != nil {
			return domain.Message{}, res.err
		}
		msg := domain.NewMessage(h.Sender.ID, res.text)
		msg.Sender = h.Sender
		msg.Channel = "cli"
		return msg, nil
	}
}

func (h *TextHandler) Output(ctx context.Context, res *domain.Result) error {
	if res.Dropped {
		return h.SystemOutput(ctx, fmt.Sprintf("message dropped: %s", res.Error))
	}
	if h.Verbose {
		fmt.Fprintf(h.Writer, "[%s via %s %.2f]\n", res.Address, res.Source, res.Confidence)
	}
	if res.Err != nil {
		return h.SystemOutput(ctx, fmt.Sprintf("action %s failed: %v", res.Action, res.Err))
	}
	if !res.Executed {
		return h.SystemOutput(ctx, fmt.Sprintf("no action bound for %s", res.Action))
	}
	if res.Output == nil {
		return nil
	}

	output := fmt.Sprint(res.Output)
	if h.Renderer != nil {
		if rendered, err := h.Renderer(output); err == nil {
			output = rendered
		}
	}
	_, err := fmt.Fprintln(h.Writer, strings.TrimSpace(output))
	return err
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "[System] %s\n", msg)
	return err
}
