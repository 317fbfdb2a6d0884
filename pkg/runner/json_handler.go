package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/switchboard/pkg/domain"
)

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
// Each input line is either {"sender": "...", "text": "..."}, a JSON string, or plain text.
type JSONHandler struct {
	Reader  *bufio.Reader
	Encoder *json.Encoder
	Sender  string

	mu sync.Mutex
}

type jsonInput struct {
	Sender      string `json:"sender"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Text        string `json:"text"`
	Channel     string `json:"channel,omitempty"`
}

type jsonSystem struct {
	System string `json:"system"`
}

// NewJSONHandler creates a handler for JSON IO. sender is used for lines without one.
func NewJSONHandler(r io.Reader, w io.Writer, sender string) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	if sender == "" {
		sender = DefaultSender
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Encoder: json.NewEncoder(w),
		Sender:  sender,
	}
}

func (h *JSONHandler) Input(ctx context.Context) (domain.Message, error) {
	for {
		line, err := h.Reader.ReadString('\n')
		text := strings.TrimSpace(line)
		if text == "" {
			if err != nil {
				return domain.Message{}, err
			}
			continue
		}
		return h.decode(text), nil
	}
}

func (h *JSONHandler) decode(line string) domain.Message {
	var in jsonInput
	if err := json.Unmarshal([]byte(line), &in); err == nil && in.Text != "" {
		sender := in.Sender
		if sender == "" {
			sender = h.Sender
		}
		msg := domain.NewMessage(sender, in.Text)
		msg.Sender.Username = in.Username
		msg.Sender.DisplayName = in.DisplayName
		msg.Channel = in.Channel
		return msg
	}

	var s string
	if err := json.Unmarshal([]byte(line), &s); err == nil {
		return domain.NewMessage(h.Sender, s)
	}
	return domain.NewMessage(h.Sender, line)
}

func (h *JSONHandler) Output(ctx context.Context, res *domain.Result) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Encoder.Encode(res)
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Encoder.Encode(jsonSystem{System: msg})
}
