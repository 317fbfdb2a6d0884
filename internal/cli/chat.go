package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/aretw0/switchboard/internal/presentation/tui"
	"github.com/aretw0/switchboard/pkg/runner"
)

// ChatOptions configures an interactive or piped chat session.
type ChatOptions struct {
	In           io.Reader
	Out          io.Writer
	Sender       string
	JSON         bool
	Verbose      bool
	MaxInputSize int
	Logger       *slog.Logger
}

// IsInteractive reports whether r is a terminal.
func IsInteractive(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// RunChat reads messages from opts.In until EOF or ctx is canceled.
// A terminal session gets the banner and markdown rendering; piped input stays plain.
func RunChat(ctx context.Context, router runner.Dispatcher, opts ChatOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Sender == "" {
		opts.Sender = runner.DefaultSender
	}

	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(opts.In, opts.Out, opts.Sender)
	} else {
		textOpts := []runner.TextHandlerOption{
			runner.WithSender(opts.Sender),
			runner.WithVerbose(opts.Verbose),
		}
		if IsInteractive(opts.In) {
			tui.PrintBanner(opts.Out)
			textOpts = append(textOpts, runner.WithTextHandlerRenderer(tui.NewRenderer()))
		}
		handler = runner.NewTextHandler(opts.In, opts.Out, textOpts...)
	}

	runOpts := []runner.Option{runner.WithHandler(handler)}
	if opts.MaxInputSize > 0 {
		runOpts = append(runOpts, runner.WithMaxInputSize(opts.MaxInputSize))
	}
	if opts.Logger != nil {
		runOpts = append(runOpts, runner.WithLogger(opts.Logger))
	}
	return runner.New(router, runOpts...).Run(ctx)
}
