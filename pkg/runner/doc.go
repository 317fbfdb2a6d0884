/*
Package runner implements the interactive chat loop of the router.

It acts as the bridge between a Dispatcher (usually *switchboard.Router) and a terminal or
pipe. Every line read by the IOHandler is sanitized, dispatched as a message of the
configured sender, and the Result is handed back to the handler for display.

# Key Components

  - Runner: reads, sanitizes, dispatches and prints until EOF or cancellation.
  - TextHandler: prompt-based interface for humans, with an optional Markdown renderer.
  - JSONHandler: JSON-Lines interface for scripts; accepts {"sender","text"} objects.
  - Sanitizer: size limit, UTF-8 validation and control character stripping.

# Usage

	r := runner.New(router,
		runner.WithHandler(runner.NewTextHandler(os.Stdin, os.Stdout, runner.WithSender("me"))),
	)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
