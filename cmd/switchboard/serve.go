package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/switchboard/internal/cli"
	"github.com/aretw0/switchboard/internal/logging"
	httpAdapter "github.com/aretw0/switchboard/pkg/adapters/http"
	"github.com/aretw0/switchboard/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve [intent files...]",
	Short: "Start the HTTP server",
	Long:  `Loads the intent files and serves the router as a JSON API with SSE result streams and Prometheus metrics.
Schedules declared in the intent files run while the server is up.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 && !cmd.Flags().Changed("intents") {
			cfg.Intents = args
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var metrics *observability.Metrics
		if cfg.Metrics {
			metrics = observability.NewMetrics()
		}

		strict, _ := cmd.Flags().GetBool("strict")
		router, err := cli.NewRouter(ctx, cli.RouterOptions{
			Intents:   cfg.Intents,
			Strict:    strict,
			Threshold: cfg.Threshold,
			Logger:    logger,
			MaskKeys:  cfg.MaskKeys,
			Debug:     true,
			Metrics:   metrics,
		})
		if err != nil {
			return err
		}

		opts := []httpAdapter.Option{
			httpAdapter.WithLogger(logging.Component(logger, "http")),
			httpAdapter.WithMaxInputSize(cfg.MaxInputSize),
		}
		if metrics != nil {
			opts = append(opts, httpAdapter.WithMetrics(metrics.Handler()))
		}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return cli.ListenAndServe(ctx, cfg.Addr, httpAdapter.NewHandler(router, opts...), logger)
		})
		g.Go(func() error {
			return router.RunSchedules(ctx)
		})
		if err := g.Wait(); err != nil {
			return err
		}
		logger.Info("HTTP server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
	serveCmd.Flags().Int("max-input-size", 4096, "Maximum message size in bytes")
}
