package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/switchboard/internal/cli"
)

var chatCmd = &cobra.Command{
	Use:   "chat [intent files...]",
	Short: "Chat with the router from the terminal",
	Long: `Loads the intent files and reads messages from stdin, one per line.
Every action replies with the name of the intent it was routed to, which
makes chat a quick way to try out an intent tree. Use --json for NDJSON
input and output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 && !cmd.Flags().Changed("intents") {
			cfg.Intents = args
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		strict, _ := cmd.Flags().GetBool("strict")
		debug, _ := cmd.Flags().GetBool("debug")
		router, err := cli.NewRouter(ctx, cli.RouterOptions{
			Intents:   cfg.Intents,
			Strict:    strict,
			Threshold: cfg.Threshold,
			Logger:    logger,
			MaskKeys:  cfg.MaskKeys,
			Debug:     debug,
		})
		if err != nil {
			return err
		}

		sender, _ := cmd.Flags().GetString("sender")
		jsonMode, _ := cmd.Flags().GetBool("json")
		verbose, _ := cmd.Flags().GetBool("verbose")

		err = cli.RunChat(ctx, router, cli.ChatOptions{
			In:           cmd.InOrStdin(),
			Out:          cmd.OutOrStdout(),
			Sender:       sender,
			JSON:         jsonMode,
			Verbose:      verbose,
			MaxInputSize: cfg.MaxInputSize,
			Logger:       logger,
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().String("sender", "local", "Sender ID of the session")
	chatCmd.Flags().Bool("json", false, "NDJSON input and output")
	chatCmd.Flags().BoolP("verbose", "v", false, "Show address, source and confidence of each reply")
	chatCmd.Flags().Bool("debug", false, "Log every lifecycle event")
	chatCmd.Flags().Int("max-input-size", 4096, "Maximum message size in bytes")
}
