package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/switchboard/internal/config"
	"github.com/aretw0/switchboard/internal/logging"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "switchboard",
	Short: "Switchboard routes chat messages to intent handlers",
	Long: `Switchboard classifies free-form messages against a tree of intents
declared in YAML or JSON files and dispatches each one to its action,
keeping a conversation context per sender.

Environment:
` + config.Usage(),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		applyFlags(cmd, loaded)
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		level, _ := cfg.Level()
		logger = logging.New(level, logging.WithFormat(cfg.Format()))
		return nil
	},
}

// applyFlags overrides environment settings with flags set on the command line.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		c.LogFormat, _ = flags.GetString("log-format")
	}
	if flags.Changed("intents") {
		c.Intents, _ = flags.GetStringSlice("intents")
	}
	if flags.Changed("threshold") {
		c.Threshold, _ = flags.GetFloat64("threshold")
	}
	if flags.Changed("mask-keys") {
		c.MaskKeys, _ = flags.GetStringSlice("mask-keys")
	}
	if flags.Lookup("addr") != nil && flags.Changed("addr") {
		c.Addr, _ = flags.GetString("addr")
	}
	if flags.Lookup("max-input-size") != nil && flags.Changed("max-input-size") {
		c.MaxInputSize, _ = flags.GetInt("max-input-size")
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().StringSliceP("intents", "i", nil, "Intent files or directories (YAML/JSON)")
	rootCmd.PersistentFlags().Float64("threshold", 0.7, "Minimum classifier confidence")
	rootCmd.PersistentFlags().Bool("strict", false, "Reject unknown keys in intent files")
	rootCmd.PersistentFlags().StringSlice("mask-keys", nil, "Regexps of stash keys hidden from conversation snapshots")
}
