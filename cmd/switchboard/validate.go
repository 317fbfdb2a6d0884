package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/switchboard/pkg/intent"
	"github.com/aretw0/switchboard/pkg/loader"
	"github.com/aretw0/switchboard/pkg/registry"
	"github.com/aretw0/switchboard/pkg/scheduler"
)

var validateCmd = &cobra.Command{
	Use:   "validate [intent files...]",
	Short: "Check intent files for consistency",
	Long: `Strictly decodes the intent files, registers them and reports
duplicate addresses or literals, missing parents, a missing 'unknown' node,
broken alias chains and invalid or duplicate schedules. Exits non-zero on any problem.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := cfg.Intents
		if len(args) > 0 {
			paths = args
		}
		if len(paths) == 0 {
			return errors.New("no intent files given")
		}
		if err := runValidate(paths); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Intents are valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(paths []string) error {
	src := loader.New(paths, loader.WithStrict(true), loader.WithLogger(logger))
	defs, err := src.Definitions()
	if err != nil {
		return err
	}
	schedules, err := src.Schedules()
	if err != nil {
		return err
	}
	if err := scheduler.New(registry.NewRegistry(), nil).Add(schedules...); err != nil {
		return err
	}

	reg := intent.NewRegistry(nil, intent.WithLogger(logger))
	if err := reg.Define(defs...); err != nil {
		return err
	}
	if err := reg.Freeze(); err != nil {
		return err
	}
	if problems := reg.Lint(); len(problems) > 0 {
		return errors.Join(problems...)
	}
	return nil
}
