package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/switchboard/internal/cli"
	"github.com/aretw0/switchboard/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph [intent files...]",
	Short: "Export the intent tree visualization",
	Long:  `Loads the intent files and outputs a Mermaid diagram (graph TD) of the intent tree and its aliases.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 && !cmd.Flags().Changed("intents") {
			cfg.Intents = args
		}
		router, err := cli.NewRouter(context.Background(), cli.RouterOptions{
			Intents: cfg.Intents,
			Logger:  logger,
		})
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(router.Inspect(), nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
