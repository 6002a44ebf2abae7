package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systemstart/pagesmith/pkg/pipeline"
	"github.com/systemstart/pagesmith/pkg/steps"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report output files and URLs claimed by more than one source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			site, err := ctx.loadSite()
			if err != nil {
				return err
			}

			if _, err := pipeline.New(steps.Check()...).Run(cmd.Context(), *site, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "no output conflicts")
			return nil
		},
	}
}
