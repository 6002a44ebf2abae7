package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/systemstart/pagesmith/pkg/api"
	"github.com/systemstart/pagesmith/pkg/pipeline"
	"github.com/systemstart/pagesmith/pkg/preview"
	"github.com/systemstart/pagesmith/pkg/steps"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Serve the site locally and rebuild it on changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			site, err := ctx.loadSite()
			if err != nil {
				return err
			}

			server := preview.NewServer(*site, buildSite)
			return server.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:4321", "Address to listen on")
	return cmd
}

func buildSite(ctx context.Context, site api.Site) error {
	_, err := pipeline.New(steps.Build()...).Run(ctx, site, steps.NewSession(&site))
	return err
}
