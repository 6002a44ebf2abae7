package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/systemstart/pagesmith/pkg/api"
	"github.com/systemstart/pagesmith/pkg/metrics"
	"github.com/systemstart/pagesmith/pkg/pipeline"
	"github.com/systemstart/pagesmith/pkg/steps"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var (
		outDir      string
		metricsFile string
		quiet       bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the site into the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			site, err := ctx.loadSite()
			if err != nil {
				return err
			}
			if outDir != "" {
				if err := overrideOutDir(site, outDir); err != nil {
					return err
				}
			}

			unlock, err := lockSite(site)
			if err != nil {
				return err
			}
			defer unlock()

			recorder := metrics.NewPrometheusRecorder(nil)
			runner := &pipeline.Runner{
				Items:    steps.Build(),
				Observer: pipeline.RecorderObserver{Recorder: recorder},
			}
			st, runErr := runner.Run(cmd.Context(), *site, steps.NewSession(site))

			if metricsFile != "" {
				if err := recorder.WriteTextfile(metricsFile); err != nil {
					slog.Error("failed to write metrics", "filename", metricsFile, "error", err)
				}
			}
			if !quiet {
				fmt.Fprint(cmd.OutOrStdout(), renderTimings(runner.Items, st))
			}
			if runErr != nil {
				return runErr
			}

			slog.Info("build finished", "output", site.OutDir, "pages", len(st.Outputs.Pages))
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (overrides outDir from the site config)")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write build metrics in Prometheus text format to this file")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print the step timing table")
	return cmd
}

// lockSite takes an exclusive lock for building site, so two builds never
// write the same output directory at once.
func lockSite(site *api.Site) (func(), error) {
	lockPath := filepath.Join(site.StateDir(), "build.lock")
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another build is already running for this site")
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("failed to release build lock", "filename", lockPath, "error", err)
		}
	}, nil
}
