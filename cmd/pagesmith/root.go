package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/systemstart/pagesmith/pkg/api"
	"github.com/systemstart/pagesmith/pkg/logging"
)

type commandContext struct {
	configFile  string
	loggingType string
	logLevel    string
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "pagesmith",
		Short:         "Build a static site from a pages and a public tree",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logging.Initialize(ctx.loggingType, ctx.logLevel); err != nil {
				return err
			}
			return includeEnv()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFile, "config", "c", "", "Site configuration file (default: pagesmith.yaml in the working directory)")
	rootCmd.PersistentFlags().StringVar(&ctx.loggingType, "log-type", logging.Tint, "Logging type: "+strings.Join(logging.Types, ", "))
	rootCmd.PersistentFlags().StringVar(&ctx.logLevel, "log-level", "info", "Logging level: debug, info, warn, error")

	rootCmd.AddCommand(newBuildCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newPreviewCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// loadSite reads the configured site file, falling back to a default config
// file in the working directory and then to conventional directory names.
func (c *commandContext) loadSite() (*api.Site, error) {
	if c.configFile != "" {
		return api.LoadSite(c.configFile)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}
	if found := api.FindConfig(cwd); found != "" {
		slog.Debug("using site config", "filename", found)
		return api.LoadSite(found)
	}

	slog.Debug("no site config found, using defaults", "directory", cwd)
	site, err := api.DefaultSite(cwd)
	if err != nil {
		return nil, err
	}
	if err := site.Validate(); err != nil {
		return nil, err
	}
	return site, nil
}

// overrideOutDir replaces the site's output directory and validates the
// result.
func overrideOutDir(site *api.Site, out string) error {
	abs, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("resolving output directory: %w", err)
	}
	site.OutDir = abs
	return site.Validate()
}

func includeEnv() error {
	err := godotenv.Load()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		slog.Debug("no .env file found")
		return nil
	}
	slog.Debug("using .env file")
	return nil
}
