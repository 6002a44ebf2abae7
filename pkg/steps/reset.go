package steps

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/systemstart/pagesmith/pkg/api"
	"github.com/systemstart/pagesmith/pkg/pipeline"
)

// CacheRoot is the parent of every session's cache directory for site.
func CacheRoot(site *api.Site) string {
	return filepath.Join(site.StateDir(), "cache")
}

// CacheDir is where steps keep intermediate files that belong to one build
// session. Sessions never look into each other's directory.
func CacheDir(site *api.Site, session *pipeline.Session) string {
	return filepath.Join(CacheRoot(site), session.ID)
}

// NewSession returns a build session that owns a private cache directory of
// site. The reset hook recreates it empty; the directory is removed once the
// run is over.
func NewSession(site *api.Site) *pipeline.Session {
	var session *pipeline.Session
	session = pipeline.NewSession(func(context.Context) error {
		dir := CacheDir(site, session)
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("clearing cache directory %s: %w", dir, err)
		}
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating cache directory %s: %w", dir, err)
		}
		return nil
	})
	return session.WithRelease(func() error {
		dir := CacheDir(site, session)
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("removing cache directory %s: %w", dir, err)
		}
		return nil
	})
}

type resetOutputStep struct{}

func (resetOutputStep) Name() string        { return StepResetOutput }
func (resetOutputStep) Description() string { return "delete and recreate the output directory" }

func (resetOutputStep) Execute(_ context.Context, st *pipeline.State) error {
	out := st.Options.OutDir
	if out == "" {
		return fmt.Errorf("output directory not set")
	}

	_, err := os.Stat(out)
	if !os.IsNotExist(err) {
		if err != nil {
			return fmt.Errorf("checking output directory %s: %w", out, err)
		}
		if err := os.RemoveAll(out); err != nil {
			return fmt.Errorf("cleaning output directory %s: %w", out, err)
		}
		slog.Debug("removed previous output", "directory", out)
	}

	if err := os.MkdirAll(out, 0o750); err != nil {
		return fmt.Errorf("creating output directory %s: %w", out, err)
	}
	return nil
}
