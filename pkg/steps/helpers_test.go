package steps

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/systemstart/pagesmith/pkg/api"
	"github.com/systemstart/pagesmith/pkg/pipeline"
)

// writeTestFile writes content to a slash separated path below dir, creating
// parent directories and failing the test on error.
func writeTestFile(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func readTestFile(t *testing.T, dir, name string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	if err != nil {
		t.Fatal(err)
	}
	return string(content)
}

// newTestSite returns a site rooted in a fresh temp directory with empty
// pages and public trees.
func newTestSite(t *testing.T) *api.Site {
	t.Helper()
	site, err := api.DefaultSite(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, dir := range []string{site.PagesDir, site.PublicDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatal(err)
		}
	}
	return site
}

// newTestState returns the state a step sees when run for site.
func newTestState(t *testing.T, site *api.Site) *pipeline.State {
	t.Helper()
	var st *pipeline.State
	capture := &pipeline.Func{StepName: "capture", Fn: func(_ context.Context, s *pipeline.State) error {
		st = s
		return nil
	}}
	if _, err := pipeline.New(pipeline.Single(capture)).Run(context.Background(), *site, nil); err != nil {
		t.Fatal(err)
	}
	return st
}

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not in PATH")
	}
}
