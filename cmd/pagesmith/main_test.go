package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/systemstart/pagesmith/pkg/api"
	"github.com/systemstart/pagesmith/pkg/conflicts"
	"github.com/systemstart/pagesmith/pkg/pipeline"
)

func writeSiteFile(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func newSiteDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeSiteFile(t, dir, "pagesmith.yaml", "site:\n  title: Test Site\noutDir: build\n")
	writeSiteFile(t, dir, "pages/index.md", "# Home\n")
	writeSiteFile(t, dir, "pages/docs/intro.mdx", "---\ntitle: Intro\n---\nHello\n")
	writeSiteFile(t, dir, "public/robots.txt", "User-agent: *\n")
	return dir
}

func siteFor(t *testing.T, dir string) *api.Site {
	t.Helper()
	site, err := api.LoadSite(filepath.Join(dir, "pagesmith.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	return site
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("expected %q, got %q", version, out)
	}
}

func TestBuildCommand(t *testing.T) {
	dir := newSiteDir(t)
	metricsFile := filepath.Join(t.TempDir(), "pagesmith.prom")

	out, err := runCLI(t, "build", "-c", filepath.Join(dir, "pagesmith.yaml"), "--metrics-file", metricsFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, rel := range []string{"index.html", "docs/intro/index.html", "docs/intro.md", "index.md", "robots.txt"} {
		if _, err := os.Stat(filepath.Join(dir, "build", filepath.FromSlash(rel))); err != nil {
			t.Errorf("expected %s: %v", rel, err)
		}
	}

	for _, want := range []string{"check-conflicts", "render-pages", "skipped", "succeeded"} {
		if !strings.Contains(out, want) {
			t.Errorf("timing table missing %q:\n%s", want, out)
		}
	}

	prom, err := os.ReadFile(metricsFile)
	if err != nil {
		t.Fatalf("expected metrics file: %v", err)
	}
	if !strings.Contains(string(prom), `pagesmith_build_outcomes_total{outcome="succeeded"} 1`) {
		t.Errorf("unexpected metrics:\n%s", prom)
	}
}

func TestBuildCommand_OutOverride(t *testing.T) {
	dir := newSiteDir(t)
	out := filepath.Join(t.TempDir(), "site")

	if _, err := runCLI(t, "build", "-q", "-c", filepath.Join(dir, "pagesmith.yaml"), "--out", out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "index.html")); err != nil {
		t.Errorf("expected output in overridden directory: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "build")); !os.IsNotExist(err) {
		t.Error("expected configured outDir to stay untouched")
	}
}

func TestBuildCommand_Conflict(t *testing.T) {
	dir := newSiteDir(t)
	writeSiteFile(t, dir, "public/docs/intro.html", "<p>clash</p>")

	out, err := runCLI(t, "build", "-c", filepath.Join(dir, "pagesmith.yaml"))
	if err == nil {
		t.Fatal("expected build to fail")
	}
	if pipeline.FailedStep(err) != conflicts.StepName {
		t.Errorf("expected failure at %s, got %q", conflicts.StepName, pipeline.FailedStep(err))
	}
	if !strings.Contains(err.Error(), "/docs/intro") {
		t.Errorf("expected conflicting URL in message, got %q", err.Error())
	}
	if !strings.Contains(out, "not run") {
		t.Errorf("expected later steps marked as not run:\n%s", out)
	}
}

func TestCheckCommand(t *testing.T) {
	dir := newSiteDir(t)
	cfg := filepath.Join(dir, "pagesmith.yaml")

	out, err := runCLI(t, "check", "-c", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "no output conflicts") {
		t.Errorf("unexpected output %q", out)
	}

	writeSiteFile(t, dir, "pages/index.mdx", "# Also home\n")
	_, err = runCLI(t, "check", "-c", cfg)
	var ce *conflicts.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "build")); !os.IsNotExist(err) {
		t.Error("check must not write output")
	}
}

func TestLockSite(t *testing.T) {
	dir := newSiteDir(t)
	site := siteFor(t, dir)

	unlock, err := lockSite(site)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := lockSite(site); err == nil {
		t.Error("expected second lock to fail while the first is held")
	}
	unlock()

	unlock, err = lockSite(site)
	if err != nil {
		t.Fatalf("expected lock after release: %v", err)
	}
	unlock()
}
