package steps

import (
	"context"
	"strings"
	"testing"

	"github.com/systemstart/pagesmith/pkg/api"
	"github.com/systemstart/pagesmith/pkg/pipeline"
)

func TestRenderStep_BuiltinMarkdown(t *testing.T) {
	site := newTestSite(t)
	writeTestFile(t, site.PagesDir, "guide.md", "---\ntitle: Guide\n---\n# Getting started\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	st := newTestState(t, site)
	st.Outputs.Entries = []pipeline.Entry{{Name: "guide", SourcePath: "guide.md", DistPath: "guide/index.html"}}

	step := newRenderStep()
	if !step.ShouldRun(context.Background(), st) {
		t.Fatal("expected step to run with entries")
	}
	if err := step.Execute(context.Background(), st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := st.Outputs.Rendered["guide"]
	if !strings.Contains(body, `<h1 id="getting-started">Getting started</h1>`) {
		t.Errorf("expected heading with id, got %q", body)
	}
	if !strings.Contains(body, "<table>") {
		t.Errorf("expected GFM table, got %q", body)
	}
	if strings.Contains(body, "title: Guide") {
		t.Errorf("front matter leaked into body: %q", body)
	}
}

func TestRenderStep_ExternalCommand(t *testing.T) {
	skipWithoutShell(t)

	site := newTestSite(t)
	writeTestFile(t, site.PagesDir, "about.mdx", "<Hero />")
	site.Render = &api.Command{
		// The page path is appended and becomes $0 of the script.
		Command: []string{"sh", "-c", `printf '<section data-entry="%s">' "$PAGESMITH_ENTRY"; cat "$0"; printf '</section>'`},
		Dir:     site.Dir,
	}
	st := newTestState(t, site)
	st.Outputs.Entries = []pipeline.Entry{{Name: "about", SourcePath: "about.mdx", DistPath: "about/index.html"}}

	if err := newRenderStep().Execute(context.Background(), st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `<section data-entry="about"><Hero /></section>`
	if got := st.Outputs.Rendered["about"]; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRenderStep_SkippedWithoutEntries(t *testing.T) {
	st := newTestState(t, newTestSite(t))
	if newRenderStep().ShouldRun(context.Background(), st) {
		t.Error("expected render step to be skipped without entries")
	}
}
