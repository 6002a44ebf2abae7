package steps

import (
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

func TestBuild_ValidItems(t *testing.T) {
	if err := pipeline.Validate(Build()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := pipeline.Validate(Check()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBuild_WithoutCommands(t *testing.T) {
	site := newTestSite(t)
	writeTestFile(t, site.PagesDir, "index.mdx", "---\ntitle: Welcome\n---\n# Hello\n")
	writeTestFile(t, site.PagesDir, "guide/setup.md", "Install it.\n")
	writeTestFile(t, site.PagesDir, "img/a.png", "png")
	writeTestFile(t, site.PagesDir, "comp/Button.tsx", "export {}")
	writeTestFile(t, site.PublicDir, "robots.txt", "User-agent: *")

	st, err := pipeline.New(Build()...).Run(context.Background(), *site, NewSession(site))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Status != pipeline.StatusSucceeded {
		t.Errorf("expected succeeded status, got %s", st.Status)
	}

	for _, rel := range []string{
		"index.html",
		"guide/setup/index.html",
		"index.md",
		"guide/setup.md",
		"img/a.png",
		"robots.txt",
	} {
		if _, err := os.Stat(filepath.Join(site.OutDir, filepath.FromSlash(rel))); err != nil {
			t.Errorf("expected %s in output: %v", rel, err)
		}
	}
	if _, err := os.Stat(filepath.Join(site.OutDir, "comp", "Button.tsx")); !os.IsNotExist(err) {
		t.Error("expected code file not to be copied")
	}

	index := readTestFile(t, site.OutDir, "index.html")
	if !strings.Contains(index, "<title>Welcome</title>") || !strings.Contains(index, `<h1 id="hello">Hello</h1>`) {
		t.Errorf("unexpected index.html:\n%s", index)
	}

	ran := []string{StepCatalogPages, StepRenderPages, StepGenerateHTML, StepCopyStatic, conflicts.StepName, StepResetOutput}
	for _, name := range ran {
		if _, ok := st.Timings[name]; !ok {
			t.Errorf("expected timing for %s", name)
		}
	}
	for _, name := range []string{StepInstallDeps, StepBuildCSS, StepBundleServer, StepBundleClient} {
		if _, ok := st.Timings[name]; ok {
			t.Errorf("expected no timing for skipped step %s", name)
		}
	}
	if len(st.Timings) != len(ran) {
		t.Errorf("expected %d timings, got %v", len(ran), st.Timings)
	}
}

func TestBuild_AssetGroup(t *testing.T) {
	skipWithoutShell(t)

	site := newTestSite(t)
	writeTestFile(t, site.PagesDir, "index.md", "# Home\n")
	site.CSS = &api.Command{Command: []string{"sh", "-c", "printf 'body{}'"}, Dir: site.Dir}
	site.BundleClient = &api.Command{Command: []string{"sh", "-c", "printf 'console.log(1)'"}, Dir: site.Dir}
	site.BundleServer = &api.Command{Command: []string{"sh", "-c", "printf 'export default 1'"}, Dir: site.Dir}

	session := NewSession(site)
	st, err := pipeline.New(Build()...).Run(context.Background(), *site, session)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range []string{StepBuildCSS, StepBundleServer, StepBundleClient} {
		if _, ok := st.Timings[name]; !ok {
			t.Errorf("expected timing for %s", name)
		}
	}
	if got := readTestFile(t, site.OutDir, StylesheetPath); got != "body{}" {
		t.Errorf("unexpected stylesheet %q", got)
	}
	if b := st.Outputs.ServerBundle; b == nil || string(b.Stdout) != "export default 1" {
		t.Errorf("unexpected server bundle %+v", b)
	} else if filepath.Dir(b.Path) != CacheDir(site, session) {
		t.Errorf("expected server bundle in the session cache, got %s", b.Path)
	}
	if _, err := os.Stat(CacheDir(site, session)); !os.IsNotExist(err) {
		t.Errorf("expected session cache to be removed after the build, got %v", err)
	}

	index := readTestFile(t, site.OutDir, "index.html")
	for _, want := range []string{
		`<link rel="stylesheet" href="/_pagesmith/styles.css">`,
		`<script type="module" src="/_pagesmith/client.js"></script>`,
	} {
		if !strings.Contains(index, want) {
			t.Errorf("index.html missing %q:\n%s", want, index)
		}
	}
}

func TestBuild_AssetGroupFailure(t *testing.T) {
	skipWithoutShell(t)

	site := newTestSite(t)
	writeTestFile(t, site.PagesDir, "index.md", "# Home\n")
	site.CSS = &api.Command{Command: []string{"sh", "-c", "printf 'body{}'"}, Dir: site.Dir}
	site.BundleClient = &api.Command{Command: []string{"sh", "-c", "echo broken >&2; exit 3"}, Dir: site.Dir}

	st, err := pipeline.New(Build()...).Run(context.Background(), *site, NewSession(site))
	if err == nil {
		t.Fatal("expected build to fail")
	}
	if st.FailedStep != StepBuildCSS {
		t.Errorf("expected failure attributed to group %s, got %q", StepBuildCSS, st.FailedStep)
	}

	var se *pipeline.StepError
	if !errors.As(st.Err, &se) {
		t.Fatalf("expected StepError, got %v", st.Err)
	}
	if len(se.Members) != 1 || se.Members[0] != StepBundleClient {
		t.Errorf("expected failing member %s, got %v", StepBundleClient, se.Members)
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("expected stderr in message, got %q", err.Error())
	}
	if _, ok := st.Timings[StepRenderPages]; ok {
		t.Error("render must not run after a failed group")
	}
}

func TestBuild_ConflictsLeaveOutputUntouched(t *testing.T) {
	site := newTestSite(t)
	writeTestFile(t, site.PagesDir, "foo.mdx", "# Foo\n")
	writeTestFile(t, site.PublicDir, "foo.html", "<p>foo</p>")
	writeTestFile(t, site.OutDir, "sentinel.txt", "keep")

	st, err := pipeline.New(Build()...).Run(context.Background(), *site, NewSession(site))
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if st.FailedStep != conflicts.StepName {
		t.Errorf("expected failure at %s, got %q", conflicts.StepName, st.FailedStep)
	}
	var ce *conflicts.ConflictError
	if !errors.As(st.Err, &ce) {
		t.Fatalf("expected ConflictError, got %v", st.Err)
	}
	if got := readTestFile(t, site.OutDir, "sentinel.txt"); got != "keep" {
		t.Errorf("expected previous output to survive, got %q", got)
	}
}

func TestBuild_GeneratedAssetCollision(t *testing.T) {
	skipWithoutShell(t)

	tests := []struct {
		name  string
		setup func(t *testing.T, site *api.Site)
	}{
		{"public stylesheet", func(t *testing.T, site *api.Site) {
			writeTestFile(t, site.PublicDir, StylesheetPath, "PUBLIC")
			site.CSS = &api.Command{Command: []string{"sh", "-c", "printf 'body{}'"}, Dir: site.Dir}
		}},
		{"public client script", func(t *testing.T, site *api.Site) {
			writeTestFile(t, site.PublicDir, ScriptPath, "PUBLIC")
			site.BundleClient = &api.Command{Command: []string{"sh", "-c", "printf 'console.log(1)'"}, Dir: site.Dir}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site := newTestSite(t)
			writeTestFile(t, site.PagesDir, "index.md", "# Home\n")
			tt.setup(t, site)

			st, err := pipeline.New(Build()...).Run(context.Background(), *site, NewSession(site))
			if err == nil {
				t.Fatal("expected conflict error")
			}
			if st.FailedStep != conflicts.StepName {
				t.Errorf("expected failure at %s, got %q", conflicts.StepName, st.FailedStep)
			}
			var ce *conflicts.ConflictError
			if !errors.As(st.Err, &ce) || len(ce.Report.PathConflicts) != 1 {
				t.Fatalf("expected one path conflict, got %v", st.Err)
			}
		})
	}
}

func TestBuild_PagesDirAtSiteRoot(t *testing.T) {
	site := newTestSite(t)
	site.PagesDir = site.Dir
	site.PublicDir = ""
	site.OutDir = filepath.Join(t.TempDir(), "dist")
	writeTestFile(t, site.Dir, "index.md", "# Home\n")
	writeTestFile(t, site.StateDir(), "build.lock", "")
	writeTestFile(t, site.StateDir(), "preview/abc/index.html", "<p>old preview</p>")

	st, err := pipeline.New(Build()...).Run(context.Background(), *site, NewSession(site))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(site.OutDir, api.StateDirName)); !os.IsNotExist(err) {
		t.Errorf("expected state directory to stay out of the output, got %v", err)
	}
	if len(st.Outputs.Pages) != 1 {
		t.Errorf("expected one page, got %+v", st.Outputs.Pages)
	}
}
