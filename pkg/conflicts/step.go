package conflicts

import (
	"context"
	"log/slog"

	"github.com/systemstart/pagesmith/pkg/api"
	"github.com/systemstart/pagesmith/pkg/artifact"
	"github.com/systemstart/pagesmith/pkg/pipeline"
)

// StepName is the name the detector runs under in a pipeline.
const StepName = "check-conflicts"

type detectStep struct{}

// NewStep returns the pipeline step that fails the build when the pages and
// public trees of the site would produce conflicting output.
func NewStep() pipeline.Step {
	return detectStep{}
}

func (detectStep) Name() string { return StepName }

func (detectStep) Description() string {
	return "check that no two sources produce the same output file or URL"
}

func (detectStep) Execute(_ context.Context, st *pipeline.State) error {
	report, err := Detect(TreesFor(st))
	if err != nil {
		return err
	}
	if !report.Empty() {
		return &ConflictError{Report: report}
	}
	slog.Debug("no output conflicts", "pages", st.Options.PagesDir, "public", st.Options.PublicDir)
	return nil
}

// TreesFor returns the source trees configured for a run, together with the
// assets its configured commands will write into the output directory.
func TreesFor(st *pipeline.State) Trees {
	return Trees{
		PagesDir:  st.Options.PagesDir,
		PublicDir: st.Options.PublicDir,
		Ignore:    st.Options.Ignore,
		Generated: GeneratedAssets(&st.Options),
	}
}

// GeneratedAssets returns the dist paths site's asset commands produce.
func GeneratedAssets(site *api.Site) []string {
	var out []string
	if site.CSS.Configured() {
		out = append(out, artifact.StylesheetPath)
	}
	if site.BundleClient.Configured() {
		out = append(out, artifact.ScriptPath)
	}
	return out
}
