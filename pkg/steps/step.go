// Package steps holds the build steps pagesmith runs and the order it runs
// them in.
package steps

import (
	"path/filepath"

	"github.com/systemstart/pagesmith/pkg/api"
	"github.com/systemstart/pagesmith/pkg/conflicts"
	"github.com/systemstart/pagesmith/pkg/pipeline"
)

// Step names, in execution order.
const (
	StepInstallDeps  = "install-deps"
	StepResetOutput  = "reset-output"
	StepCatalogPages = "catalog-pages"
	StepBuildCSS     = "build-css"
	StepBundleServer = "bundle-server"
	StepBundleClient = "bundle-client"
	StepRenderPages  = "render-pages"
	StepGenerateHTML = "generate-html"
	StepCopyStatic   = "copy-static"
)

// Build returns the item list the build command runs.
func Build() []pipeline.Item {
	return []pipeline.Item{
		pipeline.Single(newInstallStep()),
		pipeline.Single(conflicts.NewStep()),
		pipeline.Single(resetOutputStep{}),
		pipeline.Single(catalogStep{}),
		pipeline.Group(newCSSStep(), newServerBundleStep(), newClientBundleStep()),
		pipeline.Single(newRenderStep()),
		pipeline.Single(generateHTMLStep{}),
		pipeline.Single(copyStaticStep{}),
	}
}

// Check returns the item list that only runs the conflict detector.
func Check() []pipeline.Item {
	return []pipeline.Item{pipeline.Single(conflicts.NewStep())}
}

func newInstallStep() pipeline.Step {
	return &commandStep{
		name:   StepInstallDeps,
		desc:   "install site dependencies",
		config: func(s *api.Site) *api.Command { return s.Install },
	}
}

func newCSSStep() pipeline.Step {
	return &commandStep{
		name:   StepBuildCSS,
		desc:   "build the site stylesheet",
		config: func(s *api.Site) *api.Command { return s.CSS },
		target: func(st *pipeline.State) string {
			return filepath.Join(st.Options.OutDir, filepath.FromSlash(StylesheetPath))
		},
		publish: func(st *pipeline.State, out *pipeline.CommandOutput) { st.Outputs.CSS = out },
	}
}

func newServerBundleStep() pipeline.Step {
	return &commandStep{
		name:   StepBundleServer,
		desc:   "bundle the server-side render entry",
		config: func(s *api.Site) *api.Command { return s.BundleServer },
		target: func(st *pipeline.State) string {
			return filepath.Join(CacheDir(&st.Options, st.Session), "server.js")
		},
		publish: func(st *pipeline.State, out *pipeline.CommandOutput) { st.Outputs.ServerBundle = out },
	}
}

func newClientBundleStep() pipeline.Step {
	return &commandStep{
		name:   StepBundleClient,
		desc:   "bundle the client-side script",
		config: func(s *api.Site) *api.Command { return s.BundleClient },
		target: func(st *pipeline.State) string {
			return filepath.Join(st.Options.OutDir, filepath.FromSlash(ScriptPath))
		},
		publish: func(st *pipeline.State, out *pipeline.CommandOutput) { st.Outputs.ClientBundle = out },
	}
}

var _ pipeline.Gated = (*commandStep)(nil)
