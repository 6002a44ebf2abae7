package steps

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/systemstart/pagesmith/pkg/pipeline"
)

// renderStep turns every cataloged entry into an HTML body, either through
// the configured render command or with the built-in Markdown renderer.
type renderStep struct {
	md goldmark.Markdown
}

func newRenderStep() *renderStep {
	return &renderStep{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

func (s *renderStep) Name() string        { return StepRenderPages }
func (s *renderStep) Description() string { return "render page bodies to HTML" }

func (s *renderStep) ShouldRun(_ context.Context, st *pipeline.State) bool {
	return len(st.Outputs.Entries) > 0
}

func (s *renderStep) Execute(ctx context.Context, st *pipeline.State) error {
	rendered := make(map[string]string, len(st.Outputs.Entries))
	for _, e := range st.Outputs.Entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		body, err := s.render(ctx, st, e)
		if err != nil {
			return fmt.Errorf("rendering %s: %w", e.SourcePath, err)
		}
		rendered[e.Name] = body
	}

	st.Outputs.Rendered = rendered
	slog.Info("rendered pages", "count", len(rendered), "external", st.Options.Render.Configured())
	return nil
}

func (s *renderStep) render(ctx context.Context, st *pipeline.State, e pipeline.Entry) (string, error) {
	src := filepath.Join(st.Options.PagesDir, filepath.FromSlash(e.SourcePath))

	if st.Options.Render.Configured() {
		env := append(siteEnv(st), "PAGESMITH_ENTRY="+e.Name, "PAGESMITH_DIST_PATH="+e.DistPath)
		if b := st.Outputs.ServerBundle; b != nil && b.Path != "" {
			env = append(env, "PAGESMITH_SERVER_BUNDLE="+b.Path)
		}
		out, err := runCommand(ctx, st.Options.Render, []string{src}, env)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}

	content, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("reading page: %w", err)
	}
	_, body := splitFrontMatter(content)

	var buf bytes.Buffer
	if err := s.md.Convert(body, &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return buf.String(), nil
}
