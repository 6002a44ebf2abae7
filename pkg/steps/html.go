package steps

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/sprig/v3"

	"github.com/systemstart/pagesmith/pkg/api"
	"github.com/systemstart/pagesmith/pkg/artifact"
	"github.com/systemstart/pagesmith/pkg/pipeline"
)

//go:embed layout.html.tmpl
var defaultLayout string

// Dist paths of the assets produced by the asset group.
const (
	StylesheetPath = artifact.StylesheetPath
	ScriptPath     = artifact.ScriptPath
)

// pageData is the value the layout template is executed with.
type pageData struct {
	Site        api.Meta
	Title       string
	Entry       pipeline.Entry
	FrontMatter map[string]any
	Body        template.HTML
	Stylesheet  string
	Script      string
	Entries     []pipeline.Entry
}

type generateHTMLStep struct{}

func (generateHTMLStep) Name() string        { return StepGenerateHTML }
func (generateHTMLStep) Description() string { return "wrap rendered pages in the layout and write them" }

func (generateHTMLStep) ShouldRun(_ context.Context, st *pipeline.State) bool {
	return len(st.Outputs.Rendered) > 0
}

func (generateHTMLStep) Execute(ctx context.Context, st *pipeline.State) error {
	tmpl, err := loadLayout(st.Options.Layout)
	if err != nil {
		return err
	}

	var stylesheet, script string
	if st.Outputs.CSS != nil && st.Outputs.CSS.Path != "" {
		stylesheet = siteURL(st.Options.Meta.BaseURL, StylesheetPath)
	}
	if st.Outputs.ClientBundle != nil && st.Outputs.ClientBundle.Path != "" {
		script = siteURL(st.Options.Meta.BaseURL, ScriptPath)
	}

	var written []string
	for _, e := range st.Outputs.Entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		body, ok := st.Outputs.Rendered[e.Name]
		if !ok {
			return fmt.Errorf("entry %q was not rendered", e.Name)
		}

		data := pageData{
			Site:        st.Options.Meta,
			Title:       e.Title,
			Entry:       e,
			FrontMatter: e.FrontMatter,
			// Bodies come from the site's own renderer and are trusted.
			Body:       template.HTML(body),
			Stylesheet: stylesheet,
			Script:     script,
			Entries:    st.Outputs.Entries,
		}
		if err := writePage(tmpl, filepath.Join(st.Options.OutDir, filepath.FromSlash(e.DistPath)), data); err != nil {
			return fmt.Errorf("writing %s: %w", e.DistPath, err)
		}
		written = append(written, e.DistPath)
	}

	st.Outputs.Pages = written
	slog.Info("generated html pages", "count", len(written))
	return nil
}

func loadLayout(file string) (*template.Template, error) {
	src := defaultLayout
	name := "layout"
	if file != "" {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading layout: %w", err)
		}
		src = string(content)
		name = filepath.Base(file)
	}

	tmpl, err := template.New(name).Funcs(sprig.HtmlFuncMap()).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing layout: %w", err)
	}
	return tmpl, nil
}

func writePage(tmpl *template.Template, target string, data pageData) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("executing layout: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("creating parent directories: %w", err)
	}
	if err := os.WriteFile(target, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	return nil
}

func siteURL(baseURL, distPath string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + distPath
}
