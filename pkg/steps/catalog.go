package steps

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/systemstart/pagesmith/pkg/artifact"
	"github.com/systemstart/pagesmith/pkg/conflicts"
	"github.com/systemstart/pagesmith/pkg/pipeline"
)

type catalogStep struct{}

func (catalogStep) Name() string        { return StepCatalogPages }
func (catalogStep) Description() string { return "collect page entries and their front matter" }

func (catalogStep) Execute(ctx context.Context, st *pipeline.State) error {
	files, err := conflicts.ListFiles(st.Options.PagesDir, st.Options.Ignore)
	if err != nil {
		return fmt.Errorf("listing pages: %w", err)
	}

	var entries []pipeline.Entry
	for _, rel := range files {
		if !artifact.IsPage(rel) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		entry, err := catalogEntry(st.Options.PagesDir, rel)
		if err != nil {
			return fmt.Errorf("cataloging %s: %w", rel, err)
		}
		entries = append(entries, entry)
	}

	st.Outputs.Entries = entries
	slog.Info("cataloged pages", "count", len(entries))
	return nil
}

func catalogEntry(pagesDir, rel string) (pipeline.Entry, error) {
	content, err := os.ReadFile(filepath.Join(pagesDir, filepath.FromSlash(rel)))
	if err != nil {
		return pipeline.Entry{}, fmt.Errorf("reading page: %w", err)
	}

	fm, _ := splitFrontMatter(content)
	values, err := parseFrontMatter(fm)
	if err != nil {
		return pipeline.Entry{}, err
	}

	name := artifact.EntryName(rel)
	return pipeline.Entry{
		Name:        name,
		SourcePath:  rel,
		DistPath:    artifact.CompiledPath(rel),
		Title:       entryTitle(name, values),
		FrontMatter: values,
	}, nil
}

// entryTitle prefers a front matter title and falls back to the last
// meaningful segment of the entry name.
func entryTitle(name string, fm map[string]any) string {
	if t, ok := fm["title"].(string); ok && t != "" {
		return t
	}
	base := path.Base(name)
	if base == "index" {
		dir := path.Dir(name)
		if dir == "." {
			return "Home"
		}
		return path.Base(dir)
	}
	return base
}
