package conflicts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/systemstart/pagesmith/pkg/api"
	"github.com/systemstart/pagesmith/pkg/artifact"
)

// Trees names the source directories the output is built from.
type Trees struct {
	PagesDir  string
	PublicDir string
	// Ignore holds doublestar patterns matched against tree-relative,
	// slash separated paths. Matching directories are not descended into.
	Ignore []string
	// Generated lists dist paths that build steps write directly.
	Generated []string
}

// Root returns the directory a source file of the given tree lives in.
func (t Trees) Root(kind artifact.TreeKind) string {
	if kind == artifact.PublicStatic {
		return t.PublicDir
	}
	return t.PagesDir
}

// Sources walks both trees and returns every source file, listing each file
// of the pages tree once per pages rule. A missing public directory counts
// as empty; a missing pages directory is an error.
func (t Trees) Sources() ([]artifact.SourceFile, error) {
	pages, err := ListFiles(t.PagesDir, t.Ignore)
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}

	var public []string
	if t.PublicDir != "" {
		public, err = ListFiles(t.PublicDir, t.Ignore)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("listing public files: %w", err)
		}
	}

	sources := make([]artifact.SourceFile, 0, 2*len(pages)+len(public)+len(t.Generated))
	for _, rel := range pages {
		sources = append(sources,
			artifact.SourceFile{RelPath: rel, Tree: artifact.PagesCompiled},
			artifact.SourceFile{RelPath: rel, Tree: artifact.PagesStaticCopy},
		)
	}
	for _, rel := range public {
		sources = append(sources, artifact.SourceFile{RelPath: rel, Tree: artifact.PublicStatic})
	}
	for _, dist := range t.Generated {
		sources = append(sources, artifact.SourceFile{RelPath: dist, Tree: artifact.Generated})
	}
	return sources, nil
}

// Artifacts resolves every source file of both trees, plus the generated
// assets.
func (t Trees) Artifacts() ([]artifact.Artifact, error) {
	sources, err := t.Sources()
	if err != nil {
		return nil, err
	}
	var out []artifact.Artifact
	for _, src := range sources {
		out = append(out, artifact.Resolve(src)...)
	}
	return out, nil
}

// ListFiles returns the slash separated paths, relative to root, of every
// non-directory entry below root, sorted. pagesmith's own state directory is
// never listed.
func ListFiles(root string, ignore []string) ([]string, error) {
	st, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk error at %s: %w", path, err)
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return fmt.Errorf("computing relative path for %s: %w", path, relErr)
		}
		if rel == "." {
			return nil
		}
		rel = artifact.Normalize(rel)

		if d.IsDir() && d.Name() == api.StateDirName {
			return filepath.SkipDir
		}

		if ignored(rel, ignore) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	slices.Sort(files)
	return files, nil
}

func ignored(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
