package api

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Validate checks the site configuration for errors.
func (s *Site) Validate() error {
	if s.PagesDir == "" {
		return fmt.Errorf("pagesDir is required")
	}
	if s.OutDir == "" {
		return fmt.Errorf("outDir is required")
	}

	for _, dir := range []string{s.PagesDir, s.PublicDir} {
		if dir != "" && within(dir, s.OutDir) {
			return fmt.Errorf("outDir %q must not contain source directory %q", s.OutDir, dir)
		}
		if dir != "" && within(s.OutDir, dir) {
			return fmt.Errorf("outDir %q must not be inside source directory %q", s.OutDir, dir)
		}
	}

	for _, pattern := range s.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("ignore pattern %q is not valid", pattern)
		}
	}

	commands := map[string]*Command{
		"install":      s.Install,
		"css":          s.CSS,
		"bundleServer": s.BundleServer,
		"bundleClient": s.BundleClient,
		"render":       s.Render,
	}
	for name, c := range commands {
		if c != nil && len(c.Command) == 0 {
			return fmt.Errorf("%s.command is required when %s is set", name, name)
		}
	}

	return nil
}

// within reports whether p equals root or lies below it.
func within(p, root string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel))
}
