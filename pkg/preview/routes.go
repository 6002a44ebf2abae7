package preview

import (
	"log/slog"
	"path"
	"strings"

	"github.com/systemstart/pagesmith/pkg/artifact"
	"github.com/systemstart/pagesmith/pkg/conflicts"
)

// Routes maps URL paths to dist paths.
type Routes map[string]string

// BuildRoutes walks outDir and routes every file through
// artifact.URLForDistPath. When two files claim one URL the first in sorted
// order wins; the conflict detector keeps that from happening in a checked
// build.
func BuildRoutes(outDir string) (Routes, error) {
	files, err := conflicts.ListFiles(outDir, nil)
	if err != nil {
		return nil, err
	}

	routes := make(Routes, len(files))
	for _, dist := range files {
		url := artifact.URLForDistPath(dist)
		if prev, exists := routes[url]; exists {
			slog.Warn("url served by more than one file", "url", url, "kept", prev, "dropped", dist)
			continue
		}
		routes[url] = dist
	}
	return routes, nil
}

// Lookup returns the dist path served at the request path p.
func (r Routes) Lookup(p string) (string, bool) {
	dist, ok := r[NormalizeURL(p)]
	return dist, ok
}

// NormalizeURL cleans a request path and drops any trailing slash, so
// "/about/" and "/about" name the same route.
func NormalizeURL(p string) string {
	return path.Clean("/" + strings.TrimPrefix(p, "/"))
}
