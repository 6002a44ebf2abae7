// Package conflicts predicts, before anything is compiled, whether two
// sources would be written to the same output file or served at the same
// URL.
package conflicts

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/systemstart/pagesmith/pkg/artifact"
)

// Contributor is one source that produces a given dist path.
type Contributor struct {
	SourcePath string
	Tree       artifact.TreeKind
	Kind       artifact.Kind
}

func (c Contributor) String() string {
	root := "pages"
	switch c.Tree {
	case artifact.PublicStatic:
		root = "public"
	case artifact.Generated:
		root = "generated"
	}
	return fmt.Sprintf("%s/%s (%s)", root, c.SourcePath, c.Kind)
}

// PathConflict is a dist path produced by more than one source.
type PathConflict struct {
	DistPath string
	Sources  []Contributor
}

// URLConflict is a URL served by more than one dist path.
type URLConflict struct {
	URLPath   string
	DistPaths []string
}

// Report lists every conflict found, sorted by dist path and URL path.
type Report struct {
	PathConflicts []PathConflict
	URLConflicts  []URLConflict
}

// Empty reports whether no conflicts were found.
func (r Report) Empty() bool {
	return len(r.PathConflicts) == 0 && len(r.URLConflicts) == 0
}

// Len is the total number of conflicts.
func (r Report) Len() int {
	return len(r.PathConflicts) + len(r.URLConflicts)
}

// Detect walks the trees and checks their artifacts.
func Detect(t Trees) (Report, error) {
	arts, err := t.Artifacts()
	if err != nil {
		return Report{}, err
	}
	return Check(arts), nil
}

// Check runs both passes over a set of artifacts. The first pass groups
// artifacts by dist path; the second maps every distinct dist path to the
// URL it is served at and groups by URL.
func Check(arts []artifact.Artifact) Report {
	byDist := make(map[string][]Contributor)
	for _, a := range arts {
		byDist[a.DistPath] = append(byDist[a.DistPath], Contributor{
			SourcePath: a.Source.RelPath,
			Tree:       a.Source.Tree,
			Kind:       a.Kind,
		})
	}

	var report Report
	byURL := make(map[string][]string)
	for dist, sources := range byDist {
		if len(sources) > 1 {
			slices.SortFunc(sources, compareContributors)
			report.PathConflicts = append(report.PathConflicts, PathConflict{DistPath: dist, Sources: sources})
		}
		url := artifact.URLForDistPath(dist)
		byURL[url] = append(byURL[url], dist)
	}

	for url, dists := range byURL {
		if len(dists) > 1 {
			slices.Sort(dists)
			report.URLConflicts = append(report.URLConflicts, URLConflict{URLPath: url, DistPaths: dists})
		}
	}

	slices.SortFunc(report.PathConflicts, func(a, b PathConflict) int { return cmp.Compare(a.DistPath, b.DistPath) })
	slices.SortFunc(report.URLConflicts, func(a, b URLConflict) int { return cmp.Compare(a.URLPath, b.URLPath) })
	return report
}

func compareContributors(a, b Contributor) int {
	return cmp.Or(
		cmp.Compare(a.Tree, b.Tree),
		cmp.Compare(a.SourcePath, b.SourcePath),
		cmp.Compare(a.Kind, b.Kind),
	)
}
