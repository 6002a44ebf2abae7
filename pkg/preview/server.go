// Package preview serves a built site locally and rebuilds it when its
// sources change.
//
// Every build goes into its own staging directory. Requests keep being
// answered from the last successful build until a newer one succeeds.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/systemstart/pagesmith/pkg/api"
)

// BuildFunc builds site into site.OutDir.
type BuildFunc func(ctx context.Context, site api.Site) error

type snapshot struct {
	root   string
	routes Routes
}

// Server answers requests from the most recent successful build.
type Server struct {
	site  api.Site
	build BuildFunc

	mu      sync.RWMutex
	current *snapshot
	lastErr error
}

// NewServer creates a preview server for site. Nothing is built until
// Rebuild or ListenAndServe is called.
func NewServer(site api.Site, build BuildFunc) *Server {
	return &Server{site: site, build: build}
}

// StagingDir is the parent of all preview build directories for site.
func StagingDir(site *api.Site) string {
	return filepath.Join(site.StateDir(), "preview")
}

// Rebuild runs one build into a fresh staging directory and, on success,
// starts serving it. A failed build leaves the previous one in place.
func (s *Server) Rebuild(ctx context.Context) error {
	site := s.site
	site.OutDir = filepath.Join(StagingDir(&s.site), uuid.NewString())

	err := s.build(ctx, site)
	var routes Routes
	if err == nil {
		routes, err = BuildRoutes(site.OutDir)
	}
	if err != nil {
		if rmErr := os.RemoveAll(site.OutDir); rmErr != nil {
			slog.Warn("failed to remove staging directory", "directory", site.OutDir, "error", rmErr)
		}
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	prev := s.current
	s.current = &snapshot{root: site.OutDir, routes: routes}
	s.lastErr = nil
	s.mu.Unlock()

	if prev != nil {
		if err := os.RemoveAll(prev.root); err != nil {
			slog.Warn("failed to remove previous build", "directory", prev.root, "error", err)
		}
	}
	slog.Info("preview updated", "routes", len(routes))
	return nil
}

// Status reports the error of the latest build, if it failed, and whether
// any build has succeeded.
func (s *Server) Status() (lastErr error, hasGoodBuild bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr, s.current != nil
}

func (s *Server) snapshot() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	snap := s.snapshot()
	if snap == nil {
		msg := "site has not been built yet"
		if lastErr, _ := s.Status(); lastErr != nil {
			msg = fmt.Sprintf("%s\n\n%v", msg, lastErr)
		}
		http.Error(w, msg, http.StatusServiceUnavailable)
		return
	}

	dist, ok := snap.routes.Lookup(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	f, err := os.Open(filepath.Join(snap.root, filepath.FromSlash(dist)))
	if err != nil {
		// The snapshot may have been replaced between lookup and open.
		if errors.Is(err, os.ErrNotExist) {
			http.Error(w, "build changed, retry", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.ServeContent(w, r, path.Base(dist), info.ModTime(), f)
}

// Close removes all staging directories.
func (s *Server) Close() error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	return os.RemoveAll(StagingDir(&s.site))
}
