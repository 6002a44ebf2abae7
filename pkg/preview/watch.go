package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceDelay is how long the source trees must stay quiet before a
// rebuild starts.
const DebounceDelay = 300 * time.Millisecond

// ListenAndServe builds the site, serves it on addr and rebuilds whenever
// the pages or public tree changes. It returns when ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if err := s.Rebuild(ctx); err != nil {
		slog.Error("initial build failed", "error", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			slog.Warn("failed to remove preview builds", "error", err)
		}
	}()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	for _, dir := range []string{s.site.PagesDir, s.site.PublicDir} {
		addDirsRecursive(watcher, dir)
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	slog.Info("preview server listening", "url", "http://"+addr)

	rebuildReq, trigger := newDebouncer(DebounceDelay)
	go s.rebuildWorker(ctx, rebuildReq)

	for {
		select {
		case <-ctx.Done():
			slog.Info("shutting down preview server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		case err := <-serveErr:
			return fmt.Errorf("preview server: %w", err)
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			handleFileEvent(watcher, ev, trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)
		}
	}
}

// rebuildWorker runs one rebuild per request. Requests arriving during a
// build coalesce in the channel buffer into a single follow-up build.
func (s *Server) rebuildWorker(ctx context.Context, rebuildReq <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-rebuildReq:
			slog.Info("change detected, rebuilding site")
			if err := s.Rebuild(ctx); err != nil {
				slog.Warn("rebuild failed, serving previous build", "error", err)
			}
		}
	}
}

// newDebouncer returns a channel that receives one value after trigger has
// not been called for delay.
func newDebouncer(delay time.Duration) (<-chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	rebuildReq := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}
	return rebuildReq, trigger
}

func handleFileEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if shouldIgnoreEvent(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			addDirsRecursive(watcher, ev.Name)
		}
	}
	slog.Debug("file change detected", "path", ev.Name, "op", ev.Op.String())
	trigger()
}

func addDirsRecursive(w *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				slog.Warn("watch add failed", "dir", path, "error", err)
			}
		}
		return nil
	})
}

// shouldIgnoreEvent reports whether path is an editor or OS scratch file.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db":
		return true
	}
	return false
}
