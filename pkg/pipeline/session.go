package pipeline

import (
	"context"

	"github.com/google/uuid"
)

// ResetFunc clears build caches owned by a session. It must be idempotent.
type ResetFunc func(ctx context.Context) error

// Session identifies one build and owns the hooks for caches that belong to
// it. Runs that use different sessions share nothing.
type Session struct {
	ID      string
	reset   ResetFunc
	release func() error
}

// NewSession creates a session with a random id. reset may be nil.
func NewSession(reset ResetFunc) *Session {
	return &Session{ID: uuid.NewString(), reset: reset}
}

// WithRelease sets a hook that frees what the session owns once its run is
// over. It returns s.
func (s *Session) WithRelease(fn func() error) *Session {
	s.release = fn
	return s
}

// Reset invokes the session's reset hook, if any.
func (s *Session) Reset(ctx context.Context) error {
	if s == nil || s.reset == nil {
		return nil
	}
	return s.reset(ctx)
}

// Release invokes the session's release hook, if any.
func (s *Session) Release() error {
	if s == nil || s.release == nil {
		return nil
	}
	return s.release()
}
