// Package pipeline runs an ordered list of build steps against one shared
// State. Items run strictly in order; the members of a group run
// concurrently and are all awaited before the next item starts. The first
// failure stops the run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/systemstart/pagesmith/pkg/api"
)

// Runner executes a fixed list of items.
type Runner struct {
	Items     []Item
	Formatter Formatter
	Observer  Observer
	Logger    *slog.Logger
}

// New creates a Runner with the default formatter and no observer.
func New(items ...Item) *Runner {
	return &Runner{Items: items}
}

// Validate checks that every step has a non-empty name, that names are
// unique across the whole list and that no group is empty.
func Validate(items []Item) error {
	seen := make(map[string]int)
	for i, it := range items {
		if len(it.steps) == 0 {
			return fmt.Errorf("item %d: %w", i, ErrEmptyGroup)
		}
		for _, s := range it.steps {
			name := s.Name()
			if name == "" {
				return fmt.Errorf("item %d: %w", i, ErrEmptyStepName)
			}
			if prev, exists := seen[name]; exists {
				return fmt.Errorf("item %d: %w %q (first defined at item %d)", i, ErrDuplicateStep, name, prev)
			}
			seen[name] = i
		}
	}
	return nil
}

// Run executes the items for one build of site. The returned State is never
// nil; on failure it records the error and the step it is attributed to,
// and the returned error is the formatter's rendering of that failure. The
// session is released when Run returns, unless the item list is invalid.
func (r *Runner) Run(ctx context.Context, site api.Site, session *Session) (*State, error) {
	if session == nil {
		session = NewSession(nil)
	}
	st := newState(site, session)

	if err := Validate(r.Items); err != nil {
		st.Err = err
		return st, fmt.Errorf("invalid pipeline: %w", err)
	}

	logger := r.logger().With("session", session.ID)
	st.Status = StatusRunning
	st.Started = time.Now()

	defer func() {
		if err := session.Release(); err != nil {
			logger.Warn("failed to release build session", "error", err)
		}
	}()

	if err := session.Reset(ctx); err != nil {
		st.Status = StatusFailed
		st.Err = fmt.Errorf("resetting build session: %w", err)
		st.Finished = time.Now()
		r.observer().OnPipelineComplete(st)
		return st, st.Err
	}

	for _, it := range r.Items {
		var se *StepError
		if it.group {
			se = r.runGroup(ctx, st, it, logger)
		} else {
			se = r.runSingle(ctx, st, it.steps[0], logger)
		}
		if se != nil {
			return st, r.fail(st, se, logger)
		}
	}

	st.Status = StatusSucceeded
	st.Finished = time.Now()
	r.observer().OnPipelineComplete(st)
	logger.Info("pipeline succeeded", "duration", st.Finished.Sub(st.Started))
	return st, nil
}

func (r *Runner) runSingle(ctx context.Context, st *State, s Step, logger *slog.Logger) *StepError {
	if !shouldRun(ctx, s, st) {
		r.skip(s, logger)
		return nil
	}
	d, err := r.execute(ctx, st, s, logger)
	if err != nil {
		return &StepError{Step: s.Name(), Err: err}
	}
	st.Timings[s.Name()] = d
	return nil
}

type memberResult struct {
	duration time.Duration
	err      error
}

func (r *Runner) runGroup(ctx context.Context, st *State, it Item, logger *slog.Logger) *StepError {
	logger = logger.With("group", it.Name())

	var runnable []Step
	for _, s := range it.steps {
		if shouldRun(ctx, s, st) {
			runnable = append(runnable, s)
		} else {
			r.skip(s, logger)
		}
	}
	if len(runnable) == 0 {
		return nil
	}

	results := make([]memberResult, len(runnable))
	p := pool.New().WithErrors()
	for i, s := range runnable {
		p.Go(func() error {
			d, err := r.execute(ctx, st, s, logger)
			results[i] = memberResult{duration: d, err: err}
			return err
		})
	}
	groupErr := p.Wait()

	// Timings are written here, after every member settled, so the map is
	// only ever touched by the orchestrating goroutine.
	var failed []string
	for i, s := range runnable {
		if results[i].err != nil {
			failed = append(failed, s.Name())
			continue
		}
		st.Timings[s.Name()] = results[i].duration
	}

	if groupErr != nil {
		return &StepError{Step: it.Name(), Group: true, Members: failed, Err: groupErr}
	}
	return nil
}

func (r *Runner) execute(ctx context.Context, st *State, s Step, logger *slog.Logger) (time.Duration, error) {
	name := s.Name()
	obs := r.observer()

	logger.Info("running step", "step", name, "description", s.Description())
	obs.OnStepStart(name)

	start := time.Now()
	err := s.Execute(ctx, st)
	d := time.Since(start)

	obs.OnStepComplete(name, d, err)
	if err != nil {
		logger.Error("step failed", "step", name, "duration", d, "error", err)
		return d, err
	}
	logger.Info("step finished", "step", name, "duration", d)
	return d, nil
}

func (r *Runner) skip(s Step, logger *slog.Logger) {
	logger.Info("step skipped", "step", s.Name())
	r.observer().OnStepSkipped(s.Name())
}

func (r *Runner) fail(st *State, se *StepError, logger *slog.Logger) error {
	st.Status = StatusFailed
	st.Err = se
	st.FailedStep = se.Step
	st.Finished = time.Now()
	r.observer().OnPipelineComplete(st)
	logger.Error("pipeline failed", "step", se.Step, "error", se.Err)
	return r.formatter()(se)
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Runner) observer() Observer {
	if r.Observer != nil {
		return r.Observer
	}
	return NoopObserver{}
}

func (r *Runner) formatter() Formatter {
	if r.Formatter != nil {
		return r.Formatter
	}
	return DefaultFormatter
}
