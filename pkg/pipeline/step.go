package pipeline

import "context"

// Step is a named unit of work executed against the shared build state.
type Step interface {
	// Name is a stable identifier, unique within one pipeline.
	Name() string
	Description() string
	Execute(ctx context.Context, st *State) error
}

// Gated is implemented by steps that may decide not to run. Steps that do
// not implement it always run.
type Gated interface {
	ShouldRun(ctx context.Context, st *State) bool
}

func shouldRun(ctx context.Context, s Step, st *State) bool {
	if g, ok := s.(Gated); ok {
		return g.ShouldRun(ctx, st)
	}
	return true
}

// Func adapts plain functions to the Step interface.
type Func struct {
	StepName string
	Desc     string
	Gate     func(ctx context.Context, st *State) bool
	Fn       func(ctx context.Context, st *State) error
}

func (f *Func) Name() string        { return f.StepName }
func (f *Func) Description() string { return f.Desc }

func (f *Func) ShouldRun(ctx context.Context, st *State) bool {
	if f.Gate == nil {
		return true
	}
	return f.Gate(ctx, st)
}

func (f *Func) Execute(ctx context.Context, st *State) error {
	if f.Fn == nil {
		return nil
	}
	return f.Fn(ctx, st)
}

// Item is one entry of a pipeline: either a single step or a group of steps
// that run concurrently.
type Item struct {
	steps []Step
	group bool
}

// Single wraps one step.
func Single(s Step) Item {
	return Item{steps: []Step{s}}
}

// Group declares steps that start together and are awaited together. Members
// must write disjoint fields of State.Outputs.
func Group(steps ...Step) Item {
	return Item{steps: steps, group: true}
}

// Name is the name the item is reported under: the step's name, or for a
// group the name of its first declared member.
func (it Item) Name() string {
	if len(it.steps) == 0 {
		return ""
	}
	return it.steps[0].Name()
}

// Steps returns the item's steps in declaration order.
func (it Item) Steps() []Step { return it.steps }

// IsGroup reports whether the item was declared with Group.
func (it Item) IsGroup() bool { return it.group }
