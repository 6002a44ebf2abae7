package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyStepName = errors.New("step name is empty")
	ErrDuplicateStep = errors.New("duplicate step name")
	ErrEmptyGroup    = errors.New("step group has no members")
)

// StepError is the failure of one pipeline item. For a group, Step is the
// name of the first declared member whichever member failed; the members
// that actually failed are listed in Members.
type StepError struct {
	Step    string
	Group   bool
	Members []string
	Err     error
}

func (e *StepError) Error() string {
	if e.Group {
		return fmt.Sprintf("step group %q failed (failing members: %s): %v", e.Step, strings.Join(e.Members, ", "), e.Err)
	}
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Formatter turns a step failure into the error handed back to the caller.
type Formatter func(err *StepError) error

// FormattedError is the error produced by DefaultFormatter. Its message is
// multi-line and meant to be printed as is.
type FormattedError struct {
	Step    string
	Message string
	cause   *StepError
}

func (e *FormattedError) Error() string { return e.Message }
func (e *FormattedError) Unwrap() error { return e.cause }

// DefaultFormatter renders the failing step on the first line and the
// underlying error, one line per message line, indented below it.
func DefaultFormatter(err *StepError) error {
	var b strings.Builder
	if err.Group {
		fmt.Fprintf(&b, "build failed in step group %q", err.Step)
		if len(err.Members) > 0 {
			fmt.Fprintf(&b, " (failing members: %s)", strings.Join(err.Members, ", "))
		}
	} else {
		fmt.Fprintf(&b, "build failed in step %q", err.Step)
	}
	b.WriteString(":")
	for line := range strings.SplitSeq(strings.TrimRight(err.Err.Error(), "\n"), "\n") {
		b.WriteString("\n  ")
		b.WriteString(line)
	}
	return &FormattedError{Step: err.Step, Message: b.String(), cause: err}
}

// FailedStep returns the step a pipeline error is attributed to, or "" if
// err did not come from a step.
func FailedStep(err error) string {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step
	}
	return ""
}
