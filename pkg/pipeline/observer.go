package pipeline

import (
	"time"

	"github.com/systemstart/pagesmith/pkg/metrics"
)

// Observer receives callbacks around step execution. Callbacks for members
// of a group arrive from concurrent goroutines.
type Observer interface {
	OnStepStart(step string)
	OnStepComplete(step string, d time.Duration, err error)
	OnStepSkipped(step string)
	OnPipelineComplete(st *State)
}

// NoopObserver ignores every callback.
type NoopObserver struct{}

func (NoopObserver) OnStepStart(string)                           {}
func (NoopObserver) OnStepComplete(string, time.Duration, error) {}
func (NoopObserver) OnStepSkipped(string)                         {}
func (NoopObserver) OnPipelineComplete(*State)                    {}

// RecorderObserver forwards step and pipeline outcomes to a metrics.Recorder.
type RecorderObserver struct {
	Recorder metrics.Recorder
}

func (o RecorderObserver) OnStepStart(string) {}

func (o RecorderObserver) OnStepComplete(step string, d time.Duration, err error) {
	if err != nil {
		o.Recorder.IncStepResult(step, metrics.ResultFailed)
		return
	}
	o.Recorder.ObserveStepDuration(step, d)
	o.Recorder.IncStepResult(step, metrics.ResultSuccess)
}

func (o RecorderObserver) OnStepSkipped(step string) {
	o.Recorder.IncStepResult(step, metrics.ResultSkipped)
}

func (o RecorderObserver) OnPipelineComplete(st *State) {
	o.Recorder.ObserveBuildDuration(st.Finished.Sub(st.Started))
	if st.Status == StatusSucceeded {
		o.Recorder.IncBuildOutcome(metrics.OutcomeSucceeded)
	} else {
		o.Recorder.IncBuildOutcome(metrics.OutcomeFailed)
	}
}
