// Package metrics records build and step durations and outcomes.
//
// Components receive a Recorder; NoopRecorder is used when metrics are not
// configured and PrometheusRecorder when a registry is available.
package metrics

import "time"

// ResultLabel enumerates step result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
	ResultSkipped ResultLabel = "skipped"
)

// BuildOutcome is the final status of a pipeline run.
type BuildOutcome string

const (
	OutcomeSucceeded BuildOutcome = "succeeded"
	OutcomeFailed    BuildOutcome = "failed"
)

// Recorder defines the observability hooks used by the pipeline.
// Implementations must be safe for concurrent use: members of a step group
// report from their own goroutines.
type Recorder interface {
	ObserveStepDuration(step string, d time.Duration)
	IncStepResult(step string, result ResultLabel)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcome)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStepDuration(string, time.Duration) {}
func (NoopRecorder) IncStepResult(string, ResultLabel)         {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)        {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)              {}
