package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg           *prom.Registry
	stepDuration  *prom.HistogramVec
	stepResults   *prom.CounterVec
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		stepDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "pagesmith",
			Name:      "step_duration_seconds",
			Help:      "Duration of individual pipeline steps",
			Buckets:   prom.DefBuckets,
		}, []string{"step"}),
		stepResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pagesmith",
			Name:      "step_results_total",
			Help:      "Step results by outcome",
		}, []string{"step", "result"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "pagesmith",
			Name:      "build_duration_seconds",
			Help:      "Total pipeline duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pagesmith",
			Name:      "build_outcomes_total",
			Help:      "Pipeline runs by final status",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.stepDuration, pr.stepResults, pr.buildDuration, pr.buildOutcome)
	return pr
}

// Registry returns the registry the collectors are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

func (p *PrometheusRecorder) ObserveStepDuration(step string, d time.Duration) {
	if p == nil {
		return
	}
	p.stepDuration.WithLabelValues(step).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStepResult(step string, result ResultLabel) {
	if p == nil {
		return
	}
	p.stepResults.WithLabelValues(step, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcome) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

// WriteTextfile writes the current registry contents to filename in the
// Prometheus text exposition format, suitable for the node exporter's
// textfile collector.
func (p *PrometheusRecorder) WriteTextfile(filename string) error {
	if err := prom.WriteToTextfile(filename, p.reg); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
