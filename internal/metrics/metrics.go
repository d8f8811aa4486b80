// Package metrics exposes frame-level counters for hosts that scrape
// prometheus. Recording is cheap and safe when nothing is scraping.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	framesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pixelcore",
		Name:      "frames_total",
		Help:      "Frames rendered.",
	})

	// layerFaults counts render-unit faults. Labels: behavior
	layerFaults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pixelcore",
		Name:      "layer_faults_total",
		Help:      "Layers replaced with black because their behavior failed.",
	}, []string{"behavior"})

	ruleErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pixelcore",
		Name:      "rule_errors_total",
		Help:      "Rule evaluations skipped because of an error.",
	})

	simSteps = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pixelcore",
		Name:      "sim_steps_total",
		Help:      "Fixed simulation steps executed.",
	})

	frameFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pixelcore",
		Name:      "frame_failures_total",
		Help:      "Frames that failed as a whole and were returned black.",
	})

	stepsPerFrame = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pixelcore",
		Name:      "steps_per_frame",
		Help:      "Fixed steps run per rendered frame.",
		Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 30},
	})

	frameSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pixelcore",
		Name:      "frame_duration_seconds",
		Help:      "Wall time spent rendering one frame.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
	})
)

// Frame records one completed frame.
func Frame(steps int, seconds float64) {
	framesTotal.Inc()
	simSteps.Add(float64(steps))
	stepsPerFrame.Observe(float64(steps))
	frameSeconds.Observe(seconds)
}

// LayerFault records a faulted layer. Label values prometheus rejects are
// dropped rather than panicking mid-frame.
func LayerFault(behavior string) {
	c, err := layerFaults.GetMetricWithLabelValues(behavior)
	if err != nil {
		return
	}
	c.Inc()
}

// RuleErrors records n skipped rule evaluations.
func RuleErrors(n int) {
	if n > 0 {
		ruleErrors.Add(float64(n))
	}
}

// FrameFailure records a frame lost to a recovered panic.
func FrameFailure() {
	frameFailures.Inc()
}
