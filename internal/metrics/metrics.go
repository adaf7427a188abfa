package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "statcalc"

// Recorder collects solver and optimizer metrics in its own registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	solveTargets    *prometheus.CounterVec
	solveIterations prometheus.Histogram
	combinations    prometheus.Counter
	truncations     prometheus.Counter
	optimizeSeconds prometheus.Histogram
}

// NewRecorder creates a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		solveTargets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "equivalency",
			Name:      "targets_total",
			Help:      "Target stat searches by outcome.",
		}, []string{"status"}),
		solveIterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "equivalency",
			Name:      "search_iterations",
			Help:      "Binary search iterations per target stat.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
		combinations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "optimizer",
			Name:      "combinations_total",
			Help:      "Preset combinations evaluated.",
		}),
		truncations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "optimizer",
			Name:      "truncated_total",
			Help:      "Optimizations that hit the enumeration cap.",
		}),
		optimizeSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "optimizer",
			Name:      "duration_seconds",
			Help:      "Wall time of one optimization.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
	r.registry.MustRegister(
		r.solveTargets,
		r.solveIterations,
		r.combinations,
		r.truncations,
		r.optimizeSeconds,
	)
	return r
}

// Registry returns the registry holding the collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveTarget records the outcome of one target stat search.
func (r *Recorder) ObserveTarget(status string, iterations int) {
	if r == nil {
		return
	}
	r.solveTargets.WithLabelValues(status).Inc()
	r.solveIterations.Observe(float64(iterations))
}

// ObserveOptimize records one finished optimization.
func (r *Recorder) ObserveOptimize(examined int, truncated bool, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.combinations.Add(float64(examined))
	if truncated {
		r.truncations.Inc()
	}
	r.optimizeSeconds.Observe(elapsed.Seconds())
}

// WriteTextfile writes the current metrics in Prometheus text format,
// suitable for the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
