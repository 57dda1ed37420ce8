package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jonesrussell/searchkit/search"
)

// Prometheus is a telemetry client exposing session events, pipeline
// failures, and pipeline durations as Prometheus metrics.
type Prometheus struct {
	events  *prometheus.CounterVec
	errors  *prometheus.CounterVec
	timings *prometheus.HistogramVec
}

// NewPrometheus registers the searchkit metrics on the given registerer
// (use prometheus.DefaultRegisterer for the process default).
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	factory := promauto.With(reg)
	return &Prometheus{
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "searchkit",
			Name:      "events_total",
			Help:      "Session events by kind and category.",
		}, []string{"kind", "category"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "searchkit",
			Name:      "pipeline_errors_total",
			Help:      "Pipeline failures by source.",
		}, []string{"source"}),
		timings: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "searchkit",
			Name:      "pipeline_duration_seconds",
			Help:      "Pipeline durations by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

// TrackEvent counts an event by kind and category.
func (p *Prometheus) TrackEvent(ev search.Event, category string, _ map[string]any) {
	p.events.WithLabelValues(string(ev.Kind), category).Inc()
}

// TrackTiming observes a pipeline duration.
func (p *Prometheus) TrackTiming(name string, d time.Duration, _ map[string]any) {
	p.timings.WithLabelValues(name).Observe(d.Seconds())
}

// TrackError counts a pipeline failure by source.
func (p *Prometheus) TrackError(_ error, source string, _ map[string]any) {
	p.errors.WithLabelValues(source).Inc()
}
