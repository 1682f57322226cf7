package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the analysis pipeline.
type Metrics struct {
	LinesClassified   *prometheus.CounterVec
	SegmentsScheduled *prometheus.CounterVec
	RunsTotal         *prometheus.CounterVec
	RunSeconds        *prometheus.HistogramVec
	ScheduledSeconds  prometheus.Counter
}

func Default() *Metrics {
	return New(prometheus.DefaultRegisterer)
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LinesClassified: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dubplan_lines_classified_total",
				Help: "Script records produced, by speaker detection method",
			},
			[]string{"method"},
		),
		SegmentsScheduled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dubplan_segments_scheduled_total",
				Help: "Segments passed through the scheduler, by outcome",
			},
			[]string{"status"},
		),
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dubplan_runs_total",
				Help: "Pipeline runs, by kind and final status",
			},
			[]string{"kind", "status"},
		),
		RunSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dubplan_run_seconds",
				Help:    "Wall time of pipeline runs",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"kind"},
		),
		ScheduledSeconds: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dubplan_scheduled_recording_seconds_total",
				Help: "Recording time placed into studio slots",
			},
		),
	}
}
