package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for one pipeline run. Each run gets
// its own registry so repeated runs in one process never collide.
type Metrics struct {
	registry *prometheus.Registry

	ClaimsTotal      *prometheus.CounterVec
	ClaimMissesTotal *prometheus.CounterVec
	StageDuration    *prometheus.HistogramVec
	StageWorkers     *prometheus.GaugeVec
	StagesSkipped    *prometheus.CounterVec
	LinesLoaded      prometheus.Gauge
	ActivityEntries  prometheus.Counter
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		ClaimsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stagepipe_claims_total",
				Help: "Lines successfully claimed and completed, by stage",
			},
			[]string{"stage"},
		),
		ClaimMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stagepipe_claim_misses_total",
				Help: "Claim attempts that found the line ineligible or taken, by stage",
			},
			[]string{"stage"},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stagepipe_stage_duration_seconds",
				Help:    "Wall time from pool start to drain, by stage",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"stage"},
		),
		StageWorkers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stagepipe_stage_workers",
				Help: "Configured pool size, by stage",
			},
			[]string{"stage"},
		),
		StagesSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stagepipe_stages_skipped_total",
				Help: "Stages passed through because their pool size was zero",
			},
			[]string{"stage"},
		),
		LinesLoaded: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "stagepipe_lines_loaded",
				Help: "Number of lines loaded into the store",
			},
		),
		ActivityEntries: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "stagepipe_activity_entries_total",
				Help: "Activity log entries appended",
			},
		),
	}
}

// ObserveStage records one drained stage.
func (m *Metrics) ObserveStage(stage string, workers int, claimed, misses int64, elapsed time.Duration) {
	m.StageWorkers.WithLabelValues(stage).Set(float64(workers))
	m.ClaimsTotal.WithLabelValues(stage).Add(float64(claimed))
	m.ClaimMissesTotal.WithLabelValues(stage).Add(float64(misses))
	m.StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveSkip(stage string) {
	m.StageWorkers.WithLabelValues(stage).Set(0)
	m.StagesSkipped.WithLabelValues(stage).Inc()
}

// Gatherer exposes the run's registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteFile writes the registry in text exposition format.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
