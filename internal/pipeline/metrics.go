package pipeline

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records stage outcomes. Each instance owns its registry so
// several runners never collide.
type Metrics struct {
	registry      *prometheus.Registry
	stageTotal    *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
}

// NewMetrics creates stage metrics in a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stageTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mreks",
				Subsystem: "pipeline",
				Name:      "stage_total",
				Help:      "Total number of pipeline stages by result",
			},
			[]string{"stage", "result"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "mreks",
				Subsystem: "pipeline",
				Name:      "stage_duration_seconds",
				Help:      "Duration of pipeline stages in seconds",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~34min
			},
			[]string{"stage"},
		),
	}
	m.registry.MustRegister(m.stageTotal, m.stageDuration)
	return m
}

func (m *Metrics) record(r StageResult) {
	if m == nil {
		return
	}
	m.stageTotal.WithLabelValues(r.Stage.String(), string(r.Status)).Inc()
	if d := r.Duration(); d > 0 {
		m.stageDuration.WithLabelValues(r.Stage.String()).Observe(d.Seconds())
	}
}

// WriteTextfile writes the metrics in the text exposition format, for
// collection by a node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

