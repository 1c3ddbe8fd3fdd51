package assembler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts assemblies by outcome: complete, failed, cancelled or timeout.
// A nil *Metrics records nothing.
type Metrics struct {
	assemblies *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	bytes      *prometheus.CounterVec
}

// NewMetrics creates and registers the assembler metrics.
func NewMetrics(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		assemblies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_assemblies_total",
				Help: "Total number of resolved message assemblies",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_assembly_duration_seconds",
				Help:    "Time from the creation of an assembler to its resolution",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"outcome"},
		),
		bytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_assembled_bytes_total",
				Help: "Bytes consumed by resolved assemblies",
			},
			[]string{"outcome"},
		),
	}

	for _, c := range []prometheus.Collector{m.assemblies, m.duration, m.bytes} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) observe(outcome string, d time.Duration, size int) {
	if m == nil {
		return
	}
	m.assemblies.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(d.Seconds())
	m.bytes.WithLabelValues(outcome).Add(float64(size))
}
