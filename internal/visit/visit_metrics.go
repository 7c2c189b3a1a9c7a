package visit

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the pulse ingest pipeline.
type Metrics struct {
	PulsesTotal          *prometheus.CounterVec
	ClassificationsTotal *prometheus.CounterVec
	ScrollDepth          prometheus.Histogram
	SessionTime          prometheus.Histogram
}

// NewMetrics registers and returns ingest metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PulsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_pulses_total",
			Help: "Total pulses received by ingest outcome.",
		}, []string{"outcome"}),
		ClassificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_classifications_total",
			Help: "Total merged pulses by transition classification.",
		}, []string{"classification"}),
		ScrollDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "beacon_scroll_depth_percent",
			Help:    "Scroll depth of merged session records.",
			Buckets: prometheus.LinearBuckets(0, 25, 5), // 0..100
		}),
		SessionTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "beacon_session_time_seconds",
			Help:    "Time spent per session at merge time.",
			Buckets: prometheus.ExponentialBuckets(5, 2, 9), // 5s .. ~21m
		}),
	}

	reg.MustRegister(
		m.PulsesTotal,
		m.ClassificationsTotal,
		m.ScrollDepth,
		m.SessionTime,
	)
	return m
}

func (m *Metrics) incPulse(outcome string) {
	if m == nil {
		return
	}
	m.PulsesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeMerge(class Classification, s *Session) {
	if m == nil {
		return
	}
	m.ClassificationsTotal.WithLabelValues(string(class)).Inc()
	m.ScrollDepth.Observe(float64(s.ScrollDepth))
	m.SessionTime.Observe(s.TimeSpent)
}
