package app

import "github.com/prometheus/client_golang/prometheus"

// Submission outcomes recorded by Metrics.
const (
	outcomeStored   = "stored"
	outcomeFailed   = "failed"
	outcomeRejected = "rejected"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is a no-op.
type Metrics struct {
	sessionsStarted prometheus.Counter
	answers         prometheus.Counter
	submissions     *prometheus.CounterVec
	submitDuration  prometheus.Histogram
}

// NewMetrics builds and registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sleepquiz",
			Name:      "sessions_started_total",
			Help:      "Sessions that moved past the intro stage.",
		}),
		answers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sleepquiz",
			Name:      "answers_total",
			Help:      "Answers recorded across all sessions.",
		}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sleepquiz",
			Name:      "submissions_total",
			Help:      "Submit attempts by outcome.",
		}, []string{"outcome"}),
		submitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sleepquiz",
			Name:      "submit_duration_seconds",
			Help:      "Latency of response store writes.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.sessionsStarted, m.answers, m.submissions, m.submitDuration)
	}
	return m
}

func (m *Metrics) sessionStarted() {
	if m != nil {
		m.sessionsStarted.Inc()
	}
}

func (m *Metrics) answerRecorded() {
	if m != nil {
		m.answers.Inc()
	}
}

func (m *Metrics) submission(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
	if outcome != outcomeRejected {
		m.submitDuration.Observe(seconds)
	}
}
