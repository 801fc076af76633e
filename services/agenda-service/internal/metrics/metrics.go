package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AgendaMetrics exposes counters/histograms for the agenda scheduler.
type AgendaMetrics struct {
	proposals      *prometheus.CounterVec
	commits        *prometheus.CounterVec
	notifications  *prometheus.CounterVec
	commitDuration prometheus.Histogram
}

func NewAgendaMetrics(reg prometheus.Registerer) *AgendaMetrics {
	m := &AgendaMetrics{
		proposals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apptdesk",
			Subsystem: "agenda",
			Name:      "proposals_total",
			Help:      "Drag gestures that produced a staged transition",
		}, []string{"kind"}),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apptdesk",
			Subsystem: "agenda",
			Name:      "commits_total",
			Help:      "Confirmed transitions by outcome",
		}, []string{"result"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apptdesk",
			Subsystem: "agenda",
			Name:      "notifications_total",
			Help:      "Reschedule notices by outcome",
		}, []string{"result"}),
		commitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "apptdesk",
			Subsystem: "agenda",
			Name:      "commit_duration_seconds",
			Help:      "Time from confirm to reload completion",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.proposals, m.commits, m.notifications, m.commitDuration)
	return m
}

func (m *AgendaMetrics) ObserveProposal(kind string) {
	if m == nil {
		return
	}
	m.proposals.WithLabelValues(kind).Inc()
}

func (m *AgendaMetrics) ObserveCommit(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.commits.WithLabelValues(result).Inc()
	m.commitDuration.Observe(d.Seconds())
}

func (m *AgendaMetrics) ObserveNotification(result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result).Inc()
}
