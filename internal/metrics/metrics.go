package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics for the booking engine.
// A nil *Metrics is valid and records nothing, so tests can pass nil.
type Metrics struct {
	BookingsCreated    prometheus.Counter
	JobsAccepted       prometheus.Counter
	AcceptConflicts    prometheus.Counter
	IgnoredTransitions *prometheus.CounterVec
	IntentsDispatched  *prometheus.CounterVec
	DispatchFailures   *prometheus.CounterVec
	FanoutRecipients   prometheus.Histogram
}

// New registers and returns the engine metrics under the given namespace.
func New(namespace string) *Metrics {
	return &Metrics{
		BookingsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "The total number of bookings created",
		}),
		JobsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_accepted_total",
			Help:      "The total number of successful job acceptances",
		}),
		AcceptConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accept_conflicts_total",
			Help:      "The total number of acceptance attempts lost to another translator",
		}),
		IgnoredTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ignored_status_transitions_total",
			Help:      "Admin status edits outside the transition table, silently ignored",
		}, []string{"from", "to"}),
		IntentsDispatched: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_intents_dispatched_total",
			Help:      "Notification intents handed to the transport layer",
		}, []string{"channel"}),
		DispatchFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_dispatch_failures_total",
			Help:      "Notification intents the transport layer rejected",
		}, []string{"channel"}),
		FanoutRecipients: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "push_fanout_recipients",
			Help:      "Eligible translators per push fan-out",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		}),
	}
}

// MarkBookingCreated records a created booking.
func (m *Metrics) MarkBookingCreated() {
	if m == nil {
		return
	}
	m.BookingsCreated.Inc()
}

// MarkAccepted records a successful acceptance.
func (m *Metrics) MarkAccepted() {
	if m == nil {
		return
	}
	m.JobsAccepted.Inc()
}

// MarkAcceptConflict records a lost acceptance race.
func (m *Metrics) MarkAcceptConflict() {
	if m == nil {
		return
	}
	m.AcceptConflicts.Inc()
}

// MarkIgnoredTransition records an admin edit outside the transition table.
func (m *Metrics) MarkIgnoredTransition(from, to string) {
	if m == nil {
		return
	}
	m.IgnoredTransitions.WithLabelValues(from, to).Inc()
}

// MarkDispatched records an intent handed to transport.
func (m *Metrics) MarkDispatched(channel string) {
	if m == nil {
		return
	}
	m.IntentsDispatched.WithLabelValues(channel).Inc()
}

// MarkDispatchFailure records an intent the transport rejected.
func (m *Metrics) MarkDispatchFailure(channel string) {
	if m == nil {
		return
	}
	m.DispatchFailures.WithLabelValues(channel).Inc()
}

// ObserveFanout records the recipient count of one push fan-out.
func (m *Metrics) ObserveFanout(recipients int) {
	if m == nil {
		return
	}
	m.FanoutRecipients.Observe(float64(recipients))
}
