package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records the outcome of checkout submissions.
type CheckoutMetrics struct {
	duration  *prometheus.HistogramVec
	lines     *prometheus.CounterVec
	completed prometheus.Counter
	aborted   prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout invocations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	lines := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_lines_total",
		Help: "Sale lines submitted to the backend, by result.",
	}, []string{"result"})
	completed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_completed_total",
		Help: "Checkouts that confirmed every line.",
	})
	aborted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_aborted_total",
		Help: "Checkouts aborted on a failed line.",
	})
	reg.MustRegister(duration, lines, completed, aborted)
	return &CheckoutMetrics{
		duration:  duration,
		lines:     lines,
		completed: completed,
		aborted:   aborted,
	}
}

// ObserveDuration records how long an invocation ran for the given outcome.
func (c *CheckoutMetrics) ObserveDuration(outcome string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncLine counts one submitted sale line by result.
func (c *CheckoutMetrics) IncLine(result string) {
	if c == nil || c.lines == nil {
		return
	}
	c.lines.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncCompleted counts a fully confirmed checkout.
func (c *CheckoutMetrics) IncCompleted() {
	if c == nil || c.completed == nil {
		return
	}
	c.completed.Inc()
}

// IncAborted counts an aborted checkout.
func (c *CheckoutMetrics) IncAborted() {
	if c == nil || c.aborted == nil {
		return
	}
	c.aborted.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
