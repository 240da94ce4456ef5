package obs

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DomainMetrics counts storefront business events. A nil *DomainMetrics is
// valid and records nothing.
type DomainMetrics struct {
	OrdersCreated      prometheus.Counter
	OrderNumberRetries prometheus.Counter
	PriceMismatch      *prometheus.CounterVec
	QuotesSubmitted    prometheus.Counter
	StatusTransitions  *prometheus.CounterVec
	EmailsSent         *prometheus.CounterVec
}

// NewDomainMetrics registers the domain collectors on reg.
func NewDomainMetrics(namespace string, reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &DomainMetrics{
		OrdersCreated: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders persisted by checkout.",
		})),
		OrderNumberRetries: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_number_retries_total",
			Help:      "Order or quote reference collisions that forced a regenerate.",
		})),
		PriceMismatch: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_price_mismatch_total",
			Help:      "Checkout submissions whose client figures disagreed with the server recomputation.",
		}, []string{"field"})),
		QuotesSubmitted: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_submitted_total",
			Help:      "Quote requests received.",
		})),
		StatusTransitions: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Accepted order and quote status transitions.",
		}, []string{"entity", "to"})),
		EmailsSent: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_sent_total",
			Help:      "Transactional email delivery outcomes.",
		}, []string{"tag", "status"})),
	}
}

// OrderCreated increments the order counter.
func (m *DomainMetrics) OrderCreated() {
	if m != nil {
		m.OrdersCreated.Inc()
	}
}

// NumberRetry records a reference collision.
func (m *DomainMetrics) NumberRetry() {
	if m != nil {
		m.OrderNumberRetries.Inc()
	}
}

// Mismatch records a client figure that was discarded.
func (m *DomainMetrics) Mismatch(field string) {
	if m != nil {
		m.PriceMismatch.WithLabelValues(field).Inc()
	}
}

// QuoteSubmitted increments the quote counter.
func (m *DomainMetrics) QuoteSubmitted() {
	if m != nil {
		m.QuotesSubmitted.Inc()
	}
}

// Transition records an accepted status change.
func (m *DomainMetrics) Transition(entity, to string) {
	if m != nil {
		m.StatusTransitions.WithLabelValues(entity, to).Inc()
	}
}

// EmailResult records a delivery outcome.
func (m *DomainMetrics) EmailResult(tag string, err error) {
	if m == nil {
		return
	}
	status := "sent"
	if err != nil {
		status = "failed"
	}
	if tag == "" {
		tag = "other"
	}
	m.EmailsSent.WithLabelValues(tag, status).Inc()
}
