package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records outcomes of the order fulfillment engine.
type OrderMetrics struct {
	created           prometheus.Counter
	refunded          prometheus.Counter
	insufficientStock prometheus.Counter
	webhooks          *prometheus.CounterVec
	creationDuration  prometheus.Histogram
}

// NewOrderMetrics registers the order engine metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created successfully.",
	})
	refunded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_refunded_total",
		Help: "Orders refunded.",
	})
	insufficientStock := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_insufficient_stock_total",
		Help: "Order attempts rejected for insufficient stock.",
	})
	webhooks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhooks_total",
		Help: "Payment webhook deliveries by outcome.",
	}, []string{"outcome"})
	creationDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_creation_seconds",
		Help:    "Duration of order creation transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(created, refunded, insufficientStock, webhooks, creationDuration)
	return &OrderMetrics{
		created:           created,
		refunded:          refunded,
		insufficientStock: insufficientStock,
		webhooks:          webhooks,
		creationDuration:  creationDuration,
	}
}

// IncCreated increments the created-orders counter.
func (m *OrderMetrics) IncCreated() {
	if m == nil || m.created == nil {
		return
	}
	m.created.Inc()
}

// IncRefunded increments the refunded-orders counter.
func (m *OrderMetrics) IncRefunded() {
	if m == nil || m.refunded == nil {
		return
	}
	m.refunded.Inc()
}

// IncInsufficientStock increments the rejected-for-stock counter.
func (m *OrderMetrics) IncInsufficientStock() {
	if m == nil || m.insufficientStock == nil {
		return
	}
	m.insufficientStock.Inc()
}

// IncWebhook counts one webhook delivery with the given outcome.
func (m *OrderMetrics) IncWebhook(outcome string) {
	if m == nil || m.webhooks == nil {
		return
	}
	m.webhooks.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveCreationDuration records the duration of one creation transaction.
func (m *OrderMetrics) ObserveCreationDuration(duration time.Duration) {
	if m == nil || m.creationDuration == nil {
		return
	}
	m.creationDuration.Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return "unknown"
	}
	return strings.ReplaceAll(trimmed, " ", "_")
}
