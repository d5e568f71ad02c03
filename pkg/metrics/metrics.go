package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// QuoteMetrics records quote engine outcomes.
type QuoteMetrics struct {
	quotes   *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewQuoteMetrics registers the quote metrics on the provided registerer.
func NewQuoteMetrics(reg prometheus.Registerer) *QuoteMetrics {
	if reg == nil {
		return &QuoteMetrics{}
	}
	quotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quotes_total",
		Help: "Quote computations by validity.",
	}, []string{"valid"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "quote_duration_seconds",
		Help:    "Duration of one quote computation in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(quotes, duration)
	return &QuoteMetrics{quotes: quotes, duration: duration}
}

// ObserveQuote counts one computed quote.
func (q *QuoteMetrics) ObserveQuote(valid bool) {
	if q == nil || q.quotes == nil {
		return
	}
	q.quotes.WithLabelValues(boolLabel(valid)).Inc()
}

// ObserveDuration records elapsed time for one quote computation.
func (q *QuoteMetrics) ObserveDuration(duration time.Duration) {
	if q == nil || q.duration == nil {
		return
	}
	q.duration.Observe(duration.Seconds())
}

// OrderMetrics records order confirmation outcomes.
type OrderMetrics struct {
	orders  *prometheus.CounterVec
	matches *prometheus.CounterVec
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_total",
		Help: "Order confirmations by outcome.",
	}, []string{"outcome"})
	matches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_price_match",
		Help: "Client total comparisons against the server quote.",
	}, []string{"matched"})
	reg.MustRegister(orders, matches)
	return &OrderMetrics{orders: orders, matches: matches}
}

// IncConfirmed counts an accepted order.
func (o *OrderMetrics) IncConfirmed() {
	if o == nil || o.orders == nil {
		return
	}
	o.orders.WithLabelValues("confirmed").Inc()
}

// IncRejected counts an order rejected by constraint violations.
func (o *OrderMetrics) IncRejected() {
	if o == nil || o.orders == nil {
		return
	}
	o.orders.WithLabelValues("rejected").Inc()
}

// ObservePriceMatch counts a client total comparison.
func (o *OrderMetrics) ObservePriceMatch(matched bool) {
	if o == nil || o.matches == nil {
		return
	}
	o.matches.WithLabelValues(boolLabel(matched)).Inc()
}

// DispatchMetrics records production dispatch outcomes.
type DispatchMetrics struct {
	dispatches *prometheus.CounterVec
}

// NewDispatchMetrics registers the dispatch metrics on the provided registerer.
func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	if reg == nil {
		return &DispatchMetrics{}
	}
	dispatches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "production_dispatch_total",
		Help: "Production dispatch attempts by status.",
	}, []string{"status"})
	reg.MustRegister(dispatches)
	return &DispatchMetrics{dispatches: dispatches}
}

// IncDispatch counts one dispatch attempt with its resulting status.
func (d *DispatchMetrics) IncDispatch(status string) {
	if d == nil || d.dispatches == nil {
		return
	}
	d.dispatches.WithLabelValues(normalizeLabel(status)).Inc()
}

func boolLabel(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func normalizeLabel(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
