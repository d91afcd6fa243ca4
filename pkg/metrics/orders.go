package metrics

import "github.com/prometheus/client_golang/prometheus"

// OrderMetrics tracks checkout outcomes and order status transitions.
type OrderMetrics struct {
	checkouts   *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// NewOrderMetrics registers order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bookmart_checkout_total",
		Help: "Checkout attempts by outcome.",
	}, []string{"outcome"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bookmart_order_status_transitions_total",
		Help: "Order status transitions by target status.",
	}, []string{"to"})
	reg.MustRegister(checkouts, transitions)
	return &OrderMetrics{
		checkouts:   checkouts,
		transitions: transitions,
	}
}

// IncCheckout records a checkout attempt with the given outcome label.
func (o *OrderMetrics) IncCheckout(outcome string) {
	if o == nil || o.checkouts == nil {
		return
	}
	o.checkouts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncTransition records a completed order status transition.
func (o *OrderMetrics) IncTransition(to string) {
	if o == nil || o.transitions == nil {
		return
	}
	o.transitions.WithLabelValues(normalizeLabel(to)).Inc()
}
