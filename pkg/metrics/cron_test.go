package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCronJobMetricsRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.ObserveDuration("cancel-unpaid-orders", 250*time.Millisecond)
	m.IncSuccess("cancel-unpaid-orders")
	m.IncFailure("notification-cleanup")

	if got := testutil.ToFloat64(m.success.WithLabelValues("cancel-unpaid-orders")); got != 1 {
		t.Fatalf("expected 1 success, got %v", got)
	}
	if got := testutil.ToFloat64(m.failure.WithLabelValues("notification-cleanup")); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
}

func TestCronJobMetricsNilSafe(t *testing.T) {
	var m *CronJobMetrics
	m.ObserveDuration("anything", time.Second)
	m.IncSuccess("anything")
	m.IncFailure("anything")

	empty := NewCronJobMetrics(nil)
	empty.IncSuccess("anything")
}

func TestOrderMetricsRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetrics(reg)

	m.IncCheckout("success")
	m.IncCheckout("out_of_stock")
	m.IncTransition("paid")

	if got := testutil.ToFloat64(m.checkouts.WithLabelValues("success")); got != 1 {
		t.Fatalf("expected 1 success checkout, got %v", got)
	}
	if got := testutil.ToFloat64(m.transitions.WithLabelValues("paid")); got != 1 {
		t.Fatalf("expected 1 transition, got %v", got)
	}
}
