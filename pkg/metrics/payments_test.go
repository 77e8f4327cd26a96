package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestPaymentMetricsExportCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewPaymentMetrics(reg)

	metrics.IncSessionCreated()
	metrics.IncSessionCreated()
	metrics.IncReconcile("paid_applied")
	metrics.IncReconcile("already_paid")
	metrics.IncReconcile("already_paid")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	created := findMetricFamily(mfs, "checkout_sessions_created_total")
	if created == nil {
		t.Fatalf("sessions counter not exported")
	}
	if got := created.GetMetric()[0].GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected 2 sessions created, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "payment_reconciles_total", "outcome", "paid_applied"); err != nil {
		t.Fatalf("fetch paid_applied: %v", err)
	} else if got != 1 {
		t.Fatalf("expected paid_applied=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "payment_reconciles_total", "outcome", "already_paid"); err != nil {
		t.Fatalf("fetch already_paid: %v", err)
	} else if got != 2 {
		t.Fatalf("expected already_paid=2, got %f", got)
	}
}

func TestPaymentMetricsNilSafe(t *testing.T) {
	var metrics *PaymentMetrics
	metrics.IncSessionCreated()
	metrics.IncReconcile("paid_applied")

	noop := NewPaymentMetrics(nil)
	noop.IncSessionCreated()
	noop.IncReconcile("")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
