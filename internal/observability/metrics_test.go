package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/x", "GET", 200, time.Millisecond)
	m.RecordAdvance(AdvanceInvalid)
	m.RecordNotification("onboarding_started", "ok")
	if m.Registry() != nil {
		t.Fatal("nil metrics should have no registry")
	}
}

func TestRecordAdvanceByOutcome(t *testing.T) {
	m := NewMetrics()
	m.RecordAdvance(AdvanceAdvanced)
	m.RecordAdvance(AdvanceAdvanced)
	m.RecordAdvance(AdvanceInvalid)

	if got := testutil.ToFloat64(m.advances.WithLabelValues(AdvanceAdvanced)); got != 2 {
		t.Fatalf("advanced = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.advances.WithLabelValues(AdvanceInvalid)); got != 1 {
		t.Fatalf("invalid = %v, want 1", got)
	}
}
