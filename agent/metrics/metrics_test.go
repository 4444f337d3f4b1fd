package metrics_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/metrics"
)

func TestRecordersIncrementCounters(t *testing.T) {
	before := testutil.ToFloat64(metrics.CartMutationsTotal.WithLabelValues("add"))
	metrics.RecordCartMutation("add")
	if got := testutil.ToFloat64(metrics.CartMutationsTotal.WithLabelValues("add")); got != before+1 {
		t.Fatalf("cart add counter = %v, want %v", got, before+1)
	}

	beforeErr := testutil.ToFloat64(metrics.ToolCallsTotal.WithLabelValues("cart.add", "error"))
	metrics.RecordToolCall("cart.add", false)
	if got := testutil.ToFloat64(metrics.ToolCallsTotal.WithLabelValues("cart.add", "error")); got != beforeErr+1 {
		t.Fatalf("tool error counter = %v, want %v", got, beforeErr+1)
	}
}

func TestPromhttpExposesTurnMetrics(t *testing.T) {
	metrics.RecordTurn("continue", time.Now())

	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"pastel_turns_total", "pastel_turn_duration_seconds"} {
		if !strings.Contains(string(body), name) {
			t.Fatalf("metrics output missing %s", name)
		}
	}
}
