// Package metrics exposes Prometheus counters for the sales dialogue service.
// Labels never carry session ids.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TurnsTotal counts handled turns by transition (continue/finalize/error).
	TurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pastel_turns_total",
		Help: "Total number of dialogue turns, by transition.",
	}, []string{"transition"})

	// TurnDuration observes the wall time of a turn, lock wait included.
	TurnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pastel_turn_duration_seconds",
		Help:    "Duration of dialogue turns.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	// GuardAsksTotal counts turns that ended on a guard prompt.
	GuardAsksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pastel_guard_asks_total",
		Help: "Total number of turns short-circuited by a guard, by guard.",
	}, []string{"guard"})

	OracleFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pastel_oracle_failures_total",
		Help: "Total number of failed or unparseable oracle calls, by call.",
	}, []string{"call"})

	// CatalogLookupsTotal counts resolver outcomes (exact/fuzzy/not_found/error).
	CatalogLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pastel_catalog_lookups_total",
		Help: "Total number of catalog resolutions, by result.",
	}, []string{"result"})

	CartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pastel_cart_mutations_total",
		Help: "Total number of cart mutations, by operation.",
	}, []string{"op"})

	ToolCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pastel_tool_calls_total",
		Help: "Total number of agent tool calls, by tool and status.",
	}, []string{"tool", "status"})

	OrdersFinalizedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pastel_orders_finalized_total",
		Help: "Total number of orders confirmed by customers.",
	})
)

func RecordTurn(transition string, started time.Time) {
	TurnsTotal.WithLabelValues(transition).Inc()
	TurnDuration.Observe(time.Since(started).Seconds())
}

func RecordGuardAsk(guard string) {
	GuardAsksTotal.WithLabelValues(guard).Inc()
}

func RecordOracleFailure(call string) {
	OracleFailuresTotal.WithLabelValues(call).Inc()
}

func RecordCatalogLookup(result string) {
	CatalogLookupsTotal.WithLabelValues(result).Inc()
}

func RecordCartMutation(op string) {
	CartMutationsTotal.WithLabelValues(op).Inc()
}

func RecordToolCall(tool string, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	ToolCallsTotal.WithLabelValues(tool, status).Inc()
}

func RecordOrderFinalized() {
	OrdersFinalizedTotal.Inc()
}
