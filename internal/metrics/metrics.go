// Package metrics registers the engine's Prometheus instrumentation. The
// counters cost nothing when nothing scrapes them; `minte serve` exposes
// them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CommandsProcessed counts executed commands by kind.
	CommandsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "minte_commands_processed_total",
		Help: "Commands executed, by command kind.",
	}, []string{"command"})

	// ReportedErrors counts lookup failures converted into error outputs.
	ReportedErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "minte_reported_errors_total",
		Help: "Lookup failures reported as output records, by command kind.",
	}, []string{"command"})

	// PaymentsSettled counts successful card and transfer payments.
	PaymentsSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "minte_payments_settled_total",
		Help: "Card payments and transfers that debited funds.",
	})

	// PaymentsRefused counts payments stopped by business rules
	// (insufficient funds, frozen card, role limits).
	PaymentsRefused = promauto.NewCounter(prometheus.CounterOpts{
		Name: "minte_payments_refused_total",
		Help: "Payments refused by business rules.",
	})

	// CashbackGranted totals cashback credited, in account currencies.
	CashbackGranted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "minte_cashback_granted_total",
		Help: "Total cashback credited to accounts.",
	})

	// SplitSettled and SplitCancelled track split-payment outcomes.
	SplitSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "minte_split_payments_settled_total",
		Help: "Split payments settled after unanimous acceptance.",
	})
	SplitCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "minte_split_payments_cancelled_total",
		Help: "Split payments cancelled by rejection or failed pre-check.",
	})
)
