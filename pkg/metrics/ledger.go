package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ledger"

// LedgerMetrics records balance engine activity. A nil *LedgerMetrics is a no-op.
type LedgerMetrics struct {
	transactions    *prometheus.CounterVec
	reconcileRuns   *prometheus.CounterVec
	reconcileTime   *prometheus.HistogramVec
	pairsReconciled *prometheus.CounterVec
	drift           prometheus.Counter
	skipped         prometheus.Counter
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	transactions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_recorded_total",
		Help:      "Transactions recorded by incremental update, by type and outcome.",
	}, []string{"type", "outcome"})
	reconcileRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconcile_runs_total",
		Help:      "Reconciliation runs, by scope and outcome.",
	}, []string{"scope", "outcome"})
	reconcileTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "reconcile_duration_seconds",
		Help:      "Duration of reconciliation runs in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"scope"})
	pairsReconciled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pairs_reconciled_total",
		Help:      "Pairs processed by reconciliation, by outcome.",
	}, []string{"outcome"})
	drift := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "balance_drift_detected_total",
		Help:      "Stored balances that disagreed with their transaction log.",
	})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invalid_transactions_skipped_total",
		Help:      "Stored transactions skipped by reconciliation because they fail validation.",
	})
	reg.MustRegister(transactions, reconcileRuns, reconcileTime, pairsReconciled, drift, skipped)
	return &LedgerMetrics{
		transactions:    transactions,
		reconcileRuns:   reconcileRuns,
		reconcileTime:   reconcileTime,
		pairsReconciled: pairsReconciled,
		drift:           drift,
		skipped:         skipped,
	}
}

// IncTransaction counts a recorded transaction. outcome is "applied", "duplicate" or "failed".
func (m *LedgerMetrics) IncTransaction(txnType, outcome string) {
	if m == nil || m.transactions == nil {
		return
	}
	m.transactions.WithLabelValues(normalizeLabel(txnType), normalizeLabel(outcome)).Inc()
}

// ObserveReconcile records one reconciliation run.
func (m *LedgerMetrics) ObserveReconcile(scope string, duration time.Duration, err error) {
	if m == nil || m.reconcileRuns == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.reconcileRuns.WithLabelValues(normalizeLabel(scope), outcome).Inc()
	m.reconcileTime.WithLabelValues(normalizeLabel(scope)).Observe(duration.Seconds())
}

// IncPairReconciled counts a pair processed by reconciliation.
func (m *LedgerMetrics) IncPairReconciled(outcome string) {
	if m == nil || m.pairsReconciled == nil {
		return
	}
	m.pairsReconciled.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncDrift counts a drifted balance.
func (m *LedgerMetrics) IncDrift() {
	if m == nil || m.drift == nil {
		return
	}
	m.drift.Inc()
}

// AddSkipped counts skipped invalid transactions.
func (m *LedgerMetrics) AddSkipped(n int) {
	if m == nil || m.skipped == nil || n <= 0 {
		return
	}
	m.skipped.Add(float64(n))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
