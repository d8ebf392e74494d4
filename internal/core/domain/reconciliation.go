package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconcileOptions tunes a reconciliation run.
type ReconcileOptions struct {
	// DryRun computes and reports drift without writing balances.
	DryRun bool
}

// PairReconciliation is the outcome of recomputing one pair's balance from its log.
type PairReconciliation struct {
	Pair                Pair            `json:"pair"`
	Previous            *Balance        `json:"previous,omitempty"`
	Reconciled          *Balance        `json:"reconciled,omitempty"`
	TransactionCount    int             `json:"transactionCount"`
	SkippedTransactions []string        `json:"skippedTransactions,omitempty"`
	Drifted             bool            `json:"drifted"`
	Drift               decimal.Decimal `json:"drift"` // reconciled net minus stored net
	Created             bool            `json:"created"`
	Written             bool            `json:"written"`
}

// PairFailure records a pair that could not be reconciled.
type PairFailure struct {
	Pair  Pair   `json:"pair"`
	Error string `json:"error"`
}

// ReconciliationReport summarizes a full reconciliation run.
type ReconciliationReport struct {
	StartedAt           time.Time            `json:"startedAt"`
	FinishedAt          time.Time            `json:"finishedAt"`
	DryRun              bool                 `json:"dryRun"`
	PairsScanned        int                  `json:"pairsScanned"`
	BalancesWritten     int                  `json:"balancesWritten"`
	BalancesCreated     int                  `json:"balancesCreated"`
	SkippedTransactions int                  `json:"skippedTransactions"`
	Drifted             []PairReconciliation `json:"drifted"`
	Failed              []PairFailure        `json:"failed"`
}

// Add folds one pair outcome into the report totals.
func (r *ReconciliationReport) Add(res PairReconciliation) {
	r.PairsScanned++
	r.SkippedTransactions += len(res.SkippedTransactions)
	if res.Written {
		r.BalancesWritten++
	}
	if res.Created {
		r.BalancesCreated++
	}
	if res.Drifted {
		r.Drifted = append(r.Drifted, res)
	}
}

// Fail records a pair that errored.
func (r *ReconciliationReport) Fail(pair Pair, err error) {
	r.PairsScanned++
	r.Failed = append(r.Failed, PairFailure{Pair: pair, Error: err.Error()})
}

// RecordResult is the outcome of an incremental update.
type RecordResult struct {
	Transaction Transaction `json:"transaction"`
	Balance     Balance     `json:"balance"`
	// Applied is false when the transaction id had already been folded.
	Applied bool `json:"applied"`
}
