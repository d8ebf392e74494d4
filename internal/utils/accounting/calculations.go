package accounting

import (
	"fmt"
	"time"

	"github.com/farmfeed/ledger_service/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Fold applies a single new transaction to the current balance of its pair.
// A nil current balance starts from zero. The result always satisfies
// DebitBalance == 0 and NetBalance == CreditBalance.
func Fold(current *domain.Balance, txn domain.Transaction, now time.Time) (domain.Balance, error) {
	if err := txn.Validate(); err != nil {
		return domain.Balance{}, err
	}

	pair := txn.Pair()
	base := domain.ZeroBalance(pair)
	if current != nil {
		if current.Pair() != pair {
			return domain.Balance{}, fmt.Errorf("cannot fold transaction %s for pair %s into balance of pair %s", txn.TransactionID, pair, current.Pair())
		}
		base = *current
	}

	available := base.CreditBalance.Add(txn.SignedAmount())
	return domain.Balance{
		FarmerID:      pair.FarmerID,
		DealerID:      pair.DealerID,
		CreditBalance: available,
		DebitBalance:  decimal.Zero,
		NetBalance:    available,
		LastUpdated:   now,
	}, nil
}

// BalanceAccumulator recomputes a pair's balance from its full log, one page at a time.
// The sum is order-independent, so pages may arrive in any order.
type BalanceAccumulator struct {
	pair   domain.Pair
	sum    decimal.Decimal
	latest time.Time
	count  int
}

// NewBalanceAccumulator starts an empty recomputation for pair.
func NewBalanceAccumulator(pair domain.Pair) *BalanceAccumulator {
	return &BalanceAccumulator{pair: pair, sum: decimal.Zero}
}

// Add folds txn into the running sum. Invalid transactions are rejected and not counted.
func (a *BalanceAccumulator) Add(txn domain.Transaction) error {
	if txn.Pair() != a.pair {
		return fmt.Errorf("transaction %s belongs to pair %s, not %s", txn.TransactionID, txn.Pair(), a.pair)
	}
	if err := txn.Validate(); err != nil {
		return err
	}
	a.sum = a.sum.Add(txn.SignedAmount())
	if txn.Date.After(a.latest) {
		a.latest = txn.Date
	}
	a.count++
	return nil
}

// Count is the number of transactions folded so far.
func (a *BalanceAccumulator) Count() int {
	return a.count
}

// Balance returns the recomputed balance. LastUpdated is the date of the most
// recent transaction folded, which keeps repeated runs over an unchanged log identical.
func (a *BalanceAccumulator) Balance() domain.Balance {
	return domain.Balance{
		FarmerID:      a.pair.FarmerID,
		DealerID:      a.pair.DealerID,
		CreditBalance: a.sum,
		DebitBalance:  decimal.Zero,
		NetBalance:    a.sum,
		LastUpdated:   a.latest,
	}
}

// Recompute sums the signed contributions of txns for pair from zero.
func Recompute(pair domain.Pair, txns []domain.Transaction) (domain.Balance, error) {
	acc := NewBalanceAccumulator(pair)
	for _, txn := range txns {
		if err := acc.Add(txn); err != nil {
			return domain.Balance{}, err
		}
	}
	return acc.Balance(), nil
}

// Drift is the difference between a recomputed balance and the stored one.
func Drift(stored, reconciled domain.Balance) decimal.Decimal {
	return reconciled.NetBalance.Sub(stored.NetBalance)
}
