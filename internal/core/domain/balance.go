package domain

import (
	"fmt"
	"time"

	"github.com/farmfeed/ledger_service/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Balance is the derived account position of one farmer–dealer pair.
//
// CreditBalance is the net available balance: credits minus debits.
// DebitBalance is a legacy field kept for stored-record compatibility and is always zero.
// NetBalance always equals CreditBalance.
type Balance struct {
	FarmerID      string          `json:"farmerId"`
	DealerID      string          `json:"dealerId"`
	CreditBalance decimal.Decimal `json:"creditBalance"`
	DebitBalance  decimal.Decimal `json:"debitBalance"`
	NetBalance    decimal.Decimal `json:"netBalance"`
	LastUpdated   time.Time       `json:"lastUpdated"`
}

// ZeroBalance is the implicit balance of a pair with no stored record.
func ZeroBalance(pair Pair) Balance {
	return Balance{
		FarmerID:      pair.FarmerID,
		DealerID:      pair.DealerID,
		CreditBalance: decimal.Zero,
		DebitBalance:  decimal.Zero,
		NetBalance:    decimal.Zero,
	}
}

// Pair returns the pair the balance belongs to.
func (b Balance) Pair() Pair {
	return Pair{FarmerID: b.FarmerID, DealerID: b.DealerID}
}

// Available is the farmer's unspent funds with the dealer; negative means overspent.
func (b Balance) Available() decimal.Decimal {
	return b.NetBalance
}

// CheckInvariant verifies DebitBalance == 0 and NetBalance == CreditBalance.
func (b Balance) CheckInvariant() error {
	if !b.DebitBalance.IsZero() {
		return fmt.Errorf("%w: pair %s has legacy debit balance %s", apperrors.ErrConsistency, b.Pair(), b.DebitBalance)
	}
	if !b.NetBalance.Equal(b.CreditBalance) {
		return fmt.Errorf("%w: pair %s net balance %s differs from credit balance %s", apperrors.ErrConsistency, b.Pair(), b.NetBalance, b.CreditBalance)
	}
	return nil
}

// SameAmounts reports whether b and other carry identical balance figures, ignoring timestamps.
func (b Balance) SameAmounts(other Balance) bool {
	return b.CreditBalance.Equal(other.CreditBalance) &&
		b.DebitBalance.Equal(other.DebitBalance) &&
		b.NetBalance.Equal(other.NetBalance)
}

// BalanceFilter narrows balance listings to one farmer or one dealer.
type BalanceFilter struct {
	FarmerID string
	DealerID string
}
