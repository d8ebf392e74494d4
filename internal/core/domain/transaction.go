package domain

import (
	"time"

	"github.com/farmfeed/ledger_service/internal/apperrors"
	"github.com/shopspring/decimal"
)

// TransactionType indicates whether a ledger entry adds or removes available funds.
type TransactionType string

const (
	// Credit is a farmer deposit; it increases the available balance.
	Credit TransactionType = "credit"
	// Debit is a farmer spend (an order); it decreases the available balance.
	Debit TransactionType = "debit"
)

// IsValid reports whether t is credit or debit.
func (t TransactionType) IsValid() bool {
	return t == Credit || t == Debit
}

// Transaction is a single immutable entry in a pair's ledger.
type Transaction struct {
	TransactionID   string          `json:"transactionId"`
	FarmerID        string          `json:"farmerId"`
	DealerID        string          `json:"dealerId"`
	DealerName      string          `json:"dealerName"` // Denormalized display label
	TransactionType TransactionType `json:"transactionType"`
	Amount          decimal.Decimal `json:"amount"` // Always positive; the type carries the sign
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	Date            time.Time       `json:"date"`
	AuditFields
}

// Pair returns the farmer–dealer pair the transaction belongs to.
func (t Transaction) Pair() Pair {
	return Pair{FarmerID: t.FarmerID, DealerID: t.DealerID}
}

// Validate rejects transactions that must never be persisted or folded.
func (t Transaction) Validate() error {
	if _, err := NewPair(t.FarmerID, t.DealerID); err != nil {
		return err
	}
	if !t.TransactionType.IsValid() {
		return apperrors.NewValidationError("transactionType", "must be one of credit, debit; got "+string(t.TransactionType))
	}
	if !t.Amount.IsPositive() {
		return apperrors.NewValidationError("amount", "must be greater than zero")
	}
	return nil
}

// SignedAmount is the contribution of t to the available balance.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.TransactionType == Debit {
		return t.Amount.Neg()
	}
	return t.Amount
}
