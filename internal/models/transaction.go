package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the stored form of a ledger entry direction.
type TransactionType string

const (
	Credit TransactionType = "credit"
	Debit  TransactionType = "debit"
)

// LedgerTransaction is a row of ledger_transactions. Rows are append-only.
type LedgerTransaction struct {
	TransactionID   string          `db:"transaction_id"`   // Primary Key
	PairKey         string          `db:"pair_key"`         // farmer_id + "_" + dealer_id
	FarmerID        string          `db:"farmer_id"`        // Not Null
	DealerID        string          `db:"dealer_id"`        // Not Null
	DealerName      string          `db:"dealer_name"`      // Denormalized
	TransactionType TransactionType `db:"transaction_type"` // credit or debit (CHECK)
	Amount          decimal.Decimal `db:"amount"`           // > 0 (CHECK)
	Description     string          `db:"description"`
	Category        string          `db:"category"`
	TransactionDate time.Time       `db:"transaction_date"`
	AuditFields
}
