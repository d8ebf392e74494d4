package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PairBalance is a row of pair_balances, one per farmer–dealer pair.
type PairBalance struct {
	PairKey       string          `db:"pair_key"` // Primary Key
	FarmerID      string          `db:"farmer_id"`
	DealerID      string          `db:"dealer_id"`
	CreditBalance decimal.Decimal `db:"credit_balance"`
	DebitBalance  decimal.Decimal `db:"debit_balance"` // Legacy, written as zero
	NetBalance    decimal.Decimal `db:"net_balance"`
	LastUpdated   time.Time       `db:"last_updated"`
}
