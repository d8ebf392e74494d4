package dto

import (
	"time"

	"github.com/farmfeed/ledger_service/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceResponse defines the data returned for a pair balance.
// Mirrors domain.Balance.
type BalanceResponse struct {
	PairKey       string          `json:"pairKey"`
	FarmerID      string          `json:"farmerId"`
	DealerID      string          `json:"dealerId"`
	CreditBalance decimal.Decimal `json:"creditBalance"`
	DebitBalance  decimal.Decimal `json:"debitBalance"`
	NetBalance    decimal.Decimal `json:"netBalance"`
	LastUpdated   time.Time       `json:"lastUpdated"`
}

// ToBalanceResponse converts a domain.Balance to BalanceResponse DTO
func ToBalanceResponse(b *domain.Balance) BalanceResponse {
	return BalanceResponse{
		PairKey:       b.Pair().Key(),
		FarmerID:      b.FarmerID,
		DealerID:      b.DealerID,
		CreditBalance: b.CreditBalance,
		DebitBalance:  b.DebitBalance,
		NetBalance:    b.NetBalance,
		LastUpdated:   b.LastUpdated,
	}
}

// ToBalanceResponses converts a slice of domain.Balance to a slice of BalanceResponse DTOs
func ToBalanceResponses(balances []domain.Balance) []BalanceResponse {
	res := make([]BalanceResponse, len(balances))
	for i, b := range balances {
		res[i] = ToBalanceResponse(&b)
	}
	return res
}

// ListBalancesParams defines query parameters for listing balances.
// Exactly one of FarmerID and DealerID is expected, except for admins who may omit both.
type ListBalancesParams struct {
	FarmerID  string  `form:"farmerId"`
	DealerID  string  `form:"dealerId"`
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListBalancesResponse wraps a page of balances.
type ListBalancesResponse struct {
	Balances  []BalanceResponse `json:"balances"`
	NextToken *string           `json:"nextToken,omitempty"`
}
