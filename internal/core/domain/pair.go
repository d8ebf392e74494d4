package domain

import (
	"strings"

	"github.com/farmfeed/ledger_service/internal/apperrors"
)

// PairKeySeparator joins farmer and dealer ids into a balance key.
const PairKeySeparator = "_"

// Pair is a farmer–dealer relationship, the unit of account for balances.
type Pair struct {
	FarmerID string `json:"farmerId"`
	DealerID string `json:"dealerId"`
}

// NewPair validates both ids and returns the pair.
// Ids may not contain the separator, otherwise two pairs could share a key.
func NewPair(farmerID, dealerID string) (Pair, error) {
	if strings.TrimSpace(farmerID) == "" {
		return Pair{}, apperrors.NewValidationError("farmerId", "is required")
	}
	if strings.TrimSpace(dealerID) == "" {
		return Pair{}, apperrors.NewValidationError("dealerId", "is required")
	}
	if strings.Contains(farmerID, PairKeySeparator) {
		return Pair{}, apperrors.NewValidationError("farmerId", "must not contain "+PairKeySeparator)
	}
	if strings.Contains(dealerID, PairKeySeparator) {
		return Pair{}, apperrors.NewValidationError("dealerId", "must not contain "+PairKeySeparator)
	}
	return Pair{FarmerID: farmerID, DealerID: dealerID}, nil
}

// Key is the deterministic balance key of the pair.
func (p Pair) Key() string {
	return p.FarmerID + PairKeySeparator + p.DealerID
}

func (p Pair) String() string {
	return p.Key()
}

// ParsePairKey reverses Pair.Key.
func ParsePairKey(key string) (Pair, error) {
	farmerID, dealerID, ok := strings.Cut(key, PairKeySeparator)
	if !ok {
		return Pair{}, apperrors.NewValidationError("pairKey", "is malformed")
	}
	return NewPair(farmerID, dealerID)
}
