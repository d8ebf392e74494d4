package domain_test

import (
	"testing"
	"time"

	"github.com/farmfeed/ledger_service/internal/apperrors"
	"github.com/farmfeed/ledger_service/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validTransaction() domain.Transaction {
	return domain.Transaction{
		TransactionID:   "txn_1",
		FarmerID:        "F1",
		DealerID:        "D1",
		DealerName:      "Dealer One",
		TransactionType: domain.Credit,
		Amount:          decimal.NewFromInt(15000),
		Description:     "Welcome bonus",
		Date:            time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(tx *domain.Transaction)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid credit",
			mutate: func(tx *domain.Transaction) {},
		},
		{
			name:   "valid debit",
			mutate: func(tx *domain.Transaction) { tx.TransactionType = domain.Debit },
		},
		{
			name:    "zero amount",
			mutate:  func(tx *domain.Transaction) { tx.Amount = decimal.Zero },
			wantErr: true,
			errMsg:  "amount must be greater than zero",
		},
		{
			name:    "negative amount",
			mutate:  func(tx *domain.Transaction) { tx.Amount = decimal.NewFromInt(-50) },
			wantErr: true,
			errMsg:  "amount must be greater than zero",
		},
		{
			name:    "unknown type",
			mutate:  func(tx *domain.Transaction) { tx.TransactionType = "refund" },
			wantErr: true,
			errMsg:  "transactionType",
		},
		{
			name:    "uppercase type is not accepted",
			mutate:  func(tx *domain.Transaction) { tx.TransactionType = "CREDIT" },
			wantErr: true,
			errMsg:  "transactionType",
		},
		{
			name:    "missing farmer",
			mutate:  func(tx *domain.Transaction) { tx.FarmerID = "" },
			wantErr: true,
			errMsg:  "farmerId is required",
		},
		{
			name:    "blank dealer",
			mutate:  func(tx *domain.Transaction) { tx.DealerID = "   " },
			wantErr: true,
			errMsg:  "dealerId is required",
		},
		{
			name:    "separator in farmer id",
			mutate:  func(tx *domain.Transaction) { tx.FarmerID = "F_1" },
			wantErr: true,
			errMsg:  "farmerId must not contain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)
			err := tx.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTransaction_SignedAmount(t *testing.T) {
	tx := validTransaction()
	assert.True(t, tx.SignedAmount().Equal(decimal.NewFromInt(15000)))

	tx.TransactionType = domain.Debit
	assert.True(t, tx.SignedAmount().Equal(decimal.NewFromInt(-15000)))
}

func TestPair_KeyRoundTrip(t *testing.T) {
	pair, err := domain.NewPair("farmerA", "dealerB")
	assert.NoError(t, err)
	assert.Equal(t, "farmerA_dealerB", pair.Key())

	parsed, err := domain.ParsePairKey(pair.Key())
	assert.NoError(t, err)
	assert.Equal(t, pair, parsed)

	_, err = domain.ParsePairKey("no-separator")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestBalance_CheckInvariant(t *testing.T) {
	pair := domain.Pair{FarmerID: "F1", DealerID: "D1"}
	b := domain.ZeroBalance(pair)
	assert.NoError(t, b.CheckInvariant())

	b.CreditBalance = decimal.NewFromInt(10)
	assert.ErrorIs(t, b.CheckInvariant(), apperrors.ErrConsistency)

	b.NetBalance = decimal.NewFromInt(10)
	assert.NoError(t, b.CheckInvariant())

	b.DebitBalance = decimal.NewFromInt(3)
	assert.ErrorIs(t, b.CheckInvariant(), apperrors.ErrConsistency)
}

func TestPrincipal_CanAccess(t *testing.T) {
	pair := domain.Pair{FarmerID: "F1", DealerID: "D1"}

	assert.True(t, domain.Principal{UserID: "anyone", Role: domain.RoleAdmin}.CanAccess(pair))
	assert.True(t, domain.Principal{UserID: "F1", Role: domain.RoleFarmer}.CanAccess(pair))
	assert.False(t, domain.Principal{UserID: "F2", Role: domain.RoleFarmer}.CanAccess(pair))
	assert.True(t, domain.Principal{UserID: "D1", Role: domain.RoleDealer}.CanAccess(pair))
	assert.False(t, domain.Principal{UserID: "F1", Role: domain.RoleDealer}.CanAccess(pair))
	assert.False(t, domain.Principal{UserID: "F1", Role: "guest"}.CanAccess(pair))
}
