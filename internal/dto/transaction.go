package dto

import (
	"strings"
	"time"

	"github.com/farmfeed/ledger_service/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RecordTransactionRequest defines the data needed to record a ledger transaction.
type RecordTransactionRequest struct {
	// TransactionID is optional; supplying it makes retries idempotent.
	TransactionID   string                 `json:"transactionId" binding:"omitempty,max=128"`
	FarmerID        string                 `json:"farmerId" binding:"required,pairid"`
	DealerID        string                 `json:"dealerId" binding:"required,pairid"`
	DealerName      string                 `json:"dealerName" binding:"max=200"`
	TransactionType domain.TransactionType `json:"transactionType" binding:"required,oneof=credit debit"`
	Amount          decimal.Decimal        `json:"amount"` // Checked > 0 by the service
	Description     string                 `json:"description" binding:"max=500"`
	Category        string                 `json:"category" binding:"max=100"`
	Date            *time.Time             `json:"date"` // Optional, defaults to now
}

// ToDomain converts the request into a transaction; ids and timestamps are filled in by the caller.
func (r RecordTransactionRequest) ToDomain() domain.Transaction {
	txn := domain.Transaction{
		TransactionID:   strings.TrimSpace(r.TransactionID),
		FarmerID:        strings.TrimSpace(r.FarmerID),
		DealerID:        strings.TrimSpace(r.DealerID),
		DealerName:      strings.TrimSpace(r.DealerName),
		TransactionType: r.TransactionType,
		Amount:          r.Amount,
		Description:     r.Description,
		Category:        r.Category,
	}
	if r.Date != nil {
		txn.Date = r.Date.UTC()
	}
	return txn
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID   string                 `json:"transactionId"`
	FarmerID        string                 `json:"farmerId"`
	DealerID        string                 `json:"dealerId"`
	DealerName      string                 `json:"dealerName"`
	TransactionType domain.TransactionType `json:"transactionType"`
	Amount          decimal.Decimal        `json:"amount"`
	Description     string                 `json:"description"`
	Category        string                 `json:"category"`
	Date            time.Time              `json:"date"`
	CreatedAt       time.Time              `json:"createdAt"`
	CreatedBy       string                 `json:"createdBy"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:   txn.TransactionID,
		FarmerID:        txn.FarmerID,
		DealerID:        txn.DealerID,
		DealerName:      txn.DealerName,
		TransactionType: txn.TransactionType,
		Amount:          txn.Amount,
		Description:     txn.Description,
		Category:        txn.Category,
		Date:            txn.Date,
		CreatedAt:       txn.CreatedAt,
		CreatedBy:       txn.CreatedBy,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction to []TransactionResponse.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i, txn := range txns {
		responses[i] = ToTransactionResponse(&txn)
	}
	return responses
}

// RecordTransactionResponse is returned after recording a transaction.
type RecordTransactionResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Balance     BalanceResponse     `json:"balance"`
	Applied     bool                `json:"applied"`
}

// ToRecordTransactionResponse converts a domain.RecordResult to its response DTO.
func ToRecordTransactionResponse(res *domain.RecordResult) RecordTransactionResponse {
	return RecordTransactionResponse{
		Transaction: ToTransactionResponse(&res.Transaction),
		Balance:     ToBalanceResponse(&res.Balance),
		Applied:     res.Applied,
	}
}

// ListTransactionsParams defines query parameters for listing a pair's transactions.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}
