package services

import (
	"context"

	"github.com/farmfeed/ledger_service/internal/core/domain"
	"github.com/farmfeed/ledger_service/internal/dto"
)

// LedgerWriterSvc defines write operations for the ledger
type LedgerWriterSvc interface {
	// RecordTransaction validates, appends and folds a new transaction into its pair's balance.
	// Replaying an already recorded transaction id returns the current balance with Applied=false.
	RecordTransaction(ctx context.Context, req dto.RecordTransactionRequest, actor domain.Principal) (*domain.RecordResult, error)
}

// LedgerReaderSvc defines read operations for the ledger
type LedgerReaderSvc interface {
	// GetBalance returns the pair's stored balance, or a zero balance if none is stored.
	GetBalance(ctx context.Context, farmerID, dealerID string, actor domain.Principal) (*domain.Balance, error)

	// ListBalances lists balances of one farmer or one dealer.
	ListBalances(ctx context.Context, params dto.ListBalancesParams, actor domain.Principal) (*dto.ListBalancesResponse, error)

	// ListTransactions lists a pair's transactions, newest first.
	ListTransactions(ctx context.Context, farmerID, dealerID string, params dto.ListTransactionsParams, actor domain.Principal) (*dto.ListTransactionsResponse, error)
}

// LedgerSvcFacade combines all ledger-related service interfaces
type LedgerSvcFacade interface {
	LedgerWriterSvc
	LedgerReaderSvc
}

// ReconciliationSvc recomputes balances from the transaction log.
type ReconciliationSvc interface {
	// ReconcilePair recomputes one pair's balance from zero and overwrites the stored one.
	ReconcilePair(ctx context.Context, farmerID, dealerID string, opts domain.ReconcileOptions) (*domain.PairReconciliation, error)

	// ReconcileAll reconciles every pair present in the transaction log.
	ReconcileAll(ctx context.Context, opts domain.ReconcileOptions) (*domain.ReconciliationReport, error)
}
