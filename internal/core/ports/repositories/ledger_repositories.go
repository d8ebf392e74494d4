package repositories

import (
	"context"

	"github.com/farmfeed/ledger_service/internal/core/domain"
)

// TransactionReader defines read operations for the transaction log
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction by id, or apperrors.ErrNotFound.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactionsByPair returns one page of a pair's log, newest first, and the token for the next page.
	// A nil token means the log is exhausted; passing the same token again restarts from the same point.
	ListTransactionsByPair(ctx context.Context, pair domain.Pair, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}

// TransactionWriter defines append operations for the transaction log
type TransactionWriter interface {
	// AppendTransaction stores a new transaction and returns its id.
	// An id that already exists yields apperrors.ErrDuplicate and leaves the log untouched.
	AppendTransaction(ctx context.Context, txn domain.Transaction) (string, error)
}

// BalanceReader defines read operations for derived balances
type BalanceReader interface {
	// GetBalance retrieves the stored balance of pair, or apperrors.ErrNotFound.
	GetBalance(ctx context.Context, pair domain.Pair) (*domain.Balance, error)

	// ListBalances returns one page of stored balances matching filter, ordered by pair key.
	ListBalances(ctx context.Context, filter domain.BalanceFilter, limit int, nextToken *string) ([]domain.Balance, *string, error)
}

// BalanceWriter defines write operations for derived balances
type BalanceWriter interface {
	// PutBalance fully overwrites (or creates) the balance record of its pair.
	PutBalance(ctx context.Context, balance domain.Balance) error
}

// PairLister enumerates the pairs present in the transaction log.
type PairLister interface {
	// ListPairs returns one page of distinct pairs that have at least one transaction, ordered by pair key.
	ListPairs(ctx context.Context, limit int, nextToken *string) ([]domain.Pair, *string, error)
}

// LedgerStore is the persistence port of the balance engine.
type LedgerStore interface {
	TransactionReader
	TransactionWriter
	BalanceReader
	BalanceWriter
}

// LedgerRepositoryFacade combines all ledger-related repository interfaces
// This is a facade for clients that need access to all operations
type LedgerRepositoryFacade interface {
	LedgerStore
	PairLister
}

// LedgerRepositoryWithTx extends LedgerRepositoryFacade with per-pair transaction capabilities
type LedgerRepositoryWithTx interface {
	LedgerRepositoryFacade
	PairTxManager
}
