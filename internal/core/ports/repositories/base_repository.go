package repositories

import (
	"context"

	"github.com/farmfeed/ledger_service/internal/core/domain"
)

// PairTxManager defines per-pair transaction management.
type PairTxManager interface {
	// WithPairLock runs fn inside one atomic unit that holds the exclusive lock of pair.
	// Writes made through store become visible only if fn returns nil; any error
	// discards them all. Units for different pairs never block each other.
	WithPairLock(ctx context.Context, pair domain.Pair, fn func(ctx context.Context, store LedgerStore) error) error
}
