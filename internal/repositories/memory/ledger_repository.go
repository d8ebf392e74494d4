// Package memory provides an in-process ledger store for tests, local runs and
// dry-run tooling. It honours the same contract as the PostgreSQL store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/farmfeed/ledger_service/internal/apperrors"
	"github.com/farmfeed/ledger_service/internal/core/domain"
	portsrepo "github.com/farmfeed/ledger_service/internal/core/ports/repositories"
	"github.com/farmfeed/ledger_service/internal/utils/pagination"
)

// Operation names accepted by FailWith.
const (
	OpAppendTransaction = "AppendTransaction"
	OpGetBalance        = "GetBalance"
	OpPutBalance        = "PutBalance"
	OpListTransactions  = "ListTransactionsByPair"
	OpListPairs         = "ListPairs"
	OpCommit            = "Commit"
)

// LedgerRepository keeps the transaction log and balances in maps.
type LedgerRepository struct {
	mu       sync.RWMutex
	txns     map[string]domain.Transaction
	pairTxns map[string][]string // pair key -> transaction ids
	balances map[string]domain.Balance
	faults   map[string]error

	locksMu   sync.Mutex
	pairLocks map[string]chan struct{}
}

// NewLedgerRepository creates an empty in-memory ledger.
func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{
		txns:      make(map[string]domain.Transaction),
		pairTxns:  make(map[string][]string),
		balances:  make(map[string]domain.Balance),
		faults:    make(map[string]error),
		pairLocks: make(map[string]chan struct{}),
	}
}

var _ portsrepo.LedgerRepositoryWithTx = (*LedgerRepository)(nil)

// FailWith makes every later call of op fail with err, wrapped as a persistence error.
// A nil err clears the fault.
func (r *LedgerRepository) FailWith(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.faults, op)
		return
	}
	r.faults[op] = err
}

func (r *LedgerRepository) fault(op string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.faultLocked(op)
}

func (r *LedgerRepository) faultLocked(op string) error {
	if err, ok := r.faults[op]; ok {
		return apperrors.NewPersistenceError(fmt.Sprintf("memory store: %s failed", op), err)
	}
	return nil
}

func (r *LedgerRepository) pairLock(pair domain.Pair) chan struct{} {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	lock, ok := r.pairLocks[pair.Key()]
	if !ok {
		lock = make(chan struct{}, 1)
		r.pairLocks[pair.Key()] = lock
	}
	return lock
}

// WithPairLock serializes units of work per pair and commits their buffered writes
// only when fn succeeds.
func (r *LedgerRepository) WithPairLock(ctx context.Context, pair domain.Pair, fn func(ctx context.Context, store portsrepo.LedgerStore) error) error {
	lock := r.pairLock(pair)
	select {
	case lock <- struct{}{}:
	case <-ctx.Done():
		return apperrors.NewPersistenceError("memory store: waiting for pair lock", ctx.Err())
	}
	defer func() { <-lock }()

	tx := &txStore{
		repo:     r,
		pair:     pair,
		balances: make(map[string]domain.Balance),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return r.commit(tx)
}

func (r *LedgerRepository) commit(tx *txStore) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.faultLocked(OpCommit); err != nil {
		return err
	}
	for _, txn := range tx.txns {
		if _, exists := r.txns[txn.TransactionID]; exists {
			return apperrors.ErrDuplicate
		}
	}
	for _, txn := range tx.txns {
		r.txns[txn.TransactionID] = txn
		key := txn.Pair().Key()
		r.pairTxns[key] = append(r.pairTxns[key], txn.TransactionID)
	}
	for key, bal := range tx.balances {
		r.balances[key] = bal
	}
	return nil
}

// AppendTransaction appends txn in its own unit of work.
func (r *LedgerRepository) AppendTransaction(ctx context.Context, txn domain.Transaction) (string, error) {
	var id string
	err := r.WithPairLock(ctx, txn.Pair(), func(ctx context.Context, store portsrepo.LedgerStore) error {
		var err error
		id, err = store.AppendTransaction(ctx, txn)
		return err
	})
	return id, err
}

// PutBalance overwrites a balance in its own unit of work.
func (r *LedgerRepository) PutBalance(ctx context.Context, balance domain.Balance) error {
	return r.WithPairLock(ctx, balance.Pair(), func(ctx context.Context, store portsrepo.LedgerStore) error {
		return store.PutBalance(ctx, balance)
	})
}

// FindTransactionByID returns a committed transaction.
func (r *LedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	txn, ok := r.txns[transactionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &txn, nil
}

// GetBalance returns the committed balance of pair.
func (r *LedgerRepository) GetBalance(ctx context.Context, pair domain.Pair) (*domain.Balance, error) {
	if err := r.fault(OpGetBalance); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	bal, ok := r.balances[pair.Key()]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &bal, nil
}

// ListTransactionsByPair pages through a pair's committed log, newest first.
func (r *LedgerRepository) ListTransactionsByPair(ctx context.Context, pair domain.Pair, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if err := r.fault(OpListTransactions); err != nil {
		return nil, nil, err
	}
	return pageTransactions(r.pairSnapshot(pair, nil), limit, nextToken)
}

// ListBalances pages through committed balances ordered by pair key.
func (r *LedgerRepository) ListBalances(ctx context.Context, filter domain.BalanceFilter, limit int, nextToken *string) ([]domain.Balance, *string, error) {
	r.mu.RLock()
	matched := make([]domain.Balance, 0, len(r.balances))
	for _, bal := range r.balances {
		if filter.FarmerID != "" && bal.FarmerID != filter.FarmerID {
			continue
		}
		if filter.DealerID != "" && bal.DealerID != filter.DealerID {
			continue
		}
		matched = append(matched, bal)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].Pair().Key() < matched[j].Pair().Key() })
	return pageByKey(matched, func(b domain.Balance) string { return b.Pair().Key() }, limit, nextToken)
}

// ListPairs pages through the distinct pairs present in the log.
func (r *LedgerRepository) ListPairs(ctx context.Context, limit int, nextToken *string) ([]domain.Pair, *string, error) {
	if err := r.fault(OpListPairs); err != nil {
		return nil, nil, err
	}
	r.mu.RLock()
	pairs := make([]domain.Pair, 0, len(r.pairTxns))
	for _, ids := range r.pairTxns {
		if len(ids) == 0 {
			continue
		}
		pairs = append(pairs, r.txns[ids[0]].Pair())
	}
	r.mu.RUnlock()

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key() < pairs[j].Key() })
	return pageByKey(pairs, domain.Pair.Key, limit, nextToken)
}

// pairSnapshot copies the committed log of pair plus any pending entries.
func (r *LedgerRepository) pairSnapshot(pair domain.Pair, pending []domain.Transaction) []domain.Transaction {
	r.mu.RLock()
	ids := r.pairTxns[pair.Key()]
	out := make([]domain.Transaction, 0, len(ids)+len(pending))
	for _, id := range ids {
		out = append(out, r.txns[id])
	}
	r.mu.RUnlock()
	return append(out, pending...)
}

func pageTransactions(txns []domain.Transaction, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	limit = pagination.NormalizeLimit(limit)
	sort.Slice(txns, func(i, j int) bool { return newerThan(txns[i], txns[j]) })

	start := 0
	if nextToken != nil && *nextToken != "" {
		date, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("nextToken", err.Error())
		}
		cursor := domain.Transaction{TransactionID: id, Date: date}
		start = sort.Search(len(txns), func(i int) bool { return newerThan(cursor, txns[i]) })
	}

	end := start + limit
	if end >= len(txns) {
		return txns[start:], nil, nil
	}
	page := txns[start:end]
	last := page[len(page)-1]
	token := pagination.EncodeToken(last.Date, last.TransactionID)
	return page, &token, nil
}

// newerThan orders transactions by date descending, then id descending.
func newerThan(a, b domain.Transaction) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	return a.TransactionID > b.TransactionID
}

func pageByKey[T any](items []T, key func(T) string, limit int, nextToken *string) ([]T, *string, error) {
	limit = pagination.NormalizeLimit(limit)
	start := 0
	if nextToken != nil && *nextToken != "" {
		after, err := pagination.DecodeKeyToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("nextToken", err.Error())
		}
		start = sort.Search(len(items), func(i int) bool { return key(items[i]) > after })
	}
	end := start + limit
	if end >= len(items) {
		return items[start:], nil, nil
	}
	page := items[start:end]
	token := pagination.EncodeKeyToken(key(page[len(page)-1]))
	return page, &token, nil
}

// txStore buffers writes of one pair-locked unit of work.
type txStore struct {
	repo     *LedgerRepository
	pair     domain.Pair
	txns     []domain.Transaction
	balances map[string]domain.Balance
}

func (s *txStore) checkPair(pair domain.Pair) error {
	if pair != s.pair {
		return fmt.Errorf("memory store: unit of work for pair %s cannot write pair %s", s.pair, pair)
	}
	return nil
}

func (s *txStore) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	for _, txn := range s.txns {
		if txn.TransactionID == transactionID {
			found := txn
			return &found, nil
		}
	}
	return s.repo.FindTransactionByID(ctx, transactionID)
}

func (s *txStore) ListTransactionsByPair(ctx context.Context, pair domain.Pair, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if err := s.repo.fault(OpListTransactions); err != nil {
		return nil, nil, err
	}
	var pending []domain.Transaction
	if pair == s.pair {
		pending = s.txns
	}
	return pageTransactions(s.repo.pairSnapshot(pair, pending), limit, nextToken)
}

func (s *txStore) AppendTransaction(ctx context.Context, txn domain.Transaction) (string, error) {
	if err := s.checkPair(txn.Pair()); err != nil {
		return "", err
	}
	if err := s.repo.fault(OpAppendTransaction); err != nil {
		return "", err
	}
	if _, err := s.FindTransactionByID(ctx, txn.TransactionID); err == nil {
		return "", apperrors.ErrDuplicate
	}
	s.txns = append(s.txns, txn)
	return txn.TransactionID, nil
}

func (s *txStore) GetBalance(ctx context.Context, pair domain.Pair) (*domain.Balance, error) {
	if bal, ok := s.balances[pair.Key()]; ok {
		return &bal, nil
	}
	return s.repo.GetBalance(ctx, pair)
}

func (s *txStore) ListBalances(ctx context.Context, filter domain.BalanceFilter, limit int, nextToken *string) ([]domain.Balance, *string, error) {
	return s.repo.ListBalances(ctx, filter, limit, nextToken)
}

func (s *txStore) PutBalance(ctx context.Context, balance domain.Balance) error {
	if err := s.checkPair(balance.Pair()); err != nil {
		return err
	}
	if err := s.repo.fault(OpPutBalance); err != nil {
		return err
	}
	s.balances[balance.Pair().Key()] = balance
	return nil
}
