package pgsql

import (
	"context"
	"errors"
	"log/slog"

	"github.com/farmfeed/ledger_service/internal/apperrors"
	"github.com/farmfeed/ledger_service/internal/core/domain"
	portsrepo "github.com/farmfeed/ledger_service/internal/core/ports/repositories"
	"github.com/farmfeed/ledger_service/internal/middleware"
	"github.com/farmfeed/ledger_service/internal/models"
	"github.com/farmfeed/ledger_service/internal/utils/mapping"
	"github.com/farmfeed/ledger_service/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgCheckViolation is the SQLSTATE raised when a CHECK constraint rejects a row.
const pgCheckViolation = "23514"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgxLedgerRepository stores the transaction log and pair balances in PostgreSQL.
type PgxLedgerRepository struct {
	BaseRepository
	pgxLedgerStore
}

// newPgxLedgerRepository creates a new repository for ledger data.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryWithTx {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
		pgxLedgerStore: pgxLedgerStore{q: pool},
	}
}

// Ensure PgxLedgerRepository implements portsrepo.LedgerRepositoryWithTx
var _ portsrepo.LedgerRepositoryWithTx = (*PgxLedgerRepository)(nil)

// WithPairLock runs fn in one database transaction holding a transaction-scoped
// advisory lock on the pair key. The lock is released on commit or rollback.
func (r *PgxLedgerRepository) WithPairLock(ctx context.Context, pair domain.Pair, fn func(ctx context.Context, store portsrepo.LedgerStore) error) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rbErr := r.Rollback(ctx, tx); rbErr != nil {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to roll back pair transaction",
				slog.String("pair", pair.Key()),
				slog.String("error", rbErr.Error()))
		}
	}()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0));`, pair.Key()); err != nil {
		return apperrors.NewPersistenceError("failed to lock pair "+pair.Key(), err)
	}

	if err := fn(ctx, &pgxLedgerStore{q: tx}); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// pgxLedgerStore implements portsrepo.LedgerStore on top of a pool or a transaction.
type pgxLedgerStore struct {
	q querier
}

var _ portsrepo.LedgerStore = (*pgxLedgerStore)(nil)

const transactionColumns = `transaction_id, pair_key, farmer_id, dealer_id, dealer_name, transaction_type, amount,
		description, category, transaction_date, created_at, created_by`

func scanTransaction(row pgx.Row) (models.LedgerTransaction, error) {
	var t models.LedgerTransaction
	err := row.Scan(
		&t.TransactionID,
		&t.PairKey,
		&t.FarmerID,
		&t.DealerID,
		&t.DealerName,
		&t.TransactionType,
		&t.Amount,
		&t.Description,
		&t.Category,
		&t.TransactionDate,
		&t.CreatedAt,
		&t.CreatedBy,
	)
	return t, err
}

// AppendTransaction inserts txn; an existing id leaves the log untouched and yields ErrDuplicate.
func (s *pgxLedgerStore) AppendTransaction(ctx context.Context, txn domain.Transaction) (string, error) {
	m := mapping.ToModelTransaction(txn)
	query := `
		INSERT INTO ledger_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (transaction_id) DO NOTHING;
	`
	tag, err := s.q.Exec(ctx, query,
		m.TransactionID,
		m.PairKey,
		m.FarmerID,
		m.DealerID,
		m.DealerName,
		m.TransactionType,
		m.Amount,
		m.Description,
		m.Category,
		m.TransactionDate,
		m.CreatedAt,
		m.CreatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation {
			return "", apperrors.NewValidationError("transaction", "violates constraint "+pgErr.ConstraintName)
		}
		return "", apperrors.NewPersistenceError("failed to insert transaction "+m.TransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return "", apperrors.ErrDuplicate
	}
	return m.TransactionID, nil
}

// FindTransactionByID retrieves a transaction by its ID.
func (s *pgxLedgerStore) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM ledger_transactions WHERE transaction_id = $1;`
	m, err := scanTransaction(s.q.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewPersistenceError("failed to find transaction "+transactionID, err)
	}
	txn := mapping.ToDomainTransaction(m)
	return &txn, nil
}

// ListTransactionsByPair retrieves one page of a pair's log using token-based pagination, newest first.
func (s *pgxLedgerStore) ListTransactionsByPair(ctx context.Context, pair domain.Pair, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	limit = pagination.NormalizeLimit(limit)
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	var rows pgx.Rows
	var err error
	if nextToken != nil && *nextToken != "" {
		lastDate, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewValidationError("nextToken", decodeErr.Error())
		}
		query := `SELECT ` + transactionColumns + `
			FROM ledger_transactions
			WHERE pair_key = $1 AND (transaction_date, transaction_id) < ($2, $3)
			ORDER BY transaction_date DESC, transaction_id DESC
			LIMIT $4;`
		rows, err = s.q.Query(ctx, query, pair.Key(), lastDate, lastID, fetchLimit)
	} else {
		query := `SELECT ` + transactionColumns + `
			FROM ledger_transactions
			WHERE pair_key = $1
			ORDER BY transaction_date DESC, transaction_id DESC
			LIMIT $2;`
		rows, err = s.q.Query(ctx, query, pair.Key(), fetchLimit)
	}
	if err != nil {
		return nil, nil, apperrors.NewPersistenceError("failed to query transactions for pair "+pair.Key(), err)
	}
	defer rows.Close()

	results := make([]models.LedgerTransaction, 0, fetchLimit)
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, apperrors.NewPersistenceError("failed to scan transaction row for pair "+pair.Key(), err)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewPersistenceError("error iterating transaction rows for pair "+pair.Key(), err)
	}

	var nextTokenVal *string
	if len(results) > limit {
		results = results[:limit]
		last := results[limit-1]
		token := pagination.EncodeToken(last.TransactionDate, last.TransactionID)
		nextTokenVal = &token
	}
	return mapping.ToDomainTransactionSlice(results), nextTokenVal, nil
}

const balanceColumns = `pair_key, farmer_id, dealer_id, credit_balance, debit_balance, net_balance, last_updated`

func scanBalance(row pgx.Row) (models.PairBalance, error) {
	var b models.PairBalance
	err := row.Scan(
		&b.PairKey,
		&b.FarmerID,
		&b.DealerID,
		&b.CreditBalance,
		&b.DebitBalance,
		&b.NetBalance,
		&b.LastUpdated,
	)
	return b, err
}

// GetBalance retrieves the stored balance of a pair.
func (s *pgxLedgerStore) GetBalance(ctx context.Context, pair domain.Pair) (*domain.Balance, error) {
	query := `SELECT ` + balanceColumns + ` FROM pair_balances WHERE pair_key = $1;`
	m, err := scanBalance(s.q.QueryRow(ctx, query, pair.Key()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewPersistenceError("failed to get balance for pair "+pair.Key(), err)
	}
	bal := mapping.ToDomainBalance(m)
	return &bal, nil
}

// ListBalances retrieves one page of balances matching filter, ordered by pair key.
func (s *pgxLedgerStore) ListBalances(ctx context.Context, filter domain.BalanceFilter, limit int, nextToken *string) ([]domain.Balance, *string, error) {
	limit = pagination.NormalizeLimit(limit)
	after, err := decodeKeyCursor(nextToken)
	if err != nil {
		return nil, nil, err
	}

	query := `SELECT ` + balanceColumns + `
		FROM pair_balances
		WHERE ($1 = '' OR farmer_id = $1)
		  AND ($2 = '' OR dealer_id = $2)
		  AND ($3 = '' OR pair_key > $3)
		ORDER BY pair_key
		LIMIT $4;`
	rows, err := s.q.Query(ctx, query, filter.FarmerID, filter.DealerID, after, limit+1)
	if err != nil {
		return nil, nil, apperrors.NewPersistenceError("failed to query balances", err)
	}
	defer rows.Close()

	results := make([]models.PairBalance, 0, limit+1)
	for rows.Next() {
		m, err := scanBalance(rows)
		if err != nil {
			return nil, nil, apperrors.NewPersistenceError("failed to scan balance row", err)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewPersistenceError("error iterating balance rows", err)
	}

	var nextTokenVal *string
	if len(results) > limit {
		results = results[:limit]
		token := pagination.EncodeKeyToken(results[limit-1].PairKey)
		nextTokenVal = &token
	}
	return mapping.ToDomainBalanceSlice(results), nextTokenVal, nil
}

// PutBalance fully overwrites the balance record of its pair, creating it if needed.
func (s *pgxLedgerStore) PutBalance(ctx context.Context, balance domain.Balance) error {
	m := mapping.ToModelBalance(balance)
	query := `
		INSERT INTO pair_balances (` + balanceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (pair_key) DO UPDATE SET
			credit_balance = EXCLUDED.credit_balance,
			debit_balance = EXCLUDED.debit_balance,
			net_balance = EXCLUDED.net_balance,
			last_updated = EXCLUDED.last_updated;
	`
	_, err := s.q.Exec(ctx, query,
		m.PairKey,
		m.FarmerID,
		m.DealerID,
		m.CreditBalance,
		m.DebitBalance,
		m.NetBalance,
		m.LastUpdated,
	)
	if err != nil {
		return apperrors.NewPersistenceError("failed to upsert balance for pair "+m.PairKey, err)
	}
	return nil
}

// ListPairs retrieves one page of distinct pairs present in the log, ordered by pair key.
func (s *pgxLedgerStore) ListPairs(ctx context.Context, limit int, nextToken *string) ([]domain.Pair, *string, error) {
	limit = pagination.NormalizeLimit(limit)
	after, err := decodeKeyCursor(nextToken)
	if err != nil {
		return nil, nil, err
	}

	query := `
		SELECT DISTINCT pair_key, farmer_id, dealer_id
		FROM ledger_transactions
		WHERE ($1 = '' OR pair_key > $1)
		ORDER BY pair_key
		LIMIT $2;`
	rows, err := s.q.Query(ctx, query, after, limit+1)
	if err != nil {
		return nil, nil, apperrors.NewPersistenceError("failed to query ledger pairs", err)
	}
	defer rows.Close()

	pairs := make([]domain.Pair, 0, limit+1)
	for rows.Next() {
		var key string
		var p domain.Pair
		if err := rows.Scan(&key, &p.FarmerID, &p.DealerID); err != nil {
			return nil, nil, apperrors.NewPersistenceError("failed to scan ledger pair row", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewPersistenceError("error iterating ledger pair rows", err)
	}

	var nextTokenVal *string
	if len(pairs) > limit {
		pairs = pairs[:limit]
		token := pagination.EncodeKeyToken(pairs[limit-1].Key())
		nextTokenVal = &token
	}
	return pairs, nextTokenVal, nil
}

func decodeKeyCursor(nextToken *string) (string, error) {
	if nextToken == nil || *nextToken == "" {
		return "", nil
	}
	key, err := pagination.DecodeKeyToken(*nextToken)
	if err != nil {
		return "", apperrors.NewValidationError("nextToken", err.Error())
	}
	return key, nil
}
