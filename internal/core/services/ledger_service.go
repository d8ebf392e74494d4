package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/farmfeed/ledger_service/internal/apperrors"
	"github.com/farmfeed/ledger_service/internal/core/domain"
	portsrepo "github.com/farmfeed/ledger_service/internal/core/ports/repositories"
	portssvc "github.com/farmfeed/ledger_service/internal/core/ports/services"
	"github.com/farmfeed/ledger_service/internal/dto"
	"github.com/farmfeed/ledger_service/internal/utils/accounting"
	"github.com/farmfeed/ledger_service/internal/utils/pagination"
	"github.com/farmfeed/ledger_service/pkg/metrics"
	"github.com/google/uuid"
)

// ledgerService implements the LedgerSvcFacade interface
type ledgerService struct {
	BaseService
	repo    portsrepo.LedgerRepositoryWithTx
	now     func() time.Time
	newID   func() string
	metrics *metrics.LedgerMetrics
}

// LedgerServiceOption is a functional option for configuring the ledger service
type LedgerServiceOption func(*ledgerService)

// WithClock overrides the time source used for audit fields and LastUpdated.
func WithClock(now func() time.Time) LedgerServiceOption {
	return func(s *ledgerService) {
		s.now = now
	}
}

// WithIDGenerator overrides the generator for transactions submitted without an id.
func WithIDGenerator(newID func() string) LedgerServiceOption {
	return func(s *ledgerService) {
		s.newID = newID
	}
}

// WithLedgerMetrics adds metrics recording
func WithLedgerMetrics(m *metrics.LedgerMetrics) LedgerServiceOption {
	return func(s *ledgerService) {
		s.metrics = m
	}
}

// NewLedgerService creates a new ledger service with the provided options
func NewLedgerService(repo portsrepo.LedgerRepositoryWithTx, options ...LedgerServiceOption) portssvc.LedgerSvcFacade {
	svc := &ledgerService{
		repo:  repo,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func (s *ledgerService) RecordTransaction(ctx context.Context, req dto.RecordTransactionRequest, actor domain.Principal) (*domain.RecordResult, error) {
	now := s.now().UTC()
	txn := req.ToDomain()
	if txn.TransactionID == "" {
		txn.TransactionID = s.newID()
	}
	if txn.Date.IsZero() {
		txn.Date = now
	}
	txn.CreatedAt = now
	txn.CreatedBy = actor.UserID

	if err := txn.Validate(); err != nil {
		s.GetLogger(ctx).Warn("Rejected invalid transaction",
			slog.String("transaction_id", txn.TransactionID),
			slog.String("error", err.Error()))
		s.metrics.IncTransaction(string(txn.TransactionType), "rejected")
		return nil, err
	}

	pair := txn.Pair()
	if err := s.AuthorizePair(ctx, actor, pair); err != nil {
		return nil, err
	}

	result := &domain.RecordResult{Transaction: txn}
	err := s.repo.WithPairLock(ctx, pair, func(ctx context.Context, store portsrepo.LedgerStore) error {
		if _, err := store.AppendTransaction(ctx, txn); err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				return s.resolveDuplicate(ctx, store, txn, result)
			}
			return err
		}

		current, err := loadBalance(ctx, store, pair)
		if err != nil {
			return err
		}
		next, err := accounting.Fold(current, txn, now)
		if err != nil {
			return err
		}
		if err := store.PutBalance(ctx, next); err != nil {
			return err
		}
		result.Balance = next
		result.Applied = true
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to record transaction",
			slog.String("transaction_id", txn.TransactionID),
			slog.String("pair", pair.Key()))
		s.metrics.IncTransaction(string(txn.TransactionType), "failed")
		return nil, fmt.Errorf("failed to record transaction %s: %w", txn.TransactionID, err)
	}

	if !result.Applied {
		s.LogInfo(ctx, "Transaction already recorded, balance unchanged",
			slog.String("transaction_id", txn.TransactionID),
			slog.String("pair", pair.Key()))
		s.metrics.IncTransaction(string(txn.TransactionType), "duplicate")
		return result, nil
	}

	s.LogInfo(ctx, "Transaction recorded",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("pair", pair.Key()),
		slog.String("type", string(txn.TransactionType)),
		slog.String("amount", txn.Amount.String()),
		slog.String("net_balance", result.Balance.NetBalance.String()))
	s.metrics.IncTransaction(string(txn.TransactionType), "applied")
	return result, nil
}

// resolveDuplicate turns a replayed transaction id into a no-op result carrying the current balance.
// An id reused for a different pair or different content is a conflict.
func (s *ledgerService) resolveDuplicate(ctx context.Context, store portsrepo.LedgerStore, txn domain.Transaction, result *domain.RecordResult) error {
	existing, err := store.FindTransactionByID(ctx, txn.TransactionID)
	if err != nil {
		return err
	}
	if existing.Pair() != txn.Pair() ||
		existing.TransactionType != txn.TransactionType ||
		!existing.Amount.Equal(txn.Amount) {
		return apperrors.NewAppError(http.StatusConflict,
			fmt.Sprintf("transaction id %s is already used by a different transaction", txn.TransactionID),
			apperrors.ErrDuplicate)
	}

	current, err := loadBalance(ctx, store, txn.Pair())
	if err != nil {
		return err
	}
	result.Transaction = *existing
	if current != nil {
		result.Balance = *current
	} else {
		result.Balance = domain.ZeroBalance(txn.Pair())
	}
	result.Applied = false
	return nil
}

// loadBalance returns the stored balance of pair, or nil when none is stored.
func loadBalance(ctx context.Context, store portsrepo.BalanceReader, pair domain.Pair) (*domain.Balance, error) {
	current, err := store.GetBalance(ctx, pair)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return current, nil
}

func (s *ledgerService) GetBalance(ctx context.Context, farmerID, dealerID string, actor domain.Principal) (*domain.Balance, error) {
	pair, err := domain.NewPair(farmerID, dealerID)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizePair(ctx, actor, pair); err != nil {
		return nil, err
	}

	current, err := loadBalance(ctx, s.repo, pair)
	if err != nil {
		s.LogError(ctx, err, "Failed to get balance", slog.String("pair", pair.Key()))
		return nil, fmt.Errorf("failed to get balance for pair %s: %w", pair, err)
	}
	if current == nil {
		zero := domain.ZeroBalance(pair)
		return &zero, nil
	}
	return current, nil
}

func (s *ledgerService) ListBalances(ctx context.Context, params dto.ListBalancesParams, actor domain.Principal) (*dto.ListBalancesResponse, error) {
	filter, err := scopeBalanceFilter(domain.BalanceFilter{FarmerID: params.FarmerID, DealerID: params.DealerID}, actor)
	if err != nil {
		s.GetLogger(ctx).Warn("Balance listing rejected",
			slog.String("user_id", actor.UserID),
			slog.String("error", err.Error()))
		return nil, err
	}

	balances, nextToken, err := s.repo.ListBalances(ctx, filter, pagination.NormalizeLimit(params.Limit), params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list balances",
			slog.String("farmer_id", filter.FarmerID),
			slog.String("dealer_id", filter.DealerID))
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}

	return &dto.ListBalancesResponse{
		Balances:  dto.ToBalanceResponses(balances),
		NextToken: nextToken,
	}, nil
}

// scopeBalanceFilter restricts a listing to what actor may see.
// Farmers and dealers default to their own id; admins must name at least one side unless listing everything.
func scopeBalanceFilter(filter domain.BalanceFilter, actor domain.Principal) (domain.BalanceFilter, error) {
	forbidden := apperrors.NewAppError(http.StatusForbidden, "principal may not list these balances", apperrors.ErrForbidden)
	switch actor.Role {
	case domain.RoleAdmin:
		return filter, nil
	case domain.RoleFarmer:
		if filter.FarmerID == "" {
			filter.FarmerID = actor.UserID
		}
		if actor.UserID == "" || filter.FarmerID != actor.UserID {
			return filter, forbidden
		}
		return filter, nil
	case domain.RoleDealer:
		if filter.DealerID == "" {
			filter.DealerID = actor.UserID
		}
		if actor.UserID == "" || filter.DealerID != actor.UserID {
			return filter, forbidden
		}
		return filter, nil
	}
	return filter, forbidden
}

func (s *ledgerService) ListTransactions(ctx context.Context, farmerID, dealerID string, params dto.ListTransactionsParams, actor domain.Principal) (*dto.ListTransactionsResponse, error) {
	pair, err := domain.NewPair(farmerID, dealerID)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizePair(ctx, actor, pair); err != nil {
		return nil, err
	}

	txns, nextToken, err := s.repo.ListTransactionsByPair(ctx, pair, pagination.NormalizeLimit(params.Limit), params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions", slog.String("pair", pair.Key()))
		return nil, fmt.Errorf("failed to list transactions for pair %s: %w", pair, err)
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		NextToken:    nextToken,
	}, nil
}
