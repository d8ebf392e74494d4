package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/farmfeed/ledger_service/internal/apperrors"
	"github.com/farmfeed/ledger_service/internal/core/domain"
	portsrepo "github.com/farmfeed/ledger_service/internal/core/ports/repositories"
	portssvc "github.com/farmfeed/ledger_service/internal/core/ports/services"
	"github.com/farmfeed/ledger_service/internal/utils/accounting"
	"github.com/farmfeed/ledger_service/internal/utils/pagination"
	"github.com/farmfeed/ledger_service/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

const (
	defaultReconcilePageSize    = 100
	defaultReconcileConcurrency = 4
)

// reconciliationService implements the ReconciliationSvc interface
type reconciliationService struct {
	BaseService
	repo        portsrepo.LedgerRepositoryWithTx
	pageSize    int
	concurrency int
	now         func() time.Time
	metrics     *metrics.LedgerMetrics
}

// ReconciliationOption is a functional option for configuring the reconciliation service
type ReconciliationOption func(*reconciliationService)

// WithReconcilePageSize sets how many transactions or pairs are read per page.
func WithReconcilePageSize(n int) ReconciliationOption {
	return func(s *reconciliationService) {
		if n > 0 {
			s.pageSize = pagination.NormalizeLimit(n)
		}
	}
}

// WithReconcileConcurrency bounds how many pairs ReconcileAll processes at once.
func WithReconcileConcurrency(n int) ReconciliationOption {
	return func(s *reconciliationService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithReconcileClock overrides the time source used for report timestamps.
func WithReconcileClock(now func() time.Time) ReconciliationOption {
	return func(s *reconciliationService) {
		s.now = now
	}
}

// WithReconcileMetrics adds metrics recording
func WithReconcileMetrics(m *metrics.LedgerMetrics) ReconciliationOption {
	return func(s *reconciliationService) {
		s.metrics = m
	}
}

// NewReconciliationService creates a new reconciliation service with the provided options
func NewReconciliationService(repo portsrepo.LedgerRepositoryWithTx, options ...ReconciliationOption) portssvc.ReconciliationSvc {
	svc := &reconciliationService{
		repo:        repo,
		pageSize:    defaultReconcilePageSize,
		concurrency: defaultReconcileConcurrency,
		now:         time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ReconciliationSvc = (*reconciliationService)(nil)

func (s *reconciliationService) ReconcilePair(ctx context.Context, farmerID, dealerID string, opts domain.ReconcileOptions) (*domain.PairReconciliation, error) {
	pair, err := domain.NewPair(farmerID, dealerID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := s.reconcilePair(ctx, pair, opts)
	s.metrics.ObserveReconcile("pair", time.Since(start), err)
	if err != nil {
		s.LogError(ctx, err, "Failed to reconcile pair", slog.String("pair", pair.Key()))
		return nil, fmt.Errorf("failed to reconcile pair %s: %w", pair, err)
	}
	return res, nil
}

// reconcilePair recomputes pair from its full log while holding the pair lock,
// so no incremental update can interleave with the read or the overwrite.
func (s *reconciliationService) reconcilePair(ctx context.Context, pair domain.Pair, opts domain.ReconcileOptions) (*domain.PairReconciliation, error) {
	logger := s.GetLogger(ctx).With(slog.String("pair", pair.Key()))
	res := &domain.PairReconciliation{Pair: pair}

	err := s.repo.WithPairLock(ctx, pair, func(ctx context.Context, store portsrepo.LedgerStore) error {
		acc := accounting.NewBalanceAccumulator(pair)
		var token *string
		for {
			page, next, err := store.ListTransactionsByPair(ctx, pair, s.pageSize, token)
			if err != nil {
				return err
			}
			for _, txn := range page {
				if err := acc.Add(txn); err != nil {
					logger.Warn("Skipping invalid stored transaction",
						slog.String("transaction_id", txn.TransactionID),
						slog.String("error", err.Error()))
					res.SkippedTransactions = append(res.SkippedTransactions, txn.TransactionID)
				}
			}
			if next == nil {
				break
			}
			token = next
		}
		res.TransactionCount = acc.Count()

		previous, err := loadBalance(ctx, store, pair)
		if err != nil {
			return err
		}
		res.Previous = previous

		var reconciled domain.Balance
		if acc.Count() == 0 {
			if previous == nil {
				// No record and nothing to fold: zero by convention, nothing stored.
				return nil
			}
			reconciled = domain.ZeroBalance(pair)
			reconciled.LastUpdated = previous.LastUpdated
		} else {
			reconciled = acc.Balance()
		}
		res.Reconciled = &reconciled

		if previous == nil {
			res.Created = true
		} else if !previous.SameAmounts(reconciled) {
			res.Drifted = true
			res.Drift = accounting.Drift(*previous, reconciled)
			drift := fmt.Errorf("%w: stored net %s credit %s debit %s, log yields %s",
				apperrors.ErrConsistency, previous.NetBalance, previous.CreditBalance, previous.DebitBalance, reconciled.NetBalance)
			logger.Warn("Balance drift detected, reconciled value is authoritative",
				slog.String("error", drift.Error()),
				slog.String("drift", res.Drift.String()),
				slog.Bool("dry_run", opts.DryRun))
			s.metrics.IncDrift()
		}

		if opts.DryRun {
			return nil
		}
		if err := store.PutBalance(ctx, reconciled); err != nil {
			return err
		}
		res.Written = true
		return nil
	})
	if err != nil {
		s.metrics.IncPairReconciled("failed")
		return nil, err
	}

	s.metrics.AddSkipped(len(res.SkippedTransactions))
	switch {
	case res.Written:
		s.metrics.IncPairReconciled("written")
	case res.Reconciled == nil:
		s.metrics.IncPairReconciled("empty")
	default:
		s.metrics.IncPairReconciled("dry_run")
	}
	logger.Debug("Pair reconciled",
		slog.Int("transactions", res.TransactionCount),
		slog.Int("skipped", len(res.SkippedTransactions)),
		slog.Bool("drifted", res.Drifted),
		slog.Bool("written", res.Written))
	return res, nil
}

func (s *reconciliationService) ReconcileAll(ctx context.Context, opts domain.ReconcileOptions) (*domain.ReconciliationReport, error) {
	start := time.Now()
	report := &domain.ReconciliationReport{
		StartedAt: s.now().UTC(),
		DryRun:    opts.DryRun,
		Drifted:   []domain.PairReconciliation{},
		Failed:    []domain.PairFailure{},
	}

	var (
		mu      sync.Mutex
		g       errgroup.Group
		token   *string
		listErr error
	)
	g.SetLimit(s.concurrency)

	for {
		if err := ctx.Err(); err != nil {
			listErr = err
			break
		}
		pairs, next, err := s.repo.ListPairs(ctx, s.pageSize, token)
		if err != nil {
			listErr = err
			break
		}
		for _, pair := range pairs {
			g.Go(func() error {
				res, err := s.reconcilePair(ctx, pair, opts)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					s.LogError(ctx, err, "Failed to reconcile pair", slog.String("pair", pair.Key()))
					report.Fail(pair, err)
					return nil
				}
				report.Add(*res)
				return nil
			})
		}
		if next == nil {
			break
		}
		token = next
	}
	_ = g.Wait()

	sort.Slice(report.Drifted, func(i, j int) bool { return report.Drifted[i].Pair.Key() < report.Drifted[j].Pair.Key() })
	sort.Slice(report.Failed, func(i, j int) bool { return report.Failed[i].Pair.Key() < report.Failed[j].Pair.Key() })
	report.FinishedAt = s.now().UTC()

	var err error
	switch {
	case listErr != nil:
		err = apperrors.NewPersistenceError("reconciliation aborted while listing pairs", listErr)
	case len(report.Failed) > 0:
		err = apperrors.NewPersistenceError("reconciliation incomplete",
			fmt.Errorf("%d of %d pairs failed", len(report.Failed), report.PairsScanned))
	}
	s.metrics.ObserveReconcile("all", time.Since(start), err)

	s.LogInfo(ctx, "Reconciliation finished",
		slog.Bool("dry_run", opts.DryRun),
		slog.Int("pairs_scanned", report.PairsScanned),
		slog.Int("balances_written", report.BalancesWritten),
		slog.Int("balances_created", report.BalancesCreated),
		slog.Int("drifted", len(report.Drifted)),
		slog.Int("failed", len(report.Failed)),
		slog.Int("skipped_transactions", report.SkippedTransactions),
		slog.Duration("duration", time.Since(start)))

	return report, err
}
