package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/farmfeed/ledger_service/internal/core/domain"
	portssvc "github.com/farmfeed/ledger_service/internal/core/ports/services"
	"github.com/farmfeed/ledger_service/internal/middleware"
	"github.com/robfig/cron/v3"
)

// ReconcileJob runs a full reconciliation on a cron schedule.
// Overlapping runs are skipped, never queued.
type ReconcileJob struct {
	svc     portssvc.ReconciliationSvc
	logger  *slog.Logger
	cron    *cron.Cron
	timeout time.Duration

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// ReconcileJobOption configures a ReconcileJob.
type ReconcileJobOption func(*ReconcileJob)

// WithRunTimeout bounds a single scheduled run; zero means unbounded.
func WithRunTimeout(d time.Duration) ReconcileJobOption {
	return func(j *ReconcileJob) {
		j.timeout = d
	}
}

// NewReconcileJob creates the job; nothing runs until Schedule and Start are called.
func NewReconcileJob(svc portssvc.ReconciliationSvc, logger *slog.Logger, opts ...ReconcileJobOption) *ReconcileJob {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("job", "reconcile"))
	cl := cronLogger{logger: logger}
	j := &ReconcileJob{
		svc:    svc,
		logger: logger,
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		ctx: context.Background(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Schedule registers the run under a standard five-field cron spec or a descriptor such as "@hourly".
func (j *ReconcileJob) Schedule(spec string) error {
	if _, err := j.cron.AddFunc(spec, j.runScheduled); err != nil {
		return fmt.Errorf("invalid reconcile schedule %q: %w", spec, err)
	}
	j.logger.Info("Reconciliation scheduled", slog.String("schedule", spec))
	return nil
}

// Start begins firing scheduled runs; ctx cancellation aborts an in-flight run.
func (j *ReconcileJob) Start(ctx context.Context) {
	j.mu.Lock()
	j.ctx, j.cancel = context.WithCancel(ctx)
	j.mu.Unlock()
	j.cron.Start()
}

// Stop prevents new runs, cancels the running one and waits for it until ctx expires.
func (j *ReconcileJob) Stop(ctx context.Context) error {
	done := j.cron.Stop()
	j.mu.Lock()
	if j.cancel != nil {
		j.cancel()
	}
	j.mu.Unlock()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("reconcile job did not stop in time: %w", ctx.Err())
	}
}

func (j *ReconcileJob) runScheduled() {
	j.mu.Lock()
	ctx := j.ctx
	j.mu.Unlock()

	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}
	_, _ = j.Run(ctx, domain.ReconcileOptions{})
}

// Run performs one full reconciliation and logs its summary.
func (j *ReconcileJob) Run(ctx context.Context, opts domain.ReconcileOptions) (*domain.ReconciliationReport, error) {
	ctx = middleware.WithLogger(ctx, j.logger)
	start := time.Now()

	report, err := j.svc.ReconcileAll(ctx, opts)
	if err != nil {
		attrs := []any{slog.String("error", err.Error()), slog.Duration("elapsed", time.Since(start))}
		if report != nil {
			attrs = append(attrs, slog.Int("pairs_scanned", report.PairsScanned), slog.Int("failed", len(report.Failed)))
		}
		j.logger.Error("Scheduled reconciliation failed", attrs...)
		return report, err
	}

	j.logger.Info("Scheduled reconciliation finished",
		slog.Int("pairs_scanned", report.PairsScanned),
		slog.Int("balances_written", report.BalancesWritten),
		slog.Int("drifted", len(report.Drifted)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return report, nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append([]any{slog.String("error", err.Error())}, keysAndValues...)...)
}
