package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/farmfeed/ledger_service/internal/apperrors"
	"github.com/farmfeed/ledger_service/internal/core/domain"
	portsrepo "github.com/farmfeed/ledger_service/internal/core/ports/repositories"
	portssvc "github.com/farmfeed/ledger_service/internal/core/ports/services"
	"github.com/farmfeed/ledger_service/internal/core/services"
	"github.com/farmfeed/ledger_service/internal/dto"
	"github.com/farmfeed/ledger_service/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var (
	fixedNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	admin    = domain.SystemPrincipal
	farmerF1 = domain.Principal{UserID: "F1", Role: domain.RoleFarmer}
	dealerD1 = domain.Principal{UserID: "D1", Role: domain.RoleDealer}
)

func fixedClock() time.Time { return fixedNow }

func amount(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, amount(want).Equal(got), "want %s, got %s", want, got)
}

func recordReq(id string, txnType domain.TransactionType, amt string, minutes int) dto.RecordTransactionRequest {
	date := fixedNow.Add(time.Duration(minutes) * time.Minute)
	return dto.RecordTransactionRequest{
		TransactionID:   id,
		FarmerID:        "F1",
		DealerID:        "D1",
		DealerName:      "Dealer One",
		TransactionType: txnType,
		Amount:          amount(amt),
		Description:     "test",
		Date:            &date,
	}
}

// --- Suite over the in-memory store ---

type LedgerServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	repo       *memory.LedgerRepository
	ledger     portssvc.LedgerSvcFacade
	reconciler portssvc.ReconciliationSvc
	pair       domain.Pair
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = memory.NewLedgerRepository()
	s.ledger = services.NewLedgerService(s.repo, services.WithClock(fixedClock))
	s.reconciler = services.NewReconciliationService(s.repo, services.WithReconcilePageSize(2))
	s.pair = domain.Pair{FarmerID: "F1", DealerID: "D1"}
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func (s *LedgerServiceTestSuite) stored() *domain.Balance {
	bal, err := s.repo.GetBalance(s.ctx, s.pair)
	s.Require().NoError(err)
	return bal
}

func (s *LedgerServiceTestSuite) TestRecordTransaction_WelcomeBonus() {
	req := recordReq("t1", domain.Credit, "15000", 0)
	req.Description = "Welcome bonus"

	res, err := s.ledger.RecordTransaction(s.ctx, req, admin)

	s.Require().NoError(err)
	s.True(res.Applied)
	assertAmount(s.T(), "15000", res.Balance.CreditBalance)
	assertAmount(s.T(), "0", res.Balance.DebitBalance)
	assertAmount(s.T(), "15000", res.Balance.NetBalance)
	s.Equal(fixedNow, res.Balance.LastUpdated)
	s.Equal(fixedNow, res.Transaction.CreatedAt)
	s.Equal("system", res.Transaction.CreatedBy)

	bal := s.stored()
	assertAmount(s.T(), "15000", bal.NetBalance)
}

func (s *LedgerServiceTestSuite) TestRecordTransaction_DebitThenCredit() {
	_, err := s.ledger.RecordTransaction(s.ctx, recordReq("t1", domain.Debit, "1000", 0), admin)
	s.Require().NoError(err)
	res, err := s.ledger.RecordTransaction(s.ctx, recordReq("t2", domain.Credit, "500", 1), admin)
	s.Require().NoError(err)

	assertAmount(s.T(), "-500", res.Balance.CreditBalance)
	assertAmount(s.T(), "0", res.Balance.DebitBalance)
	assertAmount(s.T(), "-500", res.Balance.NetBalance)
}

func (s *LedgerServiceTestSuite) TestIncrementalMatchesReconciliation() {
	for i, r := range []struct {
		typ domain.TransactionType
		amt string
	}{{domain.Credit, "1000"}, {domain.Credit, "500"}, {domain.Debit, "300"}} {
		_, err := s.ledger.RecordTransaction(s.ctx, recordReq(fmt.Sprintf("t%d", i), r.typ, r.amt, i), admin)
		s.Require().NoError(err)
	}
	incremental := s.stored()
	assertAmount(s.T(), "1200", incremental.CreditBalance)
	assertAmount(s.T(), "1200", incremental.NetBalance)

	res, err := s.reconciler.ReconcilePair(s.ctx, "F1", "D1", domain.ReconcileOptions{})
	s.Require().NoError(err)
	s.False(res.Drifted)
	s.Equal(3, res.TransactionCount)
	s.True(incremental.SameAmounts(*res.Reconciled))
	s.NoError(s.stored().CheckInvariant())
}

func (s *LedgerServiceTestSuite) TestRecordTransaction_RejectsInvalid() {
	_, err := s.ledger.RecordTransaction(s.ctx, recordReq("t0", domain.Credit, "70", 0), admin)
	s.Require().NoError(err)
	before := s.stored()

	negative := recordReq("t1", domain.Credit, "-50", 1)
	zero := recordReq("t2", domain.Debit, "0", 1)
	badType := recordReq("t3", "refund", "10", 1)
	noFarmer := recordReq("t4", domain.Credit, "10", 1)
	noFarmer.FarmerID = "  "
	noDealer := recordReq("t5", domain.Credit, "10", 1)
	noDealer.DealerID = ""

	for _, req := range []dto.RecordTransactionRequest{negative, zero, badType, noFarmer, noDealer} {
		_, err := s.ledger.RecordTransaction(s.ctx, req, admin)
		s.ErrorIs(err, apperrors.ErrValidation, req.TransactionID)

		_, findErr := s.repo.FindTransactionByID(s.ctx, req.TransactionID)
		s.ErrorIs(findErr, apperrors.ErrNotFound, "invalid transaction %s must not be persisted", req.TransactionID)
	}

	after := s.stored()
	s.Equal(*before, *after)
}

func (s *LedgerServiceTestSuite) TestRecordTransaction_IdempotentRetry() {
	first, err := s.ledger.RecordTransaction(s.ctx, recordReq("t1", domain.Credit, "250", 0), admin)
	s.Require().NoError(err)
	s.True(first.Applied)

	retry, err := s.ledger.RecordTransaction(s.ctx, recordReq("t1", domain.Credit, "250", 0), admin)
	s.Require().NoError(err)
	s.False(retry.Applied)
	assertAmount(s.T(), "250", retry.Balance.NetBalance)
	s.Equal("t1", retry.Transaction.TransactionID)

	txns, _, err := s.repo.ListTransactionsByPair(s.ctx, s.pair, 10, nil)
	s.Require().NoError(err)
	s.Len(txns, 1)
	assertAmount(s.T(), "250", s.stored().NetBalance)
}

func (s *LedgerServiceTestSuite) TestRecordTransaction_ConflictingReuseOfID() {
	_, err := s.ledger.RecordTransaction(s.ctx, recordReq("t1", domain.Credit, "250", 0), admin)
	s.Require().NoError(err)

	_, err = s.ledger.RecordTransaction(s.ctx, recordReq("t1", domain.Credit, "999", 0), admin)
	s.ErrorIs(err, apperrors.ErrDuplicate)

	other := recordReq("t1", domain.Credit, "250", 0)
	other.DealerID = "D2"
	_, err = s.ledger.RecordTransaction(s.ctx, other, admin)
	s.ErrorIs(err, apperrors.ErrDuplicate)

	assertAmount(s.T(), "250", s.stored().NetBalance)
}

func (s *LedgerServiceTestSuite) TestRecordTransaction_GeneratesIDAndDate() {
	svc := services.NewLedgerService(s.repo,
		services.WithClock(fixedClock),
		services.WithIDGenerator(func() string { return "generated-1" }))
	req := recordReq("", domain.Credit, "10", 0)
	req.Date = nil

	res, err := svc.RecordTransaction(s.ctx, req, admin)
	s.Require().NoError(err)
	s.Equal("generated-1", res.Transaction.TransactionID)
	s.Equal(fixedNow, res.Transaction.Date)
}

func (s *LedgerServiceTestSuite) TestRecordTransaction_PersistenceFailureLeavesNothing() {
	_, err := s.ledger.RecordTransaction(s.ctx, recordReq("t0", domain.Credit, "100", 0), admin)
	s.Require().NoError(err)

	outage := errors.New("connection reset by peer")
	s.repo.FailWith(memory.OpPutBalance, outage)
	_, err = s.ledger.RecordTransaction(s.ctx, recordReq("t1", domain.Debit, "40", 1), admin)
	s.ErrorIs(err, apperrors.ErrPersistence)
	s.ErrorIs(err, outage)

	_, findErr := s.repo.FindTransactionByID(s.ctx, "t1")
	s.ErrorIs(findErr, apperrors.ErrNotFound)
	assertAmount(s.T(), "100", s.stored().NetBalance)

	// Retrying with the same id after recovery applies it exactly once.
	s.repo.FailWith(memory.OpPutBalance, nil)
	res, err := s.ledger.RecordTransaction(s.ctx, recordReq("t1", domain.Debit, "40", 1), admin)
	s.Require().NoError(err)
	s.True(res.Applied)
	res, err = s.ledger.RecordTransaction(s.ctx, recordReq("t1", domain.Debit, "40", 1), admin)
	s.Require().NoError(err)
	s.False(res.Applied)
	assertAmount(s.T(), "60", s.stored().NetBalance)
}

func (s *LedgerServiceTestSuite) TestRecordTransaction_CommitFailure() {
	s.repo.FailWith(memory.OpCommit, errors.New("timeout"))
	_, err := s.ledger.RecordTransaction(s.ctx, recordReq("t1", domain.Credit, "100", 0), admin)
	s.ErrorIs(err, apperrors.ErrPersistence)

	_, err = s.repo.GetBalance(s.ctx, s.pair)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *LedgerServiceTestSuite) TestConcurrentUpdates_NoLostUpdates() {
	const workers = 64
	var wg sync.WaitGroup
	want := decimal.Zero
	for i := 0; i < workers; i++ {
		typ, amt := domain.Credit, "10"
		if i%4 == 0 {
			typ, amt = domain.Debit, "7.5"
			want = want.Sub(amount(amt))
		} else {
			want = want.Add(amount(amt))
		}
		wg.Add(1)
		go func(i int, typ domain.TransactionType, amt string) {
			defer wg.Done()
			_, err := s.ledger.RecordTransaction(s.ctx, recordReq(fmt.Sprintf("t%03d", i), typ, amt, i), admin)
			s.NoError(err)
		}(i, typ, amt)
	}
	wg.Wait()

	bal := s.stored()
	s.True(want.Equal(bal.NetBalance), "want %s, got %s", want, bal.NetBalance)
	s.NoError(bal.CheckInvariant())

	res, err := s.reconciler.ReconcilePair(s.ctx, "F1", "D1", domain.ReconcileOptions{DryRun: true})
	s.Require().NoError(err)
	s.False(res.Drifted)
	s.Equal(workers, res.TransactionCount)
}

func (s *LedgerServiceTestSuite) TestAuthorization() {
	_, err := s.ledger.RecordTransaction(s.ctx, recordReq("t1", domain.Credit, "10", 0), farmerF1)
	s.NoError(err)

	other := recordReq("t2", domain.Credit, "10", 0)
	other.FarmerID = "F2"
	_, err = s.ledger.RecordTransaction(s.ctx, other, farmerF1)
	s.ErrorIs(err, apperrors.ErrForbidden)

	_, err = s.ledger.GetBalance(s.ctx, "F1", "D1", dealerD1)
	s.NoError(err)
	_, err = s.ledger.GetBalance(s.ctx, "F1", "D2", dealerD1)
	s.ErrorIs(err, apperrors.ErrForbidden)
	_, err = s.ledger.ListTransactions(s.ctx, "F2", "D1", dto.ListTransactionsParams{}, farmerF1)
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *LedgerServiceTestSuite) TestGetBalance_ZeroWhenMissing() {
	bal, err := s.ledger.GetBalance(s.ctx, "F9", "D9", admin)
	s.Require().NoError(err)
	s.Equal("F9", bal.FarmerID)
	assertAmount(s.T(), "0", bal.NetBalance)

	_, err = s.ledger.GetBalance(s.ctx, "", "D9", admin)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestListBalances_Scoping() {
	for _, p := range []struct{ f, d string }{{"F1", "D1"}, {"F1", "D2"}, {"F2", "D1"}} {
		req := recordReq("t-"+p.f+p.d, domain.Credit, "5", 0)
		req.FarmerID, req.DealerID = p.f, p.d
		_, err := s.ledger.RecordTransaction(s.ctx, req, admin)
		s.Require().NoError(err)
	}

	mine, err := s.ledger.ListBalances(s.ctx, dto.ListBalancesParams{}, farmerF1)
	s.Require().NoError(err)
	s.Len(mine.Balances, 2)

	dealer, err := s.ledger.ListBalances(s.ctx, dto.ListBalancesParams{DealerID: "D1"}, dealerD1)
	s.Require().NoError(err)
	s.Len(dealer.Balances, 2)

	_, err = s.ledger.ListBalances(s.ctx, dto.ListBalancesParams{FarmerID: "F2"}, farmerF1)
	s.ErrorIs(err, apperrors.ErrForbidden)

	all, err := s.ledger.ListBalances(s.ctx, dto.ListBalancesParams{Limit: 2}, admin)
	s.Require().NoError(err)
	s.Len(all.Balances, 2)
	s.Require().NotNil(all.NextToken)
	rest, err := s.ledger.ListBalances(s.ctx, dto.ListBalancesParams{Limit: 2, NextToken: all.NextToken}, admin)
	s.Require().NoError(err)
	s.Len(rest.Balances, 1)
	s.Nil(rest.NextToken)
}

func (s *LedgerServiceTestSuite) TestListTransactions_NewestFirst() {
	for i := 0; i < 3; i++ {
		_, err := s.ledger.RecordTransaction(s.ctx, recordReq(fmt.Sprintf("t%d", i), domain.Credit, "1", i), admin)
		s.Require().NoError(err)
	}

	page, err := s.ledger.ListTransactions(s.ctx, "F1", "D1", dto.ListTransactionsParams{Limit: 2}, farmerF1)
	s.Require().NoError(err)
	s.Require().Len(page.Transactions, 2)
	s.Equal("t2", page.Transactions[0].TransactionID)
	s.Require().NotNil(page.NextToken)

	next, err := s.ledger.ListTransactions(s.ctx, "F1", "D1", dto.ListTransactionsParams{Limit: 2, NextToken: page.NextToken}, farmerF1)
	s.Require().NoError(err)
	s.Require().Len(next.Transactions, 1)
	s.Equal("t0", next.Transactions[0].TransactionID)
}

// --- Mock LedgerRepository for failure injection ---

type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepositoryWithTx = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) WithPairLock(ctx context.Context, pair domain.Pair, fn func(ctx context.Context, store portsrepo.LedgerStore) error) error {
	args := m.Called(ctx, pair)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx, m)
}

func (m *MockLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) ListTransactionsByPair(ctx context.Context, pair domain.Pair, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, pair, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Transaction), returnedNextToken, args.Error(2)
}

func (m *MockLedgerRepository) AppendTransaction(ctx context.Context, txn domain.Transaction) (string, error) {
	args := m.Called(ctx, txn)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerRepository) GetBalance(ctx context.Context, pair domain.Pair) (*domain.Balance, error) {
	args := m.Called(ctx, pair)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Balance), args.Error(1)
}

func (m *MockLedgerRepository) ListBalances(ctx context.Context, filter domain.BalanceFilter, limit int, nextToken *string) ([]domain.Balance, *string, error) {
	args := m.Called(ctx, filter, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Balance), returnedNextToken, args.Error(2)
}

func (m *MockLedgerRepository) PutBalance(ctx context.Context, balance domain.Balance) error {
	args := m.Called(ctx, balance)
	return args.Error(0)
}

func (m *MockLedgerRepository) ListPairs(ctx context.Context, limit int, nextToken *string) ([]domain.Pair, *string, error) {
	args := m.Called(ctx, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Pair), returnedNextToken, args.Error(2)
}

func TestRecordTransaction_ValidationHappensBeforePersistence(t *testing.T) {
	repo := new(MockLedgerRepository)
	svc := services.NewLedgerService(repo, services.WithClock(fixedClock))

	_, err := svc.RecordTransaction(context.Background(), recordReq("t1", domain.Credit, "-50", 0), admin)

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	repo.AssertNotCalled(t, "WithPairLock", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "AppendTransaction", mock.Anything, mock.Anything)
}

func TestRecordTransaction_FoldsIntoExistingBalance(t *testing.T) {
	ctx := context.Background()
	pair := domain.Pair{FarmerID: "F1", DealerID: "D1"}
	existing := &domain.Balance{FarmerID: "F1", DealerID: "D1", CreditBalance: amount("70"), NetBalance: amount("70")}

	repo := new(MockLedgerRepository)
	repo.On("WithPairLock", ctx, pair).Return(nil).Once()
	repo.On("AppendTransaction", ctx, mock.AnythingOfType("domain.Transaction")).Return("t1", nil).Once()
	repo.On("GetBalance", ctx, pair).Return(existing, nil).Once()
	repo.On("PutBalance", ctx, mock.MatchedBy(func(b domain.Balance) bool {
		return b.NetBalance.Equal(amount("50")) && b.CreditBalance.Equal(amount("50")) && b.DebitBalance.IsZero() && b.LastUpdated.Equal(fixedNow)
	})).Return(nil).Once()

	svc := services.NewLedgerService(repo, services.WithClock(fixedClock))
	res, err := svc.RecordTransaction(ctx, recordReq("t1", domain.Debit, "20", 0), admin)

	require.NoError(t, err)
	assert.True(t, res.Applied)
	repo.AssertExpectations(t)
}

func TestRecordTransaction_PropagatesPersistenceErrors(t *testing.T) {
	ctx := context.Background()
	pair := domain.Pair{FarmerID: "F1", DealerID: "D1"}
	storeErr := apperrors.NewPersistenceError("read balance", errors.New("i/o timeout"))

	repo := new(MockLedgerRepository)
	repo.On("WithPairLock", ctx, pair).Return(nil).Once()
	repo.On("AppendTransaction", ctx, mock.AnythingOfType("domain.Transaction")).Return("t1", nil).Once()
	repo.On("GetBalance", ctx, pair).Return(nil, storeErr).Once()

	svc := services.NewLedgerService(repo, services.WithClock(fixedClock))
	_, err := svc.RecordTransaction(ctx, recordReq("t1", domain.Credit, "20", 0), admin)

	assert.ErrorIs(t, err, apperrors.ErrPersistence)
	repo.AssertNotCalled(t, "PutBalance", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestGetBalance_PropagatesPersistenceErrors(t *testing.T) {
	ctx := context.Background()
	pair := domain.Pair{FarmerID: "F1", DealerID: "D1"}
	repo := new(MockLedgerRepository)
	repo.On("GetBalance", ctx, pair).Return(nil, apperrors.NewPersistenceError("read balance", errors.New("down"))).Once()

	svc := services.NewLedgerService(repo)
	_, err := svc.GetBalance(ctx, "F1", "D1", admin)

	assert.ErrorIs(t, err, apperrors.ErrPersistence)
	repo.AssertExpectations(t)
}
