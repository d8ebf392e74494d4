package memory

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
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pairF1D1 = domain.Pair{FarmerID: "F1", DealerID: "D1"}
	pairF1D2 = domain.Pair{FarmerID: "F1", DealerID: "D2"}
	baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
)

func txnFor(pair domain.Pair, id string, minutes int) domain.Transaction {
	return domain.Transaction{
		TransactionID:   id,
		FarmerID:        pair.FarmerID,
		DealerID:        pair.DealerID,
		TransactionType: domain.Credit,
		Amount:          decimal.NewFromInt(100),
		Date:            baseTime.Add(time.Duration(minutes) * time.Minute),
	}
}

func TestWithPairLock_CommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository()

	err := repo.WithPairLock(ctx, pairF1D1, func(ctx context.Context, store portsrepo.LedgerStore) error {
		_, err := store.AppendTransaction(ctx, txnFor(pairF1D1, "t1", 0))
		require.NoError(t, err)

		// Pending writes are visible inside the unit but not outside it.
		_, err = store.FindTransactionByID(ctx, "t1")
		require.NoError(t, err)
		_, err = repo.FindTransactionByID(ctx, "t1")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)

		return store.PutBalance(ctx, domain.Balance{FarmerID: "F1", DealerID: "D1", CreditBalance: decimal.NewFromInt(100), NetBalance: decimal.NewFromInt(100)})
	})
	require.NoError(t, err)

	_, err = repo.FindTransactionByID(ctx, "t1")
	require.NoError(t, err)
	bal, err := repo.GetBalance(ctx, pairF1D1)
	require.NoError(t, err)
	assert.True(t, bal.NetBalance.Equal(decimal.NewFromInt(100)))
}

func TestWithPairLock_DiscardsOnError(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository()
	boom := errors.New("boom")

	err := repo.WithPairLock(ctx, pairF1D1, func(ctx context.Context, store portsrepo.LedgerStore) error {
		_, err := store.AppendTransaction(ctx, txnFor(pairF1D1, "t1", 0))
		require.NoError(t, err)
		require.NoError(t, store.PutBalance(ctx, domain.ZeroBalance(pairF1D1)))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.FindTransactionByID(ctx, "t1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = repo.GetBalance(ctx, pairF1D1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestWithPairLock_RejectsWritesForOtherPair(t *testing.T) {
	repo := NewLedgerRepository()
	err := repo.WithPairLock(context.Background(), pairF1D1, func(ctx context.Context, store portsrepo.LedgerStore) error {
		_, err := store.AppendTransaction(ctx, txnFor(pairF1D2, "t1", 0))
		return err
	})
	assert.Error(t, err)
}

func TestWithPairLock_HonoursContextWhileWaiting(t *testing.T) {
	repo := NewLedgerRepository()
	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = repo.WithPairLock(context.Background(), pairF1D1, func(ctx context.Context, store portsrepo.LedgerStore) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := repo.WithPairLock(ctx, pairF1D1, func(ctx context.Context, store portsrepo.LedgerStore) error { return nil })
	assert.ErrorIs(t, err, apperrors.ErrPersistence)

	// A different pair is not blocked.
	err = repo.WithPairLock(context.Background(), pairF1D2, func(ctx context.Context, store portsrepo.LedgerStore) error { return nil })
	assert.NoError(t, err)
}

func TestAppendTransaction_Duplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository()

	_, err := repo.AppendTransaction(ctx, txnFor(pairF1D1, "t1", 0))
	require.NoError(t, err)
	_, err = repo.AppendTransaction(ctx, txnFor(pairF1D1, "t1", 1))
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	_, err = repo.AppendTransaction(ctx, txnFor(pairF1D2, "t1", 1))
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestConcurrentAppends_AllCommitted(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.AppendTransaction(ctx, txnFor(pairF1D1, fmt.Sprintf("t%02d", i), i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	txns, next, err := repo.ListTransactionsByPair(ctx, pairF1D1, 200, nil)
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Len(t, txns, 50)
}

func TestListTransactionsByPair_Paginates(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository()
	for i := 0; i < 5; i++ {
		_, err := repo.AppendTransaction(ctx, txnFor(pairF1D1, fmt.Sprintf("t%d", i), i))
		require.NoError(t, err)
	}
	_, err := repo.AppendTransaction(ctx, txnFor(pairF1D2, "other", 0))
	require.NoError(t, err)

	var ids []string
	var token *string
	pages := 0
	for {
		page, next, err := repo.ListTransactionsByPair(ctx, pairF1D1, 2, token)
		require.NoError(t, err)
		for _, txn := range page {
			ids = append(ids, txn.TransactionID)
		}
		pages++
		if next == nil {
			break
		}
		token = next
	}

	assert.Equal(t, []string{"t4", "t3", "t2", "t1", "t0"}, ids)
	assert.Equal(t, 3, pages)

	bad := "%%%"
	_, _, err = repo.ListTransactionsByPair(ctx, pairF1D1, 2, &bad)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestListBalancesAndPairs(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository()
	pairF2D1 := domain.Pair{FarmerID: "F2", DealerID: "D1"}
	for _, p := range []domain.Pair{pairF2D1, pairF1D2, pairF1D1} {
		require.NoError(t, repo.PutBalance(ctx, domain.ZeroBalance(p)))
		_, err := repo.AppendTransaction(ctx, txnFor(p, "t-"+p.Key(), 0))
		require.NoError(t, err)
	}

	byFarmer, next, err := repo.ListBalances(ctx, domain.BalanceFilter{FarmerID: "F1"}, 10, nil)
	require.NoError(t, err)
	assert.Nil(t, next)
	require.Len(t, byFarmer, 2)
	assert.Equal(t, "F1_D1", byFarmer[0].Pair().Key())
	assert.Equal(t, "F1_D2", byFarmer[1].Pair().Key())

	byDealer, _, err := repo.ListBalances(ctx, domain.BalanceFilter{DealerID: "D1"}, 10, nil)
	require.NoError(t, err)
	assert.Len(t, byDealer, 2)

	first, next, err := repo.ListPairs(ctx, 2, nil)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, []domain.Pair{pairF1D1, pairF1D2}, first)
	rest, next, err := repo.ListPairs(ctx, 2, next)
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Equal(t, []domain.Pair{pairF2D1}, rest)
}

func TestFailWith(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository()
	outage := errors.New("connection reset")

	repo.FailWith(OpPutBalance, outage)
	err := repo.PutBalance(ctx, domain.ZeroBalance(pairF1D1))
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
	assert.ErrorIs(t, err, outage)

	repo.FailWith(OpPutBalance, nil)
	assert.NoError(t, repo.PutBalance(ctx, domain.ZeroBalance(pairF1D1)))

	repo.FailWith(OpCommit, outage)
	_, err = repo.AppendTransaction(ctx, txnFor(pairF1D1, "t1", 0))
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
	repo.FailWith(OpCommit, nil)
	_, err = repo.FindTransactionByID(ctx, "t1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
