package storage

import (
	"context"
	"testing"

	"github.com/farmfeed/ledger_service/internal/core/domain"
	"github.com/farmfeed/ledger_service/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Memory(t *testing.T) {
	provider, err := Open(context.Background(), &config.Config{StoreDriver: config.StoreDriverMemory}, nil)
	require.NoError(t, err)
	require.NotNil(t, provider.LedgerRepo)
	assert.Nil(t, provider.Close)

	pairs, next, err := provider.LedgerRepo.ListPairs(context.Background(), 10, nil)
	require.NoError(t, err)
	assert.Empty(t, pairs)
	assert.Nil(t, next)

	_, err = provider.LedgerRepo.GetBalance(context.Background(), domain.Pair{FarmerID: "F1", DealerID: "D1"})
	assert.Error(t, err)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{StoreDriver: "sqlite"}, nil)
	assert.ErrorContains(t, err, "sqlite")
}

func TestOpen_PostgresRequiresURL(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{StoreDriver: config.StoreDriverPostgres}, nil)
	assert.ErrorContains(t, err, "database URL cannot be empty")
}
