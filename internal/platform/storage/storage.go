package storage

import (
	"context"
	"fmt"
	"log/slog"

	portsrepo "github.com/farmfeed/ledger_service/internal/core/ports/repositories"
	"github.com/farmfeed/ledger_service/internal/platform/config"
	"github.com/farmfeed/ledger_service/internal/repositories/database/pgsql"
	"github.com/farmfeed/ledger_service/internal/repositories/memory"
	"github.com/farmfeed/ledger_service/pkg/database"
)

// Open builds the repository provider selected by cfg.StoreDriver.
// For postgres it runs pending migrations first when cfg.MigrationsPath is set.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		logger.Warn("Using in-memory store; balances are lost on restart")
		return memory.NewRepositoryProvider(), nil

	case config.StoreDriverPostgres:
		if cfg.MigrationsPath != "" {
			if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
				return portsrepo.RepositoryProvider{}, err
			}
		}
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return portsrepo.RepositoryProvider{}, err
		}
		logger.Info("Database connection pool established.")
		provider := pgsql.NewRepositoryProvider(pool)
		provider.Close = func() { database.ClosePgxPool(pool) }
		return provider, nil
	}

	return portsrepo.RepositoryProvider{}, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}
