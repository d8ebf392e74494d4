package services

import (
	portsrepo "github.com/farmfeed/ledger_service/internal/core/ports/repositories"
	portssvc "github.com/farmfeed/ledger_service/internal/core/ports/services"
	"github.com/farmfeed/ledger_service/internal/platform/config"
	"github.com/farmfeed/ledger_service/pkg/metrics"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, m *metrics.LedgerMetrics) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Ledger: NewLedgerService(
			repos.LedgerRepo,
			WithLedgerMetrics(m),
		),
		Reconciliation: NewReconciliationService(
			repos.LedgerRepo,
			WithReconcileConcurrency(cfg.ReconcileConcurrency),
			WithReconcilePageSize(cfg.ReconcilePageSize),
			WithReconcileMetrics(m),
		),
	}
}
