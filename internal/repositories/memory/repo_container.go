package memory

import portsrepo "github.com/farmfeed/ledger_service/internal/core/ports/repositories"

// NewRepositoryProvider wires the in-memory repositories. Data lives as long as the process.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		LedgerRepo: NewLedgerRepository(),
	}
}
