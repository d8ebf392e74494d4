package dto

import "github.com/farmfeed/ledger_service/internal/core/domain"

// ReconcileParams defines query parameters for reconciliation endpoints.
type ReconcileParams struct {
	DryRun bool `form:"dryRun"`
}

// Options converts the params into service options.
func (p ReconcileParams) Options() domain.ReconcileOptions {
	return domain.ReconcileOptions{DryRun: p.DryRun}
}

// ReconcileAllResponse wraps a full reconciliation report.
// Error is set when some pairs failed; the report still lists the repaired ones.
type ReconcileAllResponse struct {
	Report *domain.ReconciliationReport `json:"report"`
	Error  string                       `json:"error,omitempty"`
}
