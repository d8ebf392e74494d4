package handlers

import (
	"log/slog"
	"net/http"

	"github.com/farmfeed/ledger_service/internal/apperrors"
	"github.com/farmfeed/ledger_service/internal/core/domain"
	portssvc "github.com/farmfeed/ledger_service/internal/core/ports/services"
	"github.com/farmfeed/ledger_service/internal/dto"
	"github.com/farmfeed/ledger_service/internal/middleware"
	"github.com/gin-gonic/gin"
)

type reconcileHandler struct {
	reconciliationService portssvc.ReconciliationSvc
}

// registerReconcileRoutes registers the admin-only repair routes.
func registerReconcileRoutes(rg *gin.RouterGroup, svc portssvc.ReconciliationSvc) {
	h := &reconcileHandler{reconciliationService: svc}

	admin := rg.Group("/admin", middleware.RequireRole(domain.RoleAdmin))
	{
		admin.POST("/reconcile", h.reconcileAll)
		admin.POST("/reconcile/:farmerId/:dealerId", h.reconcilePair)
	}
}

// reconcilePair godoc
// @Summary Reconcile one pair
// @Description Recomputes the pair balance from its full transaction log and overwrites the stored balance.
// @Tags reconciliation
// @Produce  json
// @Param   farmerId path string true "Farmer ID"
// @Param   dealerId path string true "Dealer ID"
// @Param   dryRun query bool false "Report drift without writing"
// @Success 200 {object} domain.PairReconciliation
// @Failure 400 {object} ErrorResponse "Invalid pair"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Admin role required"
// @Failure 503 {object} ErrorResponse "Storage unavailable"
// @Security BearerAuth
// @Router /admin/reconcile/{farmerId}/{dealerId} [post]
func (h *reconcileHandler) reconcilePair(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	farmerID, dealerID := c.Param("farmerId"), c.Param("dealerId")

	var params dto.ReconcileParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, "query parameters", err)
		return
	}

	logger = logger.With(slog.String("farmer_id", farmerID), slog.String("dealer_id", dealerID), slog.Bool("dry_run", params.DryRun))
	logger.Info("Received request to reconcile pair")

	res, err := h.reconciliationService.ReconcilePair(c.Request.Context(), farmerID, dealerID, params.Options())
	if err != nil {
		respondServiceError(c, logger, "reconcile pair", err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// reconcileAll godoc
// @Summary Reconcile every pair
// @Description Recomputes every balance present in the transaction log. Pairs that fail are listed
// @Description in the report and the response status is 503; the others are still repaired.
// @Tags reconciliation
// @Produce  json
// @Param   dryRun query bool false "Report drift without writing"
// @Success 200 {object} dto.ReconcileAllResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Admin role required"
// @Failure 503 {object} dto.ReconcileAllResponse "Partial or aborted run"
// @Security BearerAuth
// @Router /admin/reconcile [post]
func (h *reconcileHandler) reconcileAll(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ReconcileParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, "query parameters", err)
		return
	}

	logger = logger.With(slog.Bool("dry_run", params.DryRun))
	logger.Info("Received request to reconcile all pairs")

	report, err := h.reconciliationService.ReconcileAll(c.Request.Context(), params.Options())
	if err != nil && report == nil {
		respondServiceError(c, logger, "reconcile balances", err)
		return
	}

	resp := dto.ReconcileAllResponse{Report: report}
	status := http.StatusOK
	if err != nil {
		status = apperrors.HTTPStatus(err)
		resp.Error = err.Error()
		logger.Error("Reconciliation finished with failures", slog.String("error", err.Error()), slog.Int("failed", len(report.Failed)))
	}
	c.JSON(status, resp)
}
