package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/farmfeed/ledger_service/internal/core/ports/services"
	"github.com/farmfeed/ledger_service/internal/dto"
	"github.com/farmfeed/ledger_service/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles HTTP requests for transactions and balances.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// registerLedgerRoutes registers transaction and balance routes.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.recordTransaction)
		transactions.GET("/:farmerId/:dealerId", h.listTransactions)
	}

	balances := rg.Group("/balances")
	{
		balances.GET("", h.listBalances)
		balances.GET("/:farmerId/:dealerId", h.getBalance)
	}
}

// recordTransaction godoc
// @Summary Record a ledger transaction
// @Description Appends a credit or debit to the farmer–dealer ledger and folds it into the pair balance.
// @Description Replaying an already recorded transactionId returns 200 with applied=false.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction body dto.RecordTransactionRequest true "Transaction details"
// @Success 201 {object} dto.RecordTransactionResponse
// @Success 200 {object} dto.RecordTransactionResponse "Already recorded"
// @Failure 400 {object} ErrorResponse "Invalid transaction"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 409 {object} ErrorResponse "Transaction id reused with different content"
// @Failure 503 {object} ErrorResponse "Storage unavailable"
// @Security BearerAuth
// @Router /transactions [post]
func (h *ledgerHandler) recordTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		logger.Error("Principal not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, "request format", err)
		return
	}

	logger.Info("Received request to record transaction",
		slog.String("farmer_id", req.FarmerID),
		slog.String("dealer_id", req.DealerID),
		slog.String("transaction_type", string(req.TransactionType)),
		slog.String("amount", req.Amount.String()),
	)

	res, err := h.ledgerService.RecordTransaction(c.Request.Context(), req, actor)
	if err != nil {
		respondServiceError(c, logger, "record transaction", err)
		return
	}

	status := http.StatusCreated
	if !res.Applied {
		status = http.StatusOK
	}
	logger.Info("Transaction recorded",
		slog.String("transaction_id", res.Transaction.TransactionID),
		slog.Bool("applied", res.Applied),
		slog.String("net_balance", res.Balance.NetBalance.String()),
	)
	c.JSON(status, dto.ToRecordTransactionResponse(res))
}

// getBalance godoc
// @Summary Get a pair balance
// @Description Returns the stored balance of a farmer–dealer pair; a pair with no history has a zero balance.
// @Tags balances
// @Produce  json
// @Param   farmerId path string true "Farmer ID"
// @Param   dealerId path string true "Dealer ID"
// @Success 200 {object} dto.BalanceResponse
// @Failure 400 {object} ErrorResponse "Invalid pair"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 503 {object} ErrorResponse "Storage unavailable"
// @Security BearerAuth
// @Router /balances/{farmerId}/{dealerId} [get]
func (h *ledgerHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	farmerID, dealerID := c.Param("farmerId"), c.Param("dealerId")

	actor, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		logger.Error("Principal not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("farmer_id", farmerID), slog.String("dealer_id", dealerID))
	balance, err := h.ledgerService.GetBalance(c.Request.Context(), farmerID, dealerID, actor)
	if err != nil {
		respondServiceError(c, logger, "retrieve balance", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBalanceResponse(balance))
}

// listBalances godoc
// @Summary List balances
// @Description Lists the balances of one farmer (farmer dashboard) or one dealer (dealer dashboard).
// @Description Farmers and dealers only see their own pairs; admins may list everything.
// @Tags balances
// @Produce  json
// @Param   farmerId query string false "Farmer ID"
// @Param   dealerId query string false "Dealer ID"
// @Param   limit query int false "Limit number of results" default(20)
// @Param   nextToken query string false "Token for the next page"
// @Success 200 {object} dto.ListBalancesResponse
// @Failure 400 {object} ErrorResponse "Invalid query"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 503 {object} ErrorResponse "Storage unavailable"
// @Security BearerAuth
// @Router /balances [get]
func (h *ledgerHandler) listBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		logger.Error("Principal not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var params dto.ListBalancesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, "query parameters", err)
		return
	}

	resp, err := h.ledgerService.ListBalances(c.Request.Context(), params, actor)
	if err != nil {
		respondServiceError(c, logger, "list balances", err)
		return
	}

	logger.Info("Balances listed", slog.Int("count", len(resp.Balances)))
	c.JSON(http.StatusOK, resp)
}

// listTransactions godoc
// @Summary List a pair's transactions
// @Description Returns the pair statement, newest first, with token based pagination.
// @Tags transactions
// @Produce  json
// @Param   farmerId path string true "Farmer ID"
// @Param   dealerId path string true "Dealer ID"
// @Param   limit query int false "Limit number of results" default(20)
// @Param   nextToken query string false "Token for the next page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} ErrorResponse "Invalid pair or query"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 503 {object} ErrorResponse "Storage unavailable"
// @Security BearerAuth
// @Router /transactions/{farmerId}/{dealerId} [get]
func (h *ledgerHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	farmerID, dealerID := c.Param("farmerId"), c.Param("dealerId")

	actor, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		logger.Error("Principal not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, "query parameters", err)
		return
	}

	logger = logger.With(slog.String("farmer_id", farmerID), slog.String("dealer_id", dealerID))
	resp, err := h.ledgerService.ListTransactions(c.Request.Context(), farmerID, dealerID, params, actor)
	if err != nil {
		respondServiceError(c, logger, "list transactions", err)
		return
	}

	logger.Info("Transactions listed", slog.Int("count", len(resp.Transactions)))
	c.JSON(http.StatusOK, resp)
}
