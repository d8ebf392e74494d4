package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/farmfeed/ledger_service/internal/apperrors"
	"github.com/farmfeed/ledger_service/pkg/validator"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the error body returned by every handler.
type ErrorResponse struct {
	Error  string                 `json:"error"`
	Fields []validator.FieldError `json:"fields,omitempty"`
}

// respondBindError answers a request whose body or query could not be bound.
func respondBindError(c *gin.Context, logger *slog.Logger, what string, err error) {
	logger.Warn("Failed to bind "+what, slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:  "Invalid " + what + ": " + err.Error(),
		Fields: validator.FieldErrors(err),
	})
}

// respondServiceError maps a service error onto a status code and body.
// Server-side failures are logged at error level and their detail is not echoed.
func respondServiceError(c *gin.Context, logger *slog.Logger, action string, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Failed to "+action, slog.String("error", err.Error()), slog.Int("status", status))
		msg := "Failed to " + action
		if errors.Is(err, apperrors.ErrPersistence) {
			msg += ": storage unavailable, retry later"
		}
		c.JSON(status, ErrorResponse{Error: msg})
		return
	}

	logger.Warn("Rejected request to "+action, slog.String("error", err.Error()), slog.Int("status", status))
	c.JSON(status, ErrorResponse{Error: err.Error()})
}
