package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/farmfeed/ledger_service/internal/apperrors"
	"github.com/farmfeed/ledger_service/internal/core/domain"
	"github.com/farmfeed/ledger_service/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct{}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// AuthorizePair checks that actor may see or change pair.
func (s *BaseService) AuthorizePair(ctx context.Context, actor domain.Principal, pair domain.Pair) error {
	if actor.CanAccess(pair) {
		return nil
	}
	s.GetLogger(ctx).Warn("Principal denied access to pair",
		slog.String("user_id", actor.UserID),
		slog.String("role", string(actor.Role)),
		slog.String("pair", pair.Key()))
	return apperrors.NewAppError(http.StatusForbidden, fmt.Sprintf("principal %s may not access pair %s", actor.UserID, pair), apperrors.ErrForbidden)
}
