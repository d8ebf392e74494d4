package middleware

import (
	"context"

	"github.com/farmfeed/ledger_service/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// principalCtxKey is the key used to store the authenticated principal in the request context.
const principalCtxKey = contextKey("principal")

// WithPrincipal stores the authenticated principal on ctx.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, p)
}

// GetPrincipalFromContext retrieves the authenticated principal from the Gin context.
// It returns the principal and a boolean indicating if it was found.
func GetPrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	p, ok := c.Request.Context().Value(principalCtxKey).(domain.Principal)
	if !ok || p.UserID == "" {
		return domain.Principal{}, false
	}
	return p, true
}

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	p, ok := GetPrincipalFromContext(c)
	return p.UserID, ok
}
