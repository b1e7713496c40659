package middleware

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/koboledger/kobo/internal/core/domain"
)

// contextKey is a private type so context values cannot collide with other
// packages.
type contextKey string

const (
	loggerKey    = contextKey("logger")
	principalKey = contextKey("principal")
)

// GetLoggerFromCtx retrieves the request-scoped logger from a context,
// falling back to the default logger.
func GetLoggerFromCtx(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// GetPrincipalFromContext retrieves the authenticated principal set by the
// auth middleware.
func GetPrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	val, exists := c.Get(string(principalKey))
	if !exists {
		if v := c.Request.Context().Value(principalKey); v != nil {
			p, ok := v.(domain.Principal)
			return p, ok
		}
		return domain.Principal{}, false
	}
	p, ok := val.(domain.Principal)
	return p, ok
}
