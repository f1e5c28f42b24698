package middleware

import (
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/vreta/crm-api/internal/core/domain"
)

// RequireRole admits requests whose token role is one of roles. It must run
// after Auth; without claims the request is treated as unauthenticated.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := Claims(c)
			if !ok {
				return deny(domain.ErrMissingToken)
			}
			if !slices.Contains(roles, claims.Role) {
				return deny(domain.ErrInsufficientRole)
			}
			return next(c)
		}
	}
}
