package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vreta/crm-api/internal/core/domain"
	"github.com/vreta/crm-api/internal/core/ports"
	"github.com/vreta/crm-api/internal/pkg/metrics"
)

const claimsKey = "auth.claims"

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*ports.Claims, error)
}

// Auth validates the bearer token and stores its claims on the context.
// A missing token is domain.ErrMissingToken; anything unverifiable is
// domain.ErrInvalidToken.
func Auth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return deny(err)
			}

			claims, err := verifier.Verify(raw)
			if err != nil {
				return deny(domain.ErrInvalidToken)
			}

			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", domain.ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", domain.ErrInvalidToken
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", domain.ErrMissingToken
	}
	return token, nil
}

// Claims returns the claims stored by Auth.
func Claims(c echo.Context) (*ports.Claims, bool) {
	claims, ok := c.Get(claimsKey).(*ports.Claims)
	return claims, ok && claims != nil
}

func deny(err error) error {
	reason := "invalid_token"
	switch err {
	case domain.ErrMissingToken:
		reason = "missing_token"
	case domain.ErrInsufficientRole:
		reason = "insufficient_role"
	}
	metrics.AccessDeniedTotal.WithLabelValues(reason).Inc()
	return err
}
