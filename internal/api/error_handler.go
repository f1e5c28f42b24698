package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vreta/crm-api/internal/core/domain"
)

// errorResponse is the error envelope of every API error.
type errorResponse struct {
	Error   string   `json:"error"`
	Field   string   `json:"field,omitempty"`
	Details []string `json:"details,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - maps domain errors to their status codes,
//   - logs unexpected errors without leaking details to the client,
//   - renders {"error": "<message>"}, plus "field" for conflicts and validation.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	var (
		he       *echo.HTTPError
		invalid  *domain.ValidationError
		conflict *domain.ConflictError
	)

	switch {
	case errors.As(err, &he):
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}

	case errors.As(err, &invalid):
		return http.StatusBadRequest, errorResponse{Error: invalid.Error(), Field: invalid.Field, Details: invalid.Details}
	case errors.As(err, &conflict):
		return http.StatusBadRequest, errorResponse{Error: conflict.Error(), Field: conflict.Field}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest, errorResponse{Error: "Invalid credentials"}

	case errors.Is(err, domain.ErrMissingToken):
		return http.StatusUnauthorized, errorResponse{Error: "Access denied. No token provided."}
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, errorResponse{Error: "Invalid token."}
	case errors.Is(err, domain.ErrInsufficientRole):
		return http.StatusForbidden, errorResponse{Error: "Access denied. Insufficient privileges."}

	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: "User not found"}
	case errors.Is(err, domain.ErrCustomerNotFound):
		return http.StatusNotFound, errorResponse{Error: "Customer not found"}
	}

	// Store or programming error: log the cause, answer generically.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
