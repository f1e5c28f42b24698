package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/vreta/crm-api/internal/core/domain"
	"github.com/vreta/crm-api/internal/pkg/validation"
)

// echoValidator lets Echo run the shared validator through c.Validate(req).
type echoValidator struct {
	v *validation.Validator
}

// NewValidator returns a validator for echo.Echo.Validator. Field names in
// messages follow the json tags of the request structs.
func NewValidator() echo.Validator {
	return &echoValidator{v: validation.New()}
}

// Validate returns a *domain.ValidationError naming the first failing field.
func (ev *echoValidator) Validate(i any) error {
	return ev.v.Struct(i)
}

// bind decodes the request body and validates it.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError("", "invalid payload")
	}
	return c.Validate(req)
}
