// Package validator adapts go-playground/validator to Echo's Validator interface.
package validator

import (
	domainerrors "passport/internal/domain/errors"

	playground "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type customValidator struct {
	validate *playground.Validate
}

// New returns an Echo validator backed by struct tag validation.
func New() echo.Validator {
	return &customValidator{
		validate: playground.New(playground.WithRequiredStructEnabled()),
	}
}

// Validate checks the bound request struct against its validate tags.
func (v *customValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}
