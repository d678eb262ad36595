// Package validator adapts request validation to echo.
package validator

import (
	"accounts/internal/errors"

	"github.com/labstack/echo/v4"
)

// SelfValidating is implemented by inputs that know how to check and normalize themselves.
type SelfValidating interface {
	Validate() error
}

type requestValidator struct{}

// New returns the echo.Validator used by c.Validate.
func New() echo.Validator {
	return &requestValidator{}
}

// Validate dispatches to the input's own Validate method.
func (v *requestValidator) Validate(i any) error {
	sv, ok := i.(SelfValidating)
	if !ok {
		return errors.Errorf("validator: %T has no Validate method", i)
	}

	return sv.Validate()
}
