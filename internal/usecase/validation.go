package usecase

import (
	"strings"
	"unicode/utf8"

	domainerrors "accounts/internal/domain/errors"

	"github.com/go-playground/validator/v10"
)

const (
	nameMinLength     = 1
	nameMaxLength     = 100
	passwordMinLength = 6
	passwordMaxLength = 20

	// MsgEmptyUpdate is returned when an update carries neither a name nor an email.
	MsgEmptyUpdate = "You can only update the email and name fields. At least one value must be provided."
)

var validate = validator.New()

// ValidateCreateUser trims the input in place and checks every field.
// The password is taken as typed.
func ValidateCreateUser(input *CreateUserInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)

	verr := &domainerrors.ValidationError{}
	checkName(verr, input.Name)
	checkEmail(verr, input.Email)

	switch n := utf8.RuneCountInString(input.Password); {
	case n == 0:
		verr.Add("password", "password should not be empty")
	case n < passwordMinLength || n > passwordMaxLength:
		verr.Add("password", "password must be between 6 and 20 characters")
	}

	return verr.OrNil()
}

// ValidateLogin checks the credentials shape. It never reveals whether the account exists.
func ValidateLogin(input *LoginInput) error {
	input.Email = strings.TrimSpace(input.Email)

	verr := &domainerrors.ValidationError{}
	checkEmail(verr, input.Email)
	if input.Password == "" {
		verr.Add("password", "password should not be empty")
	}

	return verr.OrNil()
}

// ValidateUpdateUser trims the provided fields in place and requires at least one of them.
func ValidateUpdateUser(input *UpdateUserInput) error {
	input.Name = trimOptional(input.Name)
	input.Email = trimOptional(input.Email)

	verr := &domainerrors.ValidationError{}
	if isBlank(input.Name) && isBlank(input.Email) {
		verr.Add("body", MsgEmptyUpdate)

		return verr
	}

	if input.Name != nil {
		checkName(verr, *input.Name)
	}
	if input.Email != nil {
		checkEmail(verr, *input.Email)
	}

	return verr.OrNil()
}

// Validate implements the delivery validator hook.
func (input *CreateUserInput) Validate() error { return ValidateCreateUser(input) }

// Validate implements the delivery validator hook.
func (input *LoginInput) Validate() error { return ValidateLogin(input) }

// Validate implements the delivery validator hook.
func (input *UpdateUserInput) Validate() error { return ValidateUpdateUser(input) }

func checkName(verr *domainerrors.ValidationError, name string) {
	if name == "" {
		verr.Add("name", "name should not be empty")

		return
	}
	if n := utf8.RuneCountInString(name); n < nameMinLength || n > nameMaxLength {
		verr.Add("name", "name must be between 1 and 100 characters")
	}
}

func checkEmail(verr *domainerrors.ValidationError, email string) {
	if email == "" {
		verr.Add("email", "email should not be empty")

		return
	}
	if err := validate.Var(email, "email"); err != nil {
		verr.Add("email", "email must be an email")
	}
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)

	return &trimmed
}

func isBlank(s *string) bool {
	return s == nil || *s == ""
}
