package httpserver

import (
	"errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/Engarr/Windmill-backend/internal/apperr"
)

// Validator plugs go-playground/validator into echo. Requests are
// rejected here, before any storage access.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	// Mirrors the storefront rule: at least one uppercase letter and
	// one of !@#$&*. Length is covered by a min tag alongside.
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		hasUpper := strings.IndexFunc(s, unicode.IsUpper) >= 0
		hasSpecial := strings.ContainsAny(s, "!@#$&*")
		return hasUpper && hasSpecial
	})
	return &Validator{validate: v}
}

func (cv *Validator) Validate(i any) error {
	if err := cv.validate.Struct(i); err != nil {
		return apperr.Validation(validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return "invalid input"
	}
	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return "field " + fe.Field() + " must not be empty"
	case "email":
		return "please provide a valid email address"
	case "min":
		return "field " + fe.Field() + " is too short"
	case "max":
		return "field " + fe.Field() + " is too long"
	case "eqfield":
		return "passwords must match"
	case "strongpassword":
		return "password needs at least one uppercase letter and one special character"
	case "gt":
		return "field " + fe.Field() + " must be positive"
	default:
		return "field " + fe.Field() + " is invalid"
	}
}
