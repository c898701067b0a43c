package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/orbit/internal/common"
	"github.com/go-playground/validator/v10"
)

// Error is a domain error with a message meant for the end user. It matches
// its Kind with errors.Is.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func forbidden(msg string) error { return &Error{Kind: common.ErrorForbidden, Msg: msg} }

func invalid(msg string) error { return &Error{Kind: common.ErrorValidation, Msg: msg} }

var validate = validator.New()

// check runs the struct validator and reports the first failing field.
func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validation: %w", err)
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return invalid(field + " is required")
	case "email":
		return invalid("invalid email address")
	case "min":
		return invalid(fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
	case "max":
		return invalid(fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	case "oneof":
		return invalid(fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", ")))
	default:
		return invalid(fmt.Sprintf("%s is invalid", field))
	}
}
