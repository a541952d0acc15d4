package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Domain errors returned by the services. All are recoverable by the caller;
// anything else coming out of a service is a storage failure.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrRateLimited  = errors.New("rate limited")
	ErrConflict     = errors.New("conflict")
)

// ValidationError describes the first invalid field of an input.
// errors.Is(err, ErrInvalidInput) holds for every ValidationError.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// storableText reports whether s can go into a Postgres TEXT column: valid
// UTF-8 with no NUL bytes.
func storableText(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}

func checkStorable(field, value string) error {
	if !storableText(value) {
		return invalid(field, field+" contains invalid characters")
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// validateStruct runs the struct tags and converts the first failure into a
// ValidationError with a message fit for an end user.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return invalid(fe.Field(), fe.Field()+" is required")
	case "min":
		return invalid(fe.Field(), fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param()))
	case "max":
		return invalid(fe.Field(), fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param()))
	case "email":
		return invalid(fe.Field(), "please enter a valid email address")
	case "oneof":
		return invalid(fe.Field(), fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
	default:
		return invalid(fe.Field(), fe.Field()+" is invalid")
	}
}
