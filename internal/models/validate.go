package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/rolodex/internal/shared"
	"github.com/go-playground/validator/v10"
)

var validatr = validator.New(validator.WithRequiredStructEnabled())

// ValidationError wraps [validator.ValidationErrors] with a readable message.
//
// It unwraps to [shared.ErrInvalidInput].
type ValidationError struct {
	Errors validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("field '%s' %s", strings.ToLower(fe.Field()), msgForTag(fe)))
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return shared.ErrInvalidInput }

// Fields returns a map of lower-cased field names to messages.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		fields[strings.ToLower(fe.Field())] = msgForTag(fe)
	}
	return fields
}

// Struct validates any struct carrying validate tags.
func Struct(s any) error { return validate(s) }

func validate(s any) error {
	err := validatr.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return &ValidationError{Errors: ve}
	}
	return err
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}
