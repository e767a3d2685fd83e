// Package service holds the storefront use cases. Handlers call it; it talks to
// the store, the cache and the notifier only through interfaces.
package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/events"
	"github.com/example/storefront/pkg/models"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Notifier receives domain events after the change that raised them is committed.
type Notifier interface {
	Notify(event events.Event)
}

type NopNotifier struct{}

func (NopNotifier) Notify(events.Event) {}

// Validator checks the same `binding` tags gin enforces on request bodies, and
// reports fields by their JSON names.
var Validator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// notblank rejects strings made only of whitespace
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

func validateStruct(s interface{}) error {
	if err := Validator.Struct(s); err != nil {
		return ValidationFailed(err)
	}
	return nil
}

// ValidationFailed turns a decode or validator error into a Validation apperr.
func ValidationFailed(err error) *apperr.Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, describeField(fe))
		}
		return apperr.ValidationError("Validation error").WithDetails(strings.Join(msgs, "; "))
	}

	var enumErr *models.EnumError
	if errors.As(err, &enumErr) {
		return apperr.ValidationError("Validation error").WithDetails(enumErr.Error())
	}

	return apperr.ValidationError("Validation error").WithDetails(err.Error())
}

func describeField(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// internal passes apperr values through and wraps anything else as Internal.
func internal(msg string, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.InternalError(msg, err)
}
