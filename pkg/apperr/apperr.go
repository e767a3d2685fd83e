// Package apperr defines the error kinds surfaced to API callers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	Internal Kind = iota
	Validation
	NotFound
	Unauthenticated
	Forbidden
	InsufficientStock
	EmptyCart
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case InsufficientStock:
		return "insufficient_stock"
	case EmptyCart:
		return "empty_cart"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func ValidationError(format string, args ...interface{}) *Error {
	return newf(Validation, format, args...)
}

func NotFoundError(format string, args ...interface{}) *Error {
	return newf(NotFound, format, args...)
}

func AuthenticationRequired() *Error {
	return &Error{Kind: Unauthenticated, Message: "Authentication required"}
}

func AuthorizationError(format string, args ...interface{}) *Error {
	return newf(Forbidden, format, args...)
}

// InsufficientStockError names the product that could not be fulfilled.
func InsufficientStockError(productName string, available, requested int) *Error {
	return &Error{
		Kind:    InsufficientStock,
		Message: fmt.Sprintf("Insufficient stock for %s", productName),
		Details: fmt.Sprintf("available %d, requested %d", available, requested),
	}
}

func EmptyCartError() *Error {
	return &Error{Kind: EmptyCart, Message: "Cart is empty"}
}

// InternalError wraps an unexpected failure. The cause is logged, never returned to callers.
func InternalError(msg string, err error) *Error {
	return &Error{Kind: Internal, Message: msg, Err: err}
}

// WithDetails returns a copy of e carrying details for the "errors" field of the response.
func (e *Error) WithDetails(details string) *Error {
	c := *e
	c.Details = details
	return &c
}

// KindOf reports the kind of the first *Error in err's chain; anything else is Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case Validation, InsufficientStock, EmptyCart:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
