package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{ValidationError("bad %s", "input"), http.StatusBadRequest},
		{NotFoundError("Product not found"), http.StatusNotFound},
		{AuthenticationRequired(), http.StatusUnauthorized},
		{AuthorizationError("Forbidden"), http.StatusForbidden},
		{InsufficientStockError("Widget", 1, 2), http.StatusBadRequest},
		{EmptyCartError(), http.StatusBadRequest},
		{InternalError("boom", errors.New("disk")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err.Kind))
		})
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	base := NotFoundError("Order not found")
	wrapped := fmt.Errorf("loading order: %w", base)

	assert.Equal(t, NotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, NotFound))
	assert.Equal(t, Internal, KindOf(errors.New("plain")))
	assert.False(t, Is(nil, Internal))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := InternalError("failed to place order", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to place order: connection reset", err.Error())
}

func TestInsufficientStockError(t *testing.T) {
	err := InsufficientStockError("Pixel 8", 1, 2)
	assert.Equal(t, "Insufficient stock for Pixel 8", err.Error())
	assert.Equal(t, "available 1, requested 2", err.Details)
}
