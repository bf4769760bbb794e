package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("bad"), http.StatusBadRequest},
		{"not found", NewNotFoundError("missing"), http.StatusNotFound},
		{"conflict", NewConflictError("dup"), http.StatusConflict},
		{"unauthorized", NewUnauthorizedError("nope"), http.StatusUnauthorized},
		{"internal", NewInternalError("boom", errors.New("db down")), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("outer: %w", NewConflictError("dup")), http.StatusConflict},
		{"plain", errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusCode(tc.err))
		})
	}
}

func TestMessages(t *testing.T) {
	assert.Equal(t, []string{"Failed to create coupon", "db down"},
		Messages(NewInternalError("Failed to create coupon", errors.New("db down"))))
	assert.Equal(t, []string{"a", "b"}, Messages(NewValidationError("ignored", "a", "b")))
	assert.Equal(t, []string{"Username cannot be empty"}, Messages(NewValidationError("Username cannot be empty")))
	assert.Equal(t, []string{"An unexpected error occurred", "x"}, Messages(errors.New("x")))
}

func TestDomainError_Is(t *testing.T) {
	cause := errors.New("duplicate key")
	err := NewInternalError("save failed", cause)

	assert.True(t, errors.Is(err, ErrInternal))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "save failed: duplicate key", err.Error())
}
