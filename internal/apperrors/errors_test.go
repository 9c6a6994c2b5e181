package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkflowErrorsUnwrapToSentinels(t *testing.T) {
	cases := []struct {
		err  error
		base error
	}{
		{ErrInvalidTransition, ErrConflict},
		{ErrUnresolvedClarifications, ErrConflict},
		{ErrNoParentUnit, ErrValidation},
		{ErrLimitExceeded, ErrValidation},
		{ErrNothingDistributed, ErrValidation},
		{ErrAggregatorUnit, ErrForbidden},
	}
	for _, tc := range cases {
		wrappedErr := fmt.Errorf("op failed: %w", tc.err)
		assert.ErrorIs(t, wrappedErr, tc.err)
		assert.ErrorIs(t, wrappedErr, tc.base)
	}
}

func TestAppErrorConstructors(t *testing.T) {
	notFound := NewNotFoundError("unit u1 not found")
	assert.Equal(t, http.StatusNotFound, notFound.Code)
	assert.True(t, errors.Is(notFound, ErrNotFound))
	assert.Equal(t, "unit u1 not found: resource not found", notFound.Error())

	conflict := NewConflictError("email taken")
	assert.Equal(t, http.StatusConflict, conflict.Code)
	assert.ErrorIs(t, conflict, ErrDuplicate)

	internal := NewAppError(500, "failed to query", errors.New("boom"))
	var appErr *AppError
	assert.True(t, errors.As(fmt.Errorf("wrap: %w", internal), &appErr))
	assert.Equal(t, 500, appErr.Code)
	assert.Equal(t, "failed to query: boom", internal.Error())
}
