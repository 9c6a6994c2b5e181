package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/SscSPs/budget_approval_app/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not found", fmt.Errorf("item x: %w", apperrors.ErrNotFound), http.StatusNotFound, "item x: resource not found"},
		{"invalid transition", apperrors.ErrInvalidTransition, http.StatusConflict, apperrors.ErrInvalidTransition.Error()},
		{"limit exceeded", apperrors.ErrLimitExceeded, http.StatusBadRequest, apperrors.ErrLimitExceeded.Error()},
		{"aggregator", apperrors.ErrAggregatorUnit, http.StatusForbidden, apperrors.ErrAggregatorUnit.Error()},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"app error", &apperrors.AppError{Code: http.StatusTeapot, Message: "short and stout"}, http.StatusTeapot, "short and stout"},
		{"app error hides internals", &apperrors.AppError{Code: http.StatusBadGateway, Message: "upstream said no"}, http.StatusBadGateway, "fallback"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := statusFor(tt.err, "fallback")
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}
