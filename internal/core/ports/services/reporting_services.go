package services

import (
	"context"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
)

// ReportingService provides the administrative overview.
type ReportingService interface {
	Overview(ctx context.Context, actor *domain.User, year *int) (*domain.BudgetOverview, error)
}
