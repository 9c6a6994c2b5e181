package services

import (
	"context"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SubmissionSvc moves batches of items up the hierarchy.
type SubmissionSvc interface {
	// SubmitUnitBudget sends every draft of unitID to its parent. It returns a nil
	// submission when there is nothing to submit.
	SubmitUnitBudget(ctx context.Context, actor *domain.User, unitID string) (*domain.BudgetSubmission, error)
	// ForwardToParent re-submits the items unitID approved to its own parent. It
	// returns a nil submission when there is nothing to forward.
	ForwardToParent(ctx context.Context, actor *domain.User, unitID string) (*domain.BudgetSubmission, error)
	ListSubmissions(ctx context.Context, actor *domain.User, unitID string) ([]domain.BudgetSubmission, error)
}

// ItemDecisionSvc decides on a single pending item.
type ItemDecisionSvc interface {
	ApproveItem(ctx context.Context, actor *domain.User, itemID string, comment *string) (*domain.BudgetItem, error)
	RejectItem(ctx context.Context, actor *domain.User, itemID string, comment string) (*domain.BudgetItem, error)
	ReturnItem(ctx context.Context, actor *domain.User, itemID string, comment string) (*domain.BudgetItem, error)
}

// GroupDecisionSvc decides on all pending items of a unit and year at once.
type GroupDecisionSvc interface {
	ApproveGroup(ctx context.Context, actor *domain.User, unitID string, year int, comment *string, limit *decimal.Decimal) ([]domain.BudgetItem, error)
	RejectGroup(ctx context.Context, actor *domain.User, unitID string, year int, comment string) ([]domain.BudgetItem, error)
	ReturnGroup(ctx context.Context, actor *domain.User, unitID string, year int, comment string) ([]domain.BudgetItem, error)
}

// WorkflowSvcFacade combines all workflow service interfaces
type WorkflowSvcFacade interface {
	SubmissionSvc
	ItemDecisionSvc
	GroupDecisionSvc
}
