package services

import (
	"context"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
)

// LimitReaderSvc defines read operations for limits
type LimitReaderSvc interface {
	// ListChildRequests sums the approved requests of each direct child of unitID.
	ListChildRequests(ctx context.Context, actor *domain.User, unitID string, year int) ([]domain.ChildRequest, error)
	ListReceivedLimits(ctx context.Context, actor *domain.User, unitID string) ([]domain.UnitLimit, error)
	ListAssignedLimits(ctx context.Context, actor *domain.User, unitID string, year *int) ([]domain.UnitLimit, error)
}

// LimitAssignmentSvc defines the assignment and distribution cascade
type LimitAssignmentSvc interface {
	// AssignChildLimits is used by a top level unit to set limits for its direct children.
	AssignChildLimits(ctx context.Context, actor *domain.User, year int, allocations []domain.LimitAllocation) ([]domain.UnitLimit, error)
	// DistributeLimit passes a received limit on to direct children.
	DistributeLimit(ctx context.Context, actor *domain.User, limitID string, allocations []domain.LimitAllocation) ([]domain.UnitLimit, error)
	// DistributeLimitToItems spreads a received limit across the unit's own items.
	DistributeLimitToItems(ctx context.Context, actor *domain.User, limitID string, allocations []domain.LimitAllocation) ([]domain.BudgetItem, error)
	// AssignItemLimits sets per-item limits on approved items held by a top level unit.
	AssignItemLimits(ctx context.Context, actor *domain.User, allocations []domain.LimitAllocation, approve bool) ([]domain.BudgetItem, error)
}

// LimitSvcFacade combines all limit-related service interfaces
type LimitSvcFacade interface {
	LimitReaderSvc
	LimitAssignmentSvc
}
