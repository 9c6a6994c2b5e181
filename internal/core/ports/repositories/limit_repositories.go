package repositories

import (
	"context"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
)

// LimitReader defines read operations for unit limits
type LimitReader interface {
	FindLimitByID(ctx context.Context, limitID string) (*domain.UnitLimit, error)
	FindLimit(ctx context.Context, unitID, assignedByUnitID string, fiscalYear int) (*domain.UnitLimit, error)
	// ListLimitsForUnit lists limits received by unitID, newest fiscal year first.
	ListLimitsForUnit(ctx context.Context, unitID string) ([]domain.UnitLimit, error)
	// ListLimitsAssignedBy lists limits assigned by unitID, optionally for one year.
	ListLimitsAssignedBy(ctx context.Context, unitID string, fiscalYear *int) ([]domain.UnitLimit, error)
}

// LimitWriter defines write operations for unit limits
type LimitWriter interface {
	// UpsertLimit inserts a limit or updates the one already recorded for
	// (unit, assigning unit, fiscal year). It returns the stored row.
	UpsertLimit(ctx context.Context, limit domain.UnitLimit) (*domain.UnitLimit, error)
	UpdateLimitStatus(ctx context.Context, limitID string, status domain.UnitLimitStatus, updatedBy string) error
}

// LimitRepositoryFacade combines all limit-related repository interfaces
type LimitRepositoryFacade interface {
	LimitReader
	LimitWriter
}
