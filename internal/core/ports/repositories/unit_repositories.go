package repositories

import (
	"context"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
)

// UnitReader defines read operations for organizational units
type UnitReader interface {
	// FindUnitByID retrieves a unit by its ID.
	FindUnitByID(ctx context.Context, unitID string) (*domain.OrganizationalUnit, error)

	// ListUnits retrieves every unit. The hierarchy is small enough to be loaded whole.
	ListUnits(ctx context.Context) ([]domain.OrganizationalUnit, error)
}

// UnitWriter defines write operations for organizational units
type UnitWriter interface {
	// SaveUnit persists a new unit.
	SaveUnit(ctx context.Context, unit domain.OrganizationalUnit) error
}

// UnitRepositoryFacade combines all unit-related repository interfaces
type UnitRepositoryFacade interface {
	UnitReader
	UnitWriter
}
