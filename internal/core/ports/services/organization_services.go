package services

import (
	"context"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	"github.com/SscSPs/budget_approval_app/internal/dto"
)

// OrganizationReaderSvc defines read operations over the unit hierarchy
type OrganizationReaderSvc interface {
	GetUnit(ctx context.Context, unitID string) (*domain.OrganizationalUnit, error)
	ListUnits(ctx context.Context) ([]domain.OrganizationalUnit, error)
	// Tree loads the whole hierarchy for parent/child lookups.
	Tree(ctx context.Context) (*domain.OrgTree, error)
	ListChildren(ctx context.Context, unitID string) ([]domain.OrganizationalUnit, error)
	ListDescendants(ctx context.Context, unitID string) ([]domain.OrganizationalUnit, error)
	// UnitPath returns the units from the root down to unitID.
	UnitPath(ctx context.Context, unitID string) ([]domain.OrganizationalUnit, error)
}

// OrganizationWriterSvc defines write operations over the unit hierarchy
type OrganizationWriterSvc interface {
	CreateUnit(ctx context.Context, req dto.CreateUnitRequest, actor *domain.User) (*domain.OrganizationalUnit, error)
}

// OrganizationSvcFacade combines all organization-related service interfaces
type OrganizationSvcFacade interface {
	OrganizationReaderSvc
	OrganizationWriterSvc
}
