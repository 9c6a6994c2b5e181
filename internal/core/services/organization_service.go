package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/budget_approval_app/internal/apperrors"
	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_approval_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_approval_app/internal/core/ports/services"
	"github.com/SscSPs/budget_approval_app/internal/dto"
	"github.com/google/uuid"
)

// organizationService implements the OrganizationSvcFacade interface
type organizationService struct {
	BaseService
	unitRepo portsrepo.UnitRepositoryFacade
}

// NewOrganizationService creates a new organization service
func NewOrganizationService(unitRepo portsrepo.UnitRepositoryFacade) portssvc.OrganizationSvcFacade {
	return &organizationService{unitRepo: unitRepo}
}

var _ portssvc.OrganizationSvcFacade = (*organizationService)(nil)

func (s *organizationService) GetUnit(ctx context.Context, unitID string) (*domain.OrganizationalUnit, error) {
	unit, err := s.unitRepo.FindUnitByID(ctx, unitID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find unit by ID", slog.String("unit_id", unitID))
		}
		return nil, err
	}
	return unit, nil
}

func (s *organizationService) ListUnits(ctx context.Context) ([]domain.OrganizationalUnit, error) {
	units, err := s.unitRepo.ListUnits(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list units")
		return nil, err
	}
	if units == nil {
		return []domain.OrganizationalUnit{}, nil
	}
	return units, nil
}

func (s *organizationService) Tree(ctx context.Context) (*domain.OrgTree, error) {
	units, err := s.ListUnits(ctx)
	if err != nil {
		return nil, err
	}
	return domain.NewOrgTree(units), nil
}

func (s *organizationService) ListChildren(ctx context.Context, unitID string) ([]domain.OrganizationalUnit, error) {
	tree, err := s.treeContaining(ctx, unitID)
	if err != nil {
		return nil, err
	}
	return tree.Children(unitID), nil
}

func (s *organizationService) ListDescendants(ctx context.Context, unitID string) ([]domain.OrganizationalUnit, error) {
	tree, err := s.treeContaining(ctx, unitID)
	if err != nil {
		return nil, err
	}
	desc := tree.Descendants(unitID)
	if desc == nil {
		return []domain.OrganizationalUnit{}, nil
	}
	return desc, nil
}

func (s *organizationService) UnitPath(ctx context.Context, unitID string) ([]domain.OrganizationalUnit, error) {
	tree, err := s.treeContaining(ctx, unitID)
	if err != nil {
		return nil, err
	}
	return tree.Path(unitID), nil
}

func (s *organizationService) treeContaining(ctx context.Context, unitID string) (*domain.OrgTree, error) {
	tree, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := tree.Unit(unitID); !ok {
		return nil, apperrors.NewNotFoundError("unit not found")
	}
	return tree, nil
}

// CreateUnit adds a unit to the hierarchy. Only admins may reshape the hierarchy.
func (s *organizationService) CreateUnit(ctx context.Context, req dto.CreateUnitRequest, actor *domain.User) (*domain.OrganizationalUnit, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbiddenError("only administrators can create units")
	}
	if !req.Type.Valid() {
		return nil, apperrors.NewValidationFailedError("unknown unit type")
	}

	unit := domain.OrganizationalUnit{
		UnitID:    uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Type:      req.Type,
		CreatedAt: time.Now(),
	}
	if req.ParentID != nil && *req.ParentID != "" {
		if _, err := s.GetUnit(ctx, *req.ParentID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewValidationFailedError("parent unit does not exist")
			}
			return nil, err
		}
		parentID := *req.ParentID
		unit.ParentID = &parentID
	}

	if err := s.unitRepo.SaveUnit(ctx, unit); err != nil {
		s.LogError(ctx, err, "Failed to save unit", slog.String("unit_id", unit.UnitID))
		return nil, err
	}

	s.LogInfo(ctx, "Unit created",
		slog.String("unit_id", unit.UnitID),
		slog.String("unit_type", string(unit.Type)))
	return &unit, nil
}
