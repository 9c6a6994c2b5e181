package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/budget_approval_app/internal/apperrors"
	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_approval_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_approval_app/internal/core/ports/services"
	"github.com/SscSPs/budget_approval_app/internal/utils/pagination"
	"github.com/google/uuid"
)

const (
	defaultVersionPageSize = 20
	maxVersionPageSize     = 100
)

type versionService struct {
	BaseService
	versionRepo portsrepo.VersionRepositoryFacade
	itemRepo    portsrepo.BudgetItemReader
}

// NewVersionService creates a service that records and compares item snapshots.
func NewVersionService(
	versionRepo portsrepo.VersionRepositoryFacade,
	itemRepo portsrepo.BudgetItemReader,
	hierarchy portssvc.OrganizationReaderSvc,
) portssvc.VersionSvcFacade {
	return &versionService{
		BaseService: BaseService{Hierarchy: hierarchy},
		versionRepo: versionRepo,
		itemRepo:    itemRepo,
	}
}

var _ portssvc.VersionSvcFacade = (*versionService)(nil)

// RecordSnapshot stores every item in the subtree of unitID.
func (s *versionService) RecordSnapshot(ctx context.Context, actor *domain.User, unitID string, action domain.VersionAction) (*domain.BudgetVersion, error) {
	tree, err := s.LoadTree(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.subtreeItems(ctx, tree, unitID)
	if err != nil {
		return nil, err
	}

	version := domain.BudgetVersion{
		VersionID:     uuid.NewString(),
		UnitID:        unitID,
		Action:        action,
		ItemsSnapshot: items,
		CreatedBy:     actor.UserID,
		CreatedByName: actor.Name,
		CreatedAt:     time.Now(),
	}
	if err := s.versionRepo.SaveVersion(ctx, version); err != nil {
		s.LogError(ctx, err, "Failed to save version snapshot",
			slog.String("unit_id", unitID),
			slog.String("action", string(action)))
		return nil, err
	}

	s.LogDebug(ctx, "Version snapshot recorded",
		slog.String("version_id", version.VersionID),
		slog.String("unit_id", unitID),
		slog.String("action", string(action)),
		slog.Int("items", len(items)))
	return &version, nil
}

func (s *versionService) ListVersions(ctx context.Context, actor *domain.User, unitID string, limit int, pageToken string) (*portssvc.VersionPage, error) {
	tree, err := s.LoadTree(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizeUnit(ctx, tree, actor, unitID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultVersionPageSize
	}
	if limit > maxVersionPageSize {
		limit = maxVersionPageSize
	}

	var cursor *portsrepo.VersionCursor
	if pageToken != "" {
		createdAt, versionID, err := pagination.DecodeToken(pageToken)
		if err != nil {
			return nil, apperrors.NewBadRequestError(err.Error())
		}
		cursor = &portsrepo.VersionCursor{CreatedAt: createdAt, VersionID: versionID}
	}

	versions, err := s.versionRepo.ListVersionsByUnit(ctx, unitID, limit+1, cursor)
	if err != nil {
		s.LogError(ctx, err, "Failed to list versions", slog.String("unit_id", unitID))
		return nil, err
	}

	page := &portssvc.VersionPage{Versions: versions}
	if len(versions) > limit {
		page.Versions = versions[:limit]
		last := page.Versions[limit-1]
		page.NextPageToken = pagination.EncodeToken(last.CreatedAt, last.VersionID)
	}
	if page.Versions == nil {
		page.Versions = []domain.BudgetVersion{}
	}
	return page, nil
}

func (s *versionService) GetVersion(ctx context.Context, actor *domain.User, versionID string) (*domain.BudgetVersion, error) {
	tree, err := s.LoadTree(ctx)
	if err != nil {
		return nil, err
	}
	return s.authorizedVersion(ctx, tree, actor, versionID)
}

func (s *versionService) CompareWithCurrent(ctx context.Context, actor *domain.User, versionID string) ([]domain.ItemComparison, error) {
	tree, err := s.LoadTree(ctx)
	if err != nil {
		return nil, err
	}
	version, err := s.authorizedVersion(ctx, tree, actor, versionID)
	if err != nil {
		return nil, err
	}
	current, err := s.subtreeItems(ctx, tree, version.UnitID)
	if err != nil {
		return nil, err
	}
	return domain.CompareVersions(version.ItemsSnapshot, current), nil
}

func (s *versionService) CompareVersions(ctx context.Context, actor *domain.User, fromVersionID, toVersionID string) ([]domain.ItemComparison, error) {
	tree, err := s.LoadTree(ctx)
	if err != nil {
		return nil, err
	}
	from, err := s.authorizedVersion(ctx, tree, actor, fromVersionID)
	if err != nil {
		return nil, err
	}
	to, err := s.authorizedVersion(ctx, tree, actor, toVersionID)
	if err != nil {
		return nil, err
	}
	if from.UnitID != to.UnitID {
		return nil, apperrors.NewValidationFailedError("versions belong to different units")
	}
	return domain.CompareVersions(from.ItemsSnapshot, to.ItemsSnapshot), nil
}

func (s *versionService) authorizedVersion(ctx context.Context, tree *domain.OrgTree, actor *domain.User, versionID string) (*domain.BudgetVersion, error) {
	version, err := s.versionRepo.FindVersionByID(ctx, versionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find version", slog.String("version_id", versionID))
		}
		return nil, err
	}
	if err := s.AuthorizeUnit(ctx, tree, actor, version.UnitID); err != nil {
		return nil, err
	}
	return version, nil
}

func (s *versionService) subtreeItems(ctx context.Context, tree *domain.OrgTree, unitID string) ([]domain.BudgetItem, error) {
	items, err := s.itemRepo.ListItems(ctx, domain.BudgetItemFilter{UnitIDs: tree.SubtreeIDs(unitID)})
	if err != nil {
		s.LogError(ctx, err, "Failed to list subtree items", slog.String("unit_id", unitID))
		return nil, err
	}
	if items == nil {
		return []domain.BudgetItem{}, nil
	}
	return items, nil
}
