package services

import (
	"context"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
)

// VersionRecorderSvc snapshots a unit's subtree after a mutation.
type VersionRecorderSvc interface {
	RecordSnapshot(ctx context.Context, actor *domain.User, unitID string, action domain.VersionAction) (*domain.BudgetVersion, error)
}

// VersionPage is one page of a version listing.
type VersionPage struct {
	Versions      []domain.BudgetVersion
	NextPageToken string
}

// VersionReaderSvc defines read and comparison operations for versions
type VersionReaderSvc interface {
	ListVersions(ctx context.Context, actor *domain.User, unitID string, limit int, pageToken string) (*VersionPage, error)
	GetVersion(ctx context.Context, actor *domain.User, versionID string) (*domain.BudgetVersion, error)
	// CompareWithCurrent diffs a snapshot against the unit's current items.
	CompareWithCurrent(ctx context.Context, actor *domain.User, versionID string) ([]domain.ItemComparison, error)
	// CompareVersions diffs two snapshots of the same unit.
	CompareVersions(ctx context.Context, actor *domain.User, fromVersionID, toVersionID string) ([]domain.ItemComparison, error)
}

// VersionSvcFacade combines all version-related service interfaces
type VersionSvcFacade interface {
	VersionRecorderSvc
	VersionReaderSvc
}
