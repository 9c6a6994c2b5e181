package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
)

// VersionRepositoryFacade stores append-only item snapshots.
type VersionRepositoryFacade interface {
	SaveVersion(ctx context.Context, version domain.BudgetVersion) error
	FindVersionByID(ctx context.Context, versionID string) (*domain.BudgetVersion, error)
	// ListVersionsByUnit returns up to limit versions of unitID, newest first.
	// When before is set only versions strictly older than (createdAt, versionID) are returned.
	ListVersionsByUnit(ctx context.Context, unitID string, limit int, before *VersionCursor) ([]domain.BudgetVersion, error)
}

// VersionCursor is a keyset position in a version listing.
type VersionCursor struct {
	CreatedAt time.Time
	VersionID string
}
