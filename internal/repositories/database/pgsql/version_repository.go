package pgsql

import (
	"context"

	"github.com/SscSPs/budget_approval_app/internal/apperrors"
	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_approval_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxVersionRepository struct {
	BaseRepository
}

func newPgxVersionRepository(pool *pgxpool.Pool) portsrepo.VersionRepositoryFacade {
	return &PgxVersionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.VersionRepositoryFacade = (*PgxVersionRepository)(nil)

const versionSelectQuery = `
SELECT v.version_id, v.unit_id, v.action, v.items_snapshot, v.created_by, v.created_by_name, v.created_at
FROM budget_versions v
`

func (r *PgxVersionRepository) getVersions(ctx context.Context, filterQuery string, args ...any) ([]domain.BudgetVersion, error) {
	rows, err := r.Pool.Query(ctx, versionSelectQuery+filterQuery, args...)
	if err != nil {
		return nil, queryErr(err, "versions")
	}
	versions, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.BudgetVersion])
	if err != nil {
		return nil, collectErr(err, "version")
	}
	return versions, nil
}

// SaveVersion stores the snapshot as JSONB.
func (r *PgxVersionRepository) SaveVersion(ctx context.Context, version domain.BudgetVersion) error {
	snapshot := version.ItemsSnapshot
	if snapshot == nil {
		snapshot = []domain.BudgetItem{}
	}
	query := `
		INSERT INTO budget_versions (version_id, unit_id, action, items_snapshot, created_by, created_by_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query,
		version.VersionID,
		version.UnitID,
		version.Action,
		snapshot,
		version.CreatedBy,
		version.CreatedByName,
		version.CreatedAt,
	)
	if err != nil {
		return writeError(err, "version "+version.VersionID)
	}
	return nil
}

func (r *PgxVersionRepository) FindVersionByID(ctx context.Context, versionID string) (*domain.BudgetVersion, error) {
	versions, err := r.getVersions(ctx, `WHERE v.version_id = $1`, versionID)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &versions[0], nil
}

func (r *PgxVersionRepository) ListVersionsByUnit(ctx context.Context, unitID string, limit int, before *portsrepo.VersionCursor) ([]domain.BudgetVersion, error) {
	if before == nil {
		return r.getVersions(ctx, `
			WHERE v.unit_id = $1
			ORDER BY v.created_at DESC, v.version_id DESC
			LIMIT $2`, unitID, limit)
	}
	return r.getVersions(ctx, `
		WHERE v.unit_id = $1 AND (v.created_at, v.version_id) < ($2, $3)
		ORDER BY v.created_at DESC, v.version_id DESC
		LIMIT $4`, unitID, before.CreatedAt, before.VersionID, limit)
}
