package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/budget_approval_app/internal/apperrors"
	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_approval_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxLimitRepository struct {
	BaseRepository
}

func newPgxLimitRepository(pool *pgxpool.Pool) portsrepo.LimitRepositoryFacade {
	return &PgxLimitRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LimitRepositoryFacade = (*PgxLimitRepository)(nil)

const limitColumns = `
	l.limit_id, l.unit_id, l.assigned_by_unit_id, l.fiscal_year, l.total_requested,
	l.limit_assigned, l.status, l.created_at, l.created_by, l.last_updated_at, l.last_updated_by
`

func (r *PgxLimitRepository) getLimits(ctx context.Context, filterQuery string, args ...any) ([]domain.UnitLimit, error) {
	rows, err := r.Pool.Query(ctx, "SELECT "+limitColumns+" FROM unit_limits l "+filterQuery, args...)
	if err != nil {
		return nil, queryErr(err, "unit limits")
	}
	limits, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.UnitLimit])
	if err != nil {
		return nil, collectErr(err, "unit limit")
	}
	return limits, nil
}

func (r *PgxLimitRepository) first(ctx context.Context, filterQuery string, args ...any) (*domain.UnitLimit, error) {
	limits, err := r.getLimits(ctx, filterQuery, args...)
	if err != nil {
		return nil, err
	}
	if len(limits) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &limits[0], nil
}

func (r *PgxLimitRepository) FindLimitByID(ctx context.Context, limitID string) (*domain.UnitLimit, error) {
	return r.first(ctx, `WHERE l.limit_id = $1`, limitID)
}

func (r *PgxLimitRepository) FindLimit(ctx context.Context, unitID, assignedByUnitID string, fiscalYear int) (*domain.UnitLimit, error) {
	return r.first(ctx, `WHERE l.unit_id = $1 AND l.assigned_by_unit_id = $2 AND l.fiscal_year = $3`,
		unitID, assignedByUnitID, fiscalYear)
}

func (r *PgxLimitRepository) ListLimitsForUnit(ctx context.Context, unitID string) ([]domain.UnitLimit, error) {
	return r.getLimits(ctx, `WHERE l.unit_id = $1 ORDER BY l.fiscal_year DESC, l.created_at DESC`, unitID)
}

func (r *PgxLimitRepository) ListLimitsAssignedBy(ctx context.Context, unitID string, fiscalYear *int) ([]domain.UnitLimit, error) {
	if fiscalYear != nil {
		return r.getLimits(ctx, `WHERE l.assigned_by_unit_id = $1 AND l.fiscal_year = $2 ORDER BY l.unit_id`, unitID, *fiscalYear)
	}
	return r.getLimits(ctx, `WHERE l.assigned_by_unit_id = $1 ORDER BY l.fiscal_year DESC, l.unit_id`, unitID)
}

// UpsertLimit keeps the original id and creation audit of an existing row.
func (r *PgxLimitRepository) UpsertLimit(ctx context.Context, limit domain.UnitLimit) (*domain.UnitLimit, error) {
	query := `
		INSERT INTO unit_limits AS l (
			limit_id, unit_id, assigned_by_unit_id, fiscal_year, total_requested,
			limit_assigned, status, created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (unit_id, assigned_by_unit_id, fiscal_year) DO UPDATE SET
			total_requested = EXCLUDED.total_requested,
			limit_assigned = EXCLUDED.limit_assigned,
			status = EXCLUDED.status,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by
		RETURNING ` + limitColumns + `;`
	rows, err := r.Pool.Query(ctx, query,
		limit.LimitID,
		limit.UnitID,
		limit.AssignedByUnitID,
		limit.FiscalYear,
		limit.TotalRequested,
		limit.LimitAssigned,
		limit.Status,
		limit.CreatedAt,
		limit.CreatedBy,
		limit.LastUpdatedAt,
		limit.LastUpdatedBy,
	)
	if err != nil {
		return nil, writeError(err, "unit limit")
	}
	stored, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[domain.UnitLimit])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewAppError(500, "upsert returned no unit limit", err)
		}
		return nil, writeError(err, "unit limit")
	}
	return &stored, nil
}

func (r *PgxLimitRepository) UpdateLimitStatus(ctx context.Context, limitID string, status domain.UnitLimitStatus, updatedBy string) error {
	cmdTag, err := r.Pool.Exec(ctx, `
		UPDATE unit_limits SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE limit_id = $1;
	`, limitID, status, time.Now(), updatedBy)
	if err != nil {
		return writeError(err, "unit limit "+limitID)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("unit limit %s: %w", limitID, apperrors.ErrNotFound)
	}
	return nil
}
