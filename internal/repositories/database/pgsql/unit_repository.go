package pgsql

import (
	"context"

	"github.com/SscSPs/budget_approval_app/internal/apperrors"
	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_approval_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxUnitRepository struct {
	BaseRepository
}

func newPgxUnitRepository(pool *pgxpool.Pool) portsrepo.UnitRepositoryFacade {
	return &PgxUnitRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.UnitRepositoryFacade = (*PgxUnitRepository)(nil)

const unitSelectQuery = `
SELECT u.unit_id, u.name, u.unit_type, u.parent_id, u.created_at
FROM organizational_units u
`

func (r *PgxUnitRepository) getUnits(ctx context.Context, filterQuery string, args ...any) ([]domain.OrganizationalUnit, error) {
	rows, err := r.Pool.Query(ctx, unitSelectQuery+filterQuery, args...)
	if err != nil {
		return nil, queryErr(err, "units")
	}
	units, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.OrganizationalUnit])
	if err != nil {
		return nil, collectErr(err, "unit")
	}
	return units, nil
}

func (r *PgxUnitRepository) FindUnitByID(ctx context.Context, unitID string) (*domain.OrganizationalUnit, error) {
	units, err := r.getUnits(ctx, `WHERE u.unit_id = $1`, unitID)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &units[0], nil
}

func (r *PgxUnitRepository) ListUnits(ctx context.Context) ([]domain.OrganizationalUnit, error) {
	return r.getUnits(ctx, `ORDER BY u.name`)
}

func (r *PgxUnitRepository) SaveUnit(ctx context.Context, unit domain.OrganizationalUnit) error {
	query := `
		INSERT INTO organizational_units (unit_id, name, unit_type, parent_id, created_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.Pool.Exec(ctx, query, unit.UnitID, unit.Name, unit.Type, unit.ParentID, unit.CreatedAt)
	if err != nil {
		return writeError(err, "unit "+unit.UnitID)
	}
	return nil
}
