package pgsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/budget_approval_app/internal/apperrors"
	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_approval_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxBudgetItemRepository struct {
	BaseRepository
}

func newPgxBudgetItemRepository(pool *pgxpool.Pool) portsrepo.BudgetItemRepositoryFacade {
	return &PgxBudgetItemRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BudgetItemRepositoryFacade = (*PgxBudgetItemRepository)(nil)

const itemSelectQuery = `
SELECT
	i.item_id, i.unit_id, i.budget_section, i.budget_division, i.budget_chapter,
	i.category, i.description, i.year, i.amount, i.status, i.comment, i.submitted_to,
	i.clarification_status, i.has_unread_comments, i.limit_amount, i.limit_status,
	i.created_at, i.created_by, i.last_updated_at, i.last_updated_by
FROM budget_items i
`

func (r *PgxBudgetItemRepository) getItems(ctx context.Context, filterQuery string, args ...any) ([]domain.BudgetItem, error) {
	rows, err := r.Pool.Query(ctx, itemSelectQuery+filterQuery, args...)
	if err != nil {
		return nil, queryErr(err, "budget items")
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.BudgetItem])
	if err != nil {
		return nil, collectErr(err, "budget item")
	}
	return items, nil
}

func (r *PgxBudgetItemRepository) FindItemByID(ctx context.Context, itemID string) (*domain.BudgetItem, error) {
	items, err := r.getItems(ctx, `WHERE i.item_id = $1`, itemID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperrors.NewNotFoundError("budget item " + itemID + " not found")
	}
	return &items[0], nil
}

func (r *PgxBudgetItemRepository) FindItemsByIDs(ctx context.Context, itemIDs []string) ([]domain.BudgetItem, error) {
	if len(itemIDs) == 0 {
		return []domain.BudgetItem{}, nil
	}
	return r.getItems(ctx, `WHERE i.item_id = ANY($1)`, itemIDs)
}

// ListItems builds the WHERE clause from the non-zero filter fields.
func (r *PgxBudgetItemRepository) ListItems(ctx context.Context, filter domain.BudgetItemFilter) ([]domain.BudgetItem, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if len(filter.UnitIDs) > 0 {
		add("i.unit_id = ANY($%d)", filter.UnitIDs)
	}
	if filter.Year != nil {
		add("i.year = $%d", *filter.Year)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		add("i.status = ANY($%d)", statuses)
	}
	if filter.SubmittedTo != nil {
		add("i.submitted_to = $%d", *filter.SubmittedTo)
	}

	query := ""
	if len(conds) > 0 {
		query = "WHERE " + strings.Join(conds, " AND ")
	}
	return r.getItems(ctx, query+" ORDER BY i.year, i.created_at, i.item_id", args...)
}

func (r *PgxBudgetItemRepository) SaveItem(ctx context.Context, item domain.BudgetItem) error {
	query := `
		INSERT INTO budget_items (
			item_id, unit_id, budget_section, budget_division, budget_chapter,
			category, description, year, amount, status, comment, submitted_to,
			clarification_status, has_unread_comments, limit_amount, limit_status,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	_, err := r.Pool.Exec(ctx, query,
		item.ItemID,
		item.UnitID,
		item.BudgetSection,
		item.BudgetDivision,
		item.BudgetChapter,
		item.Category,
		item.Description,
		item.Year,
		item.Amount,
		item.Status,
		item.Comment,
		item.SubmittedTo,
		item.ClarificationStatus,
		item.HasUnreadComments,
		item.LimitAmount,
		item.LimitStatus,
		item.CreatedAt,
		item.CreatedBy,
		item.LastUpdatedAt,
		item.LastUpdatedBy,
	)
	if err != nil {
		return writeError(err, "budget item "+item.ItemID)
	}
	return nil
}

func (r *PgxBudgetItemRepository) UpdateItem(ctx context.Context, item domain.BudgetItem) error {
	query := `
		UPDATE budget_items SET
			budget_section = $2, budget_division = $3, budget_chapter = $4,
			category = $5, description = $6, year = $7, amount = $8,
			status = $9, comment = $10, submitted_to = $11,
			clarification_status = $12, has_unread_comments = $13,
			limit_amount = $14, limit_status = $15,
			last_updated_at = $16, last_updated_by = $17
		WHERE item_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		item.ItemID,
		item.BudgetSection,
		item.BudgetDivision,
		item.BudgetChapter,
		item.Category,
		item.Description,
		item.Year,
		item.Amount,
		item.Status,
		item.Comment,
		item.SubmittedTo,
		item.ClarificationStatus,
		item.HasUnreadComments,
		item.LimitAmount,
		item.LimitStatus,
		item.LastUpdatedAt,
		item.LastUpdatedBy,
	)
	if err != nil {
		return writeError(err, "budget item "+item.ItemID)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("budget item %s: %w", item.ItemID, apperrors.ErrNotFound)
	}
	return nil
}
