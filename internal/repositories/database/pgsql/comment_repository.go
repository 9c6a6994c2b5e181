package pgsql

import (
	"context"

	"github.com/SscSPs/budget_approval_app/internal/apperrors"
	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_approval_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCommentRepository struct {
	BaseRepository
}

func newPgxCommentRepository(pool *pgxpool.Pool) portsrepo.CommentRepositoryFacade {
	return &PgxCommentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CommentRepositoryFacade = (*PgxCommentRepository)(nil)

const commentSelectQuery = `
SELECT c.comment_id, c.budget_item_id, c.author_id, c.author_name, c.content,
	c.is_response, c.parent_comment_id, c.created_at
FROM budget_comments c
`

func (r *PgxCommentRepository) getComments(ctx context.Context, filterQuery string, args ...any) ([]domain.BudgetComment, error) {
	rows, err := r.Pool.Query(ctx, commentSelectQuery+filterQuery, args...)
	if err != nil {
		return nil, queryErr(err, "comments")
	}
	comments, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.BudgetComment])
	if err != nil {
		return nil, collectErr(err, "comment")
	}
	return comments, nil
}

func (r *PgxCommentRepository) SaveComment(ctx context.Context, comment domain.BudgetComment) error {
	query := `
		INSERT INTO budget_comments (
			comment_id, budget_item_id, author_id, author_name, content,
			is_response, parent_comment_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		comment.CommentID,
		comment.BudgetItemID,
		comment.AuthorID,
		comment.AuthorName,
		comment.Content,
		comment.IsResponse,
		comment.ParentCommentID,
		comment.CreatedAt,
	)
	if err != nil {
		return writeError(err, "comment "+comment.CommentID)
	}
	return nil
}

func (r *PgxCommentRepository) FindCommentByID(ctx context.Context, commentID string) (*domain.BudgetComment, error) {
	comments, err := r.getComments(ctx, `WHERE c.comment_id = $1`, commentID)
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &comments[0], nil
}

func (r *PgxCommentRepository) ListCommentsByItem(ctx context.Context, itemID string) ([]domain.BudgetComment, error) {
	return r.getComments(ctx, `WHERE c.budget_item_id = $1 ORDER BY c.created_at, c.comment_id`, itemID)
}
