package pgsql

import (
	"context"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_approval_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxSubmissionRepository struct {
	BaseRepository
}

func newPgxSubmissionRepository(pool *pgxpool.Pool) portsrepo.SubmissionRepositoryFacade {
	return &PgxSubmissionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SubmissionRepositoryFacade = (*PgxSubmissionRepository)(nil)

// SaveSubmission writes the batch and its item links in one transaction.
func (r *PgxSubmissionRepository) SaveSubmission(ctx context.Context, submission domain.BudgetSubmission) (err error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = r.Rollback(ctx, tx)
		}
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO budget_submissions (submission_id, from_unit_id, to_unit_id, status, submitted_at, submitted_by)
		VALUES ($1, $2, $3, $4, $5, $6);
	`,
		submission.SubmissionID,
		submission.FromUnitID,
		submission.ToUnitID,
		submission.Status,
		submission.SubmittedAt,
		submission.SubmittedBy,
	)
	if err != nil {
		return writeError(err, "submission "+submission.SubmissionID)
	}

	batch := &pgx.Batch{}
	for _, itemID := range submission.BudgetItemIDs {
		batch.Queue(`INSERT INTO budget_submission_items (submission_id, budget_item_id) VALUES ($1, $2);`,
			submission.SubmissionID, itemID)
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return writeError(err, "submission items of "+submission.SubmissionID)
	}

	return r.Commit(ctx, tx)
}

func (r *PgxSubmissionRepository) ListSubmissionsForUnit(ctx context.Context, unitID string) ([]domain.BudgetSubmission, error) {
	query := `
		SELECT
			s.submission_id, s.from_unit_id, s.to_unit_id, s.status, s.submitted_at, s.submitted_by,
			COALESCE(array_agg(si.budget_item_id ORDER BY si.budget_item_id) FILTER (WHERE si.budget_item_id IS NOT NULL), '{}') AS item_ids
		FROM budget_submissions s
		LEFT JOIN budget_submission_items si ON si.submission_id = s.submission_id
		WHERE s.from_unit_id = $1 OR s.to_unit_id = $1
		GROUP BY s.submission_id
		ORDER BY s.submitted_at DESC, s.submission_id DESC;
	`
	rows, err := r.Pool.Query(ctx, query, unitID)
	if err != nil {
		return nil, queryErr(err, "submissions")
	}
	submissions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.BudgetSubmission, error) {
		var s domain.BudgetSubmission
		err := row.Scan(&s.SubmissionID, &s.FromUnitID, &s.ToUnitID, &s.Status, &s.SubmittedAt, &s.SubmittedBy, &s.BudgetItemIDs)
		return s, err
	})
	if err != nil {
		return nil, collectErr(err, "submission")
	}
	return submissions, nil
}
