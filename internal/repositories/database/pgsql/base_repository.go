package pgsql

import (
	"context"
	"errors"
	"net/http"

	"github.com/SscSPs/budget_approval_app/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to rollback transaction", err)
	}
	return nil
}

// writeError translates constraint violations into application errors.
func writeError(err error, what string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperrors.NewConflictError(what + " already exists")
		case pgForeignKeyViolation:
			return apperrors.NewValidationFailedError(what + " references a missing record (" + pgErr.ConstraintName + ")")
		case pgCheckViolation:
			return apperrors.NewValidationFailedError(what + " has an invalid value (" + pgErr.ConstraintName + ")")
		}
	}
	return apperrors.NewAppError(http.StatusInternalServerError, "failed to save "+what, err)
}

func collectErr(err error, what string) error {
	return apperrors.NewAppError(http.StatusInternalServerError, "failed to collect "+what+" rows", err)
}

func queryErr(err error, what string) error {
	return apperrors.NewAppError(http.StatusInternalServerError, "failed to query "+what, err)
}
