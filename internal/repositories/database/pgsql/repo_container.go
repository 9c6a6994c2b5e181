package pgsql

import (
	portsrepo "github.com/SscSPs/budget_approval_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UnitRepo:       newPgxUnitRepository(dbPool),
		UserRepo:       newPgxUserRepository(dbPool),
		ItemRepo:       newPgxBudgetItemRepository(dbPool),
		SubmissionRepo: newPgxSubmissionRepository(dbPool),
		CommentRepo:    newPgxCommentRepository(dbPool),
		VersionRepo:    newPgxVersionRepository(dbPool),
		LimitRepo:      newPgxLimitRepository(dbPool),
	}
}
