package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	UnitRepo       UnitRepositoryFacade
	UserRepo       UserRepositoryFacade
	ItemRepo       BudgetItemRepositoryFacade
	SubmissionRepo SubmissionRepositoryFacade
	CommentRepo    CommentRepositoryFacade
	VersionRepo    VersionRepositoryFacade
	LimitRepo      LimitRepositoryFacade
}
