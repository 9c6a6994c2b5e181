package repositories

import (
	"context"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
)

// SubmissionRepositoryFacade stores submission batches and their item membership.
type SubmissionRepositoryFacade interface {
	SaveSubmission(ctx context.Context, submission domain.BudgetSubmission) error
	// ListSubmissionsForUnit lists batches sent from or to unitID, newest first.
	ListSubmissionsForUnit(ctx context.Context, unitID string) ([]domain.BudgetSubmission, error)
}
