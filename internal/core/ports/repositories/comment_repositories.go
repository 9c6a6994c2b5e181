package repositories

import (
	"context"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
)

// CommentRepositoryFacade stores discussion comments.
type CommentRepositoryFacade interface {
	SaveComment(ctx context.Context, comment domain.BudgetComment) error
	FindCommentByID(ctx context.Context, commentID string) (*domain.BudgetComment, error)
	// ListCommentsByItem returns the thread of an item, oldest first.
	ListCommentsByItem(ctx context.Context, itemID string) ([]domain.BudgetComment, error)
}
