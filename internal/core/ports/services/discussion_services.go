package services

import (
	"context"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
)

// DiscussionSvcFacade manages clarification threads on budget items.
type DiscussionSvcFacade interface {
	RequestClarification(ctx context.Context, actor *domain.User, itemID, content string) (*domain.BudgetComment, error)
	AddComment(ctx context.Context, actor *domain.User, itemID, content string, parentCommentID *string) (*domain.BudgetComment, error)
	ListComments(ctx context.Context, actor *domain.User, itemID string) ([]domain.BudgetComment, error)
	MarkCommentsRead(ctx context.Context, actor *domain.User, itemID string) error
	ResolveClarification(ctx context.Context, actor *domain.User, itemID string) error
}
