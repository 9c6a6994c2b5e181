package services

import (
	"context"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
)

// BudgetItemReaderSvc defines read operations for budget items
type BudgetItemReaderSvc interface {
	GetItem(ctx context.Context, actor *domain.User, itemID string) (*domain.BudgetItem, error)
	// ListItems lists items of the units the actor may see, narrowed by filter.
	ListItems(ctx context.Context, actor *domain.User, filter domain.BudgetItemFilter) ([]domain.BudgetItem, error)
	// ListReviewQueue groups the items held by the actor's unit by source unit and year.
	ListReviewQueue(ctx context.Context, actor *domain.User) ([]domain.ReviewGroup, error)
}

// BudgetItemWriterSvc defines write operations for budget items
type BudgetItemWriterSvc interface {
	CreateItem(ctx context.Context, actor *domain.User, fields domain.BudgetItemFields) (*domain.BudgetItem, error)
	UpdateItem(ctx context.Context, actor *domain.User, itemID string, fields domain.BudgetItemFields) (*domain.BudgetItem, error)
}

// BudgetItemSvcFacade combines all item-related service interfaces
type BudgetItemSvcFacade interface {
	BudgetItemReaderSvc
	BudgetItemWriterSvc
}
