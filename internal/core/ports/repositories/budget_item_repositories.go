package repositories

import (
	"context"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
)

// BudgetItemReader defines read operations for budget items
type BudgetItemReader interface {
	FindItemByID(ctx context.Context, itemID string) (*domain.BudgetItem, error)
	FindItemsByIDs(ctx context.Context, itemIDs []string) ([]domain.BudgetItem, error)
	// ListItems returns items matching the filter ordered by year and creation time.
	ListItems(ctx context.Context, filter domain.BudgetItemFilter) ([]domain.BudgetItem, error)
}

// BudgetItemWriter defines write operations for budget items
type BudgetItemWriter interface {
	SaveItem(ctx context.Context, item domain.BudgetItem) error
	// UpdateItem overwrites the mutable columns of an existing item.
	UpdateItem(ctx context.Context, item domain.BudgetItem) error
}

// BudgetItemRepositoryFacade combines all item-related repository interfaces
type BudgetItemRepositoryFacade interface {
	BudgetItemReader
	BudgetItemWriter
}
