package dto

import (
	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BudgetItemRequest defines the editable fields of a budget item.
type BudgetItemRequest struct {
	BudgetSection  string          `json:"budgetSection" binding:"required,notblank"`
	BudgetDivision string          `json:"budgetDivision" binding:"required,notblank"`
	BudgetChapter  string          `json:"budgetChapter" binding:"required,notblank"`
	Category       string          `json:"category" binding:"required,notblank"`
	Description    string          `json:"description" binding:"required,notblank"`
	Year           int             `json:"year" binding:"required,min=2000,max=2100"`
	Amount         decimal.Decimal `json:"amount"`
}

// ToFields converts the request to domain fields.
func (r BudgetItemRequest) ToFields() domain.BudgetItemFields {
	return domain.BudgetItemFields{
		BudgetSection:  r.BudgetSection,
		BudgetDivision: r.BudgetDivision,
		BudgetChapter:  r.BudgetChapter,
		Category:       r.Category,
		Description:    r.Description,
		Year:           r.Year,
		Amount:         r.Amount,
	}
}

// ListItemsParams defines query parameters for listing items.
type ListItemsParams struct {
	UnitID      string `form:"unitID"`
	Year        *int   `form:"year"`
	Status      string `form:"status" binding:"omitempty,oneof=draft pending approved rejected"`
	SubmittedTo string `form:"submittedTo"`
}

// ToFilter converts query parameters to a domain filter.
func (p ListItemsParams) ToFilter() domain.BudgetItemFilter {
	f := domain.BudgetItemFilter{Year: p.Year}
	if p.UnitID != "" {
		f.UnitIDs = []string{p.UnitID}
	}
	if p.Status != "" {
		f.Statuses = []domain.ItemStatus{domain.ItemStatus(p.Status)}
	}
	if p.SubmittedTo != "" {
		st := p.SubmittedTo
		f.SubmittedTo = &st
	}
	return f
}

// ListItemsResponse wraps a list of items.
type ListItemsResponse struct {
	Items []domain.BudgetItem `json:"items"`
	Total decimal.Decimal     `json:"total"`
}

// ToListItemsResponse wraps items with their total amount.
func ToListItemsResponse(items []domain.BudgetItem) ListItemsResponse {
	if items == nil {
		items = []domain.BudgetItem{}
	}
	return ListItemsResponse{Items: items, Total: domain.SumAmounts(items)}
}

// ReviewQueueResponse lists groups awaiting a decision.
type ReviewQueueResponse struct {
	Groups []domain.ReviewGroup `json:"groups"`
}
