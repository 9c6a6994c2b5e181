package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/budget_approval_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// ItemStatus is the lifecycle state of a budget item.
type ItemStatus string

const (
	ItemStatusDraft    ItemStatus = "draft"
	ItemStatusPending  ItemStatus = "pending"
	ItemStatusApproved ItemStatus = "approved"
	ItemStatusRejected ItemStatus = "rejected"
)

// ClarificationStatus tracks the discussion sub-workflow of an item.
type ClarificationStatus string

const (
	ClarificationNone      ClarificationStatus = "none"
	ClarificationRequested ClarificationStatus = "requested"
	ClarificationResponded ClarificationStatus = "responded"
	ClarificationResolved  ClarificationStatus = "resolved"
)

// Open reports whether the clarification still waits for a reviewer's resolution.
func (c ClarificationStatus) Open() bool {
	return c == ClarificationRequested || c == ClarificationResponded
}

// ItemLimitStatus tracks whether a spending limit has reached the item.
type ItemLimitStatus string

const (
	ItemLimitNotAssigned ItemLimitStatus = "not_assigned"
	ItemLimitAssigned    ItemLimitStatus = "limits_assigned"
	ItemLimitDistributed ItemLimitStatus = "limits_distributed"
)

const (
	MinBudgetYear = 2000
	MaxBudgetYear = 2100
)

// BudgetItem is a single budget line drafted by a leaf unit.
type BudgetItem struct {
	ItemID              string              `json:"itemID" db:"item_id"`
	UnitID              string              `json:"unitID" db:"unit_id"`
	BudgetSection       string              `json:"budgetSection" db:"budget_section"`
	BudgetDivision      string              `json:"budgetDivision" db:"budget_division"`
	BudgetChapter       string              `json:"budgetChapter" db:"budget_chapter"`
	Category            string              `json:"category" db:"category"`
	Description         string              `json:"description" db:"description"`
	Year                int                 `json:"year" db:"year"`
	Amount              decimal.Decimal     `json:"amount" db:"amount"`
	Status              ItemStatus          `json:"status" db:"status"`
	Comment             *string             `json:"comment,omitempty" db:"comment"`
	SubmittedTo         *string             `json:"submittedTo,omitempty" db:"submitted_to"`
	ClarificationStatus ClarificationStatus `json:"clarificationStatus" db:"clarification_status"`
	HasUnreadComments   bool                `json:"hasUnreadComments" db:"has_unread_comments"`
	LimitAmount         *decimal.Decimal    `json:"limitAmount,omitempty" db:"limit_amount"`
	LimitStatus         ItemLimitStatus     `json:"limitStatus" db:"limit_status"`
	AuditFields
}

// BudgetItemFields are the user editable classification and amount fields.
type BudgetItemFields struct {
	BudgetSection  string
	BudgetDivision string
	BudgetChapter  string
	Category       string
	Description    string
	Year           int
	Amount         decimal.Decimal
}

// Validate checks required fields and ranges.
func (f BudgetItemFields) Validate() error {
	required := map[string]string{
		"budgetSection":  f.BudgetSection,
		"budgetDivision": f.BudgetDivision,
		"budgetChapter":  f.BudgetChapter,
		"category":       f.Category,
		"description":    f.Description,
	}
	for _, name := range []string{"budgetSection", "budgetDivision", "budgetChapter", "category", "description"} {
		if strings.TrimSpace(required[name]) == "" {
			return fmt.Errorf("%w: %s is required", apperrors.ErrValidation, name)
		}
	}
	if f.Year < MinBudgetYear || f.Year > MaxBudgetYear {
		return fmt.Errorf("%w: year must be between %d and %d", apperrors.ErrValidation, MinBudgetYear, MaxBudgetYear)
	}
	if !f.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrValidation)
	}
	return nil
}

// NewBudgetItem builds a draft item for unitID.
func NewBudgetItem(id, unitID string, f BudgetItemFields, createdBy string, at time.Time) BudgetItem {
	item := BudgetItem{
		ItemID:              id,
		UnitID:              unitID,
		Status:              ItemStatusDraft,
		ClarificationStatus: ClarificationNone,
		LimitStatus:         ItemLimitNotAssigned,
		AuditFields:         NewAuditFields(createdBy, at),
	}
	item.applyFields(f)
	return item
}

func (i *BudgetItem) applyFields(f BudgetItemFields) {
	i.BudgetSection = strings.TrimSpace(f.BudgetSection)
	i.BudgetDivision = strings.TrimSpace(f.BudgetDivision)
	i.BudgetChapter = strings.TrimSpace(f.BudgetChapter)
	i.Category = strings.TrimSpace(f.Category)
	i.Description = strings.TrimSpace(f.Description)
	i.Year = f.Year
	i.Amount = f.Amount
}

// Edit replaces the editable fields. Only drafts can be edited.
func (i *BudgetItem) Edit(f BudgetItemFields) error {
	if i.Status != ItemStatusDraft {
		return i.transitionError("edit")
	}
	i.applyFields(f)
	return nil
}

// Submit hands a draft to the parent unit.
func (i *BudgetItem) Submit(parentUnitID string) error {
	if i.Status != ItemStatusDraft {
		return i.transitionError("submit")
	}
	i.Status = ItemStatusPending
	i.SubmittedTo = &parentUnitID
	return nil
}

// Approve accepts a pending item. SubmittedTo keeps pointing at the approving
// unit so that it can forward the item later. A blank comment clears any
// earlier one.
func (i *BudgetItem) Approve(comment *string) error {
	if i.Status != ItemStatusPending {
		return i.transitionError("approve")
	}
	i.Status = ItemStatusApproved
	if comment == nil {
		i.setComment("")
	} else {
		i.setComment(*comment)
	}
	return nil
}

// Reject refuses a pending item. Rejected items do not move again.
func (i *BudgetItem) Reject(comment string) error {
	if i.Status != ItemStatusPending {
		return i.transitionError("reject")
	}
	i.Status = ItemStatusRejected
	i.setComment(comment)
	return nil
}

// Return sends a pending item back to its owner as a draft.
func (i *BudgetItem) Return(comment string) error {
	if i.Status != ItemStatusPending {
		return i.transitionError("return")
	}
	i.Status = ItemStatusDraft
	i.SubmittedTo = nil
	i.setComment(comment)
	return nil
}

// Forward moves an approved item one level up.
func (i *BudgetItem) Forward(parentUnitID string) error {
	if i.Status != ItemStatusApproved {
		return i.transitionError("forward")
	}
	i.Status = ItemStatusPending
	i.SubmittedTo = &parentUnitID
	return nil
}

// IsHeldBy reports whether unitID currently holds the item.
func (i BudgetItem) IsHeldBy(unitID string) bool {
	return i.SubmittedTo != nil && *i.SubmittedTo == unitID
}

func (i *BudgetItem) setComment(comment string) {
	c := strings.TrimSpace(comment)
	if c == "" {
		i.Comment = nil
		return
	}
	i.Comment = &c
}

func (i BudgetItem) transitionError(action string) error {
	return fmt.Errorf("%w: cannot %s item %s with status %s", apperrors.ErrInvalidTransition, action, i.ItemID, i.Status)
}

// BudgetItemFilter narrows item listings. Zero values mean no restriction.
type BudgetItemFilter struct {
	UnitIDs     []string
	Year        *int
	Statuses    []ItemStatus
	SubmittedTo *string
}

// SumAmounts adds up the amounts of items.
func SumAmounts(items []BudgetItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
	}
	return total
}

// ItemIDs lists the ids of items in order.
func ItemIDs(items []BudgetItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ItemID
	}
	return ids
}
