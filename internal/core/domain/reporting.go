package domain

import "github.com/shopspring/decimal"

// StatusTotals counts items and sums amounts per status.
type StatusTotals struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// UnitOverview summarizes the items owned by one unit.
type UnitOverview struct {
	Unit     OrganizationalUnit          `json:"unit"`
	ByStatus map[ItemStatus]StatusTotals `json:"byStatus"`
	Total    decimal.Decimal             `json:"total"`
}

// BudgetOverview is the administrative view over all items.
type BudgetOverview struct {
	ByStatus map[ItemStatus]StatusTotals `json:"byStatus"`
	Units    []UnitOverview              `json:"units"`
	Total    decimal.Decimal             `json:"total"`
}

// ReviewGroup is a batch of items from one unit and year held by a reviewing unit.
type ReviewGroup struct {
	Unit                  OrganizationalUnit `json:"unit"`
	Year                  int                `json:"year"`
	Items                 []BudgetItem       `json:"items"`
	Total                 decimal.Decimal    `json:"total"`
	PendingCount          int                `json:"pendingCount"`
	UnresolvedDiscussions int                `json:"unresolvedDiscussions"`
}

// CanApprove reports whether the group may be approved as a whole.
func (g ReviewGroup) CanApprove() bool {
	return g.PendingCount > 0 && g.UnresolvedDiscussions == 0
}
