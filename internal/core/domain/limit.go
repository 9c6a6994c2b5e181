package domain

import (
	"github.com/shopspring/decimal"
)

// UnitLimitStatus tracks a limit from request to distribution.
type UnitLimitStatus string

const (
	LimitPending     UnitLimitStatus = "pending"
	LimitAssigned    UnitLimitStatus = "assigned"
	LimitDistributed UnitLimitStatus = "distributed"
)

// UnitLimit records, per (unit, assigning unit, fiscal year), the requested
// total against the assigned limit.
type UnitLimit struct {
	LimitID          string           `json:"limitID" db:"limit_id"`
	UnitID           string           `json:"unitID" db:"unit_id"`
	AssignedByUnitID string           `json:"assignedByUnitID" db:"assigned_by_unit_id"`
	FiscalYear       int              `json:"fiscalYear" db:"fiscal_year"`
	TotalRequested   decimal.Decimal  `json:"totalRequested" db:"total_requested"`
	LimitAssigned    *decimal.Decimal `json:"limitAssigned,omitempty" db:"limit_assigned"`
	Status           UnitLimitStatus  `json:"status" db:"status"`
	AuditFields
}

// Distributable reports whether the limit can be passed further down.
func (l UnitLimit) Distributable() bool {
	return l.Status == LimitAssigned && l.LimitAssigned != nil
}

// LimitAllocation is an amount directed at a unit or an item.
type LimitAllocation struct {
	TargetID string
	Amount   decimal.Decimal
}

// ChildRequest summarizes what a direct child asked for in a fiscal year.
type ChildRequest struct {
	Unit           OrganizationalUnit `json:"unit"`
	TotalRequested decimal.Decimal    `json:"totalRequested"`
	Limit          *UnitLimit         `json:"limit,omitempty"`
}
