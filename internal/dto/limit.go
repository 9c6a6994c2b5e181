package dto

import (
	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AllocationRequest directs an amount at a unit or an item.
type AllocationRequest struct {
	TargetID string          `json:"targetID" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

// ToAllocations converts requests to domain allocations.
func ToAllocations(reqs []AllocationRequest) []domain.LimitAllocation {
	out := make([]domain.LimitAllocation, len(reqs))
	for i, r := range reqs {
		out[i] = domain.LimitAllocation{TargetID: r.TargetID, Amount: r.Amount}
	}
	return out
}

// AssignChildLimitsRequest sets limits for direct children in a fiscal year.
type AssignChildLimitsRequest struct {
	Year        int                 `json:"year" binding:"required,min=2000,max=2100"`
	Allocations []AllocationRequest `json:"allocations" binding:"required,min=1,dive"`
}

// DistributeLimitRequest passes a received limit on to children or items.
type DistributeLimitRequest struct {
	Allocations []AllocationRequest `json:"allocations" binding:"required,min=1,dive"`
}

// AssignItemLimitsRequest sets per-item limits, approving them when Approve is set.
type AssignItemLimitsRequest struct {
	Allocations []AllocationRequest `json:"allocations" binding:"required,min=1,dive"`
	Approve     bool                `json:"approve"`
}

// ChildRequestsParams selects the fiscal year of child requests.
type ChildRequestsParams struct {
	Year int `form:"year" binding:"required,min=2000,max=2100"`
}

// ListLimitsResponse wraps a list of limits.
type ListLimitsResponse struct {
	Limits []domain.UnitLimit `json:"limits"`
}

// ChildRequestsResponse wraps the per-child request totals.
type ChildRequestsResponse struct {
	Children []domain.ChildRequest `json:"children"`
}
