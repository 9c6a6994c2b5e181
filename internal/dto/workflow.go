package dto

import (
	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ApproveRequest carries an optional approval comment.
type ApproveRequest struct {
	Comment *string `json:"comment"`
}

// CommentedDecisionRequest is used for rejections and returns, which need a reason.
type CommentedDecisionRequest struct {
	Comment string `json:"comment" binding:"required,notblank"`
}

// GroupApproveRequest approves a unit and year group, optionally recording a limit.
type GroupApproveRequest struct {
	Comment *string          `json:"comment"`
	Limit   *decimal.Decimal `json:"limit"`
}

// GroupDecisionResponse lists the items changed by a group decision.
type GroupDecisionResponse struct {
	UnitID string              `json:"unitID"`
	Year   int                 `json:"year"`
	Items  []domain.BudgetItem `json:"items"`
}

// SubmissionResponse reports the batch created by a submit or forward. Submission
// is null when there was nothing to send.
type SubmissionResponse struct {
	Submission *domain.BudgetSubmission `json:"submission"`
}

// ListSubmissionsResponse wraps a list of submissions.
type ListSubmissionsResponse struct {
	Submissions []domain.BudgetSubmission `json:"submissions"`
}
