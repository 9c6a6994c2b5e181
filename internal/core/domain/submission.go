package domain

import "time"

// SubmissionStatus is the state of a submission batch.
type SubmissionStatus string

const (
	SubmissionDraft    SubmissionStatus = "draft"
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionReturned SubmissionStatus = "returned"
)

// BudgetSubmission is an audit record of a batch of items handed from one unit to another.
type BudgetSubmission struct {
	SubmissionID  string           `json:"submissionID" db:"submission_id"`
	FromUnitID    string           `json:"fromUnitID" db:"from_unit_id"`
	ToUnitID      string           `json:"toUnitID" db:"to_unit_id"`
	Status        SubmissionStatus `json:"status" db:"status"`
	BudgetItemIDs []string         `json:"budgetItemIDs" db:"-"`
	SubmittedAt   time.Time        `json:"submittedAt" db:"submitted_at"`
	SubmittedBy   string           `json:"submittedBy" db:"submitted_by"`
}
