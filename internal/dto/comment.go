package dto

import "github.com/SscSPs/budget_approval_app/internal/core/domain"

// ClarificationRequest opens a clarification with a question.
type ClarificationRequest struct {
	Content string `json:"content" binding:"required,notblank"`
}

// AddCommentRequest adds a comment, optionally as a reply.
type AddCommentRequest struct {
	Content         string  `json:"content" binding:"required,notblank"`
	ParentCommentID *string `json:"parentCommentID"`
}

// ListCommentsResponse wraps an item's thread.
type ListCommentsResponse struct {
	Comments []domain.BudgetComment `json:"comments"`
}
