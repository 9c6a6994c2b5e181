package domain

import "time"

// BudgetComment is an entry in an item's discussion thread. Replies point at a
// top level comment; there is only one level of nesting.
type BudgetComment struct {
	CommentID       string    `json:"commentID" db:"comment_id"`
	BudgetItemID    string    `json:"budgetItemID" db:"budget_item_id"`
	AuthorID        string    `json:"authorID" db:"author_id"`
	AuthorName      string    `json:"authorName" db:"author_name"`
	Content         string    `json:"content" db:"content"`
	IsResponse      bool      `json:"isResponse" db:"is_response"`
	ParentCommentID *string   `json:"parentCommentID,omitempty" db:"parent_comment_id"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

// IsReply reports whether the comment answers another comment.
func (c BudgetComment) IsReply() bool {
	return c.ParentCommentID != nil && *c.ParentCommentID != ""
}
