package dto

import "github.com/SscSPs/budget_approval_app/internal/core/domain"

// ListVersionsParams defines paging for version listings.
type ListVersionsParams struct {
	Limit     int    `form:"limit,default=20" binding:"min=1,max=100"`
	PageToken string `form:"pageToken"`
}

// ListVersionsResponse wraps one page of versions.
type ListVersionsResponse struct {
	Versions      []domain.BudgetVersion `json:"versions"`
	NextPageToken string                 `json:"nextPageToken,omitempty"`
}

// CompareVersionsParams selects the newer side of a comparison. When empty the
// version is compared with the current items.
type CompareVersionsParams struct {
	With string `form:"with"`
}

// ComparisonResponse holds a diff and its counts.
type ComparisonResponse struct {
	Summary domain.ComparisonSummary `json:"summary"`
	Items   []domain.ItemComparison  `json:"items"`
}

// ToComparisonResponse wraps comparisons with their summary.
func ToComparisonResponse(items []domain.ItemComparison) ComparisonResponse {
	if items == nil {
		items = []domain.ItemComparison{}
	}
	return ComparisonResponse{Summary: domain.Summarize(items), Items: items}
}
