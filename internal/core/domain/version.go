package domain

import (
	"sort"
	"strconv"
	"time"
)

// VersionAction names the mutation that triggered a snapshot.
type VersionAction string

const (
	VersionSubmitted      VersionAction = "submitted"
	VersionApproved       VersionAction = "approved"
	VersionRejected       VersionAction = "rejected"
	VersionReturned       VersionAction = "returned"
	VersionEdited         VersionAction = "edited"
	VersionLimitsAssigned VersionAction = "limits_assigned"
)

// BudgetVersion is an append-only snapshot of the items in a unit's subtree.
type BudgetVersion struct {
	VersionID     string        `json:"versionID" db:"version_id"`
	UnitID        string        `json:"unitID" db:"unit_id"`
	Action        VersionAction `json:"action" db:"action"`
	ItemsSnapshot []BudgetItem  `json:"itemsSnapshot" db:"items_snapshot"`
	CreatedBy     string        `json:"createdBy" db:"created_by"`
	CreatedByName string        `json:"createdByName" db:"created_by_name"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
}

// ComparisonStatus classifies an item across two snapshots.
type ComparisonStatus string

const (
	ComparisonNew       ComparisonStatus = "new"
	ComparisonRemoved   ComparisonStatus = "removed"
	ComparisonModified  ComparisonStatus = "modified"
	ComparisonUnchanged ComparisonStatus = "unchanged"
)

// FieldChange is a single differing field of a modified item.
type FieldChange struct {
	Field      string `json:"field"`
	FieldLabel string `json:"fieldLabel"`
	OldValue   string `json:"oldValue"`
	NewValue   string `json:"newValue"`
}

// ItemComparison is the diff result for one item id.
type ItemComparison struct {
	ID      string           `json:"id"`
	Status  ComparisonStatus `json:"status"`
	OldItem *BudgetItem      `json:"oldItem,omitempty"`
	NewItem *BudgetItem      `json:"newItem,omitempty"`
	Changes []FieldChange    `json:"changes,omitempty"`
}

type comparedField struct {
	key   string
	label string
	value func(BudgetItem) string
}

// Labels follow the vocabulary of the budget classification users work with.
var comparedFields = []comparedField{
	{"budgetSection", "Część budżetowa", func(i BudgetItem) string { return i.BudgetSection }},
	{"budgetDivision", "Dział", func(i BudgetItem) string { return i.BudgetDivision }},
	{"budgetChapter", "Rozdział", func(i BudgetItem) string { return i.BudgetChapter }},
	{"category", "Kategoria", func(i BudgetItem) string { return i.Category }},
	{"description", "Opis", func(i BudgetItem) string { return i.Description }},
	{"amount", "Kwota", func(i BudgetItem) string { return i.Amount.StringFixed(2) }},
	{"year", "Rok", func(i BudgetItem) string { return strconv.Itoa(i.Year) }},
	{"status", "Status", func(i BudgetItem) string { return string(i.Status) }},
}

// CompareVersions diffs two item sets by id. The result is sorted by id.
func CompareVersions(oldItems, newItems []BudgetItem) []ItemComparison {
	oldByID := make(map[string]BudgetItem, len(oldItems))
	for _, item := range oldItems {
		oldByID[item.ItemID] = item
	}
	newByID := make(map[string]BudgetItem, len(newItems))
	for _, item := range newItems {
		newByID[item.ItemID] = item
	}

	ids := make([]string, 0, len(oldByID)+len(newByID))
	for id := range oldByID {
		ids = append(ids, id)
	}
	for id := range newByID {
		if _, seen := oldByID[id]; !seen {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	result := make([]ItemComparison, 0, len(ids))
	for _, id := range ids {
		oldItem, inOld := oldByID[id]
		newItem, inNew := newByID[id]
		switch {
		case !inOld:
			result = append(result, ItemComparison{ID: id, Status: ComparisonNew, NewItem: &newItem})
		case !inNew:
			result = append(result, ItemComparison{ID: id, Status: ComparisonRemoved, OldItem: &oldItem})
		default:
			changes := itemChanges(oldItem, newItem)
			status := ComparisonUnchanged
			if len(changes) > 0 {
				status = ComparisonModified
			}
			result = append(result, ItemComparison{
				ID:      id,
				Status:  status,
				OldItem: &oldItem,
				NewItem: &newItem,
				Changes: changes,
			})
		}
	}
	return result
}

func itemChanges(oldItem, newItem BudgetItem) []FieldChange {
	var changes []FieldChange
	for _, f := range comparedFields {
		before, after := f.value(oldItem), f.value(newItem)
		if before != after {
			changes = append(changes, FieldChange{
				Field:      f.key,
				FieldLabel: f.label,
				OldValue:   before,
				NewValue:   after,
			})
		}
	}
	return changes
}

// ComparisonSummary counts results by status.
type ComparisonSummary struct {
	New       int `json:"new"`
	Removed   int `json:"removed"`
	Modified  int `json:"modified"`
	Unchanged int `json:"unchanged"`
}

// Summarize counts comparisons by status.
func Summarize(comparisons []ItemComparison) ComparisonSummary {
	var s ComparisonSummary
	for _, c := range comparisons {
		switch c.Status {
		case ComparisonNew:
			s.New++
		case ComparisonRemoved:
			s.Removed++
		case ComparisonModified:
			s.Modified++
		default:
			s.Unchanged++
		}
	}
	return s
}
