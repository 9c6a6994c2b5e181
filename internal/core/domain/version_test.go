package domain_test

import (
	"testing"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotItem(id string, amount int64, status domain.ItemStatus) domain.BudgetItem {
	return domain.BudgetItem{
		ItemID:         id,
		BudgetSection:  "30",
		BudgetDivision: "801",
		BudgetChapter:  "80101",
		Category:       "Wydatki bieżące",
		Description:    "Opis " + id,
		Year:           2026,
		Amount:         decimal.NewFromInt(amount),
		Status:         status,
	}
}

func TestCompareVersions(t *testing.T) {
	oldItems := []domain.BudgetItem{
		snapshotItem("a", 100, domain.ItemStatusPending),
		snapshotItem("b", 200, domain.ItemStatusPending),
		snapshotItem("c", 300, domain.ItemStatusDraft),
	}
	changed := snapshotItem("b", 250, domain.ItemStatusApproved)
	newItems := []domain.BudgetItem{
		snapshotItem("a", 100, domain.ItemStatusPending),
		changed,
		snapshotItem("d", 400, domain.ItemStatusDraft),
	}

	result := domain.CompareVersions(oldItems, newItems)
	require.Len(t, result, 4)

	assert.Equal(t, "a", result[0].ID)
	assert.Equal(t, domain.ComparisonUnchanged, result[0].Status)
	assert.Empty(t, result[0].Changes)

	assert.Equal(t, "b", result[1].ID)
	assert.Equal(t, domain.ComparisonModified, result[1].Status)
	require.Len(t, result[1].Changes, 2)
	assert.Equal(t, domain.FieldChange{Field: "amount", FieldLabel: "Kwota", OldValue: "200.00", NewValue: "250.00"}, result[1].Changes[0])
	assert.Equal(t, "status", result[1].Changes[1].Field)
	assert.Equal(t, "pending", result[1].Changes[1].OldValue)
	assert.Equal(t, "approved", result[1].Changes[1].NewValue)

	assert.Equal(t, domain.ComparisonRemoved, result[2].Status)
	assert.Nil(t, result[2].NewItem)
	assert.Equal(t, "c", result[2].OldItem.ItemID)

	assert.Equal(t, domain.ComparisonNew, result[3].Status)
	assert.Nil(t, result[3].OldItem)

	assert.Equal(t, domain.ComparisonSummary{New: 1, Removed: 1, Modified: 1, Unchanged: 1}, domain.Summarize(result))
}

func TestCompareVersions_AmountScaleIgnored(t *testing.T) {
	a := snapshotItem("a", 0, domain.ItemStatusDraft)
	a.Amount = decimal.RequireFromString("100")
	b := a
	b.Amount = decimal.RequireFromString("100.00")

	result := domain.CompareVersions([]domain.BudgetItem{a}, []domain.BudgetItem{b})
	require.Len(t, result, 1)
	assert.Equal(t, domain.ComparisonUnchanged, result[0].Status)
}

func TestCompareVersions_Empty(t *testing.T) {
	assert.Empty(t, domain.CompareVersions(nil, nil))
}
