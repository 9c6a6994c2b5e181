package domain_test

import (
	"testing"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCode(t *testing.T) {
	tests := map[string]string{
		"15/01 – Sprawy wewnętrzne": "15",
		"750 – Administracja":       "750",
		"  80101 – Szkoły":          "80101",
		"Bez kodu":                  "",
		"":                          "",
	}
	for in, want := range tests {
		assert.Equal(t, want, domain.ExtractCode(in), in)
	}
}

func TestSummarizeByClassification(t *testing.T) {
	item := func(section, division, chapter, category string, year int, amount string) domain.BudgetItem {
		return domain.BudgetItem{
			BudgetSection:  section,
			BudgetDivision: division,
			BudgetChapter:  chapter,
			Category:       category,
			Year:           year,
			Amount:         decimal.RequireFromString(amount),
		}
	}
	items := []domain.BudgetItem{
		item("27 – Informatyzacja", "750 – Administracja", "75001 – Urzędy", "Wydatki bieżące", 2026, "1200"),
		item("27 – Informatyzacja", "750 – Administracja", "75001 – Urzędy", "Wydatki bieżące", 2026, "800"),
		item("27 – Informatyzacja", "750 – Administracja", "75001 – Urzędy", "Wydatki bieżące", 2027, "1499"),
		item("15/01 – Sprawy", "600 – Transport", "60004 – Drogi", "Inwestycje", 2027, "2500"),
	}

	summary := domain.SummarizeByClassification(items)
	assert.Equal(t, []int{2026, 2027}, summary.Years)
	require.Len(t, summary.Records, 2)

	first := summary.Records[0]
	assert.Equal(t, "15", first.PartCode)
	assert.Equal(t, "600", first.DeptCode)
	assert.Equal(t, "60004", first.ChapterCode)
	assert.Equal(t, map[int]int64{2026: 0, 2027: 3}, first.Amounts, "2.5 thousand rounds half away from zero")

	second := summary.Records[1]
	assert.Equal(t, "27", second.PartCode)
	assert.Equal(t, map[int]int64{2026: 2, 2027: 1}, second.Amounts)

	assert.Equal(t, map[int]int64{2026: 2, 2027: 4}, summary.Totals)
}

func TestSummarizeByClassification_Empty(t *testing.T) {
	summary := domain.SummarizeByClassification(nil)
	assert.Empty(t, summary.Years)
	assert.Empty(t, summary.Records)
}
