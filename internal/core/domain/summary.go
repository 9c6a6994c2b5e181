package domain

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var leadingCode = regexp.MustCompile(`^[0-9/]+`)

// ExtractCode returns the numeric classification code of a label such as
// "15/01 – Sprawy wewnętrzne" ("15") or "750 – Administracja" ("750").
func ExtractCode(label string) string {
	m := leadingCode.FindString(strings.TrimSpace(label))
	if m == "" {
		return ""
	}
	return strings.SplitN(m, "/", 2)[0]
}

// BudgetRecord is one row of the classification summary. Amounts are in
// thousands, keyed by year.
type BudgetRecord struct {
	PartCode    string        `json:"partCode"`
	DeptCode    string        `json:"deptCode"`
	ChapterCode string        `json:"chapterCode"`
	Group       string        `json:"group"`
	Amounts     map[int]int64 `json:"amounts"`
}

// BudgetSummary groups items by classification with one column per year.
type BudgetSummary struct {
	Years   []int          `json:"years"`
	Records []BudgetRecord `json:"records"`
	Totals  map[int]int64  `json:"totals"`
}

var thousand = decimal.NewFromInt(1000)

// SummarizeByClassification converts items into summary records. Amounts are
// summed per classification and year, converted to thousands and rounded.
func SummarizeByClassification(items []BudgetItem) BudgetSummary {
	yearSet := map[int]bool{}
	for _, item := range items {
		yearSet[item.Year] = true
	}
	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)

	type key struct{ part, dept, chapter, group string }
	sums := map[key]map[int]decimal.Decimal{}
	for _, item := range items {
		k := key{
			part:    ExtractCode(item.BudgetSection),
			dept:    ExtractCode(item.BudgetDivision),
			chapter: ExtractCode(item.BudgetChapter),
			group:   item.Category,
		}
		if sums[k] == nil {
			sums[k] = map[int]decimal.Decimal{}
		}
		sums[k][item.Year] = sums[k][item.Year].Add(item.Amount.Div(thousand))
	}

	summary := BudgetSummary{Years: years, Totals: make(map[int]int64, len(years))}
	for _, y := range years {
		summary.Totals[y] = 0
	}
	for k, byYear := range sums {
		rec := BudgetRecord{
			PartCode:    k.part,
			DeptCode:    k.dept,
			ChapterCode: k.chapter,
			Group:       k.group,
			Amounts:     make(map[int]int64, len(years)),
		}
		for _, y := range years {
			v := byYear[y].Round(0).IntPart()
			rec.Amounts[y] = v
			summary.Totals[y] += v
		}
		summary.Records = append(summary.Records, rec)
	}
	sort.Slice(summary.Records, func(i, j int) bool {
		a, b := summary.Records[i], summary.Records[j]
		if a.PartCode != b.PartCode {
			return a.PartCode < b.PartCode
		}
		if a.DeptCode != b.DeptCode {
			return a.DeptCode < b.DeptCode
		}
		if a.ChapterCode != b.ChapterCode {
			return a.ChapterCode < b.ChapterCode
		}
		return a.Group < b.Group
	})
	return summary
}
