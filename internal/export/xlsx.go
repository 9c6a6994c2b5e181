package export

import (
	"fmt"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	"github.com/xuri/excelize/v2"
)

// XlsxContentType is the media type of generated workbooks.
const XlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const summarySheet = "Zestawienie"

// BuildXlsx renders summary as a single sheet workbook with a totals row.
func BuildXlsx(summary domain.BudgetSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Family: docFont},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	headers := []string{"Część budżetowa", "Dział", "Rozdział", "Grupa wydatków"}
	for _, y := range summary.Years {
		headers = append(headers, fmt.Sprintf("%d rok", y))
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(summarySheet, cell, h); err != nil {
			return nil, err
		}
	}

	row := 2
	for _, rec := range summary.Records {
		values := []any{rec.PartCode, rec.DeptCode, rec.ChapterCode, rec.Group}
		for _, y := range summary.Years {
			values = append(values, rec.Amounts[y])
		}
		if err := setRow(f, row, values); err != nil {
			return nil, err
		}
		row++
	}

	totals := []any{"x", "x", "x", "OGÓŁEM:"}
	for _, y := range summary.Years {
		totals = append(totals, summary.Totals[y])
	}
	if err := setRow(f, row, totals); err != nil {
		return nil, err
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetCellStyle(summarySheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(summarySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", lastCol, row), headerStyle); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(summarySheet, "D", "D", 40); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(summarySheet, cell, &values)
}
