package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary  = "Summary"
	sheetIncome   = "Income"
	sheetExpenses = "Expenses"
)

// WriteExcel renders the report as an xlsx workbook with Summary, Income,
// and Expenses sheets.
func WriteExcel(w io.Writer, data *Data) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetIncome); err != nil {
		return fmt.Errorf("create income sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetExpenses); err != nil {
		return fmt.Errorf("create expenses sheet: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16, Color: "6C63FF"},
	})
	if err != nil {
		return fmt.Errorf("title style: %w", err)
	}
	purpleHeader, err := headerStyle(f, "6C63FF")
	if err != nil {
		return err
	}
	greenHeader, err := headerStyle(f, "4CAF50")
	if err != nil {
		return err
	}
	redHeader, err := headerStyle(f, "FF5252")
	if err != nil {
		return err
	}

	// Summary sheet.
	f.SetCellValue(sheetSummary, "A1", "BudgetIQ Financial Report")
	f.SetCellStyle(sheetSummary, "A1", "A1", titleStyle)
	f.SetCellValue(sheetSummary, "A2", data.PeriodLine())
	f.SetCellValue(sheetSummary, "A3", "User: "+data.User.Name)

	for i, h := range []string{"Total Income", "Total Expenses", "Balance"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 5)
		f.SetCellValue(sheetSummary, cell, h)
		f.SetCellStyle(sheetSummary, cell, cell, purpleHeader)
	}
	f.SetCellValue(sheetSummary, "A6", centsToUnits(data.TotalIncomeCents()))
	f.SetCellValue(sheetSummary, "B6", centsToUnits(data.TotalExpenseCents()))
	f.SetCellValue(sheetSummary, "C6", centsToUnits(data.BalanceCents()))
	f.SetColWidth(sheetSummary, "A", "C", 20)

	// Income sheet.
	for i, h := range []string{"Date", "Source", "Amount"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetIncome, cell, h)
		f.SetCellStyle(sheetIncome, cell, cell, greenHeader)
	}
	for row, e := range data.Incomes {
		setRow(f, sheetIncome, row+2,
			e.OccurredAt.Format(dateFormat), e.Source, centsToUnits(e.Amount.Cents))
	}
	f.SetColWidth(sheetIncome, "A", "A", 15)
	f.SetColWidth(sheetIncome, "B", "B", 25)
	f.SetColWidth(sheetIncome, "C", "C", 15)

	// Expenses sheet.
	for i, h := range []string{"Date", "Category", "Description", "Amount"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetExpenses, cell, h)
		f.SetCellStyle(sheetExpenses, cell, cell, redHeader)
	}
	for row, e := range data.Expenses {
		setRow(f, sheetExpenses, row+2,
			e.OccurredAt.Format(dateFormat), e.Category, e.Description, centsToUnits(e.Amount.Cents))
	}
	f.SetColWidth(sheetExpenses, "A", "A", 15)
	f.SetColWidth(sheetExpenses, "B", "B", 20)
	f.SetColWidth(sheetExpenses, "C", "C", 30)
	f.SetColWidth(sheetExpenses, "D", "D", 15)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func headerStyle(f *excelize.File, color string) (int, error) {
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border: []excelize.Border{
			{Type: "left", Style: 1, Color: "000000"},
			{Type: "right", Style: 1, Color: "000000"},
			{Type: "top", Style: 1, Color: "000000"},
			{Type: "bottom", Style: 1, Color: "000000"},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("header style: %w", err)
	}
	return style, nil
}

func setRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, v)
	}
}

// centsToUnits converts cents to a decimal amount for spreadsheet cells,
// which hold numbers rather than formatted strings.
func centsToUnits(cents int64) float64 {
	return float64(cents) / 100.0
}
