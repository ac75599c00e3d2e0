package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"budgetiq/internal/core"
)

// Brand and accent colors shared by the PDF tables.
var (
	brandPurple = [3]int{108, 99, 255}
	incomeGreen = [3]int{76, 175, 80}
	expenseRed  = [3]int{255, 82, 82}
	rowGrey     = [3]int{245, 245, 245}
)

// WritePDF renders the report as an A4 PDF document.
func WritePDF(w io.Writer, data *Data) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(brandPurple[0], brandPurple[1], brandPurple[2])
	pdf.CellFormat(0, 12, "BudgetIQ Financial Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 6, data.PeriodLine(), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("User: %s (%s)", data.User.Name, data.User.Email), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	writeSummaryRow(pdf, data)
	pdf.Ln(8)

	writeIncomeTable(pdf, data.Incomes)
	pdf.Ln(8)
	writeExpenseTable(pdf, data.Expenses)

	return pdf.Output(w)
}

func writeSummaryRow(pdf *fpdf.Fpdf, data *Data) {
	headers := []string{"Total Income", "Total Expenses", "Balance"}
	values := []string{
		core.FormatCentsExact(data.TotalIncomeCents()),
		core.FormatCentsExact(data.TotalExpenseCents()),
		core.FormatCentsExact(data.BalanceCents()),
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(brandPurple[0], brandPurple[1], brandPurple[2])
	pdf.SetTextColor(255, 255, 255)
	for _, h := range headers {
		pdf.CellFormat(60, 9, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0, 0, 0)
	for _, v := range values {
		pdf.CellFormat(60, 9, v, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
}

func writeIncomeTable(pdf *fpdf.Fpdf, incomes []core.IncomeEntry) {
	sectionHeading(pdf, "Income Details")
	if len(incomes) == 0 {
		emptyLine(pdf, "No income entries for this period.")
		return
	}

	tableHeader(pdf, incomeGreen, []string{"Date", "Source", "Amount"}, []float64{50, 90, 40})
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFillColor(rowGrey[0], rowGrey[1], rowGrey[2])
	for i, e := range incomes {
		fill := i%2 == 1
		pdf.CellFormat(50, 8, e.OccurredAt.Format(dateFormat), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(90, 8, e.Source, "1", 0, "C", fill, 0, "")
		pdf.CellFormat(40, 8, core.FormatCentsExact(e.Amount.Cents), "1", 0, "C", fill, 0, "")
		pdf.Ln(-1)
	}
}

func writeExpenseTable(pdf *fpdf.Fpdf, expenses []core.ExpenseEntry) {
	sectionHeading(pdf, "Expense Details")
	if len(expenses) == 0 {
		emptyLine(pdf, "No expense entries for this period.")
		return
	}

	tableHeader(pdf, expenseRed, []string{"Date", "Category", "Description", "Amount"}, []float64{35, 40, 70, 35})
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFillColor(rowGrey[0], rowGrey[1], rowGrey[2])
	for i, e := range expenses {
		fill := i%2 == 1
		pdf.CellFormat(35, 8, e.OccurredAt.Format(dateFormat), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(40, 8, e.Category, "1", 0, "C", fill, 0, "")
		pdf.CellFormat(70, 8, truncate(e.Description, 30), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(35, 8, core.FormatCentsExact(e.Amount.Cents), "1", 0, "C", fill, 0, "")
		pdf.Ln(-1)
	}
}

func sectionHeading(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

func emptyLine(pdf *fpdf.Fpdf, msg string) {
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, msg, "", 1, "L", false, 0, "")
}

func tableHeader(pdf *fpdf.Fpdf, color [3]int, headers []string, widths []float64) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(color[0], color[1], color[2])
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
