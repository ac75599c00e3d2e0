package report

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"budgetiq/internal/core"
)

var reportNow = time.Date(2026, time.March, 18, 10, 0, 0, 0, time.UTC)

type stubStore struct {
	incomes  []core.IncomeEntry
	expenses []core.ExpenseEntry

	gotStart, gotEnd time.Time
}

func (s *stubStore) ListIncomesBetween(_ context.Context, _ int64, start, end time.Time) ([]core.IncomeEntry, error) {
	s.gotStart, s.gotEnd = start, end
	return s.incomes, nil
}

func (s *stubStore) ListExpensesBetween(_ context.Context, _ int64, start, end time.Time) ([]core.ExpenseEntry, error) {
	return s.expenses, nil
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{"", PeriodMonthly, false},
		{"monthly", PeriodMonthly, false},
		{"weekly", PeriodWeekly, false},
		{"yearly", "", true},
		{"Monthly", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePeriod(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePeriod(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePeriod(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPeriodRange(t *testing.T) {
	start, end := PeriodMonthly.Range(reportNow)
	if want := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("monthly start = %v, want %v", start, want)
	}
	if !end.Equal(reportNow) {
		t.Errorf("monthly end = %v, want now", end)
	}

	start, _ = PeriodWeekly.Range(reportNow)
	if want := reportNow.AddDate(0, 0, -7); !start.Equal(want) {
		t.Errorf("weekly start = %v, want %v", start, want)
	}
}

func testData(t *testing.T) *Data {
	t.Helper()
	store := &stubStore{
		incomes: []core.IncomeEntry{
			{Amount: core.Money{Cents: 500000}, Source: "Salary", OccurredAt: reportNow.AddDate(0, 0, -3)},
		},
		expenses: []core.ExpenseEntry{
			{Amount: core.Money{Cents: 123456}, Category: "Food", Description: "groceries", OccurredAt: reportNow.AddDate(0, 0, -2)},
			{Amount: core.Money{Cents: 80000}, Category: "Transport", OccurredAt: reportNow.AddDate(0, 0, -1)},
		},
	}
	user := core.User{ID: 1, Name: "Ada", Email: "ada@example.com"}
	data, err := Build(context.Background(), store, user, PeriodMonthly, reportNow)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestDataTotals(t *testing.T) {
	data := testData(t)

	if got := data.TotalIncomeCents(); got != 500000 {
		t.Errorf("TotalIncomeCents = %d", got)
	}
	if got := data.TotalExpenseCents(); got != 203456 {
		t.Errorf("TotalExpenseCents = %d", got)
	}
	if got := data.BalanceCents(); got != 296544 {
		t.Errorf("BalanceCents = %d", got)
	}
	if got := data.Filename("pdf"); got != "BudgetIQ_monthly_report_20260318.pdf" {
		t.Errorf("Filename = %q", got)
	}
	if !strings.Contains(data.PeriodLine(), "Monthly") {
		t.Errorf("PeriodLine = %q", data.PeriodLine())
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, testData(t)); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("output is not a PDF document")
	}
}

func TestWriteExcel(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteExcel(&buf, testData(t)); err != nil {
		t.Fatal(err)
	}
	// xlsx files are zip archives.
	if !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
		t.Error("output is not an xlsx workbook")
	}
}
