package report

import (
	"context"
	"fmt"
	"time"

	"budgetiq/internal/core"
)

const dateFormat = "02 Jan 2006"

// Store is the read-only slice of the repository reports are built from.
type Store interface {
	ListIncomesBetween(ctx context.Context, userID int64, start, end time.Time) ([]core.IncomeEntry, error)
	ListExpensesBetween(ctx context.Context, userID int64, start, end time.Time) ([]core.ExpenseEntry, error)
}

// Data holds everything a rendered report needs.
type Data struct {
	User     core.User
	Period   Period
	Start    time.Time
	End      time.Time
	Incomes  []core.IncomeEntry
	Expenses []core.ExpenseEntry
}

// TotalIncomeCents sums all income entries in the report.
func (d *Data) TotalIncomeCents() int64 {
	var sum int64
	for _, e := range d.Incomes {
		sum += e.Amount.Cents
	}
	return sum
}

// TotalExpenseCents sums all expense entries in the report.
func (d *Data) TotalExpenseCents() int64 {
	var sum int64
	for _, e := range d.Expenses {
		sum += e.Amount.Cents
	}
	return sum
}

// BalanceCents is income minus expense for the period.
func (d *Data) BalanceCents() int64 {
	return d.TotalIncomeCents() - d.TotalExpenseCents()
}

// PeriodLine renders the heading line describing the report window.
func (d *Data) PeriodLine() string {
	return fmt.Sprintf("Period: %s | %s - %s",
		d.Period.Title(), d.Start.Format(dateFormat), d.End.Format(dateFormat))
}

// Filename builds the download filename for the given extension.
func (d *Data) Filename(ext string) string {
	return fmt.Sprintf("BudgetIQ_%s_report_%s.%s", d.Period, d.End.Format("20060102"), ext)
}

// Build fetches the entries for one user and period.
func Build(ctx context.Context, store Store, user core.User, period Period, now time.Time) (*Data, error) {
	start, end := period.Range(now)

	incomes, err := store.ListIncomesBetween(ctx, user.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	expenses, err := store.ListExpensesBetween(ctx, user.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	return &Data{
		User:     user,
		Period:   period,
		Start:    start,
		End:      end,
		Incomes:  incomes,
		Expenses: expenses,
	}, nil
}
