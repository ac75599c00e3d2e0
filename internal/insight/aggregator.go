// Package insight derives financial aggregates from the transaction store
// and turns them into advisory insights and chat replies. Everything here is
// read-only over the store and safe for concurrent use.
package insight

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetiq/internal/core"
	"budgetiq/internal/storage"
)

const (
	// BreakdownWindowDays is the trailing window for category breakdowns.
	BreakdownWindowDays = 30

	// ledgerLimit caps the entries per side in the recent-transactions ledger.
	ledgerLimit = 8

	// NoTransactions is returned by RecentTransactions when the user has no
	// entries at all.
	NoTransactions = "No transactions recorded yet."

	ledgerDateFormat = "02 Jan 2006"
)

// Store is the read-only slice of the repository the aggregator needs.
type Store interface {
	SumIncomeCents(ctx context.Context, userID int64, start, end time.Time) (int64, error)
	SumExpenseCents(ctx context.Context, userID int64, start, end time.Time) (int64, error)
	CategoryTotalsSince(ctx context.Context, userID int64, since time.Time) ([]storage.CategoryTotal, error)
	RecentIncomes(ctx context.Context, userID int64, limit int) ([]core.IncomeEntry, error)
	RecentExpenses(ctx context.Context, userID int64, limit int) ([]core.ExpenseEntry, error)
	CountExpensesBetween(ctx context.Context, userID int64, start, end time.Time) (int64, error)
}

// MonthlyTotals holds the income and expense sums for one calendar month.
type MonthlyTotals struct {
	IncomeCents  int64
	ExpenseCents int64
}

// CategoryAmount is a summed expense for one category, in cents.
type CategoryAmount struct {
	Category string
	Cents    int64
}

// Aggregates is the full set of derived values the insight generator and the
// chat responder work from. It is computed fresh per request and never stored.
type Aggregates struct {
	Current  MonthlyTotals
	Previous MonthlyTotals

	// Categories is the trailing-window breakdown, ordered by amount
	// descending with category name as tie-break.
	Categories []CategoryAmount

	// TodayExpenseCount is the number of expense entries logged on the
	// current UTC day.
	TodayExpenseCount int64

	Now time.Time
}

// BalanceCents is current income minus current expense. May be negative.
func (a Aggregates) BalanceCents() int64 {
	return a.Current.IncomeCents - a.Current.ExpenseCents
}

// BreakdownTotalCents sums the category breakdown.
func (a Aggregates) BreakdownTotalCents() int64 {
	var total int64
	for _, c := range a.Categories {
		total += c.Cents
	}
	return total
}

// Aggregator computes per-user financial aggregates. It holds no state
// beyond its store handle.
type Aggregator struct {
	store Store
	clock func() time.Time
}

func NewAggregator(store Store) *Aggregator {
	return &Aggregator{
		store: store,
		clock: func() time.Time { return time.Now().UTC() },
	}
}

// monthWindow returns the half-open UTC range of the calendar month that is
// monthsAgo months before now. Month arithmetic rolls over year boundaries.
func monthWindow(now time.Time, monthsAgo int) (time.Time, time.Time) {
	year, month := now.Year(), int(now.Month())-monthsAgo
	for month <= 0 {
		month += 12
		year--
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// MonthlyTotals sums income and expense over the calendar month monthsAgo
// months before the current one. monthsAgo 0 is the current month.
func (a *Aggregator) MonthlyTotals(ctx context.Context, userID int64, monthsAgo int) (MonthlyTotals, error) {
	start, end := monthWindow(a.clock(), monthsAgo)
	income, err := a.store.SumIncomeCents(ctx, userID, start, end)
	if err != nil {
		return MonthlyTotals{}, fmt.Errorf("sum income: %w", err)
	}
	expense, err := a.store.SumExpenseCents(ctx, userID, start, end)
	if err != nil {
		return MonthlyTotals{}, fmt.Errorf("sum expense: %w", err)
	}
	return MonthlyTotals{IncomeCents: income, ExpenseCents: expense}, nil
}

// CategoryBreakdown returns per-category expense totals over the trailing
// windowDays window, ordered by amount descending.
func (a *Aggregator) CategoryBreakdown(ctx context.Context, userID int64, windowDays int) ([]CategoryAmount, error) {
	since := a.clock().AddDate(0, 0, -windowDays)
	totals, err := a.store.CategoryTotalsSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	out := make([]CategoryAmount, len(totals))
	for i, t := range totals {
		out[i] = CategoryAmount{Category: t.Category, Cents: t.Cents}
	}
	return out, nil
}

// RecentTransactions renders the newest entries on both sides as a textual
// ledger for LLM context. Returns NoTransactions when the user has no
// entries.
func (a *Aggregator) RecentTransactions(ctx context.Context, userID int64, limit int) (string, error) {
	incomes, err := a.store.RecentIncomes(ctx, userID, limit)
	if err != nil {
		return "", fmt.Errorf("recent incomes: %w", err)
	}
	expenses, err := a.store.RecentExpenses(ctx, userID, limit)
	if err != nil {
		return "", fmt.Errorf("recent expenses: %w", err)
	}
	if len(incomes) == 0 && len(expenses) == 0 {
		return NoTransactions, nil
	}

	var lines []string
	if len(incomes) > 0 {
		lines = append(lines, "Recent Income Entries:")
		for _, e := range incomes {
			lines = append(lines, fmt.Sprintf("  - %s: %s = %s",
				e.OccurredAt.Format(ledgerDateFormat), e.Source, core.FormatCents(e.Amount.Cents)))
		}
	}
	if len(expenses) > 0 {
		lines = append(lines, "Recent Expense Entries:")
		for _, e := range expenses {
			desc := ""
			if e.Description != "" {
				desc = " (" + e.Description + ")"
			}
			lines = append(lines, fmt.Sprintf("  - %s: %s%s = %s",
				e.OccurredAt.Format(ledgerDateFormat), e.Category, desc, core.FormatCents(e.Amount.Cents)))
		}
	}
	return strings.Join(lines, "\n"), nil
}

// BuildAggregates fetches every derived value in one pass. The four
// independent reads run concurrently.
func (a *Aggregator) BuildAggregates(ctx context.Context, userID int64) (Aggregates, error) {
	now := a.clock()
	agg := Aggregates{Now: now}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := a.MonthlyTotals(ctx, userID, 0)
		agg.Current = t
		return err
	})
	g.Go(func() error {
		t, err := a.MonthlyTotals(ctx, userID, 1)
		agg.Previous = t
		return err
	})
	g.Go(func() error {
		cats, err := a.CategoryBreakdown(ctx, userID, BreakdownWindowDays)
		agg.Categories = cats
		return err
	})
	g.Go(func() error {
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		n, err := a.store.CountExpensesBetween(ctx, userID, dayStart, dayStart.AddDate(0, 0, 1))
		agg.TodayExpenseCount = n
		return err
	})
	if err := g.Wait(); err != nil {
		return Aggregates{}, err
	}
	return agg, nil
}

// BuildContextSnapshot renders the user's aggregates and recent ledger as the
// grounding context passed to the language model. Every number comes straight
// from the store; nothing is fabricated.
func (a *Aggregator) BuildContextSnapshot(ctx context.Context, userID int64) (string, error) {
	agg, err := a.BuildAggregates(ctx, userID)
	if err != nil {
		return "", err
	}
	ledger, err := a.RecentTransactions(ctx, userID, ledgerLimit)
	if err != nil {
		return "", err
	}

	balance := agg.BalanceCents()
	parts := []string{
		fmt.Sprintf("=== USER FINANCIAL DATA (as of %s) ===", agg.Now.Format(ledgerDateFormat)),
		"",
		"This Month:",
		"  Total Income: " + core.FormatCents(agg.Current.IncomeCents),
		"  Total Expenses: " + core.FormatCents(agg.Current.ExpenseCents),
		"  Current Balance: " + core.FormatCents(balance),
	}
	if agg.Current.IncomeCents > 0 {
		parts = append(parts, fmt.Sprintf("  Savings Rate: %s%%", pct1(balance, agg.Current.IncomeCents)))
	} else {
		parts = append(parts, "  Savings Rate: N/A (no income)")
	}

	if agg.Previous.IncomeCents > 0 || agg.Previous.ExpenseCents > 0 {
		parts = append(parts,
			"",
			"Last Month:",
			"  Income: "+core.FormatCents(agg.Previous.IncomeCents),
			"  Expenses: "+core.FormatCents(agg.Previous.ExpenseCents),
		)
		if agg.Previous.ExpenseCents > 0 && agg.Current.ExpenseCents > 0 {
			change := pctChange(agg.Current.ExpenseCents, agg.Previous.ExpenseCents)
			parts = append(parts, fmt.Sprintf("  Spending Change: %+.1f%% vs last month", change))
		}
	}

	if len(agg.Categories) > 0 {
		total := agg.BreakdownTotalCents()
		parts = append(parts, "", "Expense Breakdown (Last 30 Days):")
		for _, c := range agg.Categories {
			parts = append(parts, fmt.Sprintf("  %s: %s (%s%%)",
				c.Category, core.FormatCents(c.Cents), pct0(c.Cents, total)))
		}
		parts = append(parts, "  Total: "+core.FormatCents(total))
	}

	parts = append(parts, "", ledger)
	return strings.Join(parts, "\n"), nil
}

// pct1 renders num/den as a percentage with one decimal place. The caller
// guarantees den is nonzero.
func pct1(num, den int64) string {
	return fmt.Sprintf("%.1f", float64(num)/float64(den)*100)
}

// pct0 renders num/den as a percentage with no decimal places.
func pct0(num, den int64) string {
	if den == 0 {
		return "0"
	}
	return fmt.Sprintf("%.0f", float64(num)/float64(den)*100)
}

// pctChange is the relative change from prev to cur, in percent.
func pctChange(cur, prev int64) float64 {
	return float64(cur-prev) / float64(prev) * 100
}
