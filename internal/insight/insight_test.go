package insight

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"budgetiq/internal/core"
	"budgetiq/internal/log"
	"budgetiq/internal/storage"
)

// fakeStore answers aggregate queries from in-memory slices.
type fakeStore struct {
	incomes  []core.IncomeEntry
	expenses []core.ExpenseEntry
	err      error
}

func (f *fakeStore) SumIncomeCents(_ context.Context, _ int64, start, end time.Time) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var sum int64
	for _, e := range f.incomes {
		if !e.OccurredAt.Before(start) && e.OccurredAt.Before(end) {
			sum += e.Amount.Cents
		}
	}
	return sum, nil
}

func (f *fakeStore) SumExpenseCents(_ context.Context, _ int64, start, end time.Time) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var sum int64
	for _, e := range f.expenses {
		if !e.OccurredAt.Before(start) && e.OccurredAt.Before(end) {
			sum += e.Amount.Cents
		}
	}
	return sum, nil
}

func (f *fakeStore) CategoryTotalsSince(_ context.Context, _ int64, since time.Time) ([]storage.CategoryTotal, error) {
	if f.err != nil {
		return nil, f.err
	}
	byCat := map[string]int64{}
	for _, e := range f.expenses {
		if !e.OccurredAt.Before(since) {
			byCat[e.Category] += e.Amount.Cents
		}
	}
	out := make([]storage.CategoryTotal, 0, len(byCat))
	for cat, cents := range byCat {
		out = append(out, storage.CategoryTotal{Category: cat, Cents: cents})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cents != out[j].Cents {
			return out[i].Cents > out[j].Cents
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func (f *fakeStore) RecentIncomes(_ context.Context, _ int64, limit int) ([]core.IncomeEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := append([]core.IncomeEntry(nil), f.incomes...)
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) RecentExpenses(_ context.Context, _ int64, limit int) ([]core.ExpenseEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := append([]core.ExpenseEntry(nil), f.expenses...)
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) CountExpensesBetween(_ context.Context, _ int64, start, end time.Time) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for _, e := range f.expenses {
		if !e.OccurredAt.Before(start) && e.OccurredAt.Before(end) {
			n++
		}
	}
	return n, nil
}

var testNow = time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)

func newTestAggregator(store Store) *Aggregator {
	a := NewAggregator(store)
	a.clock = func() time.Time { return testNow }
	return a
}

func income(cents int64, at time.Time) core.IncomeEntry {
	return core.IncomeEntry{Amount: core.Money{Cents: cents}, Source: "salary", OccurredAt: at}
}

func expense(cents int64, category string, at time.Time) core.ExpenseEntry {
	return core.ExpenseEntry{Amount: core.Money{Cents: cents}, Category: category, OccurredAt: at}
}

func TestMonthWindow(t *testing.T) {
	tests := []struct {
		name      string
		monthsAgo int
		wantStart time.Time
	}{
		{"current month", 0, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"previous month crosses year", 1, time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)},
		{"same month last year", 12, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"thirteen months back", 13, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := monthWindow(testNow, tt.monthsAgo)
			if !start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", start, tt.wantStart)
			}
			if want := tt.wantStart.AddDate(0, 1, 0); !end.Equal(want) {
				t.Errorf("end = %v, want %v", end, want)
			}
		})
	}
}

func TestMonthlyTotalsYearBoundary(t *testing.T) {
	store := &fakeStore{
		incomes: []core.IncomeEntry{
			income(500000, testNow.AddDate(0, 0, -1)),
			income(300000, time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)),
			income(999900, time.Date(2025, time.December, 20, 0, 0, 0, 0, time.UTC)),
		},
	}
	agg := newTestAggregator(store)

	current, err := agg.MonthlyTotals(context.Background(), 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if current.IncomeCents != 500000 {
		t.Errorf("current income = %d, want 500000", current.IncomeCents)
	}

	yearAgo, err := agg.MonthlyTotals(context.Background(), 1, 12)
	if err != nil {
		t.Fatal(err)
	}
	if yearAgo.IncomeCents != 300000 {
		t.Errorf("income 12 months ago = %d, want 300000", yearAgo.IncomeCents)
	}
}

func TestRecentTransactionsEmpty(t *testing.T) {
	agg := newTestAggregator(&fakeStore{})
	got, err := agg.RecentTransactions(context.Background(), 1, 8)
	if err != nil {
		t.Fatal(err)
	}
	if got != NoTransactions {
		t.Errorf("got %q, want sentinel", got)
	}
}

func TestBuildContextSnapshotNoIncome(t *testing.T) {
	store := &fakeStore{
		expenses: []core.ExpenseEntry{expense(120000, "Food", testNow.AddDate(0, 0, -2))},
	}
	agg := newTestAggregator(store)

	snap, err := agg.BuildContextSnapshot(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(snap, "Savings Rate: N/A (no income)") {
		t.Errorf("snapshot missing N/A savings rate:\n%s", snap)
	}
	if !strings.Contains(snap, "Food: 1,200 (100%)") {
		t.Errorf("snapshot missing breakdown line:\n%s", snap)
	}
}

func TestCategoryPercentagesSumTo100(t *testing.T) {
	store := &fakeStore{
		expenses: []core.ExpenseEntry{
			expense(120000, "Food", testNow.AddDate(0, 0, -1)),
			expense(80000, "Transport", testNow.AddDate(0, 0, -2)),
			expense(100000, "Rent", testNow.AddDate(0, 0, -3)),
		},
	}
	agg := newTestAggregator(store)

	cats, err := agg.CategoryBreakdown(context.Background(), 1, BreakdownWindowDays)
	if err != nil {
		t.Fatal(err)
	}
	var total, sum int64
	for _, c := range cats {
		total += c.Cents
	}
	for _, c := range cats {
		sum += c.Cents * 100 / total
	}
	// Integer truncation can lose at most one point per category.
	if sum < 100-int64(len(cats)) || sum > 100 {
		t.Errorf("percentages sum to %d", sum)
	}
}

func TestGenerateExpenseRatioThresholds(t *testing.T) {
	tests := []struct {
		name         string
		expenseCents int64
		wantAlert    bool
		wantWarning  bool
	}{
		{"92 percent fires alert", 460000, true, false},
		{"72 percent fires warning", 360000, false, true},
		{"40 percent fires neither", 200000, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			insights := Generate(Aggregates{
				Current:           MonthlyTotals{IncomeCents: 500000, ExpenseCents: tt.expenseCents},
				TodayExpenseCount: 1,
				Now:               testNow,
			})
			var alert, warning bool
			for _, in := range insights {
				if strings.Contains(in.Message, "of your income") {
					switch in.Kind {
					case core.KindAlert:
						alert = true
					case core.KindWarning:
						warning = true
					}
				}
			}
			if alert != tt.wantAlert {
				t.Errorf("alert fired = %v, want %v", alert, tt.wantAlert)
			}
			if warning != tt.wantWarning {
				t.Errorf("warning fired = %v, want %v", warning, tt.wantWarning)
			}
		})
	}
}

func TestGenerateTopCategory(t *testing.T) {
	insights := Generate(Aggregates{
		Current: MonthlyTotals{IncomeCents: 1000000, ExpenseCents: 300000},
		Categories: []CategoryAmount{
			{Category: "Food", Cents: 120000},
			{Category: "Transport", Cents: 100000},
			{Category: "Fun", Cents: 80000},
		},
		TodayExpenseCount: 1,
		Now:               testNow,
	})

	var haveTop, haveTip bool
	for _, in := range insights {
		if strings.Contains(in.Message, "highest spending category is 'Food' at 1,200 (40% of total expenses)") {
			haveTop = true
		}
		if strings.Contains(in.Message, "save 240 by reducing 'Food' expenses by 20%") {
			haveTip = true
		}
	}
	if !haveTop {
		t.Error("missing top-category info insight")
	}
	if !haveTip {
		t.Error("missing 20%-reduction tip")
	}
}

func TestGenerateSavingsAndOverspend(t *testing.T) {
	positive := Generate(Aggregates{
		Current:           MonthlyTotals{IncomeCents: 500000, ExpenseCents: 300000},
		TodayExpenseCount: 1,
		Now:               testNow,
	})
	if len(positive) == 0 || positive[0].Kind != core.KindInfo ||
		!strings.Contains(positive[0].Message, "savings rate this month is 40.0%") {
		t.Errorf("savings insight wrong: %+v", positive)
	}

	negative := Generate(Aggregates{
		Current:           MonthlyTotals{IncomeCents: 100000, ExpenseCents: 150000},
		TodayExpenseCount: 1,
		Now:               testNow,
	})
	if len(negative) == 0 || negative[0].Kind != core.KindWarning ||
		!strings.Contains(negative[0].Message, "overspent by 500") {
		t.Errorf("overspend insight wrong: %+v", negative)
	}
}

func TestGenerateMonthOverMonth(t *testing.T) {
	up := Generate(Aggregates{
		Current:           MonthlyTotals{ExpenseCents: 240000},
		Previous:          MonthlyTotals{ExpenseCents: 200000},
		TodayExpenseCount: 1,
		Now:               testNow,
	})
	found := false
	for _, in := range up {
		if in.Kind == core.KindWarning && strings.Contains(in.Message, "increased by 20.0%") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing spending-increase warning: %+v", up)
	}

	down := Generate(Aggregates{
		Current:           MonthlyTotals{ExpenseCents: 150000},
		Previous:          MonthlyTotals{ExpenseCents: 200000},
		TodayExpenseCount: 1,
		Now:               testNow,
	})
	found = false
	for _, in := range down {
		if in.Kind == core.KindTip && strings.Contains(in.Message, "decreased by 25.0%") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing spending-decrease tip: %+v", down)
	}
}

func TestGenerateEmptyStates(t *testing.T) {
	insights := Generate(Aggregates{Now: testNow})

	var onboarding, reminder bool
	for _, in := range insights {
		if strings.Contains(in.Message, "Welcome to BudgetIQ") {
			onboarding = true
		}
		if strings.Contains(in.Message, "log today's expenses") {
			reminder = true
		}
	}
	if !onboarding {
		t.Error("missing onboarding insight")
	}
	if !reminder {
		t.Error("missing daily reminder insight")
	}
}

func TestBuildAggregatesPropagatesStoreError(t *testing.T) {
	agg := newTestAggregator(&fakeStore{err: errors.New("disk gone")})
	if _, err := agg.BuildAggregates(context.Background(), 1); err == nil {
		t.Fatal("expected error from failing store")
	}
}

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		message string
		want    Intent
	}{
		{"What's a good recipe for pasta?", IntentOffTopic},
		{"tell me a joke", IntentOffTopic},
		{"hi there, what's my balance?", IntentGreeting},
		{"hello", IntentGreeting},
		{"What is my balance?", IntentBalance},
		{"give me a summary", IntentBalance},
		{"How can I save more?", IntentSaving},
		{"Show my spending breakdown", IntentBreakdown},
		{"What did I earn this month?", IntentIncome},
		{"any advice?", IntentTips},
		{"compare with last month", IntentComparison},
		{"make me a budget", IntentBudget},
		{"asdf qwerty", IntentMenu},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if got := ClassifyIntent(tt.message); got != tt.want {
				t.Errorf("ClassifyIntent(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func newTestResponder(store Store, llm CompletionClient) *Responder {
	logger := log.New(log.DefaultConfig())
	return NewResponder(newTestAggregator(store), llm, logger)
}

func TestReplyOffTopicRefusal(t *testing.T) {
	r := newTestResponder(&fakeStore{}, nil)
	got, err := r.Reply(context.Background(), 1, "What's a good recipe for pasta?")
	if err != nil {
		t.Fatal(err)
	}
	if got != RefusalMessage {
		t.Errorf("got %q, want exact refusal message", got)
	}
}

func TestReplyGreetingOverridesOffTopic(t *testing.T) {
	store := &fakeStore{
		incomes:  []core.IncomeEntry{income(500000, testNow.AddDate(0, 0, -1))},
		expenses: []core.ExpenseEntry{expense(200000, "Food", testNow.AddDate(0, 0, -1))},
	}
	r := newTestResponder(store, nil)
	got, err := r.Reply(context.Background(), 1, "hi there, what's my balance?")
	if err != nil {
		t.Fatal(err)
	}
	if got == RefusalMessage {
		t.Fatal("greeting was refused")
	}
	if !strings.Contains(got, "Balance: 3,000") {
		t.Errorf("reply missing balance snapshot:\n%s", got)
	}
}

func TestReplyBreakdown(t *testing.T) {
	store := &fakeStore{
		expenses: []core.ExpenseEntry{
			expense(120000, "Food", testNow.AddDate(0, 0, -1)),
			expense(80000, "Transport", testNow.AddDate(0, 0, -2)),
		},
	}
	r := newTestResponder(store, nil)
	got, err := r.Reply(context.Background(), 1, "Show my spending breakdown")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Food: 1,200 (60%)", "Transport: 800 (40%)", "Total: 2,000"} {
		if !strings.Contains(got, want) {
			t.Errorf("reply missing %q:\n%s", want, got)
		}
	}
}

func TestReplySavingIncludesDailyCap(t *testing.T) {
	store := &fakeStore{
		incomes:  []core.IncomeEntry{income(1500000, testNow.AddDate(0, 0, -1))},
		expenses: []core.ExpenseEntry{expense(300000, "Food", testNow.AddDate(0, 0, -1))},
	}
	r := newTestResponder(store, nil)
	got, err := r.Reply(context.Background(), 1, "how can I save money")
	if err != nil {
		t.Fatal(err)
	}
	// 70% of 15,000 over 30 days.
	if !strings.Contains(got, "daily spending limit of 350") {
		t.Errorf("reply missing daily cap:\n%s", got)
	}
	if !strings.Contains(got, "saves you 600") {
		t.Errorf("reply missing 20%% reduction saving:\n%s", got)
	}
}

func TestReplyBudgetSplit(t *testing.T) {
	store := &fakeStore{
		incomes: []core.IncomeEntry{income(1000000, testNow.AddDate(0, 0, -1))},
	}
	r := newTestResponder(store, nil)
	got, err := r.Reply(context.Background(), 1, "make me a budget plan")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Needs (50%):    5,000", "Wants (30%):    3,000", "Savings (20%):  2,000"} {
		if !strings.Contains(got, want) {
			t.Errorf("reply missing %q:\n%s", want, got)
		}
	}
}

func TestReplyTipsListsAllSeven(t *testing.T) {
	r := newTestResponder(&fakeStore{}, nil)
	got, err := r.Reply(context.Background(), 1, "give me some tips")
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 7; i++ {
		if !strings.Contains(got, fmt.Sprintf("%d. ", i)) {
			t.Errorf("reply missing tip %d:\n%s", i, got)
		}
	}
}

type failingLLM struct{}

func (failingLLM) Complete(context.Context, string, string) (string, error) {
	return "", errors.New("connection refused")
}

type cannedLLM struct{ reply string }

func (c cannedLLM) Complete(context.Context, string, string) (string, error) {
	return c.reply, nil
}

func TestReplyFallsBackWhenLLMFails(t *testing.T) {
	store := &fakeStore{
		incomes: []core.IncomeEntry{income(500000, testNow.AddDate(0, 0, -1))},
	}
	r := newTestResponder(store, failingLLM{})
	got, err := r.Reply(context.Background(), 1, "What is my balance?")
	if err != nil {
		t.Fatal(err)
	}
	if got == "" {
		t.Fatal("empty reply after fallback")
	}
	if !strings.Contains(got, "Income: 5,000") {
		t.Errorf("fallback reply missing rule-based content:\n%s", got)
	}
}

func TestReplyUsesLLMWhenConfigured(t *testing.T) {
	store := &fakeStore{
		incomes: []core.IncomeEntry{income(500000, testNow.AddDate(0, 0, -1))},
	}
	r := newTestResponder(store, cannedLLM{reply: "Your savings look healthy."})
	got, err := r.Reply(context.Background(), 1, "What is my balance?")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Your savings look healthy." {
		t.Errorf("got %q, want canned llm reply", got)
	}
}
