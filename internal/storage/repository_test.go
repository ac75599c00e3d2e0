package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"budgetiq/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestUser(t *testing.T, repo *SQLiteRepository) core.User {
	t.Helper()
	user, err := repo.CreateUser(context.Background(), "Test User", "test@example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateUser(ctx, "A", "dup@example.com", "h1"); err != nil {
		t.Fatalf("first CreateUser: %v", err)
	}
	_, err := repo.CreateUser(ctx, "B", "dup@example.com", "h2")
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate email: got %v, want ErrEmailTaken", err)
	}
}

func TestUserLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := newTestUser(t, repo)

	got, err := repo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != user.ID || got.IsVerified {
		t.Errorf("unexpected user: %+v", got)
	}

	if err := repo.MarkUserVerified(ctx, user.ID); err != nil {
		t.Fatalf("MarkUserVerified: %v", err)
	}
	got, err = repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if !got.IsVerified {
		t.Error("user should be verified")
	}

	if _, err := repo.GetUserByEmail(ctx, "missing@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user: got %v, want ErrNotFound", err)
	}
}

func TestIncomeSumsAndBounds(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := newTestUser(t, repo)

	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	amounts := []int64{100000, 250000, 40000}
	for i, cents := range amounts {
		_, err := repo.CreateIncome(ctx, core.IncomeEntry{
			UserID:     user.ID,
			Amount:     core.Money{Cents: cents},
			Source:     "Salary",
			OccurredAt: base.AddDate(0, 0, i),
		})
		if err != nil {
			t.Fatalf("CreateIncome: %v", err)
		}
	}

	// Window covering only the first two entries.
	sum, err := repo.SumIncomeCents(ctx, user.ID, base.AddDate(0, 0, -1), base.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("SumIncomeCents: %v", err)
	}
	if sum != 350000 {
		t.Errorf("windowed sum = %d, want 350000", sum)
	}

	total, err := repo.TotalIncomeCents(ctx, user.ID)
	if err != nil {
		t.Fatalf("TotalIncomeCents: %v", err)
	}
	if total != 390000 {
		t.Errorf("total = %d, want 390000", total)
	}

	recent, err := repo.RecentIncomes(ctx, user.ID, 2)
	if err != nil {
		t.Fatalf("RecentIncomes: %v", err)
	}
	if len(recent) != 2 || recent[0].Amount.Cents != 40000 {
		t.Errorf("recent incomes not newest-first: %+v", recent)
	}
}

func TestCategoryTotalsSince_OrderAndTieBreak(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := newTestUser(t, repo)

	now := time.Now().UTC()
	entries := []struct {
		category string
		cents    int64
	}{
		{"Food", 120000},
		{"Transport", 80000},
		{"Zoo", 80000}, // ties with Transport
		{"Food", 30000},
	}
	for _, e := range entries {
		_, err := repo.CreateExpense(ctx, core.ExpenseEntry{
			UserID:     user.ID,
			Amount:     core.Money{Cents: e.cents},
			Category:   e.category,
			OccurredAt: now.AddDate(0, 0, -1),
		})
		if err != nil {
			t.Fatalf("CreateExpense: %v", err)
		}
	}

	totals, err := repo.CategoryTotalsSince(ctx, user.ID, now.AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("CategoryTotalsSince: %v", err)
	}
	if len(totals) != 3 {
		t.Fatalf("got %d categories, want 3", len(totals))
	}
	if totals[0].Category != "Food" || totals[0].Cents != 150000 {
		t.Errorf("top category = %+v, want Food 150000", totals[0])
	}
	// Equal amounts break ties by category name.
	if totals[1].Category != "Transport" || totals[2].Category != "Zoo" {
		t.Errorf("tie-break order = %s, %s; want Transport, Zoo", totals[1].Category, totals[2].Category)
	}
}

func TestDeleteEnforcesOwnership(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := newTestUser(t, repo)
	other, err := repo.CreateUser(ctx, "Other", "other@example.com", "h")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	exp, err := repo.CreateExpense(ctx, core.ExpenseEntry{
		UserID:     user.ID,
		Amount:     core.Money{Cents: 5000},
		Category:   "Food",
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	if err := repo.DeleteExpense(ctx, other.ID, exp.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-user delete: got %v, want ErrNotFound", err)
	}
	if err := repo.DeleteExpense(ctx, user.ID, exp.ID); err != nil {
		t.Errorf("owner delete: %v", err)
	}
}

func TestNotificationDedup(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := newTestUser(t, repo)

	if _, err := repo.CreateNotification(ctx, user.ID, "overspending", core.KindAlert); err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}

	dayStart := time.Now().UTC().Truncate(24 * time.Hour)
	has, err := repo.HasNotificationSince(ctx, user.ID, core.KindAlert, dayStart)
	if err != nil {
		t.Fatalf("HasNotificationSince: %v", err)
	}
	if !has {
		t.Error("expected alert notification to be found for today")
	}

	has, err = repo.HasNotificationSince(ctx, user.ID, core.KindWarning, dayStart)
	if err != nil {
		t.Fatalf("HasNotificationSince: %v", err)
	}
	if has {
		t.Error("warning kind should not match alert notification")
	}
}
