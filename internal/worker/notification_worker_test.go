package worker

import (
	"context"
	"testing"
	"time"

	"budgetiq/internal/amqp"
	"budgetiq/internal/core"
	"budgetiq/internal/log"
	"budgetiq/internal/storage"
)

// workerStore serves fixed aggregates and records created notifications.
type workerStore struct {
	incomeCents  int64
	expenseCents int64

	created []core.Notification
	seen    map[core.NotificationKind]bool
}

func (s *workerStore) SumIncomeCents(_ context.Context, _ int64, start, end time.Time) (int64, error) {
	if containsNow(start, end) {
		return s.incomeCents, nil
	}
	return 0, nil
}

func (s *workerStore) SumExpenseCents(_ context.Context, _ int64, start, end time.Time) (int64, error) {
	if containsNow(start, end) {
		return s.expenseCents, nil
	}
	return 0, nil
}

func (s *workerStore) CategoryTotalsSince(context.Context, int64, time.Time) ([]storage.CategoryTotal, error) {
	return nil, nil
}

func (s *workerStore) RecentIncomes(context.Context, int64, int) ([]core.IncomeEntry, error) {
	return nil, nil
}

func (s *workerStore) RecentExpenses(context.Context, int64, int) ([]core.ExpenseEntry, error) {
	return nil, nil
}

func (s *workerStore) CountExpensesBetween(context.Context, int64, time.Time, time.Time) (int64, error) {
	return 1, nil
}

func (s *workerStore) CreateNotification(_ context.Context, userID int64, message string, kind core.NotificationKind) (core.Notification, error) {
	n := core.Notification{UserID: userID, Message: message, Kind: kind}
	s.created = append(s.created, n)
	if s.seen == nil {
		s.seen = map[core.NotificationKind]bool{}
	}
	s.seen[kind] = true
	return n, nil
}

func (s *workerStore) HasNotificationSince(_ context.Context, _ int64, kind core.NotificationKind, _ time.Time) (bool, error) {
	return s.seen[kind], nil
}

func containsNow(start, end time.Time) bool {
	now := time.Now().UTC()
	return !now.Before(start) && now.Before(end)
}

func event() *amqp.EntryEventMessage {
	return amqp.NewEntryEventMessage(1, 42, amqp.EntryTypeExpense)
}

func TestHandleEntryEventStoresAlert(t *testing.T) {
	// 92% expense ratio fires the critical alert.
	store := &workerStore{incomeCents: 500000, expenseCents: 460000}
	w := NewNotificationWorker(store, log.New(log.DefaultConfig()))

	if err := w.HandleEntryEvent(context.Background(), event()); err != nil {
		t.Fatal(err)
	}
	if len(store.created) != 1 {
		t.Fatalf("created %d notifications, want 1", len(store.created))
	}
	if store.created[0].Kind != core.KindAlert {
		t.Errorf("kind = %q, want alert", store.created[0].Kind)
	}
}

func TestHandleEntryEventDedupsPerDay(t *testing.T) {
	store := &workerStore{incomeCents: 500000, expenseCents: 460000}
	w := NewNotificationWorker(store, log.New(log.DefaultConfig()))

	if err := w.HandleEntryEvent(context.Background(), event()); err != nil {
		t.Fatal(err)
	}
	if err := w.HandleEntryEvent(context.Background(), event()); err != nil {
		t.Fatal(err)
	}
	if len(store.created) != 1 {
		t.Errorf("created %d notifications after two events, want 1", len(store.created))
	}
}

func TestHandleEntryEventIgnoresInfoInsights(t *testing.T) {
	// Healthy finances produce only info and tip insights.
	store := &workerStore{incomeCents: 500000, expenseCents: 100000}
	w := NewNotificationWorker(store, log.New(log.DefaultConfig()))

	if err := w.HandleEntryEvent(context.Background(), event()); err != nil {
		t.Fatal(err)
	}
	if len(store.created) != 0 {
		t.Errorf("created %d notifications, want 0: %+v", len(store.created), store.created)
	}
}
