// Package worker turns entry events into persisted notifications. It runs in
// a separate process from the API server and consumes events over AMQP.
package worker

import (
	"context"
	"fmt"
	"time"

	"budgetiq/internal/amqp"
	"budgetiq/internal/core"
	"budgetiq/internal/insight"
	"budgetiq/internal/log"
)

// Store combines the aggregate reads with notification writes.
type Store interface {
	insight.Store
	CreateNotification(ctx context.Context, userID int64, message string, kind core.NotificationKind) (core.Notification, error)
	HasNotificationSince(ctx context.Context, userID int64, kind core.NotificationKind, since time.Time) (bool, error)
}

// NotificationWorker re-runs the insight rules after a user's entries change
// and stores any warning or alert as a notification. One notification per
// kind per UTC day keeps repeated edits from spamming the user.
type NotificationWorker struct {
	store  Store
	agg    *insight.Aggregator
	logger *log.Logger
	clock  func() time.Time
}

func NewNotificationWorker(store Store, logger *log.Logger) *NotificationWorker {
	return &NotificationWorker{
		store:  store,
		agg:    insight.NewAggregator(store),
		logger: logger.WithComponent(log.ComponentWorker),
		clock:  func() time.Time { return time.Now().UTC() },
	}
}

// HandleEntryEvent processes one entry event from the queue.
func (w *NotificationWorker) HandleEntryEvent(ctx context.Context, msg *amqp.EntryEventMessage) error {
	w.logger.Info("processing entry event",
		log.FieldUserID, msg.UserID,
		"entry_id", msg.EntryID,
		"entry_type", msg.EntryType)

	aggregates, err := w.agg.BuildAggregates(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("build aggregates: %w", err)
	}

	insights := insight.Generate(aggregates)
	stored := 0
	for _, in := range insights {
		if in.Kind != core.KindWarning && in.Kind != core.KindAlert {
			continue
		}
		created, err := w.storeOncePerDay(ctx, msg.UserID, in)
		if err != nil {
			return err
		}
		if created {
			stored++
		}
	}

	if stored > 0 {
		w.logger.Info("stored notifications", log.FieldUserID, msg.UserID, "count", stored)
	}
	return nil
}

// storeOncePerDay persists the insight unless one of the same kind already
// exists for the current UTC day.
func (w *NotificationWorker) storeOncePerDay(ctx context.Context, userID int64, in insight.Insight) (bool, error) {
	now := w.clock()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	exists, err := w.store.HasNotificationSince(ctx, userID, in.Kind, dayStart)
	if err != nil {
		return false, fmt.Errorf("check existing notification: %w", err)
	}
	if exists {
		return false, nil
	}

	if _, err := w.store.CreateNotification(ctx, userID, in.Message, in.Kind); err != nil {
		return false, fmt.Errorf("create notification: %w", err)
	}
	return true, nil
}
