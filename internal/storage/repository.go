// Package storage implements the SQLite persistence layer.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"budgetiq/internal/core"

	_ "modernc.org/sqlite"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrEmailTaken = errors.New("email already registered")
)

// CategoryTotal is a summed expense amount for a single category.
type CategoryTotal struct {
	Category string
	Cents    int64
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- Users ---

func (r *SQLiteRepository) CreateUser(ctx context.Context, name, email, passwordHash string) (core.User, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, is_verified, created_at) VALUES (?, ?, ?, 0, ?)`,
		name, email, passwordHash, now)
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, ErrEmailTaken
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("user insert id: %w", err)
	}
	return core.User{ID: id, Name: name, Email: email, PasswordHash: passwordHash, CreatedAt: now}, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, is_verified, avatar_path, created_at FROM users WHERE email = ?`, email))
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, is_verified, avatar_path, created_at FROM users WHERE id = ?`, id))
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsVerified, &u.AvatarPath, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) MarkUserVerified(ctx context.Context, id int64) error {
	return r.execOne(ctx, `UPDATE users SET is_verified = 1 WHERE id = ?`, id)
}

func (r *SQLiteRepository) UpdateUserProfile(ctx context.Context, id int64, name, email string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET name = ?, email = ? WHERE id = ?`, name, email, id)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("update user profile: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	return r.execOne(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
}

func (r *SQLiteRepository) UpdateUserAvatar(ctx context.Context, id int64, avatarPath string) error {
	return r.execOne(ctx, `UPDATE users SET avatar_path = ? WHERE id = ?`, avatarPath, id)
}

// --- Incomes ---

func (r *SQLiteRepository) CreateIncome(ctx context.Context, e core.IncomeEntry) (core.IncomeEntry, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO incomes (user_id, amount_cents, source, occurred_at, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.UserID, e.Amount.Cents, e.Source, e.OccurredAt.UTC(), now)
	if err != nil {
		return core.IncomeEntry{}, fmt.Errorf("insert income: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.IncomeEntry{}, fmt.Errorf("income insert id: %w", err)
	}
	e.ID = id
	e.CreatedAt = now
	return e, nil
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context, userID int64) ([]core.IncomeEntry, error) {
	return r.queryIncomes(ctx,
		`SELECT id, user_id, amount_cents, source, occurred_at, created_at
		 FROM incomes WHERE user_id = ? ORDER BY occurred_at DESC, id DESC`, userID)
}

func (r *SQLiteRepository) ListIncomesBetween(ctx context.Context, userID int64, start, end time.Time) ([]core.IncomeEntry, error) {
	return r.queryIncomes(ctx,
		`SELECT id, user_id, amount_cents, source, occurred_at, created_at
		 FROM incomes WHERE user_id = ? AND occurred_at >= ? AND occurred_at < ?
		 ORDER BY occurred_at ASC, id ASC`, userID, start.UTC(), end.UTC())
}

func (r *SQLiteRepository) RecentIncomes(ctx context.Context, userID int64, limit int) ([]core.IncomeEntry, error) {
	return r.queryIncomes(ctx,
		`SELECT id, user_id, amount_cents, source, occurred_at, created_at
		 FROM incomes WHERE user_id = ? ORDER BY occurred_at DESC, id DESC LIMIT ?`, userID, limit)
}

func (r *SQLiteRepository) queryIncomes(ctx context.Context, query string, args ...any) ([]core.IncomeEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query incomes: %w", err)
	}
	defer rows.Close()

	var entries []core.IncomeEntry
	for rows.Next() {
		var e core.IncomeEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount.Cents, &e.Source, &e.OccurredAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, userID, id int64) error {
	return r.execOne(ctx, `DELETE FROM incomes WHERE id = ? AND user_id = ?`, id, userID)
}

func (r *SQLiteRepository) SumIncomeCents(ctx context.Context, userID int64, start, end time.Time) (int64, error) {
	return r.sumCents(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM incomes WHERE user_id = ? AND occurred_at >= ? AND occurred_at < ?`,
		userID, start.UTC(), end.UTC())
}

func (r *SQLiteRepository) TotalIncomeCents(ctx context.Context, userID int64) (int64, error) {
	return r.sumCents(ctx, `SELECT COALESCE(SUM(amount_cents), 0) FROM incomes WHERE user_id = ?`, userID)
}

func (r *SQLiteRepository) CountIncomes(ctx context.Context, userID int64) (int64, error) {
	return r.sumCents(ctx, `SELECT COUNT(*) FROM incomes WHERE user_id = ?`, userID)
}

// --- Expenses ---

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.ExpenseEntry) (core.ExpenseEntry, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, amount_cents, category, description, occurred_at, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Amount.Cents, e.Category, e.Description, e.OccurredAt.UTC(), now)
	if err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("expense insert id: %w", err)
	}
	e.ID = id
	e.CreatedAt = now
	return e, nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID int64, offset, limit int) ([]core.ExpenseEntry, error) {
	return r.queryExpenses(ctx,
		`SELECT id, user_id, amount_cents, category, description, occurred_at, created_at
		 FROM expenses WHERE user_id = ? ORDER BY occurred_at DESC, id DESC LIMIT ? OFFSET ?`,
		userID, limit, offset)
}

func (r *SQLiteRepository) ListExpensesBetween(ctx context.Context, userID int64, start, end time.Time) ([]core.ExpenseEntry, error) {
	return r.queryExpenses(ctx,
		`SELECT id, user_id, amount_cents, category, description, occurred_at, created_at
		 FROM expenses WHERE user_id = ? AND occurred_at >= ? AND occurred_at < ?
		 ORDER BY occurred_at ASC, id ASC`, userID, start.UTC(), end.UTC())
}

func (r *SQLiteRepository) RecentExpenses(ctx context.Context, userID int64, limit int) ([]core.ExpenseEntry, error) {
	return r.queryExpenses(ctx,
		`SELECT id, user_id, amount_cents, category, description, occurred_at, created_at
		 FROM expenses WHERE user_id = ? ORDER BY occurred_at DESC, id DESC LIMIT ?`, userID, limit)
}

func (r *SQLiteRepository) queryExpenses(ctx context.Context, query string, args ...any) ([]core.ExpenseEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var entries []core.ExpenseEntry
	for rows.Next() {
		var e core.ExpenseEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount.Cents, &e.Category, &e.Description, &e.OccurredAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, userID, id int64) error {
	return r.execOne(ctx, `DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
}

func (r *SQLiteRepository) SumExpenseCents(ctx context.Context, userID int64, start, end time.Time) (int64, error) {
	return r.sumCents(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM expenses WHERE user_id = ? AND occurred_at >= ? AND occurred_at < ?`,
		userID, start.UTC(), end.UTC())
}

func (r *SQLiteRepository) TotalExpenseCents(ctx context.Context, userID int64) (int64, error) {
	return r.sumCents(ctx, `SELECT COALESCE(SUM(amount_cents), 0) FROM expenses WHERE user_id = ?`, userID)
}

func (r *SQLiteRepository) CountExpenses(ctx context.Context, userID int64) (int64, error) {
	return r.sumCents(ctx, `SELECT COUNT(*) FROM expenses WHERE user_id = ?`, userID)
}

func (r *SQLiteRepository) CountExpensesBetween(ctx context.Context, userID int64, start, end time.Time) (int64, error) {
	return r.sumCents(ctx,
		`SELECT COUNT(*) FROM expenses WHERE user_id = ? AND occurred_at >= ? AND occurred_at < ?`,
		userID, start.UTC(), end.UTC())
}

// CategoryTotalsSince sums expenses per category for entries on or after the
// given instant. Results are ordered by amount descending, then category name,
// so the "top category" selection is deterministic when amounts tie.
func (r *SQLiteRepository) CategoryTotalsSince(ctx context.Context, userID int64, since time.Time) ([]CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, SUM(amount_cents) AS total
		 FROM expenses WHERE user_id = ? AND occurred_at >= ?
		 GROUP BY category ORDER BY total DESC, category ASC`, userID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("query category totals: %w", err)
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

// --- Notifications ---

func (r *SQLiteRepository) CreateNotification(ctx context.Context, userID int64, message string, kind core.NotificationKind) (core.Notification, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (user_id, message, kind, is_read, created_at) VALUES (?, ?, ?, 0, ?)`,
		userID, message, string(kind), now)
	if err != nil {
		return core.Notification{}, fmt.Errorf("insert notification: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Notification{}, fmt.Errorf("notification insert id: %w", err)
	}
	return core.Notification{ID: id, UserID: userID, Message: message, Kind: kind, CreatedAt: now}, nil
}

func (r *SQLiteRepository) ListNotifications(ctx context.Context, userID int64, limit int) ([]core.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, message, kind, is_read, created_at
		 FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []core.Notification
	for rows.Next() {
		var n core.Notification
		var kind string
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &kind, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Kind = core.NotificationKind(kind)
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *SQLiteRepository) MarkNotificationRead(ctx context.Context, userID, id int64) error {
	return r.execOne(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`, id, userID)
}

func (r *SQLiteRepository) MarkAllNotificationsRead(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`, userID)
	if err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

// HasNotificationSince reports whether a notification of the given kind was
// already created on or after the given instant. The worker uses it to avoid
// repeating the same alert within a day.
func (r *SQLiteRepository) HasNotificationSince(ctx context.Context, userID int64, kind core.NotificationKind, since time.Time) (bool, error) {
	n, err := r.sumCents(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND kind = ? AND created_at >= ?`,
		userID, string(kind), since.UTC())
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// --- helpers ---

func (r *SQLiteRepository) sumCents(ctx context.Context, query string, args ...any) (int64, error) {
	var v int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&v); err != nil {
		return 0, fmt.Errorf("aggregate query: %w", err)
	}
	return v, nil
}

// execOne runs a statement that must affect exactly one row, mapping a zero
// row count to ErrNotFound.
func (r *SQLiteRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
