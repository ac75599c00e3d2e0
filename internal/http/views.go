package http

import (
	"strconv"
	"time"

	"budgetiq/internal/core"
)

// View structs mirror the public JSON contract. Monetary fields are
// rendered as decimal units, never cents.

type userView struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"is_verified"`
	AvatarPath *string   `json:"avatar_path"`
	CreatedAt  time.Time `json:"created_at"`
}

type tokenView struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	User        userView `json:"user"`
}

type incomeView struct {
	ID        int64     `json:"id"`
	Amount    float64   `json:"amount"`
	Source    string    `json:"source"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

type expenseView struct {
	ID          int64     `json:"id"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description *string   `json:"description"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}

type notificationView struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Kind      string    `json:"type"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type summaryView struct {
	TotalIncome    float64 `json:"total_income"`
	TotalExpense   float64 `json:"total_expense"`
	CurrentBalance float64 `json:"current_balance"`
	IncomeCount    int64   `json:"income_count"`
	ExpenseCount   int64   `json:"expense_count"`
}

type chartPoint struct {
	Label   string  `json:"label"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

func amountUnits(cents int64) float64 {
	return float64(cents) / 100
}

func toUserView(u core.User) userView {
	v := userView{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
	if u.AvatarPath != "" {
		v.AvatarPath = &u.AvatarPath
	}
	return v
}

func toIncomeView(e core.IncomeEntry) incomeView {
	return incomeView{
		ID:        e.ID,
		Amount:    amountUnits(e.Amount.Cents),
		Source:    e.Source,
		Date:      e.OccurredAt,
		CreatedAt: e.CreatedAt,
	}
}

func toIncomeViews(entries []core.IncomeEntry) []incomeView {
	views := make([]incomeView, 0, len(entries))
	for _, e := range entries {
		views = append(views, toIncomeView(e))
	}
	return views
}

func toExpenseView(e core.ExpenseEntry) expenseView {
	v := expenseView{
		ID:        e.ID,
		Amount:    amountUnits(e.Amount.Cents),
		Category:  e.Category,
		Date:      e.OccurredAt,
		CreatedAt: e.CreatedAt,
	}
	if e.Description != "" {
		v.Description = &e.Description
	}
	return v
}

func toExpenseViews(entries []core.ExpenseEntry) []expenseView {
	views := make([]expenseView, 0, len(entries))
	for _, e := range entries {
		views = append(views, toExpenseView(e))
	}
	return views
}

func toNotificationViews(items []core.Notification) []notificationView {
	views := make([]notificationView, 0, len(items))
	for _, n := range items {
		views = append(views, notificationView{
			ID:        n.ID,
			Message:   n.Message,
			Kind:      string(n.Kind),
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}
	return views
}

func dashboardKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// parseEntryDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func parseEntryDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// pathID parses the {id} path segment.
func pathID(value string) (int64, bool) {
	id, err := strconv.ParseInt(value, 10, 64)
	return id, err == nil && id > 0
}
