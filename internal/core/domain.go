package core

import (
	"errors"
	"strings"
	"time"
)

const (
	KindInfo    NotificationKind = "info"
	KindTip     NotificationKind = "tip"
	KindWarning NotificationKind = "warning"
	KindAlert   NotificationKind = "alert"
)

type (
	NotificationKind string

	// Money is an amount in integer cents. All monetary values are stored
	// and summed as cents; rendering converts to whole units.
	Money struct {
		Cents int64
	}

	User struct {
		ID           int64
		Name         string
		Email        string
		PasswordHash string
		IsVerified   bool
		AvatarPath   string
		CreatedAt    time.Time
	}

	IncomeEntry struct {
		ID         int64
		UserID     int64
		Amount     Money
		Source     string
		OccurredAt time.Time
		CreatedAt  time.Time
	}

	ExpenseEntry struct {
		ID          int64
		UserID      int64
		Amount      Money
		Category    string
		Description string // optional
		OccurredAt  time.Time
		CreatedAt   time.Time
	}

	Notification struct {
		ID        int64
		UserID    int64
		Message   string
		Kind      NotificationKind
		IsRead    bool
		CreatedAt time.Time
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptySource     = errors.New("empty income source")
	ErrEmptyCategory   = errors.New("empty expense category")
	ErrInvalidDate     = errors.New("invalid date")
	ErrNameTooShort    = errors.New("name must be at least 2 characters")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrPasswordTooWeak = errors.New("password must be at least 6 characters")
)

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e IncomeEntry) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Source) == "" {
		return ErrEmptySource
	}
	if len(e.Source) > 200 {
		return errors.New("income source too long (max 200 characters)")
	}
	if e.OccurredAt.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (e ExpenseEntry) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if len(e.Category) > 100 {
		return errors.New("expense category too long (max 100 characters)")
	}
	if len(e.Description) > 500 {
		return errors.New("expense description too long (max 500 characters)")
	}
	if e.OccurredAt.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ValidateSignup checks the fields a new account is created from.
func ValidateSignup(name, email, password string) error {
	if len(strings.TrimSpace(name)) < 2 {
		return ErrNameTooShort
	}
	if len(name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if !validEmail(email) {
		return ErrInvalidEmail
	}
	if len(password) < 6 {
		return ErrPasswordTooWeak
	}
	if len(password) > 128 {
		return errors.New("password too long (max 128 characters)")
	}
	return nil
}

func validEmail(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 5 || len(s) > 255 {
		return false
	}
	at := strings.Index(s, "@")
	if at < 1 || at == len(s)-1 {
		return false
	}
	domain := s[at+1:]
	if !strings.Contains(domain, ".") || strings.Contains(s, " ") {
		return false
	}
	return true
}
