package core

import (
	"testing"
	"time"
)

func TestParseAmountToCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "plain integer", input: "1500", want: 150000},
		{name: "dot decimal", input: "12.34", want: 1234},
		{name: "comma decimal", input: "12,34", want: 1234},
		{name: "rounds half up", input: "12.345", want: 1235},
		{name: "single decimal digit", input: "0.5", want: 50},
		{name: "leading whitespace", input: "  42.00", want: 4200},
		{name: "empty", input: "", wantErr: true},
		{name: "zero", input: "0", wantErr: true},
		{name: "negative", input: "-5", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
		{name: "two separators", input: "1.2.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmountToCents(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAmountToCents(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseAmountToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		name  string
		cents int64
		want  string
	}{
		{name: "zero", cents: 0, want: "0"},
		{name: "under a thousand", cents: 95000, want: "950"},
		{name: "thousands grouped", cents: 500000, want: "5,000"},
		{name: "millions grouped", cents: 123456789, want: "1,234,568"},
		{name: "rounds half up", cents: 150, want: "2"},
		{name: "rounds down", cents: 149, want: "1"},
		{name: "negative", cents: -460000, want: "-4,600"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCents(tt.cents); got != tt.want {
				t.Errorf("FormatCents(%d) = %q, want %q", tt.cents, got, tt.want)
			}
		})
	}
}

func TestFormatCentsExact(t *testing.T) {
	if got := FormatCentsExact(123456789); got != "1,234,567.89" {
		t.Errorf("FormatCentsExact(123456789) = %q, want %q", got, "1,234,567.89")
	}
	if got := FormatCentsExact(-305); got != "-3.05" {
		t.Errorf("FormatCentsExact(-305) = %q, want %q", got, "-3.05")
	}
}

func TestValidateEntries(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	income := IncomeEntry{Amount: Money{Cents: 100}, Source: "Salary", OccurredAt: now}
	if err := income.Validate(); err != nil {
		t.Errorf("valid income rejected: %v", err)
	}
	income.Amount.Cents = 0
	if err := income.Validate(); err != ErrInvalidAmount {
		t.Errorf("zero amount: got %v, want ErrInvalidAmount", err)
	}

	expense := ExpenseEntry{Amount: Money{Cents: 100}, Category: "Food", OccurredAt: now}
	if err := expense.Validate(); err != nil {
		t.Errorf("valid expense rejected: %v", err)
	}
	expense.Category = "  "
	if err := expense.Validate(); err != ErrEmptyCategory {
		t.Errorf("blank category: got %v, want ErrEmptyCategory", err)
	}
}

func TestValidateSignup(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid", userName: "Ada", email: "ada@example.com", password: "secret1", wantErr: nil},
		{name: "short name", userName: "A", email: "ada@example.com", password: "secret1", wantErr: ErrNameTooShort},
		{name: "bad email", userName: "Ada", email: "not-an-email", password: "secret1", wantErr: ErrInvalidEmail},
		{name: "short password", userName: "Ada", email: "ada@example.com", password: "abc", wantErr: ErrPasswordTooWeak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSignup(tt.userName, tt.email, tt.password)
			if err != tt.wantErr {
				t.Errorf("ValidateSignup() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
