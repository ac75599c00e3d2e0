// Package report renders a user's transactions for a reporting period as
// PDF, Excel, or rows appended to a Google spreadsheet.
package report

import (
	"fmt"
	"time"
)

// Period selects the reporting window.
type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// ParsePeriod validates a period query value. Empty defaults to monthly.
func ParsePeriod(s string) (Period, error) {
	switch s {
	case "", string(PeriodMonthly):
		return PeriodMonthly, nil
	case string(PeriodWeekly):
		return PeriodWeekly, nil
	default:
		return "", fmt.Errorf("invalid period %q (want weekly or monthly)", s)
	}
}

// Range returns the reporting window ending at now. Weekly is the trailing
// seven days; monthly starts on the first of the current month.
func (p Period) Range(now time.Time) (time.Time, time.Time) {
	if p == PeriodWeekly {
		return now.AddDate(0, 0, -7), now
	}
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start, now
}

// Title renders the period with a leading capital for report headings.
func (p Period) Title() string {
	if p == PeriodWeekly {
		return "Weekly"
	}
	return "Monthly"
}
