package insight

import (
	"fmt"

	"budgetiq/internal/core"
)

// Insight is a single advisory card shown on the dashboard.
type Insight struct {
	Kind    core.NotificationKind `json:"type"`
	Message string                `json:"message"`
}

// Generate applies the rule set to a set of aggregates. It is a pure
// function; all conditions are checked independently and rules fire in a
// fixed order.
func Generate(a Aggregates) []Insight {
	var insights []Insight

	balance := a.BalanceCents()
	breakdownTotal := a.BreakdownTotalCents()

	// Balance status.
	if a.Current.IncomeCents > 0 && balance > 0 {
		insights = append(insights, Insight{
			Kind: core.KindInfo,
			Message: fmt.Sprintf("Your savings rate this month is %s%%. You've saved %s so far!",
				pct1(balance, a.Current.IncomeCents), core.FormatCents(balance)),
		})
	} else if balance < 0 {
		insights = append(insights, Insight{
			Kind: core.KindWarning,
			Message: fmt.Sprintf("Alert: You've overspent by %s this month. Your expenses exceed your income.",
				core.FormatCents(-balance)),
		})
	}

	// Month-over-month comparison.
	if a.Previous.ExpenseCents > 0 && a.Current.ExpenseCents > 0 {
		change := pctChange(a.Current.ExpenseCents, a.Previous.ExpenseCents)
		if change > 10 {
			insights = append(insights, Insight{
				Kind: core.KindWarning,
				Message: fmt.Sprintf("Your spending increased by %.1f%% compared to last month. Consider reviewing your expenses.",
					change),
			})
		} else if change < -10 {
			insights = append(insights, Insight{
				Kind: core.KindTip,
				Message: fmt.Sprintf("Great job! Your spending decreased by %.1f%% compared to last month.",
					-change),
			})
		}
	}

	// Top spending category. Categories arrive ordered by amount descending
	// with name as tie-break, so the first one is the top.
	if len(a.Categories) > 0 {
		top := a.Categories[0]
		insights = append(insights, Insight{
			Kind: core.KindInfo,
			Message: fmt.Sprintf("Your highest spending category is '%s' at %s (%s%% of total expenses).",
				top.Category, core.FormatCents(top.Cents), pct0(top.Cents, breakdownTotal)),
		})
		if breakdownTotal > 0 && float64(top.Cents)/float64(breakdownTotal)*100 > 30 {
			insights = append(insights, Insight{
				Kind: core.KindTip,
				Message: fmt.Sprintf("You could save %s by reducing '%s' expenses by 20%%.",
					core.FormatCents(top.Cents/5), top.Category),
			})
		}
	}

	// Spending ratio.
	if a.Current.IncomeCents > 0 {
		ratio := float64(a.Current.ExpenseCents) / float64(a.Current.IncomeCents) * 100
		if ratio > 90 {
			insights = append(insights, Insight{
				Kind: core.KindAlert,
				Message: fmt.Sprintf("Critical: You're using %.0f%% of your income on expenses! Try to keep it under 70%% for a healthy budget.",
					ratio),
			})
		} else if ratio > 70 {
			insights = append(insights, Insight{
				Kind: core.KindWarning,
				Message: fmt.Sprintf("You're spending %.0f%% of your income. Aim for the 50-30-20 rule: 50%% needs, 30%% wants, 20%% savings.",
					ratio),
			})
		}
	}

	// Onboarding.
	if len(a.Categories) == 0 && a.Current.IncomeCents == 0 {
		insights = append(insights, Insight{
			Kind:    core.KindInfo,
			Message: "Welcome to BudgetIQ! Start by adding your income and expenses to get personalized AI insights.",
		})
	}

	// Daily logging reminder.
	if a.TodayExpenseCount == 0 {
		insights = append(insights, Insight{
			Kind:    core.KindInfo,
			Message: "Don't forget to log today's expenses for more accurate insights.",
		})
	}

	return insights
}
