package http

import (
	"context"
	"net/http"
	"time"

	"budgetiq/internal/log"
	"budgetiq/internal/report"
)

const (
	chartMonths = 6
	chartWeeks  = 8
)

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	key := dashboardKey(user.ID)

	if cached, ok := s.summaryCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	summary, err := s.buildSummary(r.Context(), user.ID)
	if err != nil {
		log.FromContext(r.Context()).Error("dashboard summary failed", log.FieldError, err, log.FieldUserID, user.ID)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.summaryCache.Set(key, summary)
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) buildSummary(ctx context.Context, userID int64) (summaryView, error) {
	totalIncome, err := s.store.TotalIncomeCents(ctx, userID)
	if err != nil {
		return summaryView{}, err
	}
	totalExpense, err := s.store.TotalExpenseCents(ctx, userID)
	if err != nil {
		return summaryView{}, err
	}
	incomeCount, err := s.store.CountIncomes(ctx, userID)
	if err != nil {
		return summaryView{}, err
	}
	expenseCount, err := s.store.CountExpenses(ctx, userID)
	if err != nil {
		return summaryView{}, err
	}

	return summaryView{
		TotalIncome:    amountUnits(totalIncome),
		TotalExpense:   amountUnits(totalExpense),
		CurrentBalance: amountUnits(totalIncome - totalExpense),
		IncomeCount:    incomeCount,
		ExpenseCount:   expenseCount,
	}, nil
}

func (s *Server) handleChartData(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	period, err := report.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid period: must be 'weekly' or 'monthly'")
		return
	}

	key := dashboardKey(user.ID) + ":" + string(period)
	if cached, ok := s.chartCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	var points []chartPoint
	if period == report.PeriodWeekly {
		points, err = s.weeklyChart(r.Context(), user.ID, time.Now().UTC())
	} else {
		points, err = s.monthlyChart(r.Context(), user.ID, time.Now().UTC())
	}
	if err != nil {
		log.FromContext(r.Context()).Error("chart data failed",
			log.FieldError, err,
			log.FieldUserID, user.ID,
			log.FieldPeriod, string(period),
		)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.chartCache.Set(key, points)
	writeJSON(w, http.StatusOK, points)
}

// monthlyChart returns one point per calendar month, oldest first, ending
// with the current month.
func (s *Server) monthlyChart(ctx context.Context, userID int64, now time.Time) ([]chartPoint, error) {
	points := make([]chartPoint, 0, chartMonths)
	for i := chartMonths - 1; i >= 0; i-- {
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)

		point, err := s.chartPointBetween(ctx, userID, start.Format("Jan 2006"), start, end)
		if err != nil {
			return nil, err
		}
		points = append(points, point)
	}
	return points, nil
}

// weeklyChart returns one point per Monday-started week, oldest first,
// ending with the current week.
func (s *Server) weeklyChart(ctx context.Context, userID int64, now time.Time) ([]chartPoint, error) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monday := day.AddDate(0, 0, -mondayOffset(day.Weekday()))

	points := make([]chartPoint, 0, chartWeeks)
	for i := chartWeeks - 1; i >= 0; i-- {
		start := monday.AddDate(0, 0, -7*i)
		end := start.AddDate(0, 0, 7)

		point, err := s.chartPointBetween(ctx, userID, "Week "+start.Format("02/01"), start, end)
		if err != nil {
			return nil, err
		}
		points = append(points, point)
	}
	return points, nil
}

func (s *Server) chartPointBetween(ctx context.Context, userID int64, label string, start, end time.Time) (chartPoint, error) {
	income, err := s.store.SumIncomeCents(ctx, userID, start, end)
	if err != nil {
		return chartPoint{}, err
	}
	expense, err := s.store.SumExpenseCents(ctx, userID, start, end)
	if err != nil {
		return chartPoint{}, err
	}
	return chartPoint{Label: label, Income: amountUnits(income), Expense: amountUnits(expense)}, nil
}

// mondayOffset is the number of days since the most recent Monday.
func mondayOffset(d time.Weekday) int {
	return (int(d) + 6) % 7
}
