package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"budgetiq/internal/amqp"
	"budgetiq/internal/core"
	"budgetiq/internal/log"
	"budgetiq/internal/storage"
)

const (
	defaultExpenseLimit = 100
	maxExpenseLimit     = 500
)

type expenseCreateRequest struct {
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Date        string      `json:"date"`
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", defaultExpenseLimit)
	if skip < 0 {
		skip = 0
	}
	if limit < 1 || limit > maxExpenseLimit {
		limit = defaultExpenseLimit
	}

	entries, err := s.store.ListExpenses(r.Context(), user.ID, skip, limit)
	if err != nil {
		log.FromContext(r.Context()).Error("expense listing failed", log.FieldError, err, log.FieldUserID, user.ID)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toExpenseViews(entries))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	var req expenseCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cents, err := core.ParseAmountToCents(req.Amount.String())
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid amount")
		return
	}
	occurredAt, err := parseEntryDate(req.Date)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid date")
		return
	}

	entry := core.ExpenseEntry{
		UserID:      user.ID,
		Amount:      core.Money{Cents: cents},
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
		OccurredAt:  occurredAt,
	}
	if err := entry.Validate(); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.store.CreateExpense(r.Context(), entry)
	if err != nil {
		log.FromContext(r.Context()).Error("expense creation failed", log.FieldError, err, log.FieldUserID, user.ID)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.invalidateDashboard(user.ID)
	s.publishEntryEvent(r, user.ID, created.ID, amqp.EntryTypeExpense)

	log.FromContext(r.Context()).Info("expense created",
		log.FieldUserID, user.ID,
		log.FieldAmountCents, created.Amount.Cents,
		log.FieldCategory, created.Category,
	)
	writeJSON(w, http.StatusCreated, toExpenseView(created))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	id, ok := pathID(r.PathValue("id"))
	if !ok {
		writeDetail(w, http.StatusNotFound, "Expense entry not found")
		return
	}

	if err := s.store.DeleteExpense(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, "Expense entry not found")
			return
		}
		log.FromContext(r.Context()).Error("expense deletion failed", log.FieldError, err, log.FieldUserID, user.ID)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.invalidateDashboard(user.ID)
	s.publishEntryEvent(r, user.ID, id, amqp.EntryTypeExpense)

	writeMessage(w, "Expense entry deleted successfully")
}

func queryInt(r *http.Request, name string, fallback int) int {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
