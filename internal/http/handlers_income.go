package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"budgetiq/internal/amqp"
	"budgetiq/internal/core"
	"budgetiq/internal/log"
	"budgetiq/internal/storage"
)

type incomeCreateRequest struct {
	Amount json.Number `json:"amount"`
	Source string      `json:"source"`
	Date   string      `json:"date"`
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	entries, err := s.store.ListIncomes(r.Context(), user.ID)
	if err != nil {
		log.FromContext(r.Context()).Error("income listing failed", log.FieldError, err, log.FieldUserID, user.ID)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toIncomeViews(entries))
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	var req incomeCreateRequest
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

	entry := core.IncomeEntry{
		UserID:     user.ID,
		Amount:     core.Money{Cents: cents},
		Source:     strings.TrimSpace(req.Source),
		OccurredAt: occurredAt,
	}
	if err := entry.Validate(); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.store.CreateIncome(r.Context(), entry)
	if err != nil {
		log.FromContext(r.Context()).Error("income creation failed", log.FieldError, err, log.FieldUserID, user.ID)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.invalidateDashboard(user.ID)
	s.publishEntryEvent(r, user.ID, created.ID, amqp.EntryTypeIncome)

	log.FromContext(r.Context()).Info("income created",
		log.FieldUserID, user.ID,
		log.FieldAmountCents, created.Amount.Cents,
		log.FieldSource, created.Source,
	)
	writeJSON(w, http.StatusCreated, toIncomeView(created))
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	id, ok := pathID(r.PathValue("id"))
	if !ok {
		writeDetail(w, http.StatusNotFound, "Income entry not found")
		return
	}

	if err := s.store.DeleteIncome(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, "Income entry not found")
			return
		}
		log.FromContext(r.Context()).Error("income deletion failed", log.FieldError, err, log.FieldUserID, user.ID)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.invalidateDashboard(user.ID)
	s.publishEntryEvent(r, user.ID, id, amqp.EntryTypeIncome)

	writeMessage(w, "Income entry deleted successfully")
}

// publishEntryEvent notifies the worker about an entry mutation. A publish
// failure only logs; the API response never depends on the broker.
func (s *Server) publishEntryEvent(r *http.Request, userID, entryID int64, entryType string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEntryEvent(r.Context(), userID, entryID, entryType); err != nil {
		log.FromContext(r.Context()).Warn("entry event publish failed",
			log.FieldError, err,
			log.FieldUserID, userID,
			log.FieldKind, entryType,
		)
	}
}
