package http

import (
	"net/http"
	"strings"

	"budgetiq/internal/insight"
	"budgetiq/internal/log"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	aggregates, err := s.agg.BuildAggregates(r.Context(), user.ID)
	if err != nil {
		log.FromContext(r.Context()).Error("insight aggregation failed", log.FieldError, err, log.FieldUserID, user.ID)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, insight.Generate(aggregates))
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeDetail(w, http.StatusBadRequest, "Message cannot be empty")
		return
	}

	reply, err := s.responder.Reply(r.Context(), user.ID, req.Message)
	if err != nil {
		log.FromContext(r.Context()).Error("chat reply failed", log.FieldError, err, log.FieldUserID, user.ID)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}
