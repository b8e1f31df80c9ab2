package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eshaffer321/inbox-reconcile/internal/api/dto"
	"github.com/eshaffer321/inbox-reconcile/internal/application/reconcile"
	"github.com/eshaffer321/inbox-reconcile/internal/infrastructure/storage"
)

// MatchesHandler lists match decisions and handles their review.
type MatchesHandler struct {
	*Base
	service *reconcile.Service
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(repo storage.Repository, service *reconcile.Service, logger *slog.Logger) *MatchesHandler {
	return &MatchesHandler{
		Base:    NewBase(repo, logger),
		service: service,
	}
}

// List handles GET /api/matches - supports team_id, run_id, status, limit and offset.
func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := storage.MatchFilters{
		TeamID: q.Get("team_id"),
		RunID:  q.Get("run_id"),
		Status: q.Get("status"),
		Limit:  ParseIntParam(r, "limit", 50),
		Offset: ParseIntParam(r, "offset", 0),
	}

	switch filters.Status {
	case "", storage.MatchStatusAccepted, storage.MatchStatusSuggested, storage.MatchStatusDeclined:
	default:
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError("status must be one of: accepted suggested declined"))
		return
	}

	matches, err := h.repo.ListMatches(r.Context(), filters)
	if err != nil {
		h.WriteServiceError(w, r, "match", err)
		return
	}

	response := dto.MatchListResponse{
		Matches: make([]dto.MatchResponse, 0, len(matches)),
		Count:   len(matches),
	}
	for _, m := range matches {
		response.Matches = append(response.Matches, dto.NewMatchResponse(m))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Confirm handles POST /api/matches/{id}/confirm - accepts a suggestion.
func (h *MatchesHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.service.Confirm)
}

// Decline handles POST /api/matches/{id}/decline - rejects a suggestion.
func (h *MatchesHandler) Decline(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.service.Decline)
}

func (h *MatchesHandler) review(w http.ResponseWriter, r *http.Request, action func(context.Context, string) (*storage.MatchDecision, error)) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("match ID is required"))
		return
	}

	m, err := action(r.Context(), id)
	if err != nil {
		h.WriteServiceError(w, r, "match", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.NewMatchResponse(m))
}
