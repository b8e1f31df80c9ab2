package handlers

import (
	"log/slog"
	"net/http"

	"github.com/eshaffer321/inbox-reconcile/internal/api/dto"
	"github.com/eshaffer321/inbox-reconcile/internal/application/reconcile"
)

// ScoreHandler scores ad-hoc record pairs.
type ScoreHandler struct {
	*Base
	service *reconcile.Service
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(service *reconcile.Service, logger *slog.Logger) *ScoreHandler {
	return &ScoreHandler{
		Base:    NewBase(nil, logger),
		service: service,
	}
}

// Score handles POST /api/score - scores one inbox/transaction pair.
func (h *ScoreHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req dto.ScoreRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	inbox, err := req.Inbox.Record("inbox.")
	if err != nil {
		h.WriteServiceError(w, r, "record", err)
		return
	}
	tx, err := req.Transaction.Record("transaction.")
	if err != nil {
		h.WriteServiceError(w, r, "record", err)
		return
	}

	result, err := h.service.ScorePair(r.Context(), inbox, tx, req.EmbeddingScore)
	if err != nil {
		h.WriteServiceError(w, r, "record", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.NewScoreResponse(result))
}
