package handlers

import (
	"log/slog"
	"net/http"

	"github.com/eshaffer321/inbox-reconcile/internal/api/dto"
	"github.com/eshaffer321/inbox-reconcile/internal/application/reconcile"
)

// ReconcileHandler starts reconcile runs.
type ReconcileHandler struct {
	*Base
	service *reconcile.Service
}

// NewReconcileHandler creates a new reconcile handler.
func NewReconcileHandler(service *reconcile.Service, logger *slog.Logger) *ReconcileHandler {
	return &ReconcileHandler{
		Base:    NewBase(nil, logger),
		service: service,
	}
}

// Run handles POST /api/reconcile - runs matching for a team and waits for the result.
func (h *ReconcileHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req dto.ReconcileRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.Run(r.Context(), reconcile.RunRequest{
		TeamID: req.TeamID,
		DryRun: req.DryRun,
	})
	if err != nil {
		h.WriteServiceError(w, r, "run", err)
		return
	}

	response := dto.ReconcileResponse{
		Run:       dto.NewRunResponse(result.Run),
		Decisions: make([]dto.MatchResponse, 0, len(result.Decisions)),
	}
	for _, d := range result.Decisions {
		response.Decisions = append(response.Decisions, dto.NewMatchResponse(d))
	}

	h.WriteJSON(w, http.StatusOK, response)
}
