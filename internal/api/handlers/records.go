package handlers

import (
	"log/slog"
	"net/http"

	"github.com/eshaffer321/inbox-reconcile/internal/api/dto"
	"github.com/eshaffer321/inbox-reconcile/internal/infrastructure/storage"
)

// RecordsHandler imports inbox items and bank transactions.
type RecordsHandler struct {
	*Base
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(repo storage.Repository, logger *slog.Logger) *RecordsHandler {
	return &RecordsHandler{
		Base: NewBase(repo, logger),
	}
}

// SaveInboxItem handles POST /api/inbox - inserts or updates an inbox item.
func (h *RecordsHandler) SaveInboxItem(w http.ResponseWriter, r *http.Request) {
	var req dto.InboxItemRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	item, err := req.ToInboxItem()
	if err != nil {
		h.WriteServiceError(w, r, "inbox item", err)
		return
	}

	if err := h.repo.SaveInboxItem(r.Context(), item); err != nil {
		h.WriteServiceError(w, r, "inbox item", err)
		return
	}

	saved, err := h.repo.GetInboxItem(r.Context(), item.ID)
	if err != nil {
		h.WriteServiceError(w, r, "inbox item", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.NewInboxItemResponse(saved))
}

// SaveTransaction handles POST /api/transactions - inserts or updates a transaction.
func (h *RecordsHandler) SaveTransaction(w http.ResponseWriter, r *http.Request) {
	var req dto.TransactionRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	tx, err := req.ToTransaction()
	if err != nil {
		h.WriteServiceError(w, r, "transaction", err)
		return
	}

	if err := h.repo.SaveTransaction(r.Context(), tx); err != nil {
		h.WriteServiceError(w, r, "transaction", err)
		return
	}

	saved, err := h.repo.GetTransaction(r.Context(), tx.ID)
	if err != nil {
		h.WriteServiceError(w, r, "transaction", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.NewTransactionResponse(saved))
}
