package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/eshaffer321/inbox-reconcile/internal/api/dto"
	"github.com/eshaffer321/inbox-reconcile/internal/application/reconcile"
	"github.com/eshaffer321/inbox-reconcile/internal/domain/matcher"
	"github.com/eshaffer321/inbox-reconcile/internal/infrastructure/storage"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Base provides shared functionality for all handlers.
type Base struct {
	repo   storage.Repository
	logger *slog.Logger
}

// NewBase creates a new base handler with the given repository.
func NewBase(repo storage.Repository, logger *slog.Logger) *Base {
	if logger == nil {
		logger = slog.Default()
	}
	return &Base{repo: repo, logger: logger}
}

// WriteJSON writes a JSON response with the given status code.
func (b *Base) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an error response with the given status code.
func (b *Base) WriteError(w http.ResponseWriter, status int, err dto.APIError) {
	b.WriteJSON(w, status, err)
}

// DecodeJSON decodes and validates a request body. It writes the error
// response itself and reports whether the handler should continue.
func (b *Base) DecodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		b.WriteError(w, http.StatusBadRequest, dto.BadRequestError(fmt.Sprintf("invalid JSON body: %v", err)))
		return false
	}

	if err := dto.Validate(v); err != nil {
		b.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return false
	}
	return true
}

// WriteServiceError maps domain and storage errors onto HTTP responses.
func (b *Base) WriteServiceError(w http.ResponseWriter, r *http.Request, resource string, err error) {
	var verr *matcher.ValidationError
	switch {
	case errors.As(err, &verr):
		b.WriteError(w, http.StatusBadRequest, dto.ValidationError(verr.Error()))
	case errors.Is(err, reconcile.ErrInvalidRequest):
		b.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error()))
	case errors.Is(err, storage.ErrNotFound):
		b.WriteError(w, http.StatusNotFound, dto.NotFoundError(resource))
	case errors.Is(err, storage.ErrAlreadyMatched),
		errors.Is(err, storage.ErrInvalidStatus),
		errors.Is(err, reconcile.ErrRunInProgress):
		b.WriteError(w, http.StatusConflict, dto.ConflictError(err.Error()))
	default:
		b.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		b.WriteError(w, http.StatusInternalServerError, dto.InternalError())
	}
}

// ParseIntParam parses an integer query parameter with a default value.
func ParseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}
