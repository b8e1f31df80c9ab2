package dto

import (
	"time"

	"github.com/eshaffer321/inbox-reconcile/internal/domain/matcher"
	"github.com/eshaffer321/inbox-reconcile/internal/infrastructure/storage"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// ServiceName identifies this service in health checks.
const ServiceName = "inbox-reconcile"

// NewHealthResponse creates a health response with current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Service:   ServiceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ScoreResponse is the result of scoring one pair.
type ScoreResponse struct {
	Scores        matcher.Scores   `json:"scores"`
	Confidence    float64          `json:"confidence"`
	Decision      matcher.Decision `json:"decision"`
	AmountMode    string           `json:"amount_mode"`
	CrossCurrency bool             `json:"cross_currency"`
	Gated         bool             `json:"gated,omitempty"`
}

// NewScoreResponse converts a match result.
func NewScoreResponse(r matcher.MatchResult) ScoreResponse {
	return ScoreResponse{
		Scores:        r.Scores,
		Confidence:    r.Confidence,
		Decision:      r.Decision,
		AmountMode:    r.AmountMode,
		CrossCurrency: r.CrossCurrency,
		Gated:         r.Gated,
	}
}

// RecordResponse is an inbox item or transaction in API responses.
type RecordResponse struct {
	ID           string `json:"id"`
	TeamID       string `json:"team_id"`
	Description  string `json:"description"`
	Amount       string `json:"amount,omitempty"`
	Currency     string `json:"currency,omitempty"`
	BaseAmount   string `json:"base_amount,omitempty"`
	BaseCurrency string `json:"base_currency,omitempty"`
	Date         string `json:"date"`
	Type         string `json:"type,omitempty"`
	Status       string `json:"status,omitempty"`
	Matched      bool   `json:"matched,omitempty"`
}

// NewInboxItemResponse converts a stored inbox item.
func NewInboxItemResponse(item *storage.InboxItem) RecordResponse {
	return RecordResponse{
		ID:           item.ID,
		TeamID:       item.TeamID,
		Description:  item.Description,
		Amount:       decimalString(item.Amount.Valid, item.Amount.Decimal.String()),
		Currency:     item.Currency,
		BaseAmount:   decimalString(item.BaseAmount.Valid, item.BaseAmount.Decimal.String()),
		BaseCurrency: item.BaseCurrency,
		Date:         item.Date.Format(time.DateOnly),
		Type:         string(item.Type),
		Status:       item.Status,
	}
}

// NewTransactionResponse converts a stored transaction.
func NewTransactionResponse(tx *storage.Transaction) RecordResponse {
	return RecordResponse{
		ID:           tx.ID,
		TeamID:       tx.TeamID,
		Description:  tx.Description,
		Amount:       decimalString(tx.Amount.Valid, tx.Amount.Decimal.String()),
		Currency:     tx.Currency,
		BaseAmount:   decimalString(tx.BaseAmount.Valid, tx.BaseAmount.Decimal.String()),
		BaseCurrency: tx.BaseCurrency,
		Date:         tx.Date.Format(time.DateOnly),
		Matched:      tx.Matched,
	}
}

func decimalString(valid bool, s string) string {
	if !valid {
		return ""
	}
	return s
}

// RunResponse represents a reconcile run in API responses.
type RunResponse struct {
	ID               string `json:"id"`
	TeamID           string `json:"team_id"`
	StartedAt        string `json:"started_at"`
	CompletedAt      string `json:"completed_at,omitempty"`
	DryRun           bool   `json:"dry_run"`
	InboxCount       int    `json:"inbox_count"`
	TransactionCount int    `json:"transaction_count"`
	PairsScored      int    `json:"pairs_scored"`
	AutoMatched      int    `json:"auto_matched"`
	Suggested        int    `json:"suggested"`
	Conflicts        int    `json:"conflicts"`
	Status           string `json:"status"`
	ErrorMessage     string `json:"error_message,omitempty"`
}

// NewRunResponse converts a stored run.
func NewRunResponse(run *storage.Run) RunResponse {
	resp := RunResponse{
		ID:               run.ID,
		TeamID:           run.TeamID,
		StartedAt:        run.StartedAt.Format(time.RFC3339),
		DryRun:           run.DryRun,
		InboxCount:       run.InboxCount,
		TransactionCount: run.TransactionCount,
		PairsScored:      run.PairsScored,
		AutoMatched:      run.AutoMatched,
		Suggested:        run.Suggested,
		Conflicts:        run.Conflicts,
		Status:           run.Status,
		ErrorMessage:     run.ErrorMessage,
	}
	if run.CompletedAt != nil {
		resp.CompletedAt = run.CompletedAt.Format(time.RFC3339)
	}
	return resp
}

// RunListResponse is a list of runs.
type RunListResponse struct {
	Runs  []RunResponse `json:"runs"`
	Count int           `json:"count"`
}

// MatchResponse represents a match decision in API responses.
type MatchResponse struct {
	ID            string           `json:"id,omitempty"`
	RunID         string           `json:"run_id,omitempty"`
	TeamID        string           `json:"team_id"`
	InboxID       string           `json:"inbox_id"`
	TransactionID string           `json:"transaction_id"`
	Scores        matcher.Scores   `json:"scores"`
	Confidence    float64          `json:"confidence"`
	Decision      matcher.Decision `json:"decision"`
	CrossCurrency bool             `json:"cross_currency"`
	Status        string           `json:"status"`
	CreatedAt     string           `json:"created_at,omitempty"`
	ReviewedAt    string           `json:"reviewed_at,omitempty"`
}

// NewMatchResponse converts a stored match decision.
func NewMatchResponse(m *storage.MatchDecision) MatchResponse {
	resp := MatchResponse{
		ID:            m.ID,
		RunID:         m.RunID,
		TeamID:        m.TeamID,
		InboxID:       m.InboxID,
		TransactionID: m.TransactionID,
		Scores: matcher.Scores{
			Amount:    m.AmountScore,
			Currency:  m.CurrencyScore,
			Date:      m.DateScore,
			Embedding: m.EmbeddingScore,
		},
		Confidence:    m.Confidence,
		Decision:      m.Decision,
		CrossCurrency: m.CrossCurrency,
		Status:        m.Status,
	}
	if !m.CreatedAt.IsZero() {
		resp.CreatedAt = m.CreatedAt.Format(time.RFC3339)
	}
	if m.ReviewedAt != nil {
		resp.ReviewedAt = m.ReviewedAt.Format(time.RFC3339)
	}
	return resp
}

// MatchListResponse is a list of match decisions.
type MatchListResponse struct {
	Matches []MatchResponse `json:"matches"`
	Count   int             `json:"count"`
}

// ReconcileResponse is the result of a reconcile run.
type ReconcileResponse struct {
	Run       RunResponse     `json:"run"`
	Decisions []MatchResponse `json:"decisions"`
}
