package storage

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/inbox-reconcile/internal/domain/matcher"
)

// Inbox item statuses
const (
	InboxStatusPending   = "pending"
	InboxStatusSuggested = "suggested"
	InboxStatusMatched   = "matched"
)

// Match decision statuses
const (
	MatchStatusAccepted  = "accepted"
	MatchStatusSuggested = "suggested"
	MatchStatusDeclined  = "declined"
)

// Run statuses
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// InboxItem is a document awaiting reconciliation (invoice, receipt, bill).
type InboxItem struct {
	ID           string              `json:"id"`
	TeamID       string              `json:"team_id"`
	Description  string              `json:"description"`
	Amount       decimal.NullDecimal `json:"amount"`
	Currency     string              `json:"currency,omitempty"`
	BaseAmount   decimal.NullDecimal `json:"base_amount"`
	BaseCurrency string              `json:"base_currency,omitempty"`
	Date         time.Time           `json:"date"`
	Type         matcher.RecordType  `json:"type"`
	Status       string              `json:"status"`
}

// Record converts the item to its scoring snapshot.
func (i *InboxItem) Record() matcher.Record {
	return matcher.Record{
		Amount:       i.Amount,
		Currency:     i.Currency,
		BaseAmount:   i.BaseAmount,
		BaseCurrency: i.BaseCurrency,
		Date:         i.Date,
		Type:         i.Type.Normalize(),
		Description:  i.Description,
	}
}

// Transaction is a bank transaction that may settle an inbox item.
type Transaction struct {
	ID           string              `json:"id"`
	TeamID       string              `json:"team_id"`
	Description  string              `json:"description"`
	Amount       decimal.NullDecimal `json:"amount"`
	Currency     string              `json:"currency,omitempty"`
	BaseAmount   decimal.NullDecimal `json:"base_amount"`
	BaseCurrency string              `json:"base_currency,omitempty"`
	Date         time.Time           `json:"date"`
	Matched      bool                `json:"matched"`
}

// Record converts the transaction to its scoring snapshot.
func (t *Transaction) Record() matcher.Record {
	return matcher.Record{
		Amount:       t.Amount,
		Currency:     t.Currency,
		BaseAmount:   t.BaseAmount,
		BaseCurrency: t.BaseCurrency,
		Date:         t.Date,
		Description:  t.Description,
	}
}

// MatchDecision records a scored link between an inbox item and a transaction.
type MatchDecision struct {
	ID             string           `json:"id"`
	RunID          string           `json:"run_id,omitempty"`
	TeamID         string           `json:"team_id"`
	InboxID        string           `json:"inbox_id"`
	TransactionID  string           `json:"transaction_id"`
	AmountScore    float64          `json:"amount_score"`
	CurrencyScore  float64          `json:"currency_score"`
	DateScore      float64          `json:"date_score"`
	EmbeddingScore float64          `json:"embedding_score"`
	Confidence     float64          `json:"confidence"`
	Decision       matcher.Decision `json:"decision"`
	CrossCurrency  bool             `json:"cross_currency"`
	Status         string           `json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
	ReviewedAt     *time.Time       `json:"reviewed_at,omitempty"`
}

// Run is one reconcile pass over a team's pending inbox items.
type Run struct {
	ID               string     `json:"id"`
	TeamID           string     `json:"team_id"`
	StartedAt        time.Time  `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	DryRun           bool       `json:"dry_run"`
	InboxCount       int        `json:"inbox_count"`
	TransactionCount int        `json:"transaction_count"`
	PairsScored      int        `json:"pairs_scored"`
	AutoMatched      int        `json:"auto_matched"`
	Suggested        int        `json:"suggested"`
	Conflicts        int        `json:"conflicts"`
	Status           string     `json:"status"`
	ErrorMessage     string     `json:"error_message,omitempty"`
}
