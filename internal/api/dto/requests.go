package dto

import (
	"github.com/eshaffer321/inbox-reconcile/internal/domain/matcher"
	"github.com/eshaffer321/inbox-reconcile/internal/infrastructure/storage"
)

// RecordInput is the wire form of a record snapshot. Amounts are decimal
// strings so no precision is lost; dates are YYYY-MM-DD or RFC 3339.
type RecordInput struct {
	Description  string `json:"description" validate:"max=1000"`
	Amount       string `json:"amount"`
	Currency     string `json:"currency" validate:"omitempty,len=3,alpha"`
	BaseAmount   string `json:"base_amount"`
	BaseCurrency string `json:"base_currency" validate:"omitempty,len=3,alpha"`
	Date         string `json:"date" validate:"required"`
	Type         string `json:"type" validate:"omitempty,oneof=invoice expense"`
}

// Record parses the input into a matcher record. Field names in errors are
// prefixed with prefix.
func (in RecordInput) Record(prefix string) (matcher.Record, error) {
	var rec matcher.Record
	var err error

	if rec.Amount, err = matcher.ParseAmount(prefix+"amount", in.Amount); err != nil {
		return rec, err
	}
	if rec.Currency, err = matcher.ParseCurrency(prefix+"currency", in.Currency); err != nil {
		return rec, err
	}
	if rec.BaseAmount, err = matcher.ParseAmount(prefix+"base_amount", in.BaseAmount); err != nil {
		return rec, err
	}
	if rec.BaseCurrency, err = matcher.ParseCurrency(prefix+"base_currency", in.BaseCurrency); err != nil {
		return rec, err
	}
	if rec.Date, err = matcher.ParseDate(prefix+"date", in.Date); err != nil {
		return rec, err
	}
	if rec.Type, err = matcher.ParseRecordType(in.Type); err != nil {
		return rec, err
	}
	rec.Description = in.Description
	return rec, nil
}

// ScoreRequest is the body of POST /api/score.
type ScoreRequest struct {
	Inbox          RecordInput `json:"inbox"`
	Transaction    RecordInput `json:"transaction"`
	EmbeddingScore *float64    `json:"embedding_score" validate:"omitempty,gte=0,lte=1"`
}

// InboxItemRequest is the body of POST /api/inbox.
type InboxItemRequest struct {
	ID     string `json:"id" validate:"required,max=128"`
	TeamID string `json:"team_id" validate:"required,max=128"`
	RecordInput
}

// ToInboxItem parses the request into a storage entity.
func (r InboxItemRequest) ToInboxItem() (*storage.InboxItem, error) {
	rec, err := r.Record("")
	if err != nil {
		return nil, err
	}
	return &storage.InboxItem{
		ID:           r.ID,
		TeamID:       r.TeamID,
		Description:  rec.Description,
		Amount:       rec.Amount,
		Currency:     rec.Currency,
		BaseAmount:   rec.BaseAmount,
		BaseCurrency: rec.BaseCurrency,
		Date:         rec.Date,
		Type:         rec.Type,
	}, nil
}

// TransactionRequest is the body of POST /api/transactions.
type TransactionRequest struct {
	ID     string `json:"id" validate:"required,max=128"`
	TeamID string `json:"team_id" validate:"required,max=128"`
	RecordInput
}

// ToTransaction parses the request into a storage entity.
func (r TransactionRequest) ToTransaction() (*storage.Transaction, error) {
	rec, err := r.Record("")
	if err != nil {
		return nil, err
	}
	return &storage.Transaction{
		ID:           r.ID,
		TeamID:       r.TeamID,
		Description:  rec.Description,
		Amount:       rec.Amount,
		Currency:     rec.Currency,
		BaseAmount:   rec.BaseAmount,
		BaseCurrency: rec.BaseCurrency,
		Date:         rec.Date,
	}, nil
}

// ReconcileRequest is the body of POST /api/reconcile.
type ReconcileRequest struct {
	TeamID string `json:"team_id" validate:"required"`
	DryRun bool   `json:"dry_run"`
}
