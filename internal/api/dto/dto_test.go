package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/inbox-reconcile/internal/domain/matcher"
)

func TestValidate_ScoreRequest(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		score := 0.7
		req := ScoreRequest{
			Inbox:          RecordInput{Amount: "100", Currency: "USD", Date: "2024-01-01", Type: "invoice"},
			Transaction:    RecordInput{Amount: "-100", Currency: "USD", Date: "2024-01-31"},
			EmbeddingScore: &score,
		}
		assert.NoError(t, Validate(req))
	})

	t.Run("reports nested JSON field names", func(t *testing.T) {
		bad := 1.5
		req := ScoreRequest{
			Inbox:          RecordInput{Currency: "US", Type: "receipt"},
			Transaction:    RecordInput{Date: "2024-01-31"},
			EmbeddingScore: &bad,
		}

		err := Validate(req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "inbox.currency must be 3 characters")
		assert.Contains(t, err.Error(), "inbox.date is required")
		assert.Contains(t, err.Error(), "inbox.type must be one of: invoice expense")
		assert.Contains(t, err.Error(), "embedding_score must be within [0, 1]")
	})
}

func TestValidate_EmbeddedRecordInput(t *testing.T) {
	err := Validate(InboxItemRequest{TeamID: "team-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id is required")
	assert.Contains(t, err.Error(), "date is required")
	assert.NotContains(t, err.Error(), "RecordInput")
}

func TestRecordInput_Record(t *testing.T) {
	t.Run("parses amounts and dates", func(t *testing.T) {
		rec, err := RecordInput{
			Amount: "260.18", Currency: "USD",
			BaseAmount: "2570.78", BaseCurrency: "SEK",
			Date: "2024-09-02T15:04:05Z", Type: "invoice",
		}.Record("inbox.")
		require.NoError(t, err)

		assert.True(t, rec.Amount.Valid)
		assert.Equal(t, "260.18", rec.Amount.Decimal.String())
		assert.Equal(t, "SEK", rec.BaseCurrency)
		assert.Equal(t, "2024-09-02", rec.Date.Format("2006-01-02"))
		assert.Equal(t, matcher.RecordTypeInvoice, rec.Type)
	})

	t.Run("empty amount is null", func(t *testing.T) {
		rec, err := RecordInput{Date: "2024-09-02"}.Record("")
		require.NoError(t, err)
		assert.False(t, rec.Amount.Valid)
	})

	t.Run("malformed values are validation errors", func(t *testing.T) {
		_, err := RecordInput{Amount: "12,50", Date: "2024-09-02"}.Record("inbox.")
		var verr *matcher.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "inbox.amount", verr.Field)

		_, err = RecordInput{Date: "02/09/2024"}.Record("transaction.")
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "transaction.date", verr.Field)
	})
}

func TestInboxItemRequest_ToInboxItem(t *testing.T) {
	req := InboxItemRequest{
		ID:     "inbox-1",
		TeamID: "team-1",
		RecordInput: RecordInput{
			Description: "Acme invoice",
			Amount:      "99.95",
			Currency:    "eur",
			Date:        "2024-03-01",
		},
	}

	item, err := req.ToInboxItem()
	require.NoError(t, err)
	assert.Equal(t, "inbox-1", item.ID)
	assert.Equal(t, "Acme invoice", item.Description)
	assert.Equal(t, "99.95", item.Amount.Decimal.String())

	resp := NewInboxItemResponse(item)
	assert.Equal(t, "2024-03-01", resp.Date)
	assert.Equal(t, "99.95", resp.Amount)
	assert.Empty(t, resp.BaseAmount)
}
