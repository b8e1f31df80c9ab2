package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/inbox-reconcile/internal/domain/matcher"
)

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func seedPair(t *testing.T, repo Repository, inboxID, txID string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.SaveInboxItem(ctx, &InboxItem{
		ID: inboxID, TeamID: "team-1", Description: "Acme invoice",
		Amount: amount("100.00"), Currency: "USD", Date: day("2024-01-01"), Type: matcher.RecordTypeInvoice,
	}))
	require.NoError(t, repo.SaveTransaction(ctx, &Transaction{
		ID: txID, TeamID: "team-1", Description: "ACME CORP",
		Amount: amount("-100.00"), Currency: "USD", Date: day("2024-01-31"),
	}))
}

func suggestion(inboxID, txID string) *MatchDecision {
	return &MatchDecision{
		TeamID:        "team-1",
		InboxID:       inboxID,
		TransactionID: txID,
		AmountScore:   1,
		Confidence:    0.8,
		Decision:      matcher.DecisionSuggested,
		Status:        MatchStatusSuggested,
	}
}

// repositories runs each test against the SQLite store and the in-memory mock
func repositories(t *testing.T, fn func(t *testing.T, repo Repository)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, newTestStorage(t)) })
	t.Run("mock", func(t *testing.T) { fn(t, NewMockRepository()) })
}

func TestRepository_InboxRoundTrip(t *testing.T) {
	repositories(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		item := &InboxItem{
			ID:           "inbox-1",
			TeamID:       "team-1",
			Description:  "Invoice #42",
			Amount:       amount("1234.50"),
			Currency:     "EUR",
			BaseCurrency: "USD",
			Date:         day("2024-03-15"),
			Type:         "",
		}
		require.NoError(t, repo.SaveInboxItem(ctx, item))

		got, err := repo.GetInboxItem(ctx, "inbox-1")
		require.NoError(t, err)
		assert.Equal(t, "Invoice #42", got.Description)
		assert.True(t, got.Amount.Valid)
		assert.True(t, got.Amount.Decimal.Equal(decimal.RequireFromString("1234.5")))
		assert.False(t, got.BaseAmount.Valid, "missing base amount stays null")
		assert.Equal(t, "USD", got.BaseCurrency)
		assert.Equal(t, day("2024-03-15"), got.Date)
		assert.Equal(t, matcher.RecordTypeExpense, got.Type, "untyped items score as expenses")
		assert.Equal(t, InboxStatusPending, got.Status)

		rec := got.Record()
		assert.Equal(t, "EUR", rec.Currency)
		assert.Equal(t, matcher.RecordTypeExpense, rec.Type)
	})
}

func TestRepository_GetMissing(t *testing.T) {
	repositories(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		_, err := repo.GetInboxItem(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = repo.GetTransaction(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = repo.GetMatch(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = repo.GetRun(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRepository_ListPendingAndUnmatched(t *testing.T) {
	repositories(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		seedPair(t, repo, "inbox-b", "tx-b")
		seedPair(t, repo, "inbox-a", "tx-a")
		require.NoError(t, repo.SaveInboxItem(ctx, &InboxItem{
			ID: "other-team", TeamID: "team-2", Date: day("2024-01-01"),
		}))

		items, err := repo.ListPendingInbox(ctx, "team-1")
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "inbox-a", items[0].ID)
		assert.Equal(t, "inbox-b", items[1].ID)

		txs, err := repo.ListUnmatchedTransactions(ctx, "team-1")
		require.NoError(t, err)
		require.Len(t, txs, 2)
		assert.Equal(t, "tx-a", txs[0].ID)
		assert.True(t, txs[0].Amount.Decimal.Equal(decimal.RequireFromString("-100")))
	})
}

func TestRepository_AcceptedMatchMarksBothSides(t *testing.T) {
	repositories(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		seedPair(t, repo, "inbox-1", "tx-1")

		d := suggestion("inbox-1", "tx-1")
		d.Status = MatchStatusAccepted
		d.Decision = matcher.DecisionAutoMatch
		require.NoError(t, repo.SaveMatch(ctx, d))
		assert.NotEmpty(t, d.ID)

		item, err := repo.GetInboxItem(ctx, "inbox-1")
		require.NoError(t, err)
		assert.Equal(t, InboxStatusMatched, item.Status)

		tx, err := repo.GetTransaction(ctx, "tx-1")
		require.NoError(t, err)
		assert.True(t, tx.Matched)

		pending, err := repo.ListPendingInbox(ctx, "team-1")
		require.NoError(t, err)
		assert.Empty(t, pending)
		unmatched, err := repo.ListUnmatchedTransactions(ctx, "team-1")
		require.NoError(t, err)
		assert.Empty(t, unmatched)

		// Re-importing the item keeps its status
		require.NoError(t, repo.SaveInboxItem(ctx, &InboxItem{
			ID: "inbox-1", TeamID: "team-1", Description: "edited", Date: day("2024-01-02"),
		}))
		item, err = repo.GetInboxItem(ctx, "inbox-1")
		require.NoError(t, err)
		assert.Equal(t, InboxStatusMatched, item.Status)
		assert.Equal(t, "edited", item.Description)
	})
}

func TestRepository_AtMostOneAcceptedMatch(t *testing.T) {
	repositories(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		seedPair(t, repo, "inbox-1", "tx-1")
		seedPair(t, repo, "inbox-2", "tx-2")

		first := suggestion("inbox-1", "tx-1")
		first.Status = MatchStatusAccepted
		require.NoError(t, repo.SaveMatch(ctx, first))

		// Same transaction, different inbox item
		second := suggestion("inbox-2", "tx-1")
		second.Status = MatchStatusAccepted
		err := repo.SaveMatch(ctx, second)
		assert.ErrorIs(t, err, ErrAlreadyMatched)

		// A suggestion for the same transaction can be recorded but not accepted
		third := suggestion("inbox-2", "tx-1")
		require.NoError(t, repo.SaveMatch(ctx, third))
		_, err = repo.AcceptMatch(ctx, third.ID)
		assert.ErrorIs(t, err, ErrAlreadyMatched)

		got, err := repo.GetMatch(ctx, third.ID)
		require.NoError(t, err)
		assert.Equal(t, MatchStatusSuggested, got.Status)
	})
}

func TestRepository_ReviewSuggestions(t *testing.T) {
	repositories(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		seedPair(t, repo, "inbox-1", "tx-1")
		seedPair(t, repo, "inbox-2", "tx-2")

		s1 := suggestion("inbox-1", "tx-1")
		require.NoError(t, repo.SaveMatch(ctx, s1))
		s2 := suggestion("inbox-2", "tx-2")
		require.NoError(t, repo.SaveMatch(ctx, s2))

		item, err := repo.GetInboxItem(ctx, "inbox-1")
		require.NoError(t, err)
		assert.Equal(t, InboxStatusSuggested, item.Status)

		accepted, err := repo.AcceptMatch(ctx, s1.ID)
		require.NoError(t, err)
		assert.Equal(t, MatchStatusAccepted, accepted.Status)
		require.NotNil(t, accepted.ReviewedAt)

		// Accepting twice is a no-op
		again, err := repo.AcceptMatch(ctx, s1.ID)
		require.NoError(t, err)
		assert.Equal(t, MatchStatusAccepted, again.Status)

		tx, err := repo.GetTransaction(ctx, "tx-1")
		require.NoError(t, err)
		assert.True(t, tx.Matched)

		declined, err := repo.DeclineMatch(ctx, s2.ID)
		require.NoError(t, err)
		assert.Equal(t, MatchStatusDeclined, declined.Status)

		item, err = repo.GetInboxItem(ctx, "inbox-2")
		require.NoError(t, err)
		assert.Equal(t, InboxStatusPending, item.Status, "declined item returns to pending")

		_, err = repo.AcceptMatch(ctx, s2.ID)
		assert.ErrorIs(t, err, ErrInvalidStatus)
		_, err = repo.DeclineMatch(ctx, s1.ID)
		assert.ErrorIs(t, err, ErrInvalidStatus)
		_, err = repo.AcceptMatch(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRepository_ListDeclinedPairs(t *testing.T) {
	repositories(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		seedPair(t, repo, "inbox-1", "tx-1")
		seedPair(t, repo, "inbox-2", "tx-2")

		none, err := repo.ListDeclinedPairs(ctx, "team-1")
		require.NoError(t, err)
		assert.Empty(t, none)

		// The same pair declined in two runs is listed once
		for i := 0; i < 2; i++ {
			s := suggestion("inbox-2", "tx-2")
			require.NoError(t, repo.SaveMatch(ctx, s))
			_, err := repo.DeclineMatch(ctx, s.ID)
			require.NoError(t, err)
		}
		open := suggestion("inbox-1", "tx-1")
		require.NoError(t, repo.SaveMatch(ctx, open))

		pairs, err := repo.ListDeclinedPairs(ctx, "team-1")
		require.NoError(t, err)
		assert.Equal(t, []MatchPair{{InboxID: "inbox-2", TransactionID: "tx-2"}}, pairs)

		other, err := repo.ListDeclinedPairs(ctx, "team-2")
		require.NoError(t, err)
		assert.Empty(t, other)
	})
}

func TestRepository_ListMatchesFilters(t *testing.T) {
	repositories(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		seedPair(t, repo, "inbox-1", "tx-1")
		seedPair(t, repo, "inbox-2", "tx-2")

		base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		older := suggestion("inbox-1", "tx-1")
		older.CreatedAt = base
		newer := suggestion("inbox-2", "tx-2")
		newer.CreatedAt = base.Add(time.Hour)
		newer.Status = MatchStatusAccepted
		require.NoError(t, repo.SaveMatch(ctx, older))
		require.NoError(t, repo.SaveMatch(ctx, newer))

		all, err := repo.ListMatches(ctx, MatchFilters{TeamID: "team-1"})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, newer.ID, all[0].ID, "newest first")

		suggested, err := repo.ListMatches(ctx, MatchFilters{Status: MatchStatusSuggested})
		require.NoError(t, err)
		require.Len(t, suggested, 1)
		assert.Equal(t, older.ID, suggested[0].ID)
		assert.Equal(t, matcher.DecisionSuggested, suggested[0].Decision)
		assert.Nil(t, suggested[0].ReviewedAt)

		limited, err := repo.ListMatches(ctx, MatchFilters{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, limited, 1)
		assert.Equal(t, older.ID, limited[0].ID)

		none, err := repo.ListMatches(ctx, MatchFilters{TeamID: "team-2"})
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestRepository_Runs(t *testing.T) {
	repositories(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		run, err := repo.StartRun(ctx, "team-1", true)
		require.NoError(t, err)
		assert.NotEmpty(t, run.ID)
		assert.Equal(t, RunStatusRunning, run.Status)

		run.InboxCount = 3
		run.TransactionCount = 4
		run.PairsScored = 12
		run.AutoMatched = 1
		run.Suggested = 1
		require.NoError(t, repo.CompleteRun(ctx, run))
		assert.Equal(t, RunStatusCompleted, run.Status)

		got, err := repo.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, "team-1", got.TeamID)
		assert.True(t, got.DryRun)
		assert.Equal(t, 12, got.PairsScored)
		assert.Equal(t, RunStatusCompleted, got.Status)
		require.NotNil(t, got.CompletedAt)
		assert.WithinDuration(t, run.StartedAt, got.StartedAt, time.Second)

		_, err = repo.StartRun(ctx, "team-2", false)
		require.NoError(t, err)

		runs, err := repo.ListRuns(ctx, "team-1", 10)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, run.ID, runs[0].ID)

		all, err := repo.ListRuns(ctx, "", 0)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		err = repo.CompleteRun(ctx, &Run{ID: "missing"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMockRepository_ErrorInjection(t *testing.T) {
	repo := NewMockRepository()
	repo.StartRunErr = assert.AnError
	repo.SaveMatchErr = assert.AnError

	_, err := repo.StartRun(context.Background(), "team-1", false)
	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorIs(t, repo.SaveMatch(context.Background(), suggestion("a", "b")), assert.AnError)
	assert.Equal(t, 1, repo.SaveMatchCalls)
}
