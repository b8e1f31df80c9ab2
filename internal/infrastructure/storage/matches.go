package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/eshaffer321/inbox-reconcile/internal/domain/matcher"
)

var matchColumns = []string{
	"id", "run_id", "team_id", "inbox_id", "transaction_id",
	"amount_score", "currency_score", "date_score", "embedding_score", "confidence",
	"decision", "cross_currency", "status", "created_at", "reviewed_at",
}

// SaveMatch stores a new match decision
func (s *Storage) SaveMatch(ctx context.Context, m *MatchDecision) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := execBuilder(ctx, tx, s.builder.Insert("match_decisions").
			Columns(matchColumns...).
			Values(
				m.ID, sql.NullString{String: m.RunID, Valid: m.RunID != ""}, m.TeamID, m.InboxID, m.TransactionID,
				m.AmountScore, m.CurrencyScore, m.DateScore, m.EmbeddingScore, m.Confidence,
				string(m.Decision), m.CrossCurrency, m.Status, m.CreatedAt, toNullTime(m.ReviewedAt),
			))
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("inbox %s / transaction %s: %w", m.InboxID, m.TransactionID, ErrAlreadyMatched)
			}
			return fmt.Errorf("failed to save match: %w", err)
		}

		return s.applyMatchStatus(ctx, tx, m)
	})
}

// applyMatchStatus propagates a decision's status to its inbox item and transaction
func (s *Storage) applyMatchStatus(ctx context.Context, q querier, m *MatchDecision) error {
	switch m.Status {
	case MatchStatusAccepted:
		if err := s.setInboxStatus(ctx, q, m.InboxID, InboxStatusMatched); err != nil {
			return fmt.Errorf("failed to update inbox item %s: %w", m.InboxID, err)
		}
		if err := s.markTransactionMatched(ctx, q, m.TransactionID); err != nil {
			return fmt.Errorf("failed to update transaction %s: %w", m.TransactionID, err)
		}
	case MatchStatusSuggested:
		if err := s.setInboxStatus(ctx, q, m.InboxID, InboxStatusSuggested, InboxStatusPending); err != nil {
			return fmt.Errorf("failed to update inbox item %s: %w", m.InboxID, err)
		}
	}
	return nil
}

// GetMatch retrieves a match decision by ID
func (s *Storage) GetMatch(ctx context.Context, id string) (*MatchDecision, error) {
	return s.getMatch(ctx, s.db, id)
}

func (s *Storage) getMatch(ctx context.Context, q querier, id string) (*MatchDecision, error) {
	row, err := queryRowBuilder(ctx, q, s.builder.Select(matchColumns...).
		From("match_decisions").
		Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}

	m, err := scanMatch(row)
	if err != nil {
		return nil, notFound(err, "match", id)
	}
	return m, nil
}

// ListMatches returns decisions matching the filters, newest first
func (s *Storage) ListMatches(ctx context.Context, filters MatchFilters) ([]*MatchDecision, error) {
	query := s.builder.Select(matchColumns...).
		From("match_decisions").
		OrderBy("created_at DESC", "id").
		Limit(uint64(listLimit(filters.Limit)))

	if filters.Offset > 0 {
		query = query.Offset(uint64(filters.Offset))
	}
	if filters.TeamID != "" {
		query = query.Where(sq.Eq{"team_id": filters.TeamID})
	}
	if filters.RunID != "" {
		query = query.Where(sq.Eq{"run_id": filters.RunID})
	}
	if filters.Status != "" {
		query = query.Where(sq.Eq{"status": filters.Status})
	}

	rows, err := queryBuilder(ctx, s.db, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var matches []*MatchDecision
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// ListDeclinedPairs returns the team's declined (inbox, transaction) pairs.
func (s *Storage) ListDeclinedPairs(ctx context.Context, teamID string) ([]MatchPair, error) {
	query := s.builder.Select("inbox_id", "transaction_id").
		Distinct().
		From("match_decisions").
		Where(sq.Eq{"team_id": teamID, "status": MatchStatusDeclined}).
		OrderBy("inbox_id", "transaction_id")

	rows, err := queryBuilder(ctx, s.db, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list declined pairs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var pairs []MatchPair
	for rows.Next() {
		var p MatchPair
		if err := rows.Scan(&p.InboxID, &p.TransactionID); err != nil {
			return nil, fmt.Errorf("failed to scan declined pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

// AcceptMatch promotes a suggested decision to accepted.
// Accepting an already accepted match is a no-op.
func (s *Storage) AcceptMatch(ctx context.Context, id string) (*MatchDecision, error) {
	var accepted *MatchDecision
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		m, err := s.getMatch(ctx, tx, id)
		if err != nil {
			return err
		}

		switch m.Status {
		case MatchStatusAccepted:
			accepted = m
			return nil
		case MatchStatusSuggested:
		default:
			return fmt.Errorf("cannot accept %s match %s: %w", m.Status, id, ErrInvalidStatus)
		}

		now := s.now()
		_, err = execBuilder(ctx, tx, s.builder.Update("match_decisions").
			Set("status", MatchStatusAccepted).
			Set("reviewed_at", now).
			Where(sq.Eq{"id": id}))
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("match %s: %w", id, ErrAlreadyMatched)
			}
			return fmt.Errorf("failed to accept match %s: %w", id, err)
		}

		m.Status = MatchStatusAccepted
		m.ReviewedAt = &now
		if err := s.applyMatchStatus(ctx, tx, m); err != nil {
			return err
		}

		accepted = m
		return nil
	})
	return accepted, err
}

// DeclineMatch marks a suggested decision as declined. The inbox item goes
// back to pending once it has no other open suggestions.
func (s *Storage) DeclineMatch(ctx context.Context, id string) (*MatchDecision, error) {
	var declined *MatchDecision
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		m, err := s.getMatch(ctx, tx, id)
		if err != nil {
			return err
		}

		switch m.Status {
		case MatchStatusDeclined:
			declined = m
			return nil
		case MatchStatusSuggested:
		default:
			return fmt.Errorf("cannot decline %s match %s: %w", m.Status, id, ErrInvalidStatus)
		}

		now := s.now()
		_, err = execBuilder(ctx, tx, s.builder.Update("match_decisions").
			Set("status", MatchStatusDeclined).
			Set("reviewed_at", now).
			Where(sq.Eq{"id": id}))
		if err != nil {
			return fmt.Errorf("failed to decline match %s: %w", id, err)
		}

		var open int
		row, err := queryRowBuilder(ctx, tx, s.builder.Select("COUNT(*)").
			From("match_decisions").
			Where(sq.Eq{"inbox_id": m.InboxID, "status": MatchStatusSuggested}))
		if err != nil {
			return err
		}
		if err := row.Scan(&open); err != nil {
			return fmt.Errorf("failed to count open suggestions: %w", err)
		}
		if open == 0 {
			if err := s.setInboxStatus(ctx, tx, m.InboxID, InboxStatusPending, InboxStatusSuggested); err != nil {
				return fmt.Errorf("failed to reopen inbox item %s: %w", m.InboxID, err)
			}
		}

		m.Status = MatchStatusDeclined
		m.ReviewedAt = &now
		declined = m
		return nil
	})
	return declined, err
}

func scanMatch(row sq.RowScanner) (*MatchDecision, error) {
	m := &MatchDecision{}
	var runID sql.NullString
	var decision string
	var reviewedAt sql.NullTime
	err := row.Scan(
		&m.ID,
		&runID,
		&m.TeamID,
		&m.InboxID,
		&m.TransactionID,
		&m.AmountScore,
		&m.CurrencyScore,
		&m.DateScore,
		&m.EmbeddingScore,
		&m.Confidence,
		&decision,
		&m.CrossCurrency,
		&m.Status,
		&m.CreatedAt,
		&reviewedAt,
	)
	if err != nil {
		return nil, err
	}

	m.RunID = runID.String
	m.Decision = matcher.Decision(decision)
	m.CreatedAt = m.CreatedAt.UTC()
	m.ReviewedAt = nullTime(reviewedAt)
	return m, nil
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
