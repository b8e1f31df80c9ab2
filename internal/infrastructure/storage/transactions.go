package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var transactionColumns = []string{
	"id", "team_id", "description", "amount", "currency",
	"base_amount", "base_currency", "record_date", "matched",
}

// SaveTransaction inserts or updates a transaction.
// An update keeps the stored matched flag.
func (s *Storage) SaveTransaction(ctx context.Context, tx *Transaction) error {
	insert := s.builder.Insert("transactions").
		Columns(append(transactionColumns, "updated_at")...).
		Values(
			tx.ID, tx.TeamID, tx.Description, tx.Amount, tx.Currency,
			tx.BaseAmount, tx.BaseCurrency, formatDate(tx.Date), tx.Matched,
			s.now(),
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			team_id = excluded.team_id,
			description = excluded.description,
			amount = excluded.amount,
			currency = excluded.currency,
			base_amount = excluded.base_amount,
			base_currency = excluded.base_currency,
			record_date = excluded.record_date,
			updated_at = excluded.updated_at`)

	if _, err := execBuilder(ctx, s.db, insert); err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", tx.ID, err)
	}
	return nil
}

// GetTransaction retrieves a transaction by ID
func (s *Storage) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	row, err := queryRowBuilder(ctx, s.db, s.builder.Select(transactionColumns...).
		From("transactions").
		Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}

	tx, err := scanTransaction(row)
	if err != nil {
		return nil, notFound(err, "transaction", id)
	}
	return tx, nil
}

// ListUnmatchedTransactions returns the team's unmatched transactions ordered by ID
func (s *Storage) ListUnmatchedTransactions(ctx context.Context, teamID string) ([]*Transaction, error) {
	rows, err := queryBuilder(ctx, s.db, s.builder.Select(transactionColumns...).
		From("transactions").
		Where(sq.Eq{"team_id": teamID, "matched": false}).
		OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txs []*Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func scanTransaction(row sq.RowScanner) (*Transaction, error) {
	tx := &Transaction{}
	var date string
	err := row.Scan(
		&tx.ID,
		&tx.TeamID,
		&tx.Description,
		&tx.Amount,
		&tx.Currency,
		&tx.BaseAmount,
		&tx.BaseCurrency,
		&date,
		&tx.Matched,
	)
	if err != nil {
		return nil, err
	}

	if tx.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *Storage) markTransactionMatched(ctx context.Context, q querier, id string) error {
	_, err := execBuilder(ctx, q, s.builder.Update("transactions").
		Set("matched", true).
		Set("updated_at", s.now()).
		Where(sq.Eq{"id": id}))
	return err
}
