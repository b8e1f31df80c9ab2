package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/eshaffer321/inbox-reconcile/internal/domain/matcher"
)

var inboxColumns = []string{
	"id", "team_id", "description", "amount", "currency",
	"base_amount", "base_currency", "record_date", "record_type", "status",
}

// SaveInboxItem inserts or updates an inbox item.
// An update keeps the stored status so re-imports don't reopen matched items.
func (s *Storage) SaveInboxItem(ctx context.Context, item *InboxItem) error {
	if item.Status == "" {
		item.Status = InboxStatusPending
	}
	item.Type = item.Type.Normalize()

	insert := s.builder.Insert("inbox_items").
		Columns(append(inboxColumns, "updated_at")...).
		Values(
			item.ID, item.TeamID, item.Description, item.Amount, item.Currency,
			item.BaseAmount, item.BaseCurrency, formatDate(item.Date), string(item.Type), item.Status,
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
			record_type = excluded.record_type,
			updated_at = excluded.updated_at`)

	if _, err := execBuilder(ctx, s.db, insert); err != nil {
		return fmt.Errorf("failed to save inbox item %s: %w", item.ID, err)
	}
	return nil
}

// GetInboxItem retrieves an inbox item by ID
func (s *Storage) GetInboxItem(ctx context.Context, id string) (*InboxItem, error) {
	return s.getInboxItem(ctx, s.db, id)
}

func (s *Storage) getInboxItem(ctx context.Context, q querier, id string) (*InboxItem, error) {
	row, err := queryRowBuilder(ctx, q, s.builder.Select(inboxColumns...).
		From("inbox_items").
		Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}

	item, err := scanInboxItem(row)
	if err != nil {
		return nil, notFound(err, "inbox item", id)
	}
	return item, nil
}

// ListPendingInbox returns the team's pending inbox items ordered by ID
func (s *Storage) ListPendingInbox(ctx context.Context, teamID string) ([]*InboxItem, error) {
	rows, err := queryBuilder(ctx, s.db, s.builder.Select(inboxColumns...).
		From("inbox_items").
		Where(sq.Eq{"team_id": teamID, "status": InboxStatusPending}).
		OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []*InboxItem
	for rows.Next() {
		item, err := scanInboxItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanInboxItem(row sq.RowScanner) (*InboxItem, error) {
	item := &InboxItem{}
	var date, recordType string
	err := row.Scan(
		&item.ID,
		&item.TeamID,
		&item.Description,
		&item.Amount,
		&item.Currency,
		&item.BaseAmount,
		&item.BaseCurrency,
		&date,
		&recordType,
		&item.Status,
	)
	if err != nil {
		return nil, err
	}

	if item.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	item.Type = matcher.RecordType(recordType).Normalize()
	return item, nil
}

// setInboxStatus updates an inbox item's status inside a transaction
func (s *Storage) setInboxStatus(ctx context.Context, q querier, id, status string, onlyFrom ...string) error {
	update := s.builder.Update("inbox_items").
		Set("status", status).
		Set("updated_at", s.now()).
		Where(sq.Eq{"id": id})
	if len(onlyFrom) > 0 {
		update = update.Where(sq.Eq{"status": onlyFrom})
	}

	_, err := execBuilder(ctx, q, update)
	return err
}
