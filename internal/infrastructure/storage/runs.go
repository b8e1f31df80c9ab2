package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var runColumns = []string{
	"id", "team_id", "started_at", "completed_at", "dry_run",
	"inbox_count", "transaction_count", "pairs_scored", "auto_matched", "suggested", "conflicts",
	"status", "error_message",
}

// StartRun records the start of a reconcile run
func (s *Storage) StartRun(ctx context.Context, teamID string, dryRun bool) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		TeamID:    teamID,
		StartedAt: s.now(),
		DryRun:    dryRun,
		Status:    RunStatusRunning,
	}

	_, err := execBuilder(ctx, s.db, s.builder.Insert("reconcile_runs").
		Columns("id", "team_id", "started_at", "dry_run", "status").
		Values(run.ID, run.TeamID, run.StartedAt, run.DryRun, run.Status))
	if err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}

	return run, nil
}

// CompleteRun records the final counts and status of a run
func (s *Storage) CompleteRun(ctx context.Context, run *Run) error {
	if run.Status == "" || run.Status == RunStatusRunning {
		run.Status = RunStatusCompleted
	}
	completedAt := s.now()
	run.CompletedAt = &completedAt

	res, err := execBuilder(ctx, s.db, s.builder.Update("reconcile_runs").
		SetMap(map[string]any{
			"completed_at":      completedAt,
			"inbox_count":       run.InboxCount,
			"transaction_count": run.TransactionCount,
			"pairs_scored":      run.PairsScored,
			"auto_matched":      run.AutoMatched,
			"suggested":         run.Suggested,
			"conflicts":         run.Conflicts,
			"status":            run.Status,
			"error_message":     run.ErrorMessage,
		}).
		Where(sq.Eq{"id": run.ID}))
	if err != nil {
		return fmt.Errorf("failed to complete run %s: %w", run.ID, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s: %w", run.ID, ErrNotFound)
	}
	return nil
}

// GetRun retrieves a run by ID
func (s *Storage) GetRun(ctx context.Context, id string) (*Run, error) {
	row, err := queryRowBuilder(ctx, s.db, s.builder.Select(runColumns...).
		From("reconcile_runs").
		Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}

	run, err := scanRun(row)
	if err != nil {
		return nil, notFound(err, "run", id)
	}
	return run, nil
}

// ListRuns returns recent runs, newest first
func (s *Storage) ListRuns(ctx context.Context, teamID string, limit int) ([]*Run, error) {
	query := s.builder.Select(runColumns...).
		From("reconcile_runs").
		OrderBy("started_at DESC", "id").
		Limit(uint64(listLimit(limit)))
	if teamID != "" {
		query = query.Where(sq.Eq{"team_id": teamID})
	}

	rows, err := queryBuilder(ctx, s.db, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanRun(row sq.RowScanner) (*Run, error) {
	run := &Run{}
	var completedAt sql.NullTime
	err := row.Scan(
		&run.ID,
		&run.TeamID,
		&run.StartedAt,
		&completedAt,
		&run.DryRun,
		&run.InboxCount,
		&run.TransactionCount,
		&run.PairsScored,
		&run.AutoMatched,
		&run.Suggested,
		&run.Conflicts,
		&run.Status,
		&run.ErrorMessage,
	)
	if err != nil {
		return nil, err
	}

	run.StartedAt = run.StartedAt.UTC()
	run.CompletedAt = nullTime(completedAt)
	return run, nil
}
