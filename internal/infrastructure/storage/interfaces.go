package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyMatched is returned when accepting a match would link an
	// inbox item or transaction that already has an accepted match.
	ErrAlreadyMatched = errors.New("already matched")

	// ErrInvalidStatus is returned when a review action does not apply to
	// the match's current status.
	ErrInvalidStatus = errors.New("invalid match status")
)

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, PostgreSQL, in-memory)
// and makes testing with mocks straightforward.
type Repository interface {
	InboxRepository
	TransactionRepository
	MatchRepository
	RunRepository
	Close() error
}

// InboxRepository handles inbox items
type InboxRepository interface {
	// SaveInboxItem inserts or updates an inbox item
	SaveInboxItem(ctx context.Context, item *InboxItem) error

	// GetInboxItem retrieves an inbox item by ID
	GetInboxItem(ctx context.Context, id string) (*InboxItem, error)

	// ListPendingInbox returns the team's inbox items awaiting a match, ordered by ID
	ListPendingInbox(ctx context.Context, teamID string) ([]*InboxItem, error)
}

// TransactionRepository handles bank transactions
type TransactionRepository interface {
	// SaveTransaction inserts or updates a transaction
	SaveTransaction(ctx context.Context, tx *Transaction) error

	// GetTransaction retrieves a transaction by ID
	GetTransaction(ctx context.Context, id string) (*Transaction, error)

	// ListUnmatchedTransactions returns the team's transactions without an accepted match, ordered by ID
	ListUnmatchedTransactions(ctx context.Context, teamID string) ([]*Transaction, error)
}

// MatchRepository handles match decisions and their review
type MatchRepository interface {
	// SaveMatch stores a new decision. Accepted decisions also mark the inbox
	// item and transaction as matched; ErrAlreadyMatched if either already is.
	SaveMatch(ctx context.Context, m *MatchDecision) error

	// GetMatch retrieves a decision by ID
	GetMatch(ctx context.Context, id string) (*MatchDecision, error)

	// ListMatches returns decisions matching the filters, newest first
	ListMatches(ctx context.Context, filters MatchFilters) ([]*MatchDecision, error)

	// AcceptMatch promotes a suggested decision to accepted
	AcceptMatch(ctx context.Context, id string) (*MatchDecision, error)

	// DeclineMatch marks a suggested decision as declined
	DeclineMatch(ctx context.Context, id string) (*MatchDecision, error)

	// ListDeclinedPairs returns every (inbox, transaction) pair of the team
	// that a reviewer has declined, ordered by inbox ID then transaction ID
	ListDeclinedPairs(ctx context.Context, teamID string) ([]MatchPair, error)
}

// MatchPair identifies one inbox item and transaction combination
type MatchPair struct {
	InboxID       string
	TransactionID string
}

// MatchFilters defines filters for listing match decisions
type MatchFilters struct {
	TeamID string // empty = all
	RunID  string // empty = all
	Status string // empty = all
	Limit  int    // 0 = default 50
	Offset int
}

// RunRepository handles reconcile run tracking
type RunRepository interface {
	// StartRun records the start of a run and returns it with its ID
	StartRun(ctx context.Context, teamID string, dryRun bool) (*Run, error)

	// CompleteRun records the final counts and status of a run
	CompleteRun(ctx context.Context, run *Run) error

	// GetRun retrieves a run by ID
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns recent runs, newest first. Empty teamID lists all teams.
	ListRuns(ctx context.Context, teamID string, limit int) ([]*Run, error)
}

const defaultListLimit = 50

func listLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}
