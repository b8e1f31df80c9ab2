package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps, making tests fast and isolated, and enforces
// the same at-most-one accepted match rule as the SQL schema.
type MockRepository struct {
	mu           sync.Mutex
	inbox        map[string]*InboxItem
	transactions map[string]*Transaction
	matches      map[string]*MatchDecision
	runs         map[string]*Run

	// Hooks for test assertions
	SaveMatchCalls   int
	CompleteRunCalls int
	LastCompletedRun *Run

	// Error injection for testing error paths
	ListInboxErr        error
	ListTransactionsErr error
	SaveMatchErr        error
	StartRunErr         error
	CompleteRunErr      error
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		inbox:        make(map[string]*InboxItem),
		transactions: make(map[string]*Transaction),
		matches:      make(map[string]*MatchDecision),
		runs:         make(map[string]*Run),
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

// SaveInboxItem stores a copy of the item, keeping an existing status
func (m *MockRepository) SaveInboxItem(_ context.Context, item *InboxItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *item
	copied.Type = copied.Type.Normalize()
	if existing, ok := m.inbox[item.ID]; ok {
		copied.Status = existing.Status
	} else if copied.Status == "" {
		copied.Status = InboxStatusPending
	}
	item.Status = copied.Status
	m.inbox[item.ID] = &copied
	return nil
}

// GetInboxItem returns a copy of the stored item
func (m *MockRepository) GetInboxItem(_ context.Context, id string) (*InboxItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.inbox[id]
	if !ok {
		return nil, fmt.Errorf("inbox item %s: %w", id, ErrNotFound)
	}
	copied := *item
	return &copied, nil
}

// ListPendingInbox returns the team's pending items ordered by ID
func (m *MockRepository) ListPendingInbox(_ context.Context, teamID string) ([]*InboxItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListInboxErr != nil {
		return nil, m.ListInboxErr
	}

	var items []*InboxItem
	for _, item := range m.inbox {
		if item.TeamID == teamID && item.Status == InboxStatusPending {
			copied := *item
			items = append(items, &copied)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// SaveTransaction stores a copy of the transaction, keeping an existing matched flag
func (m *MockRepository) SaveTransaction(_ context.Context, tx *Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *tx
	if existing, ok := m.transactions[tx.ID]; ok {
		copied.Matched = existing.Matched
	}
	m.transactions[tx.ID] = &copied
	return nil
}

// GetTransaction returns a copy of the stored transaction
func (m *MockRepository) GetTransaction(_ context.Context, id string) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.transactions[id]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	copied := *tx
	return &copied, nil
}

// ListUnmatchedTransactions returns the team's unmatched transactions ordered by ID
func (m *MockRepository) ListUnmatchedTransactions(_ context.Context, teamID string) ([]*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListTransactionsErr != nil {
		return nil, m.ListTransactionsErr
	}

	var txs []*Transaction
	for _, tx := range m.transactions {
		if tx.TeamID == teamID && !tx.Matched {
			copied := *tx
			txs = append(txs, &copied)
		}
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].ID < txs[j].ID })
	return txs, nil
}

// SaveMatch stores a decision and propagates its status
func (m *MockRepository) SaveMatch(_ context.Context, d *MatchDecision) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveMatchCalls++
	if m.SaveMatchErr != nil {
		return m.SaveMatchErr
	}

	if d.Status == MatchStatusAccepted && m.hasAccepted(d.InboxID, d.TransactionID) {
		return fmt.Errorf("inbox %s / transaction %s: %w", d.InboxID, d.TransactionID, ErrAlreadyMatched)
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	copied := *d
	m.matches[d.ID] = &copied
	m.applyStatus(&copied)
	return nil
}

func (m *MockRepository) hasAccepted(inboxID, transactionID string) bool {
	for _, existing := range m.matches {
		if existing.Status != MatchStatusAccepted {
			continue
		}
		if existing.InboxID == inboxID || existing.TransactionID == transactionID {
			return true
		}
	}
	return false
}

func (m *MockRepository) applyStatus(d *MatchDecision) {
	switch d.Status {
	case MatchStatusAccepted:
		if item, ok := m.inbox[d.InboxID]; ok {
			item.Status = InboxStatusMatched
		}
		if tx, ok := m.transactions[d.TransactionID]; ok {
			tx.Matched = true
		}
	case MatchStatusSuggested:
		if item, ok := m.inbox[d.InboxID]; ok && item.Status == InboxStatusPending {
			item.Status = InboxStatusSuggested
		}
	}
}

// GetMatch returns a copy of the stored decision
func (m *MockRepository) GetMatch(_ context.Context, id string) (*MatchDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.matches[id]
	if !ok {
		return nil, fmt.Errorf("match %s: %w", id, ErrNotFound)
	}
	copied := *d
	return &copied, nil
}

// ListMatches returns decisions matching the filters, newest first
func (m *MockRepository) ListMatches(_ context.Context, filters MatchFilters) ([]*MatchDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*MatchDecision
	for _, d := range m.matches {
		if filters.TeamID != "" && d.TeamID != filters.TeamID {
			continue
		}
		if filters.RunID != "" && d.RunID != filters.RunID {
			continue
		}
		if filters.Status != "" && d.Status != filters.Status {
			continue
		}
		copied := *d
		out = append(out, &copied)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	if filters.Offset >= len(out) {
		return nil, nil
	}
	out = out[filters.Offset:]
	if limit := listLimit(filters.Limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListDeclinedPairs returns the team's declined (inbox, transaction) pairs
func (m *MockRepository) ListDeclinedPairs(_ context.Context, teamID string) ([]MatchPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[MatchPair]bool)
	var pairs []MatchPair
	for _, d := range m.matches {
		if d.TeamID != teamID || d.Status != MatchStatusDeclined {
			continue
		}
		p := MatchPair{InboxID: d.InboxID, TransactionID: d.TransactionID}
		if seen[p] {
			continue
		}
		seen[p] = true
		pairs = append(pairs, p)
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].InboxID != pairs[j].InboxID {
			return pairs[i].InboxID < pairs[j].InboxID
		}
		return pairs[i].TransactionID < pairs[j].TransactionID
	})
	return pairs, nil
}

// AcceptMatch promotes a suggested decision to accepted
func (m *MockRepository) AcceptMatch(_ context.Context, id string) (*MatchDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.matches[id]
	if !ok {
		return nil, fmt.Errorf("match %s: %w", id, ErrNotFound)
	}

	switch d.Status {
	case MatchStatusAccepted:
		copied := *d
		return &copied, nil
	case MatchStatusSuggested:
	default:
		return nil, fmt.Errorf("cannot accept %s match %s: %w", d.Status, id, ErrInvalidStatus)
	}

	if m.hasAccepted(d.InboxID, d.TransactionID) {
		return nil, fmt.Errorf("match %s: %w", id, ErrAlreadyMatched)
	}

	now := time.Now().UTC()
	d.Status = MatchStatusAccepted
	d.ReviewedAt = &now
	m.applyStatus(d)

	copied := *d
	return &copied, nil
}

// DeclineMatch marks a suggested decision as declined
func (m *MockRepository) DeclineMatch(_ context.Context, id string) (*MatchDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.matches[id]
	if !ok {
		return nil, fmt.Errorf("match %s: %w", id, ErrNotFound)
	}

	switch d.Status {
	case MatchStatusDeclined:
		copied := *d
		return &copied, nil
	case MatchStatusSuggested:
	default:
		return nil, fmt.Errorf("cannot decline %s match %s: %w", d.Status, id, ErrInvalidStatus)
	}

	now := time.Now().UTC()
	d.Status = MatchStatusDeclined
	d.ReviewedAt = &now

	open := false
	for _, other := range m.matches {
		if other.InboxID == d.InboxID && other.Status == MatchStatusSuggested {
			open = true
			break
		}
	}
	if item, ok := m.inbox[d.InboxID]; ok && !open && item.Status == InboxStatusSuggested {
		item.Status = InboxStatusPending
	}

	copied := *d
	return &copied, nil
}

// StartRun records a new running run
func (m *MockRepository) StartRun(_ context.Context, teamID string, dryRun bool) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.StartRunErr != nil {
		return nil, m.StartRunErr
	}

	run := &Run{
		ID:        uuid.NewString(),
		TeamID:    teamID,
		StartedAt: time.Now().UTC(),
		DryRun:    dryRun,
		Status:    RunStatusRunning,
	}
	copied := *run
	m.runs[run.ID] = &copied
	return run, nil
}

// CompleteRun stores the run's final state
func (m *MockRepository) CompleteRun(_ context.Context, run *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CompleteRunCalls++
	m.LastCompletedRun = run
	if m.CompleteRunErr != nil {
		return m.CompleteRunErr
	}
	if _, ok := m.runs[run.ID]; !ok {
		return fmt.Errorf("run %s: %w", run.ID, ErrNotFound)
	}

	if run.Status == "" || run.Status == RunStatusRunning {
		run.Status = RunStatusCompleted
	}
	now := time.Now().UTC()
	run.CompletedAt = &now

	copied := *run
	m.runs[run.ID] = &copied
	return nil
}

// GetRun returns a copy of the stored run
func (m *MockRepository) GetRun(_ context.Context, id string) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	copied := *run
	return &copied, nil
}

// ListRuns returns recent runs, newest first
func (m *MockRepository) ListRuns(_ context.Context, teamID string, limit int) ([]*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var runs []*Run
	for _, run := range m.runs {
		if teamID != "" && run.TeamID != teamID {
			continue
		}
		copied := *run
		runs = append(runs, &copied)
	}

	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.After(runs[j].StartedAt)
		}
		return runs[i].ID < runs[j].ID
	})
	if limit = listLimit(limit); len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
