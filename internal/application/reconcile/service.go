// Package reconcile runs the matching engine over a team's pending inbox
// items and unmatched bank transactions and records the resulting decisions.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/eshaffer321/inbox-reconcile/internal/domain/matcher"
	"github.com/eshaffer321/inbox-reconcile/internal/domain/similarity"
	"github.com/eshaffer321/inbox-reconcile/internal/infrastructure/storage"
)

// DefaultWorkers is the scoring concurrency when none is configured.
const DefaultWorkers = 8

var (
	// ErrRunInProgress is returned when the team already has a run going.
	ErrRunInProgress = errors.New("reconcile already running for team")

	// ErrInvalidRequest is returned for requests missing required fields.
	ErrInvalidRequest = errors.New("invalid reconcile request")
)

// RunRequest holds parameters for a reconcile run.
type RunRequest struct {
	TeamID string
	DryRun bool // score and plan, but persist nothing except the run itself
}

// RunResult is a finished run and the decisions it made.
type RunResult struct {
	Run       *storage.Run
	Decisions []*storage.MatchDecision
}

// Service manages reconcile operations.
type Service struct {
	repo       storage.Repository
	matcher    *matcher.Matcher
	similarity similarity.Provider
	logger     *slog.Logger
	workers    int

	// Team-level locking (only one run per team at a time)
	teamLocks  map[string]*sync.Mutex
	locksMutex sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithWorkers sets how many inbox items are scored concurrently.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewService creates a new reconcile service.
func NewService(
	repo storage.Repository,
	m *matcher.Matcher,
	sim similarity.Provider,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:       repo,
		matcher:    m,
		similarity: sim,
		logger:     logger,
		workers:    DefaultWorkers,
		teamLocks:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run scores every pending inbox item against every unmatched transaction
// of the team and assigns matches greedily, best confidence first, so each
// inbox item and transaction is used at most once. Pairs a reviewer has
// declined are never proposed again.
func (s *Service) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	if req.TeamID == "" {
		return nil, fmt.Errorf("%w: team id is required", ErrInvalidRequest)
	}

	unlock, ok := s.tryLockTeam(req.TeamID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunInProgress, req.TeamID)
	}
	defer unlock()

	run, err := s.repo.StartRun(ctx, req.TeamID, req.DryRun)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With("run_id", run.ID, "team_id", req.TeamID)
	logger.Info("reconcile run started", "dry_run", req.DryRun)

	decisions, err := s.execute(ctx, logger, run)
	if err != nil {
		run.Status = storage.RunStatusFailed
		run.ErrorMessage = err.Error()
		logger.Error("reconcile run failed", "error", err)
	}

	// Record the outcome even if the caller's context is done
	if cerr := s.repo.CompleteRun(context.WithoutCancel(ctx), run); cerr != nil {
		logger.Error("failed to complete run", "error", cerr)
		if err == nil {
			err = cerr
		}
	}
	if err != nil {
		return &RunResult{Run: run, Decisions: decisions}, err
	}

	logger.Info("reconcile run completed",
		"inbox", run.InboxCount,
		"transactions", run.TransactionCount,
		"pairs", run.PairsScored,
		"auto_matched", run.AutoMatched,
		"suggested", run.Suggested,
		"conflicts", run.Conflicts)

	return &RunResult{Run: run, Decisions: decisions}, nil
}

func (s *Service) execute(ctx context.Context, logger *slog.Logger, run *storage.Run) ([]*storage.MatchDecision, error) {
	items, err := s.repo.ListPendingInbox(ctx, run.TeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load inbox: %w", err)
	}
	txs, err := s.repo.ListUnmatchedTransactions(ctx, run.TeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	declined, err := s.repo.ListDeclinedPairs(ctx, run.TeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load declined pairs: %w", err)
	}
	run.InboxCount = len(items)
	run.TransactionCount = len(txs)

	skip := make(map[storage.MatchPair]bool, len(declined))
	for _, p := range declined {
		skip[p] = true
	}

	rankings, scored, err := s.scoreAll(ctx, logger, items, txs, skip)
	if err != nil {
		return nil, err
	}
	run.PairsScored = scored

	planned := assign(rankings)
	decisions := make([]*storage.MatchDecision, 0, len(planned))
	for _, p := range planned {
		d := p.decision(run)

		if !run.DryRun {
			if err := s.repo.SaveMatch(ctx, d); err != nil {
				if errors.Is(err, storage.ErrAlreadyMatched) {
					run.Conflicts++
					logger.Warn("skipping conflicting match",
						"inbox_id", d.InboxID, "transaction_id", d.TransactionID)
					continue
				}
				return decisions, fmt.Errorf("failed to save match: %w", err)
			}
		}

		switch d.Status {
		case storage.MatchStatusAccepted:
			run.AutoMatched++
		case storage.MatchStatusSuggested:
			run.Suggested++
		}
		logger.Debug("match decided",
			"inbox_id", d.InboxID,
			"transaction_id", d.TransactionID,
			"confidence", d.Confidence,
			"status", d.Status)
		decisions = append(decisions, d)
	}

	return decisions, nil
}

// scoredPair is one scored (inbox, transaction) combination.
type scoredPair struct {
	inbox  *storage.InboxItem
	tx     *storage.Transaction
	result matcher.MatchResult
}

func (p scoredPair) decision(run *storage.Run) *storage.MatchDecision {
	status := storage.MatchStatusSuggested
	if p.result.Decision == matcher.DecisionAutoMatch {
		status = storage.MatchStatusAccepted
	}
	return &storage.MatchDecision{
		RunID:          run.ID,
		TeamID:         run.TeamID,
		InboxID:        p.inbox.ID,
		TransactionID:  p.tx.ID,
		AmountScore:    p.result.Scores.Amount,
		CurrencyScore:  p.result.Scores.Currency,
		DateScore:      p.result.Scores.Date,
		EmbeddingScore: p.result.Scores.Embedding,
		Confidence:     p.result.Confidence,
		Decision:       p.result.Decision,
		CrossCurrency:  p.result.CrossCurrency,
		Status:         status,
	}
}

// ranking is one inbox item's candidate transactions, best first.
type ranking struct {
	inbox   *storage.InboxItem
	matches []matcher.CandidateMatch
	txs     map[string]*storage.Transaction
}

func (r ranking) pair(i int) scoredPair {
	m := r.matches[i]
	return scoredPair{inbox: r.inbox, tx: r.txs[m.Candidate.ID], result: m.Result}
}

// scoreAll ranks every transaction against each inbox item, one inbox item
// per worker. Declined pairs are not scored. It returns the rankings and the
// number of pairs scored.
func (s *Service) scoreAll(
	ctx context.Context,
	logger *slog.Logger,
	items []*storage.InboxItem,
	txs []*storage.Transaction,
	declined map[storage.MatchPair]bool,
) ([]ranking, int, error) {
	byID := make(map[string]*storage.Transaction, len(txs))
	for _, tx := range txs {
		byID[tx.ID] = tx
	}

	rankings := make([]ranking, len(items))
	counts := make([]int, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, item := range items {
		g.Go(func() error {
			candidates := make([]matcher.Candidate, 0, len(txs))
			for _, tx := range txs {
				if declined[storage.MatchPair{InboxID: item.ID, TransactionID: tx.ID}] {
					continue
				}
				emb, err := s.embeddingScore(gctx, logger, item.Description, tx.Description)
				if err != nil {
					return err
				}
				candidates = append(candidates, matcher.Candidate{
					ID:             tx.ID,
					Record:         tx.Record(),
					EmbeddingScore: emb,
				})
			}
			counts[i] = len(candidates)
			rankings[i] = ranking{
				inbox:   item,
				matches: s.matcher.RankCandidates(item.Record(), candidates, nil),
				txs:     byID,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	return rankings, total, nil
}

// embeddingScore asks the similarity provider. Provider failures degrade to
// the neutral score; a done context is an error.
func (s *Service) embeddingScore(ctx context.Context, logger *slog.Logger, a, b string) (float64, error) {
	if s.similarity == nil {
		return similarity.NeutralSimilarity, nil
	}

	score, err := s.similarity.Similarity(ctx, a, b)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		logger.Warn("similarity failed, using neutral score", "error", err)
		return similarity.NeutralSimilarity, nil
	}
	return score, nil
}

// assign picks matches greedily: repeatedly takes the highest-confidence
// pair whose inbox item and transaction are both still free, ties broken by
// inbox ID then transaction ID.
func assign(rankings []ranking) []scoredPair {
	next := make([]int, len(rankings))
	done := make([]bool, len(rankings))
	usedTx := make(map[string]bool)

	var planned []scoredPair
	for {
		best := -1
		for i, r := range rankings {
			if done[i] {
				continue
			}
			for next[i] < len(r.matches) && usedTx[r.matches[next[i]].Candidate.ID] {
				next[i]++
			}
			if next[i] == len(r.matches) {
				done[i] = true
				continue
			}
			if best < 0 || better(r.pair(next[i]), rankings[best].pair(next[best])) {
				best = i
			}
		}
		if best < 0 {
			return planned
		}

		p := rankings[best].pair(next[best])
		planned = append(planned, p)
		usedTx[p.tx.ID] = true
		done[best] = true
	}
}

func better(a, b scoredPair) bool {
	if a.result.Confidence != b.result.Confidence {
		return a.result.Confidence > b.result.Confidence
	}
	if a.inbox.ID != b.inbox.ID {
		return a.inbox.ID < b.inbox.ID
	}
	return a.tx.ID < b.tx.ID
}

// ScorePair scores a single pair. When embeddingScore is nil the similarity
// provider is asked for one from the descriptions.
func (s *Service) ScorePair(ctx context.Context, inbox, tx matcher.Record, embeddingScore *float64) (matcher.MatchResult, error) {
	var emb float64
	if embeddingScore != nil {
		emb = *embeddingScore
	} else {
		var err error
		if emb, err = s.embeddingScore(ctx, s.logger, inbox.Description, tx.Description); err != nil {
			return matcher.MatchResult{}, err
		}
	}
	return s.matcher.Score(inbox, tx, emb), nil
}

// Confirm accepts a suggested match.
func (s *Service) Confirm(ctx context.Context, matchID string) (*storage.MatchDecision, error) {
	m, err := s.repo.AcceptMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("match confirmed",
		"match_id", m.ID, "inbox_id", m.InboxID, "transaction_id", m.TransactionID)
	return m, nil
}

// Decline rejects a suggested match.
func (s *Service) Decline(ctx context.Context, matchID string) (*storage.MatchDecision, error) {
	m, err := s.repo.DeclineMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("match declined",
		"match_id", m.ID, "inbox_id", m.InboxID, "transaction_id", m.TransactionID)
	return m, nil
}

// tryLockTeam attempts to acquire the team's run lock without blocking.
func (s *Service) tryLockTeam(teamID string) (func(), bool) {
	s.locksMutex.Lock()
	lock, ok := s.teamLocks[teamID]
	if !ok {
		lock = &sync.Mutex{}
		s.teamLocks[teamID] = lock
	}
	s.locksMutex.Unlock()

	if !lock.TryLock() {
		return nil, false
	}
	return lock.Unlock, true
}
