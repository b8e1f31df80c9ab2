// Package matcher scores whether an inbox item (invoice, receipt, bill)
// and a bank transaction describe the same payment.
//
// Each component scorer is a pure function:
//   - ScoreAmount compares amounts, via base-currency conversion when the
//     native currencies differ
//   - ScoreCurrency compares ISO currency codes
//   - ScoreDate compares dates with direction- and type-aware windows
//   - IsCrossCurrencyMatch checks converted amounts against tiered tolerances
//
// A Matcher combines them with an externally computed embedding similarity
// into a confidence score and a decision.
//
// Example usage:
//
//	m := matcher.NewMatcher(matcher.DefaultConfig())
//	result := m.Score(inbox, tx, embeddingScore)
//	if result.Decision == matcher.DecisionAutoMatch {
//		// link them
//	}
package matcher

import "sort"

// Matcher scores record pairs with a fixed configuration.
// It holds no mutable state and is safe for concurrent use.
type Matcher struct {
	config Config
}

// NewMatcher creates a new matcher with the given config
func NewMatcher(config Config) *Matcher {
	return &Matcher{
		config: config,
	}
}

// Score scores one (inbox, transaction) pair. The embedding score comes from
// an external similarity provider and is clamped to [0, 1].
func (m *Matcher) Score(inbox, tx Record, embeddingScore float64) MatchResult {
	amountScore, mode := scoreAmount(inbox, tx)
	scores := Scores{
		Amount:    amountScore,
		Currency:  ScoreCurrency(inbox.Currency, tx.Currency),
		Date:      ScoreDate(inbox.Date, tx.Date, inbox.Type),
		Embedding: clampUnit(embeddingScore),
	}

	confidence := m.config.Weights.Confidence(scores)
	result := MatchResult{
		Scores:        scores,
		Confidence:    confidence,
		Decision:      m.config.Thresholds.Decide(confidence),
		AmountMode:    mode.String(),
		CrossCurrency: IsCrossCurrencyMatch(inbox, tx),
	}

	if m.config.CrossCurrencyGate && differentCurrencies(inbox, tx) && !result.CrossCurrency {
		result.Decision = DecisionNoMatch
		result.Gated = true
	}

	return result
}

func differentCurrencies(a, b Record) bool {
	return a.Currency != "" && b.Currency != "" && a.Currency != b.Currency
}

// Candidate is a transaction offered for matching against an inbox item.
type Candidate struct {
	ID             string
	Record         Record
	EmbeddingScore float64
}

// CandidateMatch pairs a candidate with its score.
type CandidateMatch struct {
	Candidate Candidate
	Result    MatchResult
}

// FindBestMatch finds the best matching candidate for an inbox record.
// Candidates in used are skipped, as are those scoring no_match.
// Returns nil if no suitable match found.
func (m *Matcher) FindBestMatch(inbox Record, candidates []Candidate, used map[string]bool) *CandidateMatch {
	scored := m.RankCandidates(inbox, candidates, used)
	if len(scored) == 0 {
		return nil
	}
	return &scored[0]
}

// RankCandidates scores every unused candidate and returns those that are
// not no_match, best first. Ties break on candidate ID.
func (m *Matcher) RankCandidates(inbox Record, candidates []Candidate, used map[string]bool) []CandidateMatch {
	ranked := make([]CandidateMatch, 0, len(candidates))
	for _, c := range candidates {
		if used[c.ID] {
			continue
		}
		result := m.Score(inbox, c.Record, c.EmbeddingScore)
		if result.Decision == DecisionNoMatch {
			continue
		}
		ranked = append(ranked, CandidateMatch{Candidate: c, Result: result})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Result.Confidence != ranked[j].Result.Confidence {
			return ranked[i].Result.Confidence > ranked[j].Result.Confidence
		}
		return ranked[i].Candidate.ID < ranked[j].Candidate.ID
	})
	return ranked
}
