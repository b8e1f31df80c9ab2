package matcher

import (
	"errors"
	"fmt"
	"math"
)

// Decision is the outcome derived from a confidence score.
type Decision string

const (
	DecisionAutoMatch Decision = "auto_match"
	DecisionSuggested Decision = "suggested"
	DecisionNoMatch   Decision = "no_match"
)

// Weights are the aggregation weights for the four component scores.
type Weights struct {
	Amount    float64 `yaml:"amount"`
	Currency  float64 `yaml:"currency"`
	Date      float64 `yaml:"date"`
	Embedding float64 `yaml:"embedding"`
}

// DefaultWeights returns the calibrated 0.3/0.2/0.2/0.3 split.
func DefaultWeights() Weights {
	return Weights{
		Amount:    0.3,
		Currency:  0.2,
		Date:      0.2,
		Embedding: 0.3,
	}
}

// Confidence returns the weighted sum of the component scores.
func (w Weights) Confidence(s Scores) float64 {
	return w.Amount*s.Amount +
		w.Currency*s.Currency +
		w.Date*s.Date +
		w.Embedding*s.Embedding
}

// Thresholds are the decision band boundaries.
type Thresholds struct {
	AutoMatch float64 `yaml:"auto_match"`
	Suggest   float64 `yaml:"suggest"`
}

// DefaultThresholds returns 0.9 for auto-match and 0.6 for suggestions.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AutoMatch: 0.9,
		Suggest:   0.6,
	}
}

// Decide maps a confidence score onto a decision band.
func (t Thresholds) Decide(confidence float64) Decision {
	switch {
	case confidence >= t.AutoMatch:
		return DecisionAutoMatch
	case confidence >= t.Suggest:
		return DecisionSuggested
	default:
		return DecisionNoMatch
	}
}

// Config holds matcher configuration. It is passed and stored by value.
type Config struct {
	Weights    Weights
	Thresholds Thresholds

	// CrossCurrencyGate forces no_match for pairs in different native
	// currencies that IsCrossCurrencyMatch rejects.
	CrossCurrencyGate bool
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	return Config{
		Weights:    DefaultWeights(),
		Thresholds: DefaultThresholds(),
	}
}

const weightSumEpsilon = 1e-9

// Validate checks that weights form a convex combination and thresholds are ordered.
func (c Config) Validate() error {
	w := c.Weights
	for name, v := range map[string]float64{
		"amount":    w.Amount,
		"currency":  w.Currency,
		"date":      w.Date,
		"embedding": w.Embedding,
	} {
		if v < 0 {
			return fmt.Errorf("weight %s must not be negative: %v", name, v)
		}
	}
	sum := w.Amount + w.Currency + w.Date + w.Embedding
	if math.Abs(sum-1) > weightSumEpsilon {
		return fmt.Errorf("weights must sum to 1, got %v", sum)
	}

	t := c.Thresholds
	if t.Suggest < 0 || t.AutoMatch > 1 {
		return errors.New("thresholds must lie within [0, 1]")
	}
	if t.Suggest > t.AutoMatch {
		return fmt.Errorf("suggest threshold %v exceeds auto-match threshold %v", t.Suggest, t.AutoMatch)
	}
	return nil
}
