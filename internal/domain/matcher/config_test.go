package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "weights do not sum to one",
			mutate: func(c *Config) { c.Weights.Amount = 0.5 },
			errMsg: "weights must sum to 1",
		},
		{
			name: "negative weight",
			mutate: func(c *Config) {
				c.Weights.Amount = -0.1
				c.Weights.Embedding = 0.7
			},
			errMsg: "must not be negative",
		},
		{
			name:   "suggest above auto-match",
			mutate: func(c *Config) { c.Thresholds.Suggest = 0.95 },
			errMsg: "exceeds auto-match",
		},
		{
			name:   "threshold out of range",
			mutate: func(c *Config) { c.Thresholds.AutoMatch = 1.5 },
			errMsg: "within [0, 1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()

			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestThresholds_Decide(t *testing.T) {
	th := DefaultThresholds()

	assert.Equal(t, DecisionAutoMatch, th.Decide(1.0))
	assert.Equal(t, DecisionAutoMatch, th.Decide(0.9))
	assert.Equal(t, DecisionSuggested, th.Decide(0.89))
	assert.Equal(t, DecisionSuggested, th.Decide(0.6))
	assert.Equal(t, DecisionNoMatch, th.Decide(0.59))
	assert.Equal(t, DecisionNoMatch, th.Decide(0))
}

func TestThresholds_Overridable(t *testing.T) {
	th := Thresholds{AutoMatch: 0.95, Suggest: 0.5}

	assert.Equal(t, DecisionSuggested, th.Decide(0.9))
	assert.Equal(t, DecisionSuggested, th.Decide(0.55))
}

func TestAggregateConfidence(t *testing.T) {
	assert.InDelta(t, 1.0, AggregateConfidence(1, 1, 1, 1), 1e-9)
	assert.InDelta(t, 0.0, AggregateConfidence(0, 0, 0, 0), 1e-9)
	assert.InDelta(t, 0.3, AggregateConfidence(1, 0, 0, 0), 1e-9)
	assert.InDelta(t, 0.2, AggregateConfidence(0, 1, 0, 0), 1e-9)
	assert.InDelta(t, 0.2, AggregateConfidence(0, 0, 1, 0), 1e-9)
	assert.InDelta(t, 0.3, AggregateConfidence(0, 0, 0, 1), 1e-9)
	assert.InDelta(t, 0.94, AggregateConfidence(1, 1, 0.85, 0.9), 1e-9)
}

func TestWeights_CustomCalibration(t *testing.T) {
	w := Weights{Amount: 0.5, Currency: 0.1, Date: 0.1, Embedding: 0.3}

	got := w.Confidence(Scores{Amount: 1, Currency: 0.3, Date: 0.85, Embedding: 0})

	assert.InDelta(t, 0.5+0.03+0.085, got, 1e-9)
}
