package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreAmount_MissingAmountIsNeutral(t *testing.T) {
	assert.Equal(t, NeutralScore, ScoreAmount(record("", "SEK"), record("100", "SEK")))
	assert.Equal(t, NeutralScore, ScoreAmount(record("100", "SEK"), record("", "SEK")))
	assert.Equal(t, NeutralScore, ScoreAmount(record("", ""), record("", "")))
}

func TestScoreAmount_SameCurrencyLadder(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{"identical", "100", "100", 1.0},
		{"invoice vs payment", "599", "-599", 1.0},
		{"both outflows", "-42.50", "-42.50", 1.0},
		{"one percent", "100", "99", 1.0},
		{"two and a half percent", "100", "97.5", 1.0},
		{"three percent", "100", "97", 0.99},
		{"four percent", "100", "96", 0.935},
		{"five percent", "100", "95", 0.935},
		{"ten percent", "100", "90", 0.66},
		{"fifteen percent", "100", "85", 0.33},
		{"twenty five percent", "100", "75", 0},
		{"both zero", "0", "0", 1.0},
		{"zero vs amount", "0", "100", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreAmount(record(tt.a, "SEK"), record(tt.b, "SEK"))
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestScoreAmount_CrossCurrencyBase(t *testing.T) {
	t.Run("perfect base match", func(t *testing.T) {
		a := withBase(record("260.18", "USD"), "2570.78", "SEK")
		b := withBase(record("-2570.78", "SEK"), "2570.78", "SEK")

		got := ScoreAmount(a, b)

		assert.GreaterOrEqual(t, got, 0.99)
		assert.LessOrEqual(t, got, 1.0)
	})

	t.Run("false positive guard", func(t *testing.T) {
		a := withBase(record("260.18", "USD"), "2570.78", "SEK")
		b := withBase(record("-500", "SEK"), "500", "SEK")

		assert.Equal(t, 0.0, ScoreAmount(a, b))
	})

	t.Run("five percent apart", func(t *testing.T) {
		a := withBase(record("95", "USD"), "1000", "SEK")
		b := withBase(record("88", "EUR"), "950", "SEK")

		assert.InDelta(t, 0.85*1.03, ScoreAmount(a, b), 1e-9)
	})

	t.Run("opposite base signs are penalised", func(t *testing.T) {
		a := withBase(record("95", "USD"), "1000", "SEK")
		b := withBase(record("-88", "EUR"), "-1000", "SEK")

		assert.InDelta(t, 1.03*0.7, ScoreAmount(a, b), 1e-9)
	})

	t.Run("different base currencies do not convert", func(t *testing.T) {
		a := withBase(record("100", "USD"), "1000", "SEK")
		b := withBase(record("100", "EUR"), "1000", "NOK")

		assert.InDelta(t, 0.4, ScoreAmount(a, b), 1e-9)
	})
}

func TestScoreAmount_BaseCurrencyWithoutNativeCurrency(t *testing.T) {
	a := withBase(record("10", ""), "100", "SEK")
	b := withBase(record("11", ""), "95", "SEK")

	assert.InDelta(t, 0.85*1.05, ScoreAmount(a, b), 1e-9)
}

func TestScoreAmount_MissingCurrencyResolvedByBase(t *testing.T) {
	unknown := record("100", "")
	sek := record("100", "SEK")

	t.Run("base amounts in one currency are compared in full", func(t *testing.T) {
		a := withBase(unknown, "100", "SEK")
		b := withBase(sek, "100", "SEK")

		score, mode := scoreAmount(a, b)
		assert.Equal(t, modeCrossCurrencyBase, mode)
		assert.Equal(t, 1.0, score)
		assert.Equal(t, score, ScoreAmount(b, a))
	})

	t.Run("without a base the score stays at or below neutral", func(t *testing.T) {
		for _, other := range []Record{sek, record("100", "EUR"), record("-100", "SEK"), withBase(sek, "100", "SEK")} {
			assert.LessOrEqual(t, ScoreAmount(unknown, other), NeutralScore)
			assert.LessOrEqual(t, ScoreAmount(other, unknown), NeutralScore)
		}
	})

	t.Run("currency component stays neutral either way", func(t *testing.T) {
		assert.Equal(t, NeutralScore, ScoreCurrency(unknown.Currency, sek.Currency))
	})
}

func TestScoreAmount_PartialBaseIsAbsent(t *testing.T) {
	a := record("100", "USD")
	a.BaseAmount = amt("1000")
	b := withBase(record("100", "EUR"), "1000", "SEK")

	// falls through to the unresolved different-currency path
	assert.InDelta(t, 0.4, ScoreAmount(a, b), 1e-9)
}

func TestScoreAmount_DifferentCurrencyNoBase(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Record
		expected float64
	}{
		{
			name:     "same magnitude same sign",
			a:        record("100", "USD"),
			b:        record("100", "EUR"),
			expected: 0.4,
		},
		{
			name:     "opposite signs small ratio",
			a:        record("100", "USD"),
			b:        record("-100", "EUR"),
			expected: 0.3 * 0.4,
		},
		{
			name:     "opposite signs and seven times larger",
			a:        record("100", "USD"),
			b:        record("-700", "EUR"),
			expected: 0.1,
		},
		{
			name:     "same sign seven times larger is not short-circuited",
			a:        record("100", "USD"),
			b:        record("700", "EUR"),
			expected: 0,
		},
		{
			name:     "zero against a payment",
			a:        record("0", "USD"),
			b:        record("-50", "EUR"),
			expected: 0.1,
		},
		{
			name:     "missing currency on one side",
			a:        record("100", ""),
			b:        record("100", "EUR"),
			expected: 0.4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, ScoreAmount(tt.a, tt.b), 1e-9)
		})
	}
}

func TestScoreAmount_SymmetricAndBounded(t *testing.T) {
	records := []Record{
		record("599", "SEK"),
		record("-599", "SEK"),
		record("100", "USD"),
		record("-700", "EUR"),
		record("0", "EUR"),
		record("", "SEK"),
		withBase(record("260.18", "USD"), "2570.78", "SEK"),
		withBase(record("-2570.78", "SEK"), "2570.78", "SEK"),
		withBase(record("-500", "SEK"), "500", "SEK"),
		withBase(record("12", ""), "130", "SEK"),
	}

	for i, a := range records {
		for j, b := range records {
			ab := ScoreAmount(a, b)
			ba := ScoreAmount(b, a)
			assert.Equal(t, ab, ba, "pair %d/%d not symmetric", i, j)
			assert.GreaterOrEqual(t, ab, 0.0)
			assert.LessOrEqual(t, ab, 1.0)
		}
	}
}

func TestAmountFinishers_CoverEveryMode(t *testing.T) {
	for mode := amountMode(0); mode < amountModeCount; mode++ {
		assert.NotNil(t, amountFinishers[mode], "mode %s has no finisher", mode)
		assert.NotEmpty(t, amountModeNames[mode])
	}
	assert.Equal(t, "unknown", amountModeCount.String())
}

func TestDifferenceScore_FallbackMode(t *testing.T) {
	a, b := amt("100"), amt("-95")

	got := differenceScore(a.Decimal, b.Decimal, modeFallback)

	assert.InDelta(t, 0.85*0.7, got, 1e-9)
}

func TestScoreAmount_ReportsMode(t *testing.T) {
	_, mode := scoreAmount(record("1", "SEK"), record("1", "SEK"))
	assert.Equal(t, "exact_currency", mode.String())

	_, mode = scoreAmount(withBase(record("1", "USD"), "10", "SEK"), withBase(record("10", "SEK"), "10", "SEK"))
	assert.Equal(t, "cross_currency_base", mode.String())

	_, mode = scoreAmount(record("1", "USD"), record("1", "EUR"))
	assert.Equal(t, "different_currency", mode.String())
}
