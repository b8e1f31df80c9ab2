package matcher

import (
	"math"

	"github.com/shopspring/decimal"
)

// amountMode selects how two amounts are compared and which finishing
// adjustment applies.
type amountMode int

const (
	modeFallback amountMode = iota
	modeExactCurrency
	modeBaseCurrency
	modeCrossCurrencyBase
	modeDifferentCurrency
	amountModeCount
)

var amountModeNames = [amountModeCount]string{
	modeFallback:          "fallback",
	modeExactCurrency:     "exact_currency",
	modeBaseCurrency:      "base_currency",
	modeCrossCurrencyBase: "cross_currency_base",
	modeDifferentCurrency: "different_currency",
}

func (m amountMode) String() string {
	if m < 0 || m >= amountModeCount {
		return "unknown"
	}
	return amountModeNames[m]
}

// amountFinishers holds the mode-specific adjustment applied to the ladder
// score. perspective is the cross-perspective penalty (1.0 when signs agree).
var amountFinishers = [amountModeCount]func(base, perspective float64) float64{
	modeFallback: func(base, perspective float64) float64 {
		return base * perspective
	},
	modeExactCurrency: func(base, _ float64) float64 {
		return base * 1.10
	},
	modeBaseCurrency: func(base, _ float64) float64 {
		return base * 1.05
	},
	modeCrossCurrencyBase: func(base, perspective float64) float64 {
		return base * 1.03 * perspective
	},
	modeDifferentCurrency: func(base, perspective float64) float64 {
		return base * perspective
	},
}

const (
	unresolvedCurrencyFactor = 0.4 // different currencies, no base conversion
	signMismatchScore        = 0.1
	signMismatchRatio        = 5

	oppositeSignPenalty                  = 0.7
	oppositeSignDifferentCurrencyPenalty = 0.3
)

type amountStep struct {
	maxDiff decimal.Decimal
	score   float64
}

// amountLadder maps the percentage difference onto a base score. Anything
// beyond the last step scores 0.
var amountLadder = []amountStep{
	{maxDiff: decimal.Zero, score: 1.0},
	{maxDiff: decimal.RequireFromString("0.01"), score: 0.98},
	{maxDiff: decimal.RequireFromString("0.02"), score: 0.95},
	{maxDiff: decimal.RequireFromString("0.025"), score: 0.92},
	{maxDiff: decimal.RequireFromString("0.03"), score: 0.9},
	{maxDiff: decimal.RequireFromString("0.05"), score: 0.85},
	{maxDiff: decimal.RequireFromString("0.10"), score: 0.6},
	{maxDiff: decimal.RequireFromString("0.20"), score: 0.3},
}

// ScoreAmount compares the amounts of two records and returns a similarity
// in [0, 1]. It is symmetric in its arguments.
func ScoreAmount(a, b Record) float64 {
	score, _ := scoreAmount(a, b)
	return score
}

func scoreAmount(a, b Record) (float64, amountMode) {
	if !a.Amount.Valid || !b.Amount.Valid {
		return NeutralScore, modeFallback
	}

	mode := selectAmountMode(a, b)
	switch mode {
	case modeExactCurrency:
		return differenceScore(a.Amount.Decimal, b.Amount.Decimal, mode), mode
	case modeBaseCurrency, modeCrossCurrencyBase:
		return differenceScore(a.BaseAmount.Decimal, b.BaseAmount.Decimal, mode), mode
	case modeDifferentCurrency:
		x, y := a.Amount.Decimal, b.Amount.Decimal
		if x.Sign() != y.Sign() && magnitudeRatioExceeds(x, y, signMismatchRatio) {
			return signMismatchScore, mode
		}
		return differenceScore(x, y, mode) * unresolvedCurrencyFactor, mode
	default:
		return differenceScore(a.Amount.Decimal, b.Amount.Decimal, modeFallback), modeFallback
	}
}

// selectAmountMode picks the comparison. Base amounts in one shared base
// currency resolve the comparison even when a native currency is missing;
// only then may a record without a currency score above neutral.
func selectAmountMode(a, b Record) amountMode {
	if a.Currency != "" && a.Currency == b.Currency {
		return modeExactCurrency
	}
	if a.hasBase() && b.hasBase() && a.BaseCurrency == b.BaseCurrency {
		// Equal native currencies can only mean both are missing here.
		if a.Currency == b.Currency {
			return modeBaseCurrency
		}
		return modeCrossCurrencyBase
	}
	return modeDifferentCurrency
}

// magnitudeRatioExceeds reports whether max(|x|,|y|)/min(|x|,|y|) > limit.
// A zero minimum against a non-zero maximum is an infinite ratio.
func magnitudeRatioExceeds(x, y decimal.Decimal, limit int64) bool {
	hi := decimal.Max(x.Abs(), y.Abs())
	lo := decimal.Min(x.Abs(), y.Abs())
	if lo.IsZero() {
		return !hi.IsZero()
	}
	return hi.Div(lo).GreaterThan(decimal.NewFromInt(limit))
}

// differenceScore runs the percentage-difference ladder and applies the
// mode-specific adjustment, clamped to 1.0.
//
// Opposite signs are compared by magnitude so a +599 invoice and a -599
// payment are a perfect match.
func differenceScore(a, b decimal.Decimal, mode amountMode) float64 {
	opposite := a.Sign()*b.Sign() < 0
	if opposite {
		a, b = a.Abs(), b.Abs()
	}

	base := ladderScore(a, b)

	perspective := 1.0
	if opposite {
		perspective = oppositeSignPenalty
		if mode == modeDifferentCurrency {
			perspective = oppositeSignDifferentCurrencyPenalty
		}
	}

	finish := amountFinishers[modeFallback]
	if mode >= 0 && mode < amountModeCount && amountFinishers[mode] != nil {
		finish = amountFinishers[mode]
	}
	return math.Min(1.0, finish(base, perspective))
}

func ladderScore(a, b decimal.Decimal) float64 {
	maxAmount := decimal.Max(a.Abs(), b.Abs())
	if maxAmount.IsZero() {
		// both zero
		return 1.0
	}
	pct := a.Sub(b).Abs().Div(maxAmount)
	for _, step := range amountLadder {
		if pct.LessThanOrEqual(step.maxDiff) {
			return step.score
		}
	}
	return 0
}
