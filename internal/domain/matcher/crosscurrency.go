package matcher

import "github.com/shopspring/decimal"

// crossCurrencyTier is an absolute floor and a percentage of the average
// base amount; the larger of the two is the tolerance.
type crossCurrencyTier struct {
	below   decimal.Decimal // exclusive upper bound on the average; zero means unbounded
	floor   decimal.Decimal
	percent decimal.Decimal
}

var crossCurrencyTiers = []crossCurrencyTier{
	{below: decimal.NewFromInt(100), floor: decimal.NewFromInt(10), percent: decimal.RequireFromString("0.04")},
	{below: decimal.NewFromInt(1000), floor: decimal.NewFromInt(15), percent: decimal.RequireFromString("0.02")},
	{floor: decimal.NewFromInt(25), percent: decimal.RequireFromString("0.015")},
}

var two = decimal.NewFromInt(2)

// IsCrossCurrencyMatch reports whether two records in different native
// currencies plausibly describe the same payment, judged on their base
// amounts. It is independent of ScoreAmount.
func IsCrossCurrencyMatch(a, b Record) bool {
	if a.Currency == "" || b.Currency == "" || a.Currency == b.Currency {
		return false
	}
	if !a.hasBase() || !b.hasBase() || a.BaseCurrency != b.BaseCurrency {
		return false
	}
	baseA := a.BaseAmount.Decimal.Abs()
	baseB := b.BaseAmount.Decimal.Abs()
	if baseA.IsZero() || baseB.IsZero() {
		return false
	}

	avg := baseA.Add(baseB).Div(two)
	diff := baseA.Sub(baseB).Abs()
	return diff.LessThan(crossCurrencyTolerance(avg))
}

func crossCurrencyTolerance(avg decimal.Decimal) decimal.Decimal {
	for _, tier := range crossCurrencyTiers {
		if tier.below.IsZero() || avg.LessThan(tier.below) {
			return decimal.Max(tier.floor, avg.Mul(tier.percent))
		}
	}
	// unreachable: the last tier is unbounded
	last := crossCurrencyTiers[len(crossCurrencyTiers)-1]
	return decimal.Max(last.floor, avg.Mul(last.percent))
}
