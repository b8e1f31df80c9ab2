package matcher

const differentCurrencyScore = 0.3

// ScoreCurrency compares two ISO currency codes (case-sensitive).
// Different currencies get a conservative 0.3 so cross-currency pairs
// have to earn confidence from the other signals.
func ScoreCurrency(a, b string) float64 {
	if a == "" || b == "" {
		return NeutralScore
	}
	if a == b {
		return 1.0
	}
	return differentCurrencyScore
}
