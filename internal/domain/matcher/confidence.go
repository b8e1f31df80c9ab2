package matcher

// AggregateConfidence combines component scores with the default weights.
func AggregateConfidence(amountScore, currencyScore, dateScore, embeddingScore float64) float64 {
	return DefaultWeights().Confidence(Scores{
		Amount:    amountScore,
		Currency:  currencyScore,
		Date:      dateScore,
		Embedding: embeddingScore,
	})
}

// clampUnit limits an externally supplied score to [0, 1].
func clampUnit(v float64) float64 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
