package similarity

import (
	"context"
	"math"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// containmentScore is the minimum score when one descriptor contains the other.
const containmentScore = 0.9

// Lexical scores descriptors by edit distance and token overlap. It needs no
// external service and is the fallback when embeddings are unavailable.
type Lexical struct{}

// NewLexical creates a lexical provider.
func NewLexical() Lexical {
	return Lexical{}
}

// Similarity implements Provider.
func (Lexical) Similarity(_ context.Context, a, b string) (float64, error) {
	return LexicalScore(a, b), nil
}

// LexicalScore is the best of the Levenshtein ratio and the token Jaccard
// index, raised to 0.9 when one descriptor contains the other.
func LexicalScore(a, b string) float64 {
	na, nb := NormalizeDescriptor(a), NormalizeDescriptor(b)
	if na == "" || nb == "" {
		return NeutralSimilarity
	}
	if na == nb {
		return 1.0
	}

	score := math.Max(levenshteinRatio(na, nb), tokenJaccard(na, nb))
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		score = math.Max(score, containmentScore)
	}
	return score
}

func levenshteinRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	distance := levenshtein.DistanceForStrings(ra, rb, levenshtein.DefaultOptions)
	return float64(total-distance) / float64(total)
}

func tokenJaccard(a, b string) float64 {
	setA := make(map[string]bool)
	for _, tok := range strings.Fields(a) {
		setA[tok] = true
	}
	setB := make(map[string]bool)
	for _, tok := range strings.Fields(b) {
		setB[tok] = true
	}

	var shared int
	for tok := range setA {
		if setB[tok] {
			shared++
		}
	}
	union := len(setA) + len(setB) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}
