package matcher

import (
	"time"

	"github.com/shopspring/decimal"
)

// NeutralScore is returned when a component lacks the data to compare.
// It is "unknown", not a penalty.
const NeutralScore = 0.5

// RecordType selects the directional date tolerance model for the inbox side.
type RecordType string

const (
	RecordTypeInvoice RecordType = "invoice"
	RecordTypeExpense RecordType = "expense"
)

// Normalize returns the type to use for scoring. Anything other than
// invoice is treated as expense.
func (t RecordType) Normalize() RecordType {
	if t == RecordTypeInvoice {
		return RecordTypeInvoice
	}
	return RecordTypeExpense
}

// Record is a snapshot of either an inbox item or a bank transaction.
// Empty currency strings mean "missing".
type Record struct {
	Amount       decimal.NullDecimal
	Currency     string
	BaseAmount   decimal.NullDecimal
	BaseCurrency string
	Date         time.Time
	Type         RecordType // only meaningful on the inbox side
	Description  string     // fed to the similarity provider, not to the scorers
}

// hasBase reports whether both base amount and base currency are present.
// Partial presence counts as absent.
func (r Record) hasBase() bool {
	return r.BaseAmount.Valid && r.BaseCurrency != ""
}

// Scores holds the component scores for one pair.
type Scores struct {
	Amount    float64 `json:"amount"`
	Currency  float64 `json:"currency"`
	Date      float64 `json:"date"`
	Embedding float64 `json:"embedding"`
}

// MatchResult is the explainable outcome of scoring one pair.
type MatchResult struct {
	Scores        Scores
	Confidence    float64
	Decision      Decision
	AmountMode    string // which amount comparison was used
	CrossCurrency bool   // IsCrossCurrencyMatch output
	Gated         bool   // forced to no_match by the cross-currency gate
}
