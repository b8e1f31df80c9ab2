package matcher

import (
	"math"
	"time"
)

// Date scores never drop below this: date alone never disqualifies a match.
const dateFloorScore = 0.1

// bankingDelayDays is the assumed settlement lag between an expense and
// its bank transaction.
const bankingDelayDays = 3

// dateBand matches a whole-day difference in [from, to].
type dateBand struct {
	name     string
	from, to int
	score    float64
}

func (b dateBand) contains(days int) bool {
	return days >= b.from && days <= b.to
}

// invoicePaymentBands are payment-term windows for an invoice paid after it
// was issued. They overlap and are evaluated top-down: net7 claims days 3-6
// before the immediate band is reached. Do not reorder.
var invoicePaymentBands = []dateBand{
	{name: "net30", from: 24, to: 38, score: 0.98},
	{name: "net60", from: 55, to: 68, score: 0.96},
	{name: "net90", from: 85, to: 98, score: 0.94},
	{name: "net15", from: 10, to: 20, score: 0.95},
	{name: "net7", from: 3, to: 11, score: 0.93},
	{name: "immediate", from: 1, to: 6, score: 0.99},
}

const (
	invoiceLateLimitDays    = 123
	invoiceAdvanceLimitDays = 10
	invoiceAdvanceScore     = 0.85
)

// expenseSettlementBands apply to the delay-adjusted gap when the
// transaction posted before the inbox item was created.
var expenseSettlementBands = []dateBand{
	{name: "settled", from: 0, to: 4, score: 0.99},
	{name: "week", from: 5, to: 10, score: 0.95},
	{name: "month", from: 11, to: 33, score: 0.9},
	{name: "two_months", from: 34, to: 63, score: 0.8},
	{name: "quarter", from: 64, to: 93, score: 0.7},
}

const (
	expenseLeadLimitDays = 10
	expenseLeadScore     = 0.85
)

// proximityBands is the direction-agnostic fallback ladder.
var proximityBands = []dateBand{
	{name: "same_day", from: 0, to: 0, score: 1.0},
	{name: "one_day", from: 1, to: 1, score: 0.95},
	{name: "three_days", from: 2, to: 3, score: 0.85},
	{name: "week", from: 4, to: 7, score: 0.75},
	{name: "fortnight", from: 8, to: 14, score: 0.6},
}

// ScoreDate compares an inbox record date with a transaction date and
// returns a score in [0.1, 1.0]. Direction matters: the result is not
// symmetric. An empty record type is treated as expense.
func ScoreDate(inboxDate, transactionDate time.Time, recordType RecordType) float64 {
	signed := daysBetween(inboxDate, transactionDate)

	var (
		score float64
		ok    bool
	)
	if recordType.Normalize() == RecordTypeInvoice {
		score, ok = invoiceDateScore(signed)
	} else {
		score, ok = expenseDateScore(signed)
	}
	if ok {
		return score
	}
	return proximityScore(abs(signed))
}

func invoiceDateScore(signed int) (float64, bool) {
	if signed > 0 {
		if score, ok := firstBand(invoicePaymentBands, signed); ok {
			return score, true
		}
		if signed <= invoiceLateLimitDays {
			return math.Max(0.7, 0.9-float64(signed-33)*0.002), true
		}
		return 0, false
	}
	if signed >= -invoiceAdvanceLimitDays {
		return invoiceAdvanceScore, true
	}
	return 0, false
}

func expenseDateScore(signed int) (float64, bool) {
	if signed < 0 {
		adjusted := -signed + bankingDelayDays
		return firstBand(expenseSettlementBands, adjusted)
	}
	if signed <= expenseLeadLimitDays {
		return expenseLeadScore, true
	}
	return 0, false
}

func proximityScore(days int) float64 {
	if score, ok := firstBand(proximityBands, days); ok {
		return score
	}
	if days <= 30 {
		return math.Max(0.3, 1-(float64(days)/30)*0.7)
	}
	return dateFloorScore
}

func firstBand(bands []dateBand, days int) (float64, bool) {
	for _, b := range bands {
		if b.contains(days) {
			return b.score, true
		}
	}
	return 0, false
}

// daysBetween returns the whole calendar days from a to b, positive when b
// is later. Time of day and location offsets are ignored.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
