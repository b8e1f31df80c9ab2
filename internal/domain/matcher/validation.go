package matcher

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ValidationError reports malformed input at an ingestion boundary.
// The scorers themselves never return it.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// ParseDate parses an ISO-8601 calendar date. Full RFC3339 timestamps are
// accepted and truncated to their calendar date.
func ParseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, &ValidationError{Field: field, Value: value, Reason: "date is required"}
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Value: value, Reason: "expected YYYY-MM-DD"}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// ParseAmount parses an optional decimal amount. An empty string yields a
// null amount.
func ParseAmount(field, value string) (decimal.NullDecimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.NullDecimal{}, &ValidationError{Field: field, Value: value, Reason: "not a decimal number"}
	}
	return decimal.NewNullDecimal(d), nil
}

// ParseCurrency validates an optional ISO 4217 code. Case is preserved;
// callers normalize upstream.
func ParseCurrency(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	if len(value) != 3 {
		return "", &ValidationError{Field: field, Value: value, Reason: "expected a 3-letter ISO 4217 code"}
	}
	return value, nil
}

// ParseRecordType validates an optional record type.
func ParseRecordType(value string) (RecordType, error) {
	switch RecordType(strings.TrimSpace(value)) {
	case "":
		return "", nil
	case RecordTypeInvoice:
		return RecordTypeInvoice, nil
	case RecordTypeExpense:
		return RecordTypeExpense, nil
	default:
		return "", &ValidationError{Field: "type", Value: value, Reason: "expected invoice or expense"}
	}
}
