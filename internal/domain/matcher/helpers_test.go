package matcher

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// amt builds a nullable amount; an empty string is null.
func amt(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func record(amount, currency string) Record {
	return Record{Amount: amt(amount), Currency: currency}
}

func withBase(r Record, amount, currency string) Record {
	r.BaseAmount = amt(amount)
	r.BaseCurrency = currency
	return r
}
