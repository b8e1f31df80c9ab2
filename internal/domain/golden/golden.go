// Package golden loads curated (inbox, transaction) cases with their
// expected scores and checks a matcher against them.
//
// Datasets are YAML:
//
//	cases:
//	  - name: same-currency-two-day-gap
//	    inbox:       {amount: "599", currency: SEK, date: "2024-08-23"}
//	    transaction: {amount: "-599", currency: SEK, date: "2024-08-25"}
//	    embedding_score: 0.9
//	    expect:
//	      amount: {min: 0.99}
//	      date:   {equals: 0.85}
//	      decision: auto_match
package golden

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/eshaffer321/inbox-reconcile/internal/domain/matcher"
)

// scoreEpsilon is the tolerance used for "equals" expectations.
const scoreEpsilon = 1e-6

// Dataset is a named collection of golden cases.
type Dataset struct {
	Name  string `yaml:"name"`
	Cases []Case `yaml:"cases"`
}

// Case is one expected scoring outcome.
type Case struct {
	Name           string      `yaml:"name"`
	Description    string      `yaml:"description"`
	Source         string      `yaml:"source"` // "real" or "synthetic"
	Inbox          Snapshot    `yaml:"inbox"`
	Transaction    Snapshot    `yaml:"transaction"`
	EmbeddingScore float64     `yaml:"embedding_score"`
	Expect         Expectation `yaml:"expect"`

	inbox, tx matcher.Record
}

// Snapshot is the textual form of a matcher.Record.
type Snapshot struct {
	Amount       string `yaml:"amount"`
	Currency     string `yaml:"currency"`
	BaseAmount   string `yaml:"base_amount"`
	BaseCurrency string `yaml:"base_currency"`
	Date         string `yaml:"date"`
	Type         string `yaml:"type"`
	Description  string `yaml:"description"`
}

// Record converts the snapshot, validating every field.
func (s Snapshot) Record() (matcher.Record, error) {
	var (
		r   matcher.Record
		err error
	)
	if r.Amount, err = matcher.ParseAmount("amount", s.Amount); err != nil {
		return r, err
	}
	if r.Currency, err = matcher.ParseCurrency("currency", s.Currency); err != nil {
		return r, err
	}
	if r.BaseAmount, err = matcher.ParseAmount("base_amount", s.BaseAmount); err != nil {
		return r, err
	}
	if r.BaseCurrency, err = matcher.ParseCurrency("base_currency", s.BaseCurrency); err != nil {
		return r, err
	}
	if r.Date, err = matcher.ParseDate("date", s.Date); err != nil {
		return r, err
	}
	if r.Type, err = matcher.ParseRecordType(s.Type); err != nil {
		return r, err
	}
	r.Description = s.Description
	return r, nil
}

// Range bounds a score. Unset fields are not checked.
type Range struct {
	Min    *float64 `yaml:"min"`
	Max    *float64 `yaml:"max"`
	Equals *float64 `yaml:"equals"`
}

func (r *Range) check(label string, got float64) []string {
	if r == nil {
		return nil
	}
	var failures []string
	if r.Equals != nil && math.Abs(got-*r.Equals) > scoreEpsilon {
		failures = append(failures, fmt.Sprintf("%s: got %.4f, want %.4f", label, got, *r.Equals))
	}
	if r.Min != nil && got < *r.Min-scoreEpsilon {
		failures = append(failures, fmt.Sprintf("%s: got %.4f, want >= %.4f", label, got, *r.Min))
	}
	if r.Max != nil && got > *r.Max+scoreEpsilon {
		failures = append(failures, fmt.Sprintf("%s: got %.4f, want <= %.4f", label, got, *r.Max))
	}
	return failures
}

// Expectation lists what a case asserts about the result.
type Expectation struct {
	Amount        *Range           `yaml:"amount"`
	Currency      *Range           `yaml:"currency"`
	Date          *Range           `yaml:"date"`
	Confidence    *Range           `yaml:"confidence"`
	CrossCurrency *bool            `yaml:"cross_currency"`
	Decision      matcher.Decision `yaml:"decision"`
}

// Load reads and parses a dataset file.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a dataset and validates every snapshot.
func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse golden dataset: %w", err)
	}
	if len(ds.Cases) == 0 {
		return nil, fmt.Errorf("golden dataset %q has no cases", ds.Name)
	}

	var err error
	for i := range ds.Cases {
		c := &ds.Cases[i]
		if c.Name == "" {
			c.Name = fmt.Sprintf("case-%d", i+1)
		}
		if c.inbox, err = c.Inbox.Record(); err != nil {
			return nil, fmt.Errorf("case %s inbox: %w", c.Name, err)
		}
		if c.tx, err = c.Transaction.Record(); err != nil {
			return nil, fmt.Errorf("case %s transaction: %w", c.Name, err)
		}
	}
	return &ds, nil
}

// CaseResult is the outcome of checking one case.
type CaseResult struct {
	Name     string
	Passed   bool
	Failures []string
	Result   matcher.MatchResult
}

// Report summarizes an evaluation.
type Report struct {
	Dataset string
	Results []CaseResult
	Passed  int
	Failed  int
}

// OK reports whether every case passed.
func (r *Report) OK() bool {
	return r.Failed == 0
}

// Evaluate scores every case with m and compares against expectations.
func Evaluate(m *matcher.Matcher, ds *Dataset) *Report {
	report := &Report{
		Dataset: ds.Name,
		Results: make([]CaseResult, 0, len(ds.Cases)),
	}

	for _, c := range ds.Cases {
		result := m.Score(c.inbox, c.tx, c.EmbeddingScore)

		var failures []string
		failures = append(failures, c.Expect.Amount.check("amount", result.Scores.Amount)...)
		failures = append(failures, c.Expect.Currency.check("currency", result.Scores.Currency)...)
		failures = append(failures, c.Expect.Date.check("date", result.Scores.Date)...)
		failures = append(failures, c.Expect.Confidence.check("confidence", result.Confidence)...)

		if c.Expect.CrossCurrency != nil {
			got := matcher.IsCrossCurrencyMatch(c.inbox, c.tx)
			if got != *c.Expect.CrossCurrency {
				failures = append(failures, fmt.Sprintf("cross_currency: got %t, want %t", got, *c.Expect.CrossCurrency))
			}
		}
		if c.Expect.Decision != "" && result.Decision != c.Expect.Decision {
			failures = append(failures, fmt.Sprintf("decision: got %s, want %s", result.Decision, c.Expect.Decision))
		}

		cr := CaseResult{
			Name:     c.Name,
			Passed:   len(failures) == 0,
			Failures: failures,
			Result:   result,
		}
		if cr.Passed {
			report.Passed++
		} else {
			report.Failed++
		}
		report.Results = append(report.Results, cr)
	}

	return report
}
