package golden

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/inbox-reconcile/internal/domain/matcher"
)

func TestReferenceDataset(t *testing.T) {
	ds, err := Load(filepath.Join("testdata", "golden.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, ds.Cases)

	report := Evaluate(matcher.NewMatcher(matcher.DefaultConfig()), ds)

	for _, r := range report.Results {
		assert.True(t, r.Passed, "%s: %s", r.Name, strings.Join(r.Failures, "; "))
	}
	assert.True(t, report.OK())
	assert.Equal(t, len(ds.Cases), report.Passed)
}

func TestEvaluate_ReportsFailures(t *testing.T) {
	ds, err := Parse([]byte(`
name: broken
cases:
  - name: wrong-expectation
    inbox: {amount: "100", currency: SEK, date: "2024-01-01"}
    transaction: {amount: "-100", currency: SEK, date: "2024-01-01"}
    embedding_score: 0.2
    expect:
      currency: {equals: 0.3}
      decision: auto_match
`))
	require.NoError(t, err)

	report := Evaluate(matcher.NewMatcher(matcher.DefaultConfig()), ds)

	require.Len(t, report.Results, 1)
	assert.False(t, report.OK())
	assert.Equal(t, 1, report.Failed)
	assert.Len(t, report.Results[0].Failures, 2)
}

func TestParse_InvalidSnapshot(t *testing.T) {
	_, err := Parse([]byte(`
cases:
  - name: bad-date
    inbox: {amount: "100", currency: SEK, date: "01/02/2024"}
    transaction: {amount: "-100", currency: SEK, date: "2024-01-01"}
`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad-date")

	var vErr *matcher.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse([]byte(`name: empty`))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
