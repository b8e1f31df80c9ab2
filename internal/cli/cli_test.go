package cli_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/inbox-reconcile/internal/cli"
)

// testConfig writes a config pointing at a fresh SQLite database.
func testConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`
storage:
  driver: sqlite3
  dsn: %s
embeddings:
  provider: lexical
observability:
  logging:
    level: error
`, filepath.Join(dir, "reconcile.db"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = cli.Execute(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestScoreCommand(t *testing.T) {
	cfg := testConfig(t)

	t.Run("prints component scores", func(t *testing.T) {
		code, out, stderr := execute(t, "score", "--config", cfg,
			"--inbox-amount", "599", "--inbox-currency", "SEK", "--inbox-date", "2024-08-23",
			"--tx-amount", "-599", "--tx-currency", "SEK", "--tx-date", "2024-08-25",
			"--embedding", "0.9")

		require.Equal(t, 0, code, stderr)
		assert.Contains(t, out, "date       0.8500")
		assert.Contains(t, out, "confidence 0.9400")
		assert.Contains(t, out, "decision   auto_match")
	})

	t.Run("uses the lexical provider without an embedding", func(t *testing.T) {
		code, out, stderr := execute(t, "score", "--config", cfg,
			"--inbox-amount", "100", "--inbox-date", "2024-01-01", "--inbox-description", "Acme Corp",
			"--tx-amount", "-100", "--tx-date", "2024-01-01", "--tx-description", "ACME CORP")

		require.Equal(t, 0, code, stderr)
		assert.Contains(t, out, "embedding  1.0000")
	})

	t.Run("malformed amount fails", func(t *testing.T) {
		code, _, stderr := execute(t, "score", "--config", cfg,
			"--inbox-amount", "12,50", "--inbox-date", "2024-01-01",
			"--tx-amount", "-12.50", "--tx-date", "2024-01-01")

		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "inbox-amount")
	})

	t.Run("embedding above one fails", func(t *testing.T) {
		code, _, stderr := execute(t, "score", "--config", cfg,
			"--inbox-amount", "1", "--inbox-date", "2024-01-01",
			"--tx-amount", "-1", "--tx-date", "2024-01-01", "--embedding", "1.5")

		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "--embedding")
	})
}

func TestGoldenCommand(t *testing.T) {
	cfg := testConfig(t)

	t.Run("reference dataset passes", func(t *testing.T) {
		code, out, stderr := execute(t, "golden", "--config", cfg, "../domain/golden/testdata/golden.yaml")

		require.Equal(t, 0, code, out+stderr)
		assert.Contains(t, out, "reference:")
		assert.Contains(t, out, "0 failed")
	})

	t.Run("failing case exits non-zero", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "golden.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
name: broken
cases:
  - name: wrong-expectation
    inbox: {amount: "20", currency: USD, date: "2025-02-26"}
    transaction: {amount: "-20", currency: USD, date: "2025-02-26"}
    embedding_score: 0.7
    expect:
      decision: no_match
`), 0o600))

		code, out, stderr := execute(t, "golden", "--config", cfg, path)

		assert.Equal(t, 1, code)
		assert.Contains(t, out, "FAIL wrong-expectation")
		assert.Contains(t, stderr, "1 of 1 golden cases failed")
	})

	t.Run("requires a file", func(t *testing.T) {
		code, _, _ := execute(t, "golden", "--config", cfg)

		assert.Equal(t, 1, code)
	})
}

func TestMigrateCommand(t *testing.T) {
	code, out, stderr := execute(t, "migrate", "--config", testConfig(t))

	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "sqlite3 schema at version 2\n", out)
}

func TestRunCommand(t *testing.T) {
	cfg := testConfig(t)

	t.Run("team is required", func(t *testing.T) {
		code, _, stderr := execute(t, "run", "--config", cfg)

		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "team")
	})

	t.Run("empty team completes", func(t *testing.T) {
		code, out, stderr := execute(t, "run", "--config", cfg, "--team", "team-1", "--dry-run")

		require.Equal(t, 0, code, stderr)
		assert.Contains(t, out, "reconcile: team team-1 (DRY-RUN mode)")
		assert.Contains(t, out, "Summary: Inbox=0 Transactions=0")
		assert.Contains(t, out, "Dry run: no decisions were saved.")
	})
}

func TestConfigFlag(t *testing.T) {
	code, _, stderr := execute(t, "migrate", "--config", filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "missing.yaml")
}
