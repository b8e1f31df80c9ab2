package storage

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expectedSchemaVersion is the latest migration version
// Update this when adding new migrations
const expectedSchemaVersion = 2

// TestMigrations_FreshDatabase tests running migrations on a fresh database
func TestMigrations_FreshDatabase(t *testing.T) {
	store := newTestStorage(t)

	version, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(expectedSchemaVersion), version)
}

// TestMigrations_Idempotency tests that migrations can be run multiple times
func TestMigrations_Idempotency(t *testing.T) {
	tmpDB := createTempDB(t)
	defer os.Remove(tmpDB)

	store, err := NewStorage(tmpDB)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = NewStorage(tmpDB)
	require.NoError(t, err)
	defer store.Close()

	var applied int
	err = store.db.QueryRow("SELECT COUNT(*) FROM goose_db_version WHERE version_id > 0 AND is_applied = 1").Scan(&applied)
	require.NoError(t, err)
	assert.Equal(t, expectedSchemaVersion, applied, "each migration should be recorded once")
}

// TestMigrations_Schema tests that the correct schema is created
func TestMigrations_Schema(t *testing.T) {
	store := newTestStorage(t)

	for _, table := range []string{"inbox_items", "transactions", "reconcile_runs", "match_decisions", "goose_db_version"} {
		err := store.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(new(int))
		assert.NoError(t, err, "%s table should exist", table)
	}
}

// TestMigrations_ForeignKeyConstraints tests that foreign keys are enforced
func TestMigrations_ForeignKeyConstraints(t *testing.T) {
	store := newTestStorage(t)

	var fkEnabled int
	err := store.db.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled)
	require.NoError(t, err)
	assert.Equal(t, 1, fkEnabled, "Foreign keys should be enabled")

	_, err = store.db.Exec(`
		INSERT INTO match_decisions (id, team_id, inbox_id, transaction_id,
			amount_score, currency_score, date_score, embedding_score, confidence,
			decision, status, created_at)
		VALUES ('m1', 'team', 'missing-inbox', 'missing-tx', 0, 0, 0, 0, 0, 'no_match', 'suggested', CURRENT_TIMESTAMP)
	`)
	require.Error(t, err, "Should fail to insert a match for unknown records")
	assert.Contains(t, err.Error(), "FOREIGN KEY constraint failed")
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "dsn")
	assert.ErrorContains(t, err, "unsupported driver")
}

func createTempDB(t *testing.T) string {
	tmpFile, err := os.CreateTemp("", "test_*.db")
	require.NoError(t, err)
	tmpFile.Close()
	return tmpFile.Name()
}

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	tmpDB := createTempDB(t)
	t.Cleanup(func() { _ = os.Remove(tmpDB) })

	store, err := NewStorage(tmpDB)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}
