package db

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	write := buildDSN("/tmp/tk.sqlite", ModeWrite)
	read := buildDSN("/tmp/tk.sqlite", ModeRead)

	for _, dsn := range []string{write, read} {
		assert.True(t, strings.HasPrefix(dsn, "/tmp/tk.sqlite?"))
		assert.Contains(t, dsn, "_journal_mode=WAL")
		assert.Contains(t, dsn, "_busy_timeout=5000")
		assert.Contains(t, dsn, "_foreign_keys=on")
	}
	assert.Contains(t, write, "_txlock=immediate")
	assert.NotContains(t, read, "_txlock")
}

func TestOpenSQLite_InvalidMode(t *testing.T) {
	_, err := OpenSQLite(filepath.Join(t.TempDir(), "x.db"), Mode("append"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid SQLite mode")
}

func TestOpenSQLitePair_Pools(t *testing.T) {
	writeDB, readDB, err := OpenSQLitePair(filepath.Join(t.TempDir(), "x.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = writeDB.Close()
		_ = readDB.Close()
	})

	assert.Equal(t, 1, writeDB.Stats().MaxOpenConnections)
	assert.Equal(t, defaultReadConns, readDB.Stats().MaxOpenConnections)

	var fk int
	require.NoError(t, writeDB.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	var journal string
	require.NoError(t, readDB.QueryRow("PRAGMA journal_mode").Scan(&journal))
	assert.Equal(t, "wal", strings.ToLower(journal))
}

func TestOpenSQLite_InvalidPath(t *testing.T) {
	_, err := OpenSQLite("/nonexistent/dir/x.db", ModeWrite, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping sqlite")
}

func TestRunMigrations_Idempotent(t *testing.T) {
	writeDB, _ := OpenTestSQLite(t)

	require.NoError(t, RunMigrations(writeDB))
	v, err := MigrationVersion(writeDB)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, v, int64(1))
}

func TestSchema_SlotUniquenessIgnoresCancelled(t *testing.T) {
	writeDB, _ := OpenTestSQLite(t)

	mustExec := func(q string, args ...any) {
		t.Helper()
		_, err := writeDB.Exec(q, args...)
		require.NoError(t, err)
	}
	mustExec(`INSERT INTO users (id, email, name, role) VALUES (1, 'a@x', 'A', 'member')`)
	mustExec(`INSERT INTO dining_rooms (id, name) VALUES (1, 'Main')`)
	mustExec(`INSERT INTO tables (id, dining_room_id, table_number, seat_count) VALUES (7, 1, 'T7', 4)`)

	insert := `INSERT INTO reservations (user_id, dining_room_id, table_id, date, meal_type, start_time, end_time, status)
		VALUES (1, 1, 7, '2026-02-15', 'dinner', '18:00', '20:00', ?)`
	mustExec(insert, "cancelled")
	mustExec(insert, "pending")

	_, err := writeDB.Exec(insert, "confirmed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNIQUE constraint failed")
}
