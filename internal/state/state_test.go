package state

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Manager {
	t.Helper()
	m, err := OpenPath(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestOpenPath_Migrates(t *testing.T) {
	m := openMemory(t)

	v, err := m.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)

	rows, err := m.DB().Query(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	require.NoError(t, err)
	defer rows.Close()
	var tables []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		tables = append(tables, name)
	}
	assert.Equal(t, []string{
		"lastfm_artist_top_tracks",
		"lastfm_fetches",
		"lastfm_similar_artists",
		"library_sources",
		"library_tracks",
		"schema_version",
	}, tables)
}

func TestOpenPath_ForeignKeysEnabled(t *testing.T) {
	m := openMemory(t)

	var on int
	require.NoError(t, m.DB().QueryRow(`PRAGMA foreign_keys`).Scan(&on))
	assert.Equal(t, 1, on)
}

func TestMigrate_UpgradesOldDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")

	// A database created before the sources table existed.
	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = raw.Exec(`CREATE TABLE schema_version (version INTEGER PRIMARY KEY)`)
	require.NoError(t, err)
	for v, stmt := range migrations[:2] {
		_, err = raw.Exec(stmt)
		require.NoError(t, err)
		_, err = raw.Exec(`INSERT INTO schema_version (version) VALUES (?)`, v+1)
		require.NoError(t, err)
	}
	_, err = raw.Exec(`INSERT INTO library_tracks (path, mtime, added_at, updated_at) VALUES ('/m/roygbiv.flac', 1, 1, 1)`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	m, err := OpenPath(path)
	require.NoError(t, err)
	defer m.Close()

	v, err := m.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)

	var tracks int
	require.NoError(t, m.DB().QueryRow(`SELECT COUNT(*) FROM library_tracks`).Scan(&tracks))
	assert.Equal(t, 1, tracks, "existing rows survive the upgrade")
	_, err = m.DB().Exec(`INSERT INTO library_sources (path, added_at) VALUES ('/m', 1)`)
	assert.NoError(t, err)
}

func TestMigrate_ReopenIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "resonance.db")

	m, err := OpenPath(path)
	require.NoError(t, err)
	_, err = m.DB().Exec(`INSERT INTO library_sources (path, added_at) VALUES ('/music', 1)`)
	require.NoError(t, err)
	require.NoError(t, m.Close())

	m, err = OpenPath(path)
	require.NoError(t, err)
	defer m.Close()

	var n int
	require.NoError(t, m.DB().QueryRow(`SELECT COUNT(*) FROM schema_version`).Scan(&n))
	assert.Equal(t, len(migrations), n)
	require.NoError(t, m.DB().QueryRow(`SELECT COUNT(*) FROM library_sources`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestMigrate_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.db")
	m, err := OpenPath(path)
	require.NoError(t, err)
	_, err = m.DB().Exec(`INSERT INTO schema_version (version) VALUES (?)`, len(migrations)+1)
	require.NoError(t, err)
	require.NoError(t, m.Close())

	_, err = OpenPath(path)
	assert.ErrorContains(t, err, "newer than this build")
}
