package state

import (
	"database/sql"
	"fmt"

	dbutil "github.com/llehouerou/resonance/internal/db"
)

// migrations are applied in order; the schema version is the number of
// migrations applied. Append only.
var migrations = []string{
	// 1: library
	`CREATE TABLE library_tracks (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		path         TEXT    NOT NULL UNIQUE,
		mtime        INTEGER NOT NULL,
		artist       TEXT    NOT NULL DEFAULT '',
		album_artist TEXT    NOT NULL DEFAULT '',
		album        TEXT    NOT NULL DEFAULT '',
		title        TEXT    NOT NULL DEFAULT '',
		disc_number  INTEGER,
		track_number INTEGER,
		year         INTEGER,
		genre        TEXT,
		added_at     INTEGER NOT NULL,
		updated_at   INTEGER NOT NULL
	);
	CREATE INDEX library_tracks_album ON library_tracks(album_artist, album);
	CREATE INDEX library_tracks_year ON library_tracks(year);`,

	// 2: Last.fm response cache
	`CREATE TABLE lastfm_similar_artists (
		artist         TEXT    NOT NULL,
		similar_artist TEXT    NOT NULL,
		match_score    REAL    NOT NULL,
		fetched_at     INTEGER NOT NULL,
		PRIMARY KEY (artist, similar_artist)
	);
	CREATE TABLE lastfm_artist_top_tracks (
		artist     TEXT    NOT NULL,
		track_name TEXT    NOT NULL,
		playcount  INTEGER NOT NULL,
		rank       INTEGER NOT NULL,
		fetched_at INTEGER NOT NULL,
		PRIMARY KEY (artist, track_name)
	);`,

	// 3: scanned directories
	`CREATE TABLE library_sources (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		path     TEXT    NOT NULL UNIQUE,
		added_at INTEGER NOT NULL
	);`,

	// 4: when each Last.fm list was fetched, so empty answers are cached too
	`CREATE TABLE lastfm_fetches (
		kind       TEXT    NOT NULL,
		artist     TEXT    NOT NULL,
		fetched_at INTEGER NOT NULL,
		PRIMARY KEY (kind, artist)
	);`,
}

var currentSchemaVersion = len(migrations)

// migrate brings the database up to currentSchemaVersion, one transaction
// per migration.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)`); err != nil {
		return err
	}
	version, err := schemaVersion(db)
	if err != nil {
		return err
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema v%d is newer than this build (v%d)", version, currentSchemaVersion)
	}

	for v := version + 1; v <= currentSchemaVersion; v++ {
		err := dbutil.WithTx(db, func(tx *sql.Tx) error {
			if _, err := tx.Exec(migrations[v-1]); err != nil {
				return err
			}
			_, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, v)
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %d: %w", v, err)
		}
	}
	return nil
}

func schemaVersion(db *sql.DB) (int, error) {
	var v sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, err
	}
	return int(dbutil.NullInt64Value(v)), nil
}
