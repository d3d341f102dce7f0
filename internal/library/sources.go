package library

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	dbutil "github.com/llehouerou/resonance/internal/db"
)

var (
	ErrSourceExists   = errors.New("source already registered")
	ErrSourceNested   = errors.New("source overlaps a registered source")
	ErrSourceNotFound = errors.New("source not registered")
)

// Source is a registered directory and the number of tracks indexed under it.
type Source struct {
	Path   string
	Added  time.Time
	Tracks int
}

// queryer is implemented by both *sql.DB and *sql.Tx.
type queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

// Sources returns the registered sources in the order they were added.
func (l *Library) Sources() ([]Source, error) {
	rows, err := l.db.Query(`SELECT path, added_at FROM library_sources ORDER BY added_at, id`)
	if err != nil {
		return nil, err
	}
	var sources []Source
	for rows.Next() {
		var s Source
		var added int64
		if err := rows.Scan(&s.Path, &added); err != nil {
			rows.Close()
			return nil, err
		}
		s.Added = time.Unix(added, 0)
		sources = append(sources, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sources {
		if sources[i].Tracks, err = l.TrackCountBySource(sources[i].Path); err != nil {
			return nil, err
		}
	}
	return sources, nil
}

// SourcePaths returns the registered directories in the order they were added.
func (l *Library) SourcePaths() ([]string, error) {
	return sourcePaths(l.db)
}

func sourcePaths(q queryer) ([]string, error) {
	rows, err := q.Query(`SELECT path FROM library_sources ORDER BY added_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// AddSource registers a directory. A directory inside a registered source,
// or one containing it, is refused so no file belongs to two sources.
func (l *Library) AddSource(path string) error {
	path = filepath.Clean(path)
	return dbutil.WithTx(l.db, func(tx *sql.Tx) error {
		registered, err := sourcePaths(tx)
		if err != nil {
			return err
		}
		for _, s := range registered {
			switch {
			case s == path:
				return fmt.Errorf("%s: %w", path, ErrSourceExists)
			case underSource(path, s), underSource(s, path):
				return fmt.Errorf("%s and %s: %w", path, s, ErrSourceNested)
			}
		}
		_, err = tx.Exec(`INSERT INTO library_sources (path, added_at) VALUES (?, ?)`,
			path, time.Now().Unix())
		return err
	})
}

// RemoveSource unregisters a directory and deletes the tracks indexed under
// it, returning how many were deleted.
func (l *Library) RemoveSource(path string) (int, error) {
	path = filepath.Clean(path)
	var removed int64
	err := dbutil.WithTx(l.db, func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM library_sources WHERE path = ?`, path)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return fmt.Errorf("%s: %w", path, ErrSourceNotFound)
		}

		res, err = tx.Exec(`DELETE FROM library_tracks WHERE path LIKE ? ESCAPE '\'`, likePrefix(path))
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	return int(removed), err
}

// TrackCountBySource returns the number of tracks indexed under path.
func (l *Library) TrackCountBySource(path string) (int, error) {
	var n int
	err := l.db.QueryRow(`SELECT COUNT(*) FROM library_tracks WHERE path LIKE ? ESCAPE '\'`,
		likePrefix(filepath.Clean(path))).Scan(&n)
	return n, err
}

// SeedSources registers the configured directories on first use, when no
// source is registered yet. Repeated entries are registered once.
func (l *Library) SeedSources(paths []string) error {
	registered, err := l.SourcePaths()
	if err != nil || len(registered) > 0 {
		return err
	}
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if err := l.AddSource(p); err != nil && !errors.Is(err, ErrSourceExists) {
			return err
		}
	}
	return nil
}

// sourcePrefix ends a directory with a separator so it only matches whole
// path components: /music does not own /music2/a.flac.
func sourcePrefix(dir string) string {
	if strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir
	}
	return dir + string(filepath.Separator)
}

func underSource(path, dir string) bool {
	return strings.HasPrefix(path, sourcePrefix(dir))
}

// likePrefix is the LIKE pattern matching every path under dir.
func likePrefix(dir string) string {
	return escapeLike(sourcePrefix(dir)) + "%"
}
