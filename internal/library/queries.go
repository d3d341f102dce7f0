package library

import (
	"database/sql"
	"errors"
	"strings"

	dbutil "github.com/llehouerou/resonance/internal/db"
)

const trackColumns = `id, path, mtime, artist, album_artist, album, title, disc_number, track_number, year, genre`

// rowScanner is implemented by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrack(row rowScanner) (Track, error) {
	var t Track
	var disc, number, year sql.NullInt64
	var genre sql.NullString
	err := row.Scan(&t.ID, &t.Path, &t.Mtime, &t.Artist, &t.AlbumArtist, &t.Album, &t.Title,
		&disc, &number, &year, &genre)
	if err != nil {
		return Track{}, err
	}
	t.DiscNumber = int(dbutil.NullInt64Value(disc))
	t.TrackNumber = int(dbutil.NullInt64Value(number))
	t.Year = int(dbutil.NullInt64Value(year))
	t.Genre = dbutil.NullStringValue(genre)
	return t, nil
}

// scanTracks drains and closes rows.
func scanTracks(rows *sql.Rows) ([]Track, error) {
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// Counts summarises the library. Albums are distinct (album artist, album)
// pairs with a non-empty album; artists are distinct album artists.
type Counts struct {
	Tracks  int
	Albums  int
	Artists int
}

func (l *Library) Counts() (Counts, error) {
	var c Counts
	err := l.db.QueryRow(`
		SELECT
			COUNT(*),
			(SELECT COUNT(*) FROM (SELECT DISTINCT album_artist, album FROM library_tracks WHERE album != '')),
			COUNT(DISTINCT album_artist)
		FROM library_tracks
	`).Scan(&c.Tracks, &c.Albums, &c.Artists)
	return c, err
}

// Artists returns the distinct album artists, sorted case-insensitively.
func (l *Library) Artists() ([]string, error) {
	rows, err := l.db.Query(`
		SELECT DISTINCT album_artist FROM library_tracks ORDER BY album_artist COLLATE NOCASE
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (l *Library) TrackByID(id int64) (*Track, error) {
	t, err := scanTrack(l.db.QueryRow(`SELECT `+trackColumns+` FROM library_tracks WHERE id = ?`, id))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrTrackNotFound
	case err != nil:
		return nil, err
	}
	return &t, nil
}

// ArtistTracks returns the tracks of an album artist, oldest album first.
// Tracks without a year come last.
func (l *Library) ArtistTracks(albumArtist string) ([]Track, error) {
	rows, err := l.db.Query(`
		SELECT `+trackColumns+`
		FROM library_tracks
		WHERE album_artist = ?
		ORDER BY (year IS NULL OR year = 0), year, album COLLATE NOCASE, disc_number, track_number, title COLLATE NOCASE
	`, albumArtist)
	if err != nil {
		return nil, err
	}
	return scanTracks(rows)
}

// SearchTracks returns tracks whose title, artist or album contains every
// word of query, case-insensitively. Tracks titled exactly query come first.
func (l *Library) SearchTracks(query string, limit int) ([]Track, error) {
	words := strings.Fields(query)
	if len(words) == 0 {
		return nil, nil
	}

	conds := make([]string, len(words))
	args := make([]any, 0, len(words)+2)
	for i, w := range words {
		conds[i] = `(title || ' ' || artist || ' ' || album) LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(w)+"%")
	}
	args = append(args, strings.Join(words, " "), limit)

	rows, err := l.db.Query(`
		SELECT `+trackColumns+`
		FROM library_tracks
		WHERE `+strings.Join(conds, " AND ")+`
		ORDER BY title = ? COLLATE NOCASE DESC,
			album_artist COLLATE NOCASE, album COLLATE NOCASE, disc_number, track_number
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, err
	}
	return scanTracks(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike quotes the LIKE wildcards of s for an ESCAPE '\' clause.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
