package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	dbutil "github.com/llehouerou/resonance/internal/db"
	"github.com/llehouerou/resonance/internal/recommend"
	"github.com/llehouerou/resonance/internal/tags"
)

// ErrTrackNotFound is returned when a track lookup matches nothing.
var ErrTrackNotFound = errors.New("track not found")

type Track struct {
	ID          int64
	Path        string
	Mtime       int64
	Artist      string
	AlbumArtist string
	Album       string
	Title       string
	DiscNumber  int
	TrackNumber int
	Year        int
	Genre       string
}

// Item converts the track to the record the recommendation engine scores.
// Multi-valued artist and genre tags are split.
func (t Track) Item() recommend.Track {
	artists := splitArtists(t.Artist)
	if len(artists) == 0 {
		artists = splitArtists(t.AlbumArtist)
	}
	return recommend.Track{
		ID:      strconv.FormatInt(t.ID, 10),
		Title:   t.Title,
		Artists: artists,
		Album:   t.Album,
		Genres:  splitGenres(t.Genre),
		Year:    t.Year,
	}
}

type Library struct {
	db      *sql.DB
	readTag func(path string) (*tags.Tag, error)
}

func New(db *sql.DB) *Library {
	return &Library{db: db, readTag: tags.Read}
}

// executor is implemented by both *sql.DB and *sql.Tx.
type executor interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// AddTrack inserts a track or updates the one stored at the same path,
// and returns its ID.
func (l *Library) AddTrack(t Track) (int64, error) {
	var id int64
	err := dbutil.WithTx(l.db, func(tx *sql.Tx) error {
		if err := upsertTrack(tx, t); err != nil {
			return err
		}
		return tx.QueryRow(`SELECT id FROM library_tracks WHERE path = ?`, t.Path).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("add track %s: %w", t.Path, err)
	}
	return id, nil
}

// AddTracks inserts or updates several tracks in one transaction.
func (l *Library) AddTracks(ctx context.Context, tracks []Track) error {
	return dbutil.WithTxContext(ctx, l.db, func(tx *sql.Tx) error {
		for _, t := range tracks {
			if err := upsertTrack(tx, t); err != nil {
				return fmt.Errorf("add track %s: %w", t.Path, err)
			}
		}
		return nil
	})
}

// upsertTrack uses the file mtime for added_at on new tracks.
func upsertTrack(ex executor, t Track) error {
	now := time.Now().Unix()
	_, err := ex.Exec(`
		INSERT INTO library_tracks (path, mtime, artist, album_artist, album, title, disc_number, track_number, year, genre, added_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			mtime = excluded.mtime,
			artist = excluded.artist,
			album_artist = excluded.album_artist,
			album = excluded.album,
			title = excluded.title,
			disc_number = excluded.disc_number,
			track_number = excluded.track_number,
			year = excluded.year,
			genre = excluded.genre,
			updated_at = excluded.updated_at
	`, t.Path, t.Mtime, t.Artist, t.AlbumArtist, t.Album, t.Title,
		dbutil.NullIntArg(t.DiscNumber), dbutil.NullIntArg(t.TrackNumber), dbutil.NullIntArg(t.Year),
		sql.NullString{String: t.Genre, Valid: t.Genre != ""},
		t.Mtime, now)
	return err
}

// DeleteTrack removes a track by ID. Deleting a missing track is not an error.
func (l *Library) DeleteTrack(id int64) error {
	_, err := l.db.Exec(`DELETE FROM library_tracks WHERE id = ?`, id)
	return err
}
