package suggest

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	dbutil "github.com/llehouerou/resonance/internal/db"
	"github.com/llehouerou/resonance/internal/lastfm"
)

const (
	kindSimilar   = "similar"
	kindTopTracks = "top"
)

// Cache keeps Last.fm answers in SQLite for ttlDays. Artists are keyed
// case-insensitively, and an empty answer is remembered like any other.
type Cache struct {
	db      *sql.DB
	ttlDays int
	now     func() time.Time
}

func NewCache(db *sql.DB, ttlDays int) *Cache {
	return &Cache{db: db, ttlDays: ttlDays, now: time.Now}
}

func cacheKey(artist string) string {
	return strings.ToLower(strings.TrimSpace(artist))
}

func (c *Cache) cutoff() int64 {
	return c.now().AddDate(0, 0, -c.ttlDays).Unix()
}

// fresh reports whether kind was fetched for key within the TTL.
func (c *Cache) fresh(kind, key string) (bool, error) {
	var at int64
	err := c.db.QueryRow(`SELECT fetched_at FROM lastfm_fetches WHERE kind = ? AND artist = ?`, kind, key).Scan(&at)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, err
	}
	return at >= c.cutoff(), nil
}

// replace swaps the cached rows of key in table for the ones insert writes,
// and stamps the fetch.
func (c *Cache) replace(kind, table, key string, insert func(tx *sql.Tx, now int64) error) error {
	now := c.now().Unix()
	return dbutil.WithTx(c.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE artist = ?`, key); err != nil {
			return err
		}
		if err := insert(tx, now); err != nil {
			return err
		}
		_, err := tx.Exec(`
			INSERT INTO lastfm_fetches (kind, artist, fetched_at) VALUES (?, ?, ?)
			ON CONFLICT(kind, artist) DO UPDATE SET fetched_at = excluded.fetched_at
		`, kind, key, now)
		return err
	})
}

// SimilarArtists returns the cached similar artists of artist, best match
// first. ok is false when nothing fresh is cached.
func (c *Cache) SimilarArtists(artist string) (similar []lastfm.SimilarArtist, ok bool, err error) {
	key := cacheKey(artist)
	if ok, err = c.fresh(kindSimilar, key); !ok || err != nil {
		return nil, false, err
	}

	rows, err := c.db.Query(`
		SELECT similar_artist, match_score FROM lastfm_similar_artists
		WHERE artist = ?
		ORDER BY match_score DESC, similar_artist
	`, key)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	similar = []lastfm.SimilarArtist{}
	for rows.Next() {
		var s lastfm.SimilarArtist
		if err := rows.Scan(&s.Name, &s.MatchScore); err != nil {
			return nil, false, err
		}
		similar = append(similar, s)
	}
	return similar, true, rows.Err()
}

func (c *Cache) StoreSimilarArtists(artist string, similar []lastfm.SimilarArtist) error {
	key := cacheKey(artist)
	return c.replace(kindSimilar, "lastfm_similar_artists", key, func(tx *sql.Tx, now int64) error {
		for _, s := range similar {
			if _, err := tx.Exec(`
				INSERT OR REPLACE INTO lastfm_similar_artists (artist, similar_artist, match_score, fetched_at)
				VALUES (?, ?, ?, ?)
			`, key, s.Name, s.MatchScore, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// TopTracks returns the cached top tracks of artist by rank. ok is false
// when nothing fresh is cached.
func (c *Cache) TopTracks(artist string) (tracks []lastfm.TopTrack, ok bool, err error) {
	key := cacheKey(artist)
	if ok, err = c.fresh(kindTopTracks, key); !ok || err != nil {
		return nil, false, err
	}

	rows, err := c.db.Query(`
		SELECT track_name, playcount, rank FROM lastfm_artist_top_tracks
		WHERE artist = ?
		ORDER BY rank
	`, key)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	tracks = []lastfm.TopTrack{}
	for rows.Next() {
		var t lastfm.TopTrack
		if err := rows.Scan(&t.Name, &t.Playcount, &t.Rank); err != nil {
			return nil, false, err
		}
		tracks = append(tracks, t)
	}
	return tracks, true, rows.Err()
}

func (c *Cache) StoreTopTracks(artist string, tracks []lastfm.TopTrack) error {
	key := cacheKey(artist)
	return c.replace(kindTopTracks, "lastfm_artist_top_tracks", key, func(tx *sql.Tx, now int64) error {
		for _, t := range tracks {
			if _, err := tx.Exec(`
				INSERT OR REPLACE INTO lastfm_artist_top_tracks (artist, track_name, playcount, rank, fetched_at)
				VALUES (?, ?, ?, ?, ?)
			`, key, t.Name, t.Playcount, t.Rank, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// CleanExpired drops every list older than the TTL and returns how many
// artist lists went.
func (c *Cache) CleanExpired() (int, error) {
	cutoff := c.cutoff()
	var dropped int64
	err := dbutil.WithTx(c.db, func(tx *sql.Tx) error {
		for _, q := range []string{
			`DELETE FROM lastfm_similar_artists WHERE fetched_at < ?`,
			`DELETE FROM lastfm_artist_top_tracks WHERE fetched_at < ?`,
		} {
			if _, err := tx.Exec(q, cutoff); err != nil {
				return err
			}
		}
		res, err := tx.Exec(`DELETE FROM lastfm_fetches WHERE fetched_at < ?`, cutoff)
		if err != nil {
			return err
		}
		dropped, err = res.RowsAffected()
		return err
	})
	return int(dropped), err
}
