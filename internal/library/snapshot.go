package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/llehouerou/resonance/internal/recommend"
)

// Snapshot reads the whole library into a collection the recommendation
// engine can score. Albums are grouped by (album artist, album) and artists
// by album artist; both keep their tracks in disc and track order.
func (l *Library) Snapshot(ctx context.Context) (*recommend.Collection, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT `+trackColumns+`
		FROM library_tracks
		ORDER BY album_artist COLLATE NOCASE, album_artist,
			(year IS NULL OR year = 0), year, album COLLATE NOCASE, album,
			disc_number, track_number, title COLLATE NOCASE, id
	`)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	tracks, err := scanTracks(rows)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return buildCollection(tracks), nil
}

func buildCollection(tracks []Track) *recommend.Collection {
	coll := &recommend.Collection{Tracks: make([]recommend.Track, 0, len(tracks))}

	type albumKey struct{ artist, album string }
	albumIdx := make(map[albumKey]int)
	artistIdx := make(map[string]int)

	for _, t := range tracks {
		item := t.Item()
		coll.Tracks = append(coll.Tracks, item)

		if t.Album != "" {
			key := albumKey{t.AlbumArtist, t.Album}
			i, ok := albumIdx[key]
			if !ok {
				i = len(coll.Albums)
				albumIdx[key] = i
				coll.Albums = append(coll.Albums, recommend.Album{
					ID:      AlbumID(t.AlbumArtist, t.Album),
					Title:   t.Album,
					Artists: splitArtists(t.AlbumArtist),
				})
			}
			a := &coll.Albums[i]
			a.Tracks = append(a.Tracks, item)
			a.Genres = appendUnique(a.Genres, item.Genres...)
			a.Year = max(a.Year, item.Year)
		}

		if t.AlbumArtist != "" {
			i, ok := artistIdx[t.AlbumArtist]
			if !ok {
				i = len(coll.Artists)
				artistIdx[t.AlbumArtist] = i
				coll.Artists = append(coll.Artists, recommend.Artist{
					ID:   ArtistID(t.AlbumArtist),
					Name: t.AlbumArtist,
				})
			}
			a := &coll.Artists[i]
			a.Tracks = append(a.Tracks, item)
			a.Genres = appendUnique(a.Genres, item.Genres...)
		}
	}
	return coll
}

// AlbumID is the collection ID of an album.
func AlbumID(albumArtist, album string) string {
	return "album:" + albumArtist + "/" + album
}

// ArtistID is the collection ID of an artist.
func ArtistID(albumArtist string) string {
	return "artist:" + albumArtist
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, d := range dst {
			if strings.EqualFold(d, v) {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}

var (
	artistSeparators = []string{";", " / ", " feat. ", " feat ", " ft. ", " featuring "}
	genreSeparators  = []string{";", "/", ","}
)

// splitArtists splits a multi-artist tag. A bare "/" or "," is kept, since
// names such as "AC/DC" or "Crosby, Stills & Nash" contain them.
func splitArtists(s string) []string {
	return splitOn(s, artistSeparators)
}

func splitGenres(s string) []string {
	return splitOn(s, genreSeparators)
}

func splitOn(s string, seps []string) []string {
	parts := []string{s}
	for _, sep := range seps {
		var next []string
		for _, p := range parts {
			next = append(next, splitFold(p, sep)...)
		}
		parts = next
	}

	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = appendUnique(out, p)
		}
	}
	return out
}

// splitFold splits s around each ASCII case-insensitive occurrence of sep.
func splitFold(s, sep string) []string {
	lower := asciiLower(s)
	sep = asciiLower(sep)

	var parts []string
	for {
		i := strings.Index(lower, sep)
		if i < 0 {
			return append(parts, s)
		}
		parts = append(parts, s[:i])
		s, lower = s[i+len(sep):], lower[i+len(sep):]
	}
}

// asciiLower lowercases ASCII letters only, so byte offsets are preserved.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
