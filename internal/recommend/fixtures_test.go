//nolint:goconst // test fixtures intentionally repeat strings
package recommend

import (
	"fmt"
	"strconv"
)

func track(id, artist, album, genre string, year int) Track {
	t := Track{ID: id, Title: "Track " + id, Album: album, Year: year}
	if artist != "" {
		t.Artists = []string{artist}
	}
	if genre != "" {
		t.Genres = []string{genre}
	}
	return t
}

// electronicLibrary returns a small deterministic collection.
func electronicLibrary() *Collection {
	tracks := []Track{
		track("1", "Aphex Twin", "Drukqs", "IDM", 2001),
		track("2", "Aphex Twin", "Drukqs", "IDM", 2001),
		track("3", "Aphex Twin", "Syro", "IDM", 2014),
		track("4", "Boards of Canada", "Geogaddi", "IDM", 2002),
		track("5", "Boards of Canada", "Music Has the Right to Children", "IDM", 1998),
		track("6", "Autechre", "Confield", "IDM", 2001),
		track("7", "Metallica", "Load", "Metal", 1996),
		track("8", "Slayer", "Reign in Blood", "Thrash Metal", 1986),
		track("9", "The Orb", "U.F.Orb", "Ambient", 1992),
		track("10", "Aphex Twin", "Selected Ambient Works 85-92", "Ambient", 1992),
	}
	return withGroups(tracks)
}

// withGroups derives albums and artists from tracks in input order.
func withGroups(tracks []Track) *Collection {
	coll := &Collection{Tracks: tracks}

	albumIdx := map[string]int{}
	artistIdx := map[string]int{}
	for _, t := range tracks {
		if t.Album != "" {
			i, ok := albumIdx[t.Album]
			if !ok {
				i = len(coll.Albums)
				albumIdx[t.Album] = i
				coll.Albums = append(coll.Albums, Album{
					ID:      "album:" + t.Album,
					Title:   t.Album,
					Artists: t.Artists,
					Genres:  t.Genres,
					Year:    t.Year,
				})
			}
			coll.Albums[i].Tracks = append(coll.Albums[i].Tracks, t)
		}
		for _, a := range t.Artists {
			i, ok := artistIdx[a]
			if !ok {
				i = len(coll.Artists)
				artistIdx[a] = i
				coll.Artists = append(coll.Artists, Artist{
					ID:     "artist:" + a,
					Name:   a,
					Genres: t.Genres,
				})
			}
			coll.Artists[i].Tracks = append(coll.Artists[i].Tracks, t)
		}
	}
	return coll
}

// syntheticLibrary returns n tracks spread over a few artists, genres and years.
func syntheticLibrary(n int) *Collection {
	artists := []string{"Artist A", "Artist B", "Artist C", "Artist D", "Artist E"}
	genres := []string{"Rock", "Jazz", "IDM", "Folk"}
	tracks := make([]Track, n)
	for i := range tracks {
		tracks[i] = track(
			strconv.Itoa(i),
			artists[i%len(artists)],
			fmt.Sprintf("Album %d", i%7),
			genres[i%len(genres)],
			1990+i%15,
		)
	}
	return withGroups(tracks)
}

func ids[T Track | Album | Artist](recs []Recommendation[T], idOf func(*T) string) []string {
	out := make([]string, len(recs))
	for i := range recs {
		out[i] = idOf(recs[i].Item)
	}
	return out
}

func trackIDs(recs []Recommendation[Track]) []string {
	return ids(recs, func(t *Track) string { return t.ID })
}
