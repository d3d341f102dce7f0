//nolint:goconst // test cases intentionally repeat strings for readability
package library

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/resonance/internal/state"
)

// setupTestDB opens an in-memory database with the resonance schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	m, err := state.OpenPath(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m.DB()
}

func seedLibrary(t *testing.T, lib *Library) {
	t.Helper()

	tracks := []Track{
		{Path: "/m/boc/geo/02.flac", Mtime: 1, Artist: "Boards of Canada", AlbumArtist: "Boards of Canada", Album: "Geogaddi", Title: "Music Is Math", DiscNumber: 1, TrackNumber: 2, Year: 2002, Genre: "IDM; Ambient"},
		{Path: "/m/boc/geo/01.flac", Mtime: 1, Artist: "Boards of Canada", AlbumArtist: "Boards of Canada", Album: "Geogaddi", Title: "Ready Lets Go", DiscNumber: 1, TrackNumber: 1, Year: 2002, Genre: "IDM"},
		{Path: "/m/boc/mhtrtc/01.flac", Mtime: 1, Artist: "Boards of Canada", AlbumArtist: "Boards of Canada", Album: "Music Has the Right to Children", Title: "Wildlife Analysis", TrackNumber: 1, Year: 1998, Genre: "IDM"},
		{Path: "/m/acdc/bib/01.flac", Mtime: 1, Artist: "AC/DC", AlbumArtist: "AC/DC", Album: "Back in Black", Title: "Hells Bells", TrackNumber: 1, Year: 1980, Genre: "Hard Rock/Rock"},
		{Path: "/m/ae/confield/01.flac", Mtime: 1, Artist: "Autechre feat. Gescom", AlbumArtist: "Autechre", Album: "Confield", Title: "VI Scose Poise", TrackNumber: 1, Year: 2001},
		{Path: "/m/loose/single.flac", Mtime: 1, Artist: "Unknown", AlbumArtist: "", Album: "", Title: "Demo"},
	}
	require.NoError(t, lib.AddTracks(context.Background(), tracks))
}

func trackCount(t *testing.T, lib *Library) int {
	t.Helper()
	c, err := lib.Counts()
	require.NoError(t, err)
	return c.Tracks
}

func TestAddTrack_InsertAndUpdate(t *testing.T) {
	db := setupTestDB(t)
	lib := New(db)

	tr := Track{Path: "/m/a.flac", Mtime: 10, Artist: "A", AlbumArtist: "A", Album: "X", Title: "One", Year: 2000}
	id, err := lib.AddTrack(tr)
	require.NoError(t, err)

	tr.Title = "One (Remaster)"
	tr.Year = 0
	id2, err := lib.AddTrack(tr)
	require.NoError(t, err)
	assert.Equal(t, id, id2, "same path keeps its ID")

	got, err := lib.TrackByID(id)
	require.NoError(t, err)
	assert.Equal(t, "One (Remaster)", got.Title)
	assert.Equal(t, 0, got.Year, "zero year is stored as NULL")

	assert.Equal(t, 1, trackCount(t, lib))
}

func TestTrackByID_NotFound(t *testing.T) {
	lib := New(setupTestDB(t))

	_, err := lib.TrackByID(42)
	assert.True(t, errors.Is(err, ErrTrackNotFound))
}

func TestDeleteTrack(t *testing.T) {
	lib := New(setupTestDB(t))
	id, err := lib.AddTrack(Track{Path: "/m/a.flac", Artist: "A", AlbumArtist: "A", Album: "X", Title: "One"})
	require.NoError(t, err)

	require.NoError(t, lib.DeleteTrack(id))
	require.NoError(t, lib.DeleteTrack(id))

	_, err = lib.TrackByID(id)
	assert.ErrorIs(t, err, ErrTrackNotFound)
}

func TestCounts(t *testing.T) {
	lib := New(setupTestDB(t))
	seedLibrary(t, lib)

	c, err := lib.Counts()
	require.NoError(t, err)

	assert.Equal(t, 6, c.Tracks)
	assert.Equal(t, 4, c.Artists, "the empty album artist counts as one")
	assert.Equal(t, 4, c.Albums)
}

func TestArtistsAndArtistTracks(t *testing.T) {
	lib := New(setupTestDB(t))
	seedLibrary(t, lib)

	artists, err := lib.Artists()
	require.NoError(t, err)
	assert.Equal(t, []string{"", "AC/DC", "Autechre", "Boards of Canada"}, artists)

	tracks, err := lib.ArtistTracks("Boards of Canada")
	require.NoError(t, err)
	var titles []string
	for _, tr := range tracks {
		titles = append(titles, tr.Title)
	}
	assert.Equal(t, []string{"Wildlife Analysis", "Ready Lets Go", "Music Is Math"}, titles)
}

func TestSearchTracks(t *testing.T) {
	lib := New(setupTestDB(t))
	seedLibrary(t, lib)

	tests := []struct {
		query string
		want  []string
	}{
		{"bells", []string{"Hells Bells"}},
		{"boards geogaddi", []string{"Ready Lets Go", "Music Is Math"}},
		{"music", []string{"Music Is Math", "Wildlife Analysis"}},
		{"100%", nil},
		{"   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := lib.SearchTracks(tt.query, 10)
			require.NoError(t, err)
			var titles []string
			for _, tr := range got {
				titles = append(titles, tr.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestSearchTracks_ExactTitleFirst(t *testing.T) {
	lib := New(setupTestDB(t))
	require.NoError(t, lib.AddTracks(context.Background(), []Track{
		{Path: "/m/cover/01.flac", Artist: "A Cover Band", AlbumArtist: "A Cover Band", Album: "Tributes", Title: "Roygbiv Again"},
		{Path: "/m/boc/05.flac", Artist: "Boards of Canada", AlbumArtist: "Boards of Canada", Album: "Music Has the Right to Children", Title: "Roygbiv"},
	}))

	got, err := lib.SearchTracks("ROYGBIV", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Roygbiv", got[0].Title)

	got, err = lib.SearchTracks("roygbiv", 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestTrackItem(t *testing.T) {
	tr := Track{
		ID:          7,
		Artist:      "Jay-Z feat. Kanye West; Rihanna",
		AlbumArtist: "Jay-Z",
		Album:       "The Blueprint 3",
		Title:       "Run This Town",
		Year:        2009,
		Genre:       "Hip-Hop/Rap, hip-hop",
	}

	item := tr.Item()

	assert.Equal(t, "7", item.ID)
	assert.Equal(t, []string{"Jay-Z", "Kanye West", "Rihanna"}, item.Artists)
	assert.Equal(t, []string{"Hip-Hop", "Rap"}, item.Genres)
	assert.Equal(t, 2009, item.Year)

	noArtist := Track{ID: 1, AlbumArtist: "Various"}
	assert.Equal(t, []string{"Various"}, noArtist.Item().Artists)
}

func TestSplitArtists(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"AC/DC", []string{"AC/DC"}},
		{"Crosby, Stills & Nash", []string{"Crosby, Stills & Nash"}},
		{"Burial / Four Tet", []string{"Burial", "Four Tet"}},
		{"Daft Punk FEAT. Pharrell", []string{"Daft Punk", "Pharrell"}},
		{"A ft. B;C", []string{"A", "B", "C"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, splitArtists(tt.input))
		})
	}
}

func TestSnapshot(t *testing.T) {
	lib := New(setupTestDB(t))
	seedLibrary(t, lib)

	coll, err := lib.Snapshot(context.Background())
	require.NoError(t, err)

	require.Len(t, coll.Tracks, 6)
	assert.Equal(t, "Demo", coll.Tracks[0].Title, "empty album artist sorts first")

	var albumIDs []string
	for _, a := range coll.Albums {
		albumIDs = append(albumIDs, a.ID)
	}
	assert.Equal(t, []string{
		"album:AC/DC/Back in Black",
		"album:Autechre/Confield",
		"album:Boards of Canada/Music Has the Right to Children",
		"album:Boards of Canada/Geogaddi",
	}, albumIDs)

	geogaddi := coll.Albums[3]
	require.Len(t, geogaddi.Tracks, 2)
	assert.Equal(t, "Ready Lets Go", geogaddi.Tracks[0].Title)
	assert.Equal(t, []string{"IDM", "Ambient"}, geogaddi.Genres)
	assert.Equal(t, 2002, geogaddi.Year)
	assert.Equal(t, []string{"Boards of Canada"}, geogaddi.Artists)

	require.Len(t, coll.Artists, 3)
	assert.Equal(t, "artist:Boards of Canada", coll.Artists[2].ID)
	assert.Len(t, coll.Artists[2].Tracks, 3)

	autechre := coll.Albums[1].Tracks[0]
	assert.Equal(t, []string{"Autechre", "Gescom"}, autechre.Artists)
	assert.Empty(t, autechre.Genres)
}

func TestSnapshot_Empty(t *testing.T) {
	lib := New(setupTestDB(t))

	coll, err := lib.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, coll.Tracks)
	assert.Empty(t, coll.Albums)
	assert.Empty(t, coll.Artists)
}
