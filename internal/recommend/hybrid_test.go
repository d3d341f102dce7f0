//nolint:goconst // test files commonly repeat strings for test data
package recommend

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingFetcher struct {
	suggestions []Suggestion
	err         error
	calls       int
	last        Request
}

func (f *recordingFetcher) Fetch(_ context.Context, req Request) ([]Suggestion, error) {
	f.calls++
	f.last = req
	return f.suggestions, f.err
}

func TestHybrid_FetcherFailureEqualsLocal(t *testing.T) {
	coll := syntheticLibrary(120)
	contexts := []Context{
		TrackContext{Track: coll.Tracks[5]},
		ArtistContext{Artist: "Artist C"},
		GenreContext{Genre: "Jazz"},
		MultiTrackContext{Tracks: coll.Tracks[10:13]},
	}
	opts := Options{Limit: 15, Diversity: 0.4}

	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)

	failing := FetcherFunc(func(context.Context, Request) ([]Suggestion, error) {
		return nil, errors.New("connection refused")
	})
	e := NewEngine(nil, failing, logger)
	local := NewSimilarityStrategy(nil)

	for _, c := range contexts {
		got := e.HybridRecommendations(context.Background(), c, coll, opts)
		want := local.RecommendCooperative(context.Background(), c, coll, opts)
		assert.Equal(t, want, got, "%T", c)
	}
	assert.Contains(t, buf.String(), "external fetch failed")
}

func TestHybrid_NoFetcherEqualsLocal(t *testing.T) {
	coll := syntheticLibrary(60)
	c := TrackContext{Track: coll.Tracks[0]}
	e := NewEngine(nil, nil, nil)

	got := e.HybridRecommendations(context.Background(), c, coll, Options{})
	want := NewSimilarityStrategy(nil).RecommendCooperative(context.Background(), c, coll, Options{})

	assert.Equal(t, want, got)
}

func TestHybrid_ResolvesExternalSuggestions(t *testing.T) {
	coll := electronicLibrary()
	hydrated := &Track{ID: "remote-1", Title: "Remote", Artists: []string{"Plaid"}}
	f := &recordingFetcher{suggestions: []Suggestion{
		{Type: SuggestionTrack, ID: "4", Score: 0.9, Reason: "Listeners also play"},
		{Type: SuggestionTrack, ID: "missing", Score: 0.8},
		{Type: SuggestionArtist, ID: "artist:Autechre", Score: 0.7},
		{Type: SuggestionTrack, Track: hydrated, Score: 1.4},
		{Type: SuggestionTrack, ID: "4", Score: 0.5},
		{Type: SuggestionTrack, ID: "1", Score: 0.5},
	}}
	e := NewEngine(nil, f, nil)

	recs := e.HybridRecommendations(context.Background(), TrackContext{Track: coll.Tracks[0]}, coll, Options{Limit: 5})

	require.Equal(t, []string{"remote-1", "4"}, trackIDs(recs))
	assert.Same(t, hydrated, recs[0].Item)
	assert.Same(t, &coll.Tracks[3], recs[1].Item)
	assert.InDelta(t, 1.0, recs[0].Score, epsilon, "external scores are clamped")
	for _, r := range recs {
		assert.Equal(t, SourceExternal, r.Source)
		require.Len(t, r.Reasons, 1)
		assert.Equal(t, ReasonExternal, r.Reasons[0].Type)
	}
	assert.Equal(t, "Listeners also play", recs[1].Reasons[0].Description)

	assert.Equal(t, 1, f.calls)
	assert.Equal(t, "1", f.last.TrackID)
	assert.Equal(t, 5, f.last.Limit)
	assert.Nil(t, f.last.Weights)
}

func TestHybrid_ExternalResultsSortedBeforeLimit(t *testing.T) {
	coll := electronicLibrary()
	f := &recordingFetcher{suggestions: []Suggestion{
		{Type: SuggestionTrack, ID: "7", Score: 0.3},
		{Type: SuggestionTrack, ID: "4", Score: 0.6},
		{Type: SuggestionTrack, ID: "6", Score: 0.9},
		{Type: SuggestionTrack, ID: "5", Score: 0.6},
	}}
	e := NewEngine(nil, f, nil)

	recs := e.HybridRecommendations(context.Background(), TrackContext{Track: coll.Tracks[0]}, coll, Options{Limit: 3})

	assert.Equal(t, []string{"6", "4", "5"}, trackIDs(recs), "best first, ties in source order")
}

func TestHybrid_UnresolvableFallsBack(t *testing.T) {
	coll := electronicLibrary()
	f := &recordingFetcher{suggestions: []Suggestion{
		{Type: SuggestionTrack, ID: "nope", Score: 0.9},
		{Type: SuggestionAlbum, ID: "album:Syro", Score: 0.9},
	}}
	e := NewEngine(nil, f, nil)
	c := TrackContext{Track: coll.Tracks[0]}

	got := e.HybridRecommendations(context.Background(), c, coll, Options{})

	want := NewSimilarityStrategy(nil).RecommendCooperative(context.Background(), c, coll, Options{})
	assert.Equal(t, want, got)
}

func TestHybrid_RequestCarriesContextTags(t *testing.T) {
	coll := electronicLibrary()
	f := &recordingFetcher{}
	e := NewEngine(nil, f, nil)
	w := DefaultWeights()
	w.Genre = 0.9

	e.HybridRecommendations(context.Background(), ArtistContext{Artist: "Autechre"}, coll,
		Options{Limit: 500, Diversity: 2, Weights: &w})

	assert.Empty(t, f.last.TrackID)
	assert.Equal(t, []string{"artist:Autechre"}, f.last.Context)
	assert.Equal(t, MaxLimit, f.last.Limit)
	assert.InDelta(t, 1.0, f.last.Diversity, epsilon)
	require.NotNil(t, f.last.Weights)
	assert.InDelta(t, 0.9, f.last.Weights.Genre, epsilon)
}

func TestHybrid_EmptyInputs(t *testing.T) {
	f := &recordingFetcher{}
	e := NewEngine(nil, f, nil)

	assert.Empty(t, e.HybridRecommendations(context.Background(), nil, electronicLibrary(), Options{}))
	assert.Empty(t, e.HybridRecommendations(context.Background(), GenreContext{Genre: "IDM"}, &Collection{}, Options{}))
	assert.Equal(t, 0, f.calls)
}

func TestSmart_PartitionsOneBatch(t *testing.T) {
	coll := electronicLibrary()
	f := &recordingFetcher{suggestions: []Suggestion{
		{Type: SuggestionAlbum, ID: "album:Confield", Score: 0.8},
		{Type: SuggestionAlbum, ID: "album:Unknown", Score: 0.8},
		{Type: SuggestionTrack, ID: "6", Score: 0.7},
	}}
	e := NewEngine(nil, f, nil)
	ref := coll.Tracks[0]

	res := e.SmartRecommendations(context.Background(), TrackContext{Track: ref}, coll, Options{})

	assert.Equal(t, 1, f.calls)
	assert.Equal(t, []string{"6"}, trackIDs(res.Tracks))
	assert.Equal(t, []string{"album:Confield"}, ids(res.Albums, func(a *Album) string { return a.ID }))
	assert.Equal(t, SourceExternal, res.Albums[0].Source)

	// No artist suggestion resolved, so artists come from the local path.
	assert.Equal(t, e.ArtistRecommendations(ref, coll, Options{}), res.Artists)
	require.NotEmpty(t, res.Artists)
	assert.Equal(t, SourceLocal, res.Artists[0].Source)
}

func TestSmart_NonTrackContextSkipsGroupFallback(t *testing.T) {
	coll := electronicLibrary()
	e := NewEngine(nil, FetcherFunc(func(context.Context, Request) ([]Suggestion, error) {
		return nil, errors.New("timeout")
	}), nil)

	res := e.SmartRecommendations(context.Background(), GenreContext{Genre: "IDM"}, coll, Options{})

	assert.NotEmpty(t, res.Tracks)
	assert.Empty(t, res.Albums)
	assert.Empty(t, res.Artists)
}

func TestSmart_TrackContextFallsBackEverywhere(t *testing.T) {
	coll := electronicLibrary()
	e := NewEngine(nil, nil, nil)
	ref := coll.Tracks[0]

	res := e.SmartRecommendations(context.Background(), TrackContext{Track: ref}, coll, Options{})

	assert.Equal(t, e.TrackRecommendationsCooperative(context.Background(), ref, coll, Options{}), res.Tracks)
	assert.Equal(t, e.AlbumRecommendations(ref, coll, Options{}), res.Albums)
	assert.Equal(t, e.ArtistRecommendations(ref, coll, Options{}), res.Artists)
}
