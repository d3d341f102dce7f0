package recommend

import (
	"cmp"
	"context"
	"slices"
)

// SuggestionType is the kind of item an external suggestion refers to.
type SuggestionType string

const (
	SuggestionTrack  SuggestionType = "track"
	SuggestionAlbum  SuggestionType = "album"
	SuggestionArtist SuggestionType = "artist"
)

// Request is sent to an external suggestion source.
type Request struct {
	TrackID   string   // reference track, when the context has one
	Context   []string // free-text tags such as "artist:Boards of Canada"
	Limit     int
	Diversity float64
	Weights   *Weights // set only when the caller overrode the defaults
}

// Suggestion is one item proposed by an external source. It carries either
// a hydrated item matching Type, or a bare ID to resolve against the local
// collection.
type Suggestion struct {
	Type   SuggestionType
	ID     string
	Track  *Track
	Album  *Album
	Artist *Artist
	Score  float64
	Reason string
}

// Fetcher is an external suggestion source. Transport, retries and timeouts
// are the fetcher's concern; any error makes the engine fall back to local
// computation.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) ([]Suggestion, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, req Request) ([]Suggestion, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, req Request) ([]Suggestion, error) {
	return f(ctx, req)
}

// SmartResult holds recommendations for every entity type.
type SmartResult struct {
	Tracks  []Recommendation[Track]
	Albums  []Recommendation[Album]
	Artists []Recommendation[Artist]
}

// HybridRecommendations asks the external source first and returns its
// suggestions that resolve against coll. When there is no source, the source
// fails, or nothing resolves, it returns the cooperative local result for the
// same context.
func (e *Engine) HybridRecommendations(ctx context.Context, c Context, coll *Collection, opts Options) []Recommendation[Track] {
	if c == nil || coll == nil || len(coll.Tracks) == 0 {
		return nil
	}
	strategy := e.currentStrategy()

	suggestions := e.fetch(ctx, c, opts)
	if len(suggestions) > 0 {
		res := newResolver(coll, strategy.ReferenceTracks(c, coll), opts)
		if recs := res.tracks(suggestions); len(recs) > 0 {
			return recs
		}
		e.logger.Debug("no external suggestion resolved against the collection, using local recommendations",
			"suggestions", len(suggestions))
	}

	return strategy.RecommendCooperative(ctx, c, coll, opts)
}

// SmartRecommendations fetches one external batch and splits it into tracks,
// albums and artists. A category with no resolved suggestion is computed
// locally: tracks always, albums and artists only for a TrackContext.
func (e *Engine) SmartRecommendations(ctx context.Context, c Context, coll *Collection, opts Options) SmartResult {
	var result SmartResult
	if c == nil || coll == nil || len(coll.Tracks) == 0 {
		return result
	}
	strategy := e.currentStrategy()

	if suggestions := e.fetch(ctx, c, opts); len(suggestions) > 0 {
		res := newResolver(coll, strategy.ReferenceTracks(c, coll), opts)
		result.Tracks = res.tracks(suggestions)
		result.Albums = res.albums(suggestions)
		result.Artists = res.artists(suggestions)
	}

	if len(result.Tracks) == 0 {
		result.Tracks = strategy.RecommendCooperative(ctx, c, coll, opts)
	}
	if tc, ok := c.(TrackContext); ok {
		if len(result.Albums) == 0 {
			result.Albums = e.AlbumRecommendations(tc.Track, coll, opts)
		}
		if len(result.Artists) == 0 {
			result.Artists = e.ArtistRecommendations(tc.Track, coll, opts)
		}
	}
	return result
}

// fetch calls the external source, swallowing failures.
func (e *Engine) fetch(ctx context.Context, c Context, opts Options) []Suggestion {
	fetcher := e.currentFetcher()
	if fetcher == nil {
		return nil
	}

	var weights *Weights
	if opts.Weights != nil {
		w := opts.Weights.sanitized()
		weights = &w
	}
	sane := opts.Sanitize()
	trackID, tags := contextTags(c)

	suggestions, err := fetcher.Fetch(ctx, Request{
		TrackID:   trackID,
		Context:   tags,
		Limit:     sane.Limit,
		Diversity: sane.Diversity,
		Weights:   weights,
	})
	if err != nil {
		e.logger.Debug("external fetch failed, using local recommendations", "err", err)
		return nil
	}
	if len(suggestions) == 0 {
		e.logger.Debug("external source returned no suggestions, using local recommendations")
	}
	return suggestions
}

// resolver maps external suggestions onto the local collection.
type resolver struct {
	index *collectionIndex
	refs  map[string]struct{}
	limit int
}

func newResolver(coll *Collection, refs []Track, opts Options) *resolver {
	r := &resolver{
		index: newCollectionIndex(coll),
		refs:  make(map[string]struct{}, len(refs)),
		limit: opts.Sanitize().Limit,
	}
	for i := range refs {
		if refs[i].ID != "" {
			r.refs[refs[i].ID] = struct{}{}
		}
	}
	return r
}

func (r *resolver) resolveTrack(s *Suggestion) (*Track, bool) {
	if s.Track != nil {
		return s.Track, true
	}
	t, ok := r.index.tracks[s.ID]
	return t, ok
}

func (r *resolver) resolveAlbum(s *Suggestion) (*Album, bool) {
	if s.Album != nil {
		return s.Album, true
	}
	a, ok := r.index.albums[s.ID]
	return a, ok
}

func (r *resolver) resolveArtist(s *Suggestion) (*Artist, bool) {
	if s.Artist != nil {
		return s.Artist, true
	}
	a, ok := r.index.artists[s.ID]
	return a, ok
}

func (r *resolver) tracks(suggestions []Suggestion) []Recommendation[Track] {
	return collect(r, suggestions, SuggestionTrack, r.resolveTrack, func(t *Track) string { return t.ID })
}

func (r *resolver) albums(suggestions []Suggestion) []Recommendation[Album] {
	return collect(r, suggestions, SuggestionAlbum, r.resolveAlbum, func(a *Album) string { return a.ID })
}

func (r *resolver) artists(suggestions []Suggestion) []Recommendation[Artist] {
	return collect(r, suggestions, SuggestionArtist, r.resolveArtist, func(a *Artist) string { return a.ID })
}

// collect resolves the suggestions of one type, dropping unresolvable ones,
// duplicates and reference tracks, and keeps the best up to the limit.
// Equal scores keep the source's order.
func collect[T Track | Album | Artist](
	r *resolver,
	suggestions []Suggestion,
	typ SuggestionType,
	resolve func(*Suggestion) (*T, bool),
	idOf func(*T) string,
) []Recommendation[T] {
	var recs []Recommendation[T]
	seen := make(map[string]struct{})

	for i := range suggestions {
		s := &suggestions[i]
		if s.Type != typ {
			continue
		}
		item, ok := resolve(s)
		if !ok || item == nil {
			continue
		}

		if id := idOf(item); id != "" {
			if _, dup := seen[id]; dup {
				continue
			}
			if _, isRef := r.refs[id]; isRef && typ == SuggestionTrack {
				continue
			}
			seen[id] = struct{}{}
		}

		score := clamp01(s.Score)
		desc := s.Reason
		if desc == "" {
			desc = describe(factorScore{factor: ReasonExternal})
		}
		recs = append(recs, Recommendation[T]{
			Item:    item,
			Score:   score,
			Reasons: []Reason{{Type: ReasonExternal, Weight: score, Description: desc}},
			Source:  SourceExternal,
		})
	}

	slices.SortStableFunc(recs, func(a, b Recommendation[T]) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return recs[:min(len(recs), r.limit)]
}
