package recommend

import (
	"cmp"
	"context"
	"errors"
	"reflect"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
)

// ErrInvalidStrategy is returned by SetStrategy for a nil strategy.
var ErrInvalidStrategy = errors.New("invalid recommendation strategy")

// Engine is the entry point for recommendation queries.
// Calls share no state besides the configured strategy and fetcher.
type Engine struct {
	mu       sync.RWMutex
	strategy Strategy
	fetcher  Fetcher
	logger   *log.Logger
}

// NewEngine creates an engine. A nil strategy selects a SimilarityStrategy,
// a nil fetcher disables the external source and a nil logger discards output.
func NewEngine(strategy Strategy, fetcher Fetcher, logger *log.Logger) *Engine {
	if logger == nil {
		logger = discardLogger
	}
	if isNil(strategy) {
		strategy = NewSimilarityStrategy(logger)
	}
	if isNil(fetcher) {
		fetcher = nil
	}
	return &Engine{
		strategy: strategy,
		fetcher:  fetcher,
		logger:   logger,
	}
}

// SetStrategy replaces the ranking strategy used by subsequent calls.
func (e *Engine) SetStrategy(s Strategy) error {
	if isNil(s) {
		return ErrInvalidStrategy
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.strategy = s
	return nil
}

// SetFetcher replaces the external suggestion source. Nil disables it.
func (e *Engine) SetFetcher(f Fetcher) {
	if isNil(f) {
		f = nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fetcher = f
}

func (e *Engine) currentStrategy() Strategy {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.strategy
}

func (e *Engine) currentFetcher() Fetcher {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.fetcher
}

// TrackRecommendations returns tracks similar to track, blocking within the
// strategy's time budget.
func (e *Engine) TrackRecommendations(track Track, coll *Collection, opts Options) []Recommendation[Track] {
	return e.currentStrategy().Recommend(TrackContext{Track: track}, coll, opts)
}

// TrackRecommendationsCooperative returns tracks similar to track, yielding
// to the scheduler while it scores.
func (e *Engine) TrackRecommendationsCooperative(ctx context.Context, track Track, coll *Collection, opts Options) []Recommendation[Track] {
	return e.currentStrategy().RecommendCooperative(ctx, TrackContext{Track: track}, coll, opts)
}

// RecommendationsByGenre returns tracks similar to the tracks of a genre.
func (e *Engine) RecommendationsByGenre(genre string, coll *Collection, opts Options) []Recommendation[Track] {
	return e.currentStrategy().Recommend(GenreContext{Genre: genre}, coll, opts)
}

// RecommendationsByYear returns tracks similar to the tracks of a year.
func (e *Engine) RecommendationsByYear(year int, coll *Collection, opts Options) []Recommendation[Track] {
	return e.currentStrategy().Recommend(YearContext{Year: year}, coll, opts)
}

// AlbumRecommendations returns albums similar to track.
//
// Albums are not compared track by track: each candidate is scored on the
// average similarity of its first three tracks. This bounds the cost on large
// libraries at the price of ignoring the rest of the album.
func (e *Engine) AlbumRecommendations(track Track, coll *Collection, opts Options) []Recommendation[Album] {
	if coll == nil || isZeroTrack(&track) {
		return nil
	}
	refAlbum := normalizeName(track.Album)
	refArtists := normalizeSet(track.Artists)
	return rankSampled(e.logger, coll.Albums, &track, albumSampleSize, opts,
		func(a *Album) []Track { return a.Tracks },
		func(a *Album) bool {
			if hasTrack(a.Tracks, track.ID) {
				return true
			}
			// A shared title from another artist is a different album.
			return refAlbum != "" && normalizeName(a.Title) == refAlbum &&
				jaccard(normalizeSet(a.Artists), refArtists) > 0
		})
}

// ArtistRecommendations returns artists similar to track.
//
// Like AlbumRecommendations, each artist is scored on a sample of its first
// five tracks rather than its whole catalogue.
func (e *Engine) ArtistRecommendations(track Track, coll *Collection, opts Options) []Recommendation[Artist] {
	if coll == nil || isZeroTrack(&track) {
		return nil
	}
	refArtists := normalizeSet(track.Artists)
	return rankSampled(e.logger, coll.Artists, &track, artistSampleSize, opts,
		func(a *Artist) []Track { return a.Tracks },
		func(a *Artist) bool {
			if _, ok := refArtists[normalizeName(a.Name)]; ok {
				return true
			}
			return hasTrack(a.Tracks, track.ID)
		})
}

// sampled is a grouped candidate scored on a prefix of its tracks.
type sampled[T Album | Artist] struct {
	item    *T
	samples []features
	score   float64
}

func rankSampled[T Album | Artist](
	logger *log.Logger,
	items []T,
	ref *Track,
	sampleSize int,
	opts Options,
	tracksOf func(*T) []Track,
	skip func(*T) bool,
) []Recommendation[T] {
	if len(items) == 0 {
		return nil
	}
	opts = opts.Sanitize()
	w := opts.weights()

	if len(items) > MaxCollectionSize {
		logger.Warn("collection exceeds analysis cap, truncating",
			"size", len(items), "cap", MaxCollectionSize)
		items = items[:MaxCollectionSize]
	}

	refs := []features{extract(ref)}

	var pool []sampled[T]
	for i := range items {
		item := &items[i]
		if skip(item) {
			continue
		}
		tracks := tracksOf(item)
		n := min(len(tracks), sampleSize)
		if n == 0 {
			continue
		}

		samples := make([]features, n)
		total := 0.0
		for j := 0; j < n; j++ {
			samples[j] = extract(&tracks[j])
			total += weigh(compare(&refs[0], &samples[j]), w)
		}
		score := clamp01(total / float64(n))
		if score < opts.MinScore {
			continue
		}
		pool = append(pool, sampled[T]{item: item, samples: samples, score: score})
	}

	slices.SortStableFunc(pool, func(a, b sampled[T]) int {
		return cmp.Compare(b.score, a.score)
	})
	pool = pool[:min(len(pool), opts.Limit)]

	recs := make([]Recommendation[T], len(pool))
	for i := range pool {
		recs[i] = Recommendation[T]{
			Item:    pool[i].item,
			Score:   pool[i].score,
			Reasons: explainSamples(pool[i].samples, &refs[0], pool[i].score, w),
			Source:  SourceLocal,
		}
	}
	return recs
}

// explainSamples explains a grouped candidate through its first sample, falling
// back to the strongest factor across all samples.
func explainSamples(samples []features, ref *features, score float64, w Weights) []Reason {
	if len(samples) == 0 {
		return nil
	}
	if reasons := explain(&samples[0], []features{*ref}, score, w); len(reasons) > 0 {
		return reasons
	}
	for i := 1; i < len(samples); i++ {
		if reasons := explain(&samples[i], []features{*ref}, score, w); len(reasons) > 0 {
			return reasons
		}
	}
	return nil
}

func hasTrack(tracks []Track, id string) bool {
	if id == "" {
		return false
	}
	for i := range tracks {
		if tracks[i].ID == id {
			return true
		}
	}
	return false
}

// isNil reports whether v is nil or a typed nil pointer.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
