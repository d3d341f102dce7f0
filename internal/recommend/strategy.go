package recommend

import (
	"cmp"
	"context"
	"io"
	"runtime"
	"slices"
	"time"

	"github.com/charmbracelet/log"
)

// budgetCheckInterval is how many candidates are scored between clock reads
// in blocking mode.
const budgetCheckInterval = 32

var discardLogger = log.New(io.Discard)

// Strategy turns a context and a collection into ranked track recommendations.
type Strategy interface {
	// ReferenceTracks resolves the bounded reference set for a context.
	ReferenceTracks(c Context, coll *Collection) []Track

	// Recommend runs to completion or until its time budget is spent, in
	// which case the partial result is returned.
	Recommend(c Context, coll *Collection, opts Options) []Recommendation[Track]

	// RecommendCooperative scores candidates in fixed-size batches and
	// yields to the scheduler between batches. It stops early, returning
	// what was scored so far, when ctx is done.
	RecommendCooperative(ctx context.Context, c Context, coll *Collection, opts Options) []Recommendation[Track]
}

// SimilarityStrategy ranks tracks by metadata similarity to the references.
type SimilarityStrategy struct {
	Budget    time.Duration    // blocking mode wall-clock budget
	BatchSize int              // cooperative mode batch size
	Now       func() time.Time // clock used for the budget
	Yield     func()           // called between cooperative batches
	Logger    *log.Logger
}

// NewSimilarityStrategy returns a strategy with the default budget and batch size.
// A nil logger discards output.
func NewSimilarityStrategy(logger *log.Logger) *SimilarityStrategy {
	if logger == nil {
		logger = discardLogger
	}
	return &SimilarityStrategy{
		Budget:    DefaultBudget,
		BatchSize: DefaultBatchSize,
		Now:       time.Now,
		Yield:     runtime.Gosched,
		Logger:    logger,
	}
}

// ReferenceTracks implements Strategy.
func (s *SimilarityStrategy) ReferenceTracks(c Context, coll *Collection) []Track {
	var tracks []Track
	if coll != nil {
		tracks = s.bound(coll.Tracks)
	}
	refs := resolveReferences(c, tracks)
	out := make([]Track, len(refs))
	for i, r := range refs {
		out[i] = *r
	}
	return out
}

// Recommend implements Strategy.
func (s *SimilarityStrategy) Recommend(c Context, coll *Collection, opts Options) []Recommendation[Track] {
	return s.run(context.Background(), c, coll, opts, false)
}

// RecommendCooperative implements Strategy.
func (s *SimilarityStrategy) RecommendCooperative(ctx context.Context, c Context, coll *Collection, opts Options) []Recommendation[Track] {
	return s.run(ctx, c, coll, opts, true)
}

// scored is a candidate that passed the score threshold.
type scored struct {
	track *Track
	feat  features
	score float64
}

func (s *SimilarityStrategy) run(ctx context.Context, c Context, coll *Collection, opts Options, cooperative bool) []Recommendation[Track] {
	if c == nil || coll == nil || len(coll.Tracks) == 0 {
		return nil
	}

	opts = opts.Sanitize()
	w := opts.weights()
	tracks := s.bound(coll.Tracks)

	refs := resolveReferences(c, tracks)
	if len(refs) == 0 {
		return nil
	}

	excluded := newExclusion(refs)
	used := refs[:min(len(refs), maxUsedReferences)]
	refFeats := make([]features, len(used))
	for i, r := range used {
		refFeats[i] = extract(r)
	}

	var pool []scored
	if cooperative {
		pool = s.scoreCooperative(ctx, tracks, refFeats, excluded, opts.MinScore, w)
	} else {
		pool = s.scoreBlocking(tracks, refFeats, excluded, opts.MinScore, w)
	}
	if len(pool) == 0 {
		return nil
	}

	// Stable so equal scores keep collection order
	slices.SortStableFunc(pool, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	var picked []scored
	if opts.Diversity > 0 && len(pool) > opts.Limit {
		picked = diversify(pool, opts.Limit, opts.Diversity, w)
	} else {
		picked = pool[:min(len(pool), opts.Limit)]
	}

	recs := make([]Recommendation[Track], len(picked))
	for i := range picked {
		p := &picked[i]
		recs[i] = Recommendation[Track]{
			Item:    p.track,
			Score:   p.score,
			Reasons: explain(&p.feat, refFeats, p.score, w),
			Source:  SourceLocal,
		}
	}
	return recs
}

// scoreBlocking scores candidates in input order until done or the budget runs out.
func (s *SimilarityStrategy) scoreBlocking(tracks []Track, refs []features, excluded exclusion, minScore float64, w Weights) []scored {
	now := s.Now
	if now == nil {
		now = time.Now
	}
	budget := s.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}

	start := now()
	var pool []scored
	for i := range tracks {
		if i > 0 && i%budgetCheckInterval == 0 {
			if elapsed := now().Sub(start); elapsed > budget {
				s.logger().Warn("recommendation time budget exceeded, returning partial results",
					"budget", budget, "elapsed", elapsed, "scored", i, "total", len(tracks))
				break
			}
		}
		if sc, ok := scoreCandidate(&tracks[i], refs, excluded, minScore, w); ok {
			pool = append(pool, sc)
		}
	}
	return pool
}

// scoreCooperative scores candidates in batches, yielding between batches.
func (s *SimilarityStrategy) scoreCooperative(ctx context.Context, tracks []Track, refs []features, excluded exclusion, minScore float64, w Weights) []scored {
	batch := s.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	yield := s.Yield
	if yield == nil {
		yield = runtime.Gosched
	}

	var pool []scored
	for start := 0; start < len(tracks); start += batch {
		if start > 0 {
			yield()
			if ctx.Err() != nil {
				s.logger().Debug("cooperative scoring cancelled", "scored", start, "total", len(tracks))
				break
			}
		}
		end := min(start+batch, len(tracks))
		for i := start; i < end; i++ {
			if sc, ok := scoreCandidate(&tracks[i], refs, excluded, minScore, w); ok {
				pool = append(pool, sc)
			}
		}
	}
	return pool
}

// scoreCandidate averages the similarity of t against every reference.
func scoreCandidate(t *Track, refs []features, excluded exclusion, minScore float64, w Weights) (scored, bool) {
	if excluded.contains(t) {
		return scored{}, false
	}
	f := extract(t)
	total := 0.0
	for i := range refs {
		total += weigh(compare(&refs[i], &f), w)
	}
	score := clamp01(total / float64(len(refs)))
	if score < minScore {
		return scored{}, false
	}
	return scored{track: t, feat: f, score: score}, true
}

// bound truncates the collection to the analysis cap.
func (s *SimilarityStrategy) bound(tracks []Track) []Track {
	if len(tracks) <= MaxCollectionSize {
		return tracks
	}
	s.logger().Warn("collection exceeds analysis cap, truncating",
		"size", len(tracks), "cap", MaxCollectionSize)
	return tracks[:MaxCollectionSize]
}

func (s *SimilarityStrategy) logger() *log.Logger {
	if s.Logger == nil {
		return discardLogger
	}
	return s.Logger
}

// resolveReferences maps a context to its bounded reference set.
// Returned pointers point into tracks, except for track and multi-track
// contexts where they point at copies of the context payload.
func resolveReferences(c Context, tracks []Track) []*Track {
	switch c := c.(type) {
	case TrackContext:
		if isZeroTrack(&c.Track) {
			return nil
		}
		t := c.Track
		return []*Track{&t}

	case MultiTrackContext:
		n := min(len(c.Tracks), maxGroupReferences)
		refs := make([]*Track, 0, n)
		for i := 0; i < len(c.Tracks) && len(refs) < n; i++ {
			if isZeroTrack(&c.Tracks[i]) {
				continue
			}
			t := c.Tracks[i]
			refs = append(refs, &t)
		}
		return refs

	case AlbumContext:
		want := normalizeName(c.Album)
		return matchTracks(tracks, maxGroupReferences, want != "", func(t *Track) bool {
			return normalizeName(t.Album) == want
		})

	case ArtistContext:
		want := normalizeName(c.Artist)
		return matchTracks(tracks, maxGroupReferences, want != "", func(t *Track) bool {
			return containsNormalized(t.Artists, want)
		})

	case GenreContext:
		want := normalizeName(c.Genre)
		return matchTracks(tracks, maxScanReferences, want != "", func(t *Track) bool {
			return containsNormalized(t.Genres, want)
		})

	case YearContext:
		return matchTracks(tracks, maxScanReferences, c.Year > 0, func(t *Track) bool {
			return t.Year == c.Year
		})
	}
	return nil
}

func matchTracks(tracks []Track, limit int, valid bool, match func(*Track) bool) []*Track {
	if !valid {
		return nil
	}
	var refs []*Track
	for i := range tracks {
		if match(&tracks[i]) {
			refs = append(refs, &tracks[i])
			if len(refs) == limit {
				break
			}
		}
	}
	return refs
}

func isZeroTrack(t *Track) bool {
	return t.ID == "" && t.Title == "" && len(t.Artists) == 0 && t.Album == "" &&
		len(t.Genres) == 0 && t.Year == 0
}

// exclusion identifies reference items that must not be recommended.
// References without an ID are matched on their content.
type exclusion struct {
	ids       map[string]struct{}
	ptrs      map[*Track]struct{}
	anonymous []*Track
}

func newExclusion(refs []*Track) exclusion {
	e := exclusion{
		ids:  make(map[string]struct{}, len(refs)),
		ptrs: make(map[*Track]struct{}, len(refs)),
	}
	for _, r := range refs {
		e.ptrs[r] = struct{}{}
		if r.ID != "" {
			e.ids[r.ID] = struct{}{}
		} else {
			e.anonymous = append(e.anonymous, r)
		}
	}
	return e
}

func (e exclusion) contains(t *Track) bool {
	if _, ok := e.ptrs[t]; ok {
		return true
	}
	if t.ID != "" {
		if _, ok := e.ids[t.ID]; ok {
			return true
		}
	}
	for _, r := range e.anonymous {
		if sameContent(r, t) {
			return true
		}
	}
	return false
}

// sameContent compares every field but the ID.
func sameContent(a, b *Track) bool {
	return a.Title == b.Title && a.Album == b.Album && a.Year == b.Year &&
		slices.Equal(a.Artists, b.Artists) && slices.Equal(a.Genres, b.Genres)
}
