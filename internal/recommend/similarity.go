package recommend

import "math"

// yearWindow is the gap in years at which year similarity reaches zero.
const yearWindow = 10.0

// features holds the normalized metadata of a track.
type features struct {
	artists map[string]struct{}
	album   string
	genres  map[string]struct{}
	year    int
}

func extract(t *Track) features {
	return features{
		artists: normalizeSet(t.Artists),
		album:   normalizeName(t.Album),
		genres:  normalizeSet(t.Genres),
		year:    t.Year,
	}
}

// factorScore is the similarity of one factor present on both tracks.
type factorScore struct {
	factor ReasonType
	score  float64
}

// compare returns the per-factor scores for the factors both tracks carry,
// in artist, album, genre, year order.
func compare(a, b *features) []factorScore {
	scores := make([]factorScore, 0, 4)

	if len(a.artists) > 0 && len(b.artists) > 0 {
		scores = append(scores, factorScore{ReasonArtist, artistScore(a.artists, b.artists)})
	}
	if a.album != "" && b.album != "" {
		s := 0.0
		if a.album == b.album {
			s = 1.0
		}
		scores = append(scores, factorScore{ReasonAlbum, s})
	}
	if len(a.genres) > 0 && len(b.genres) > 0 {
		scores = append(scores, factorScore{ReasonGenre, jaccard(a.genres, b.genres)})
	}
	if a.year > 0 && b.year > 0 {
		diff := math.Abs(float64(a.year - b.year))
		scores = append(scores, factorScore{ReasonYear, math.Max(0, 1-diff/yearWindow)})
	}

	return scores
}

// artistScore is 1 when any artist matches exactly, Jaccard otherwise.
func artistScore(a, b map[string]struct{}) float64 {
	for name := range a {
		if _, ok := b[name]; ok {
			return 1.0
		}
	}
	return jaccard(a, b)
}

// weigh combines factor scores, renormalizing over the weights of the
// factors that were comparable. Returns 0 when nothing was comparable.
func weigh(scores []factorScore, w Weights) float64 {
	var sum, total float64
	for _, fs := range scores {
		weight := w.of(fs.factor)
		sum += weight * fs.score
		total += weight
	}
	if total <= 0 {
		return 0
	}
	return clamp01(sum / total)
}

// Similarity returns a symmetric similarity in [0,1] between two tracks.
// Only factors present on both tracks contribute.
func Similarity(a, b Track, w Weights) float64 {
	fa, fb := extract(&a), extract(&b)
	return weigh(compare(&fa, &fb), w.sanitized())
}

// FactorScore is the similarity of a single metadata factor.
type FactorScore struct {
	Factor ReasonType
	Score  float64
}

// Breakdown returns the per-factor similarity between two tracks for the
// factors present on both of them.
func Breakdown(a, b Track) []FactorScore {
	fa, fb := extract(&a), extract(&b)
	scores := compare(&fa, &fb)
	out := make([]FactorScore, len(scores))
	for i, s := range scores {
		out[i] = FactorScore{Factor: s.factor, Score: s.score}
	}
	return out
}
