package suggest

import (
	"cmp"
	"slices"

	"github.com/llehouerou/resonance/internal/lastfm"
	"github.com/llehouerou/resonance/internal/library"
)

const (
	popularityFloor    = 0.05 // tracks missing from the artist's top tracks
	similarityFloor    = 0.1
	maxTracksPerArtist = 3
)

// Candidate is a local track proposed through a similar artist.
type Candidate struct {
	Track     library.Track
	Artist    MatchedArtist
	Playcount int // from Last.fm artist.getTopTracks
	Rank      int // rank in top tracks, 0 when absent
	Score     float64
}

// buildTopTrackMap creates a normalized name -> TopTrack lookup map.
// The best ranked entry wins when names collide.
func buildTopTrackMap(tracks []lastfm.TopTrack) map[string]lastfm.TopTrack {
	m := make(map[string]lastfm.TopTrack, len(tracks))
	for _, t := range tracks {
		key := titleKey(t.Name)
		if prev, ok := m[key]; ok && prev.Rank <= t.Rank {
			continue
		}
		m[key] = t
	}
	return m
}

// buildCandidates scores the local tracks of one matched artist.
func buildCandidates(artist MatchedArtist, tracks []library.Track, topTracks []lastfm.TopTrack) []Candidate {
	topTrackMap := buildTopTrackMap(topTracks)
	maxPlays := 0
	for _, t := range topTracks {
		maxPlays = max(maxPlays, t.Playcount)
	}

	candidates := make([]Candidate, 0, len(tracks))
	for i := range tracks {
		c := Candidate{Track: tracks[i], Artist: artist}
		if tt, ok := topTrackMap[titleKey(tracks[i].Title)]; ok {
			c.Playcount = tt.Playcount
			c.Rank = tt.Rank
		}
		c.Score = calculateScore(artist.LastfmArtist.MatchScore, c.Playcount, maxPlays)
		candidates = append(candidates, c)
	}
	return candidates
}

// calculateScore weighs the artist similarity by the track's popularity
// relative to the artist's most played track.
func calculateScore(similarityScore float64, playcount, maxPlays int) float64 {
	popularity := popularityFloor
	if playcount > 0 && maxPlays > 0 {
		popularity = max(popularityFloor, float64(playcount)/float64(maxPlays))
	}

	similarityWeight := max(similarityScore, similarityFloor)

	return min(1.0, similarityWeight*popularity)
}

// rankCandidates orders candidates by score and returns up to limit of them,
// taking at most maxTracksPerArtist per artist before allowing repeats.
func rankCandidates(candidates []Candidate, limit int) []Candidate {
	if len(candidates) == 0 || limit <= 0 {
		return nil
	}

	sorted := slices.Clone(candidates)
	slices.SortStableFunc(sorted, func(a, b Candidate) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Track.ID, b.Track.ID)
	})

	selected := make([]Candidate, 0, min(limit, len(sorted)))
	var skipped []Candidate
	perArtist := make(map[string]int)
	seen := make(map[int64]bool)

	for _, c := range sorted {
		if len(selected) >= limit {
			break
		}
		if seen[c.Track.ID] {
			continue
		}
		if perArtist[c.Artist.LocalArtist] >= maxTracksPerArtist {
			skipped = append(skipped, c)
			continue
		}
		seen[c.Track.ID] = true
		perArtist[c.Artist.LocalArtist]++
		selected = append(selected, c)
	}

	for _, c := range skipped {
		if len(selected) >= limit {
			break
		}
		if seen[c.Track.ID] {
			continue
		}
		seen[c.Track.ID] = true
		selected = append(selected, c)
	}

	return selected
}
