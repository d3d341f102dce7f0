// Package lastfm reads artist similarity and popularity from the Last.fm API.
package lastfm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shkh/lastfm-go/lastfm"
)

// SimilarArtist is an artist Last.fm relates to the queried one.
type SimilarArtist struct {
	Name       string
	MatchScore float64 // in [0, 1]
}

// TopTrack is one of an artist's most played tracks. Rank starts at 1.
type TopTrack struct {
	Name      string
	Playcount int
	Rank      int
}

// Client calls the artist methods of the API. None of them needs a user
// session, so only the application key is used.
type Client struct {
	api *lastfm.Api
}

func New(apiKey, apiSecret string) *Client {
	return &Client{api: lastfm.New(apiKey, apiSecret)}
}

// artistParams lets Last.fm map misspelled names onto the canonical artist.
func artistParams(artist string, limit int) lastfm.P {
	return lastfm.P{"artist": strings.TrimSpace(artist), "limit": limit, "autocorrect": 1}
}

// GetSimilarArtists returns up to limit artists related to artist, most
// similar first.
func (c *Client) GetSimilarArtists(artist string, limit int) ([]SimilarArtist, error) {
	res, err := c.api.Artist.GetSimilar(artistParams(artist, limit))
	if err != nil {
		return nil, fmt.Errorf("artist.getSimilar %q: %w", artist, err)
	}

	similar := make([]SimilarArtist, 0, len(res.Similars))
	for _, s := range res.Similars {
		if s.Name == "" {
			continue
		}
		similar = append(similar, SimilarArtist{Name: s.Name, MatchScore: parseMatch(s.Match)})
	}
	return similar, nil
}

// GetArtistTopTracks returns up to limit of the artist's most played
// tracks, in chart order.
func (c *Client) GetArtistTopTracks(artist string, limit int) ([]TopTrack, error) {
	res, err := c.api.Artist.GetTopTracks(artistParams(artist, limit))
	if err != nil {
		return nil, fmt.Errorf("artist.getTopTracks %q: %w", artist, err)
	}

	top := make([]TopTrack, 0, len(res.Tracks))
	for _, t := range res.Tracks {
		if t.Name == "" {
			continue
		}
		top = append(top, TopTrack{Name: t.Name, Playcount: parsePlaycount(t.PlayCount), Rank: len(top) + 1})
	}
	return top, nil
}

// parseMatch reads a similarity score, clamped into [0, 1].
func parseMatch(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) {
		return 0
	}
	return max(0, min(v, 1))
}

func parsePlaycount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return max(n, 0)
}
