package suggest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/llehouerou/resonance/internal/lastfm"
	"github.com/llehouerou/resonance/internal/library"
	"github.com/llehouerou/resonance/internal/recommend"
)

// ErrNoSeed is returned when a request names no artist to start from,
// e.g. genre or year contexts.
var ErrNoSeed = errors.New("no seed artist in request")

// Client is the subset of the Last.fm API the source needs.
type Client interface {
	GetSimilarArtists(artist string, limit int) ([]lastfm.SimilarArtist, error)
	GetArtistTopTracks(artist string, limit int) ([]lastfm.TopTrack, error)
}

// Library is the subset of the library store the source needs.
type Library interface {
	TrackByID(id int64) (*library.Track, error)
	Artists() ([]string, error)
	ArtistTracks(albumArtist string) ([]library.Track, error)
}

// Options tunes how much Last.fm data a fetch uses.
type Options struct {
	SimilarArtists int     // similar artists requested per seed
	TopTracks      int     // top tracks requested per similar artist
	MatchThreshold float64 // minimum fuzzy score for an artist name match
	MaxArtists     int     // matched artists expanded into track suggestions
	Concurrency    int     // parallel top-track fetches
}

// DefaultOptions returns the default fetch options.
func DefaultOptions() Options {
	return Options{
		SimilarArtists: 50,
		TopTracks:      50,
		MatchThreshold: 0.8,
		MaxArtists:     10,
		Concurrency:    4,
	}
}

// Source suggests library items through Last.fm similar artists.
// It implements recommend.Fetcher.
type Source struct {
	client Client
	cache  *Cache
	lib    Library
	opts   Options
	logger *log.Logger
}

var _ recommend.Fetcher = (*Source)(nil)

// New creates a source. A nil client serves from the cache only;
// a nil cache always asks Last.fm.
func New(client Client, cache *Cache, lib Library, opts Options, logger *log.Logger) *Source {
	def := DefaultOptions()
	if opts.SimilarArtists <= 0 {
		opts.SimilarArtists = def.SimilarArtists
	}
	if opts.TopTracks <= 0 {
		opts.TopTracks = def.TopTracks
	}
	if opts.MatchThreshold <= 0 || opts.MatchThreshold > 1 {
		opts.MatchThreshold = def.MatchThreshold
	}
	if opts.MaxArtists <= 0 {
		opts.MaxArtists = def.MaxArtists
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = def.Concurrency
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Source{client: client, cache: cache, lib: lib, opts: opts, logger: logger}
}

// Fetch suggests tracks and artists similar to the request's seed artist.
// Track suggestions come first, best first, followed by artist suggestions.
func (s *Source) Fetch(ctx context.Context, req recommend.Request) ([]recommend.Suggestion, error) {
	seed, err := s.seedArtist(req)
	if err != nil {
		return nil, err
	}

	similar, err := s.similarArtists(seed)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	localArtists, err := s.lib.Artists()
	if err != nil {
		return nil, fmt.Errorf("list artists: %w", err)
	}
	matched := matchArtists(similar, localArtists, s.opts.MatchThreshold, seed)
	s.logger.Debug("matched similar artists", "seed", seed, "similar", len(similar), "matched", len(matched))
	if len(matched) == 0 {
		return nil, nil
	}

	limit := req.Limit
	if limit <= 0 {
		limit = recommend.DefaultLimit
	}

	expand := matched[:min(len(matched), s.opts.MaxArtists)]
	candidates, err := s.collectCandidates(ctx, expand)
	if err != nil {
		return nil, err
	}

	var suggestions []recommend.Suggestion
	for _, c := range rankCandidates(candidates, limit) {
		suggestions = append(suggestions, recommend.Suggestion{
			Type:   recommend.SuggestionTrack,
			ID:     strconv.FormatInt(c.Track.ID, 10),
			Score:  c.Score,
			Reason: trackReason(c, seed),
		})
	}
	for _, m := range matched[:min(len(matched), limit)] {
		suggestions = append(suggestions, recommend.Suggestion{
			Type:   recommend.SuggestionArtist,
			ID:     library.ArtistID(m.LocalArtist),
			Score:  m.LastfmArtist.MatchScore,
			Reason: fmt.Sprintf("Similar to %s on Last.fm", seed),
		})
	}
	return suggestions, nil
}

func trackReason(c Candidate, seed string) string {
	if c.Rank > 0 {
		return fmt.Sprintf("#%d on Last.fm for %s, similar to %s", c.Rank, c.Artist.LocalArtist, seed)
	}
	return fmt.Sprintf("By %s, similar to %s on Last.fm", c.Artist.LocalArtist, seed)
}

// seedArtist picks the artist to ask Last.fm about: the reference track's
// artist, else the first track or artist tag.
func (s *Source) seedArtist(req recommend.Request) (string, error) {
	ids := []string{req.TrackID}
	var tagged string
	for _, tag := range req.Context {
		kind, value, ok := strings.Cut(tag, ":")
		if !ok {
			continue
		}
		switch kind {
		case "track":
			ids = append(ids, value)
		case "artist":
			if tagged == "" {
				tagged = strings.TrimSpace(value)
			}
		}
	}

	for _, raw := range ids {
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		t, err := s.lib.TrackByID(id)
		if errors.Is(err, library.ErrTrackNotFound) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("resolve seed track %d: %w", id, err)
		}
		if artists := t.Item().Artists; len(artists) > 0 {
			return artists[0], nil
		}
	}

	if tagged != "" {
		return tagged, nil
	}
	return "", ErrNoSeed
}

// similarArtists returns similar artists from the cache, or from Last.fm on
// a miss. A failed cache read falls through to Last.fm.
func (s *Source) similarArtists(artist string) ([]lastfm.SimilarArtist, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.SimilarArtists(artist)
		if err != nil {
			s.logger.Warn("similar artists cache read failed", "artist", artist, "err", err)
		} else if ok {
			return cached, nil
		}
	}
	if s.client == nil {
		return nil, nil
	}

	similar, err := s.client.GetSimilarArtists(artist, s.opts.SimilarArtists)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.StoreSimilarArtists(artist, similar); err != nil {
			s.logger.Warn("similar artists cache write failed", "artist", artist, "err", err)
		}
	}
	return similar, nil
}

// topTracks is similarArtists for an artist's top tracks.
func (s *Source) topTracks(artist string) ([]lastfm.TopTrack, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.TopTracks(artist)
		if err != nil {
			s.logger.Warn("top tracks cache read failed", "artist", artist, "err", err)
		} else if ok {
			return cached, nil
		}
	}
	if s.client == nil {
		return nil, nil
	}

	tracks, err := s.client.GetArtistTopTracks(artist, s.opts.TopTracks)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.StoreTopTracks(artist, tracks); err != nil {
			s.logger.Warn("top tracks cache write failed", "artist", artist, "err", err)
		}
	}
	return tracks, nil
}

// collectCandidates fetches top tracks for all artists in parallel and
// scores their library tracks. A failed top-track fetch only loses the
// popularity signal for that artist.
func (s *Source) collectCandidates(ctx context.Context, artists []MatchedArtist) ([]Candidate, error) {
	results := make([][]Candidate, len(artists))

	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)

	for i, ma := range artists {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			top, err := s.topTracks(ma.LocalArtist)
			if err != nil {
				s.logger.Debug("top tracks unavailable", "artist", ma.LocalArtist, "err", err)
			}

			tracks, err := s.lib.ArtistTracks(ma.LocalArtist)
			if err != nil {
				return fmt.Errorf("tracks of %s: %w", ma.LocalArtist, err)
			}

			results[i] = buildCandidates(ma, tracks, top)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []Candidate
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}
