package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/llehouerou/resonance/internal/errmsg"
	"github.com/llehouerou/resonance/internal/library"
	"github.com/llehouerou/resonance/internal/recommend"
)

const similarUsage = `Usage: resonance similar [flags] <mode> <ref>...

Modes:
  track <track>         Tracks similar to a track
  tracks <track>...     Tracks similar to several tracks
  album <album>         Tracks similar to an album
  artist <artist>       Tracks similar to an artist
  genre <genre>         Tracks similar to a genre
  year <year>           Tracks similar to a release year
  albums <track>        Albums similar to a track
  artists <track>       Artists similar to a track
  smart <track>         Tracks, albums and artists similar to a track

A track is a numeric ID or a search query (see 'resonance search').

Flags:
`

func runSimilar(ctx context.Context, a *app, args []string) error {
	rc := a.cfg.GetRecommendConfig()

	fs := flag.NewFlagSet("similar", flag.ContinueOnError)
	limit := fs.Int("limit", rc.Limit, "maximum number of results")
	minScore := fs.Float64("min-score", rc.MinScore, "minimum similarity score (0-1)")
	diversity := fs.Float64("diversity", rc.Diversity, "diversity re-ranking strength (0-1)")
	hybrid := fs.Bool("hybrid", false, "ask Last.fm first, fall back to local similarity")
	cooperative := fs.Bool("cooperative", false, "score in cancellable chunks (Ctrl-C stops early)")
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, similarUsage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}
	if fs.NArg() < 2 {
		fs.Usage()
		return errUsage
	}
	mode, refs := fs.Arg(0), fs.Args()[1:]

	opts := rc.Options()
	opts.Limit = *limit
	opts.MinScore = *minScore
	opts.Diversity = *diversity

	coll, err := a.lib.Snapshot(ctx)
	if err != nil {
		return fail(errmsg.OpLibraryLoad, "", err)
	}
	if len(coll.Tracks) == 0 {
		fmt.Println(dimStyle.Render("Library is empty, run 'resonance scan' first."))
		return nil
	}

	q := query{
		engine:      a.newEngine(*hybrid),
		coll:        coll,
		opts:        opts,
		hybrid:      *hybrid,
		cooperative: *cooperative,
	}

	switch mode {
	case "track", "albums", "artists", "smart":
		t, err := a.findTrack(refs[0])
		if err != nil {
			return err
		}
		fmt.Println(headerStyle.Render("Similar to " + describeTrack(t)))
		return q.byTrack(ctx, mode, t.Item())

	case "tracks":
		var seeds []recommend.Track
		for _, ref := range refs {
			t, err := a.findTrack(ref)
			if err != nil {
				return err
			}
			seeds = append(seeds, t.Item())
		}
		fmt.Println(headerStyle.Render(fmt.Sprintf("Similar to %d tracks", len(seeds))))
		return q.tracks(ctx, recommend.MultiTrackContext{Tracks: seeds})

	case "album":
		name := strings.Join(refs, " ")
		fmt.Println(headerStyle.Render("Similar to album " + name))
		return q.tracks(ctx, recommend.AlbumContext{Album: name})

	case "artist":
		name := strings.Join(refs, " ")
		fmt.Println(headerStyle.Render("Similar to artist " + name))
		return q.tracks(ctx, recommend.ArtistContext{Artist: name})

	case "genre":
		genre := strings.Join(refs, " ")
		fmt.Println(headerStyle.Render("Similar to genre " + genre))
		if q.local() {
			return q.print(q.engine.RecommendationsByGenre(genre, coll, opts))
		}
		return q.tracks(ctx, recommend.GenreContext{Genre: genre})

	case "year":
		year, err := strconv.Atoi(refs[0])
		if err != nil {
			return fmt.Errorf("invalid year %q", refs[0])
		}
		fmt.Println(headerStyle.Render(fmt.Sprintf("Similar to %d", year)))
		if q.local() {
			return q.print(q.engine.RecommendationsByYear(year, coll, opts))
		}
		return q.tracks(ctx, recommend.YearContext{Year: year})

	default:
		fmt.Fprintf(os.Stderr, "unknown mode: %s\n\n", mode)
		fs.Usage()
		return errUsage
	}
}

// query carries the settings shared by every similar mode.
type query struct {
	engine      *recommend.Engine
	coll        *recommend.Collection
	opts        recommend.Options
	hybrid      bool
	cooperative bool
}

// local reports whether the blocking local entry points apply.
func (q *query) local() bool {
	return !q.hybrid && !q.cooperative
}

func (q *query) byTrack(ctx context.Context, mode string, t recommend.Track) error {
	switch mode {
	case "albums":
		fmt.Print(renderAlbums(q.engine.AlbumRecommendations(t, q.coll, q.opts)))
	case "artists":
		fmt.Print(renderArtists(q.engine.ArtistRecommendations(t, q.coll, q.opts)))
	case "smart":
		res := q.engine.SmartRecommendations(ctx, recommend.TrackContext{Track: t}, q.coll, q.opts)
		fmt.Print(renderSmart(res))
	default:
		switch {
		case q.hybrid:
			return q.tracks(ctx, recommend.TrackContext{Track: t})
		case q.cooperative:
			return q.print(q.engine.TrackRecommendationsCooperative(ctx, t, q.coll, q.opts))
		default:
			return q.print(q.engine.TrackRecommendations(t, q.coll, q.opts))
		}
	}
	return ctx.Err()
}

// tracks runs a context query. Without a fetcher the engine answers with
// its cooperative local result.
func (q *query) tracks(ctx context.Context, c recommend.Context) error {
	if err := q.print(q.engine.HybridRecommendations(ctx, c, q.coll, q.opts)); err != nil {
		return err
	}
	return ctx.Err()
}

func (q *query) print(recs []recommend.Recommendation[recommend.Track]) error {
	fmt.Print(renderTracks(recs))
	return nil
}

// findTrack resolves a numeric track ID or the first search match.
func (a *app) findTrack(ref string) (*library.Track, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		t, err := a.lib.TrackByID(id)
		if err != nil {
			return nil, fail(errmsg.OpTrackFind, ref, err)
		}
		return t, nil
	}

	matches, err := a.lib.SearchTracks(ref, 1)
	if err != nil {
		return nil, fail(errmsg.OpTrackFind, ref, err)
	}
	if len(matches) == 0 {
		return nil, fail(errmsg.OpTrackFind, ref, library.ErrTrackNotFound)
	}
	return &matches[0], nil
}
