package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/llehouerou/resonance/internal/errmsg"
	"github.com/llehouerou/resonance/internal/suggest"
)

const searchLimit = 20

func runStats(_ context.Context, a *app, _ []string) error {
	counts, err := a.lib.Counts()
	if err != nil {
		return fail(errmsg.OpLibraryLoad, "", err)
	}
	sources, err := a.lib.SourcePaths()
	if err != nil {
		return fail(errmsg.OpSourceLoad, "", err)
	}

	fmt.Printf("%-8s %s\n", "Tracks", humanize.Comma(int64(counts.Tracks)))
	fmt.Printf("%-8s %s\n", "Albums", humanize.Comma(int64(counts.Albums)))
	fmt.Printf("%-8s %s\n", "Artists", humanize.Comma(int64(counts.Artists)))
	fmt.Printf("%-8s %d\n", "Sources", len(sources))
	if a.cfg.HasLastfmConfig() {
		fmt.Printf("%-8s %s\n", "Last.fm", "configured")
	}
	return nil
}

func runSearch(_ context.Context, a *app, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: resonance search <query>")
		return errUsage
	}
	q := strings.Join(args, " ")
	tracks, err := a.lib.SearchTracks(q, searchLimit)
	if err != nil {
		return fail(errmsg.OpTrackFind, q, err)
	}
	if len(tracks) == 0 {
		fmt.Println(dimStyle.Render("No tracks found."))
		return nil
	}
	for i := range tracks {
		fmt.Printf("%6d  %s\n", tracks[i].ID, describeTrack(&tracks[i]))
	}
	return nil
}

func runCache(_ context.Context, a *app, args []string) error {
	if len(args) != 1 || args[0] != "clean" {
		fmt.Fprintln(os.Stderr, "Usage: resonance cache clean")
		return errUsage
	}
	cache := suggest.NewCache(a.state.DB(), a.cfg.GetRecommendConfig().CacheTTLDays)
	dropped, err := cache.CleanExpired()
	if err != nil {
		return fail(errmsg.OpCacheClean, "", err)
	}
	fmt.Printf("Removed %s expired Last.fm %s.\n", humanize.Comma(int64(dropped)), plural(dropped, "list", "lists"))
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
