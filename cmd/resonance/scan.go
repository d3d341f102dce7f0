package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/llehouerou/resonance/internal/errmsg"
	"github.com/llehouerou/resonance/internal/library"
)

func runScan(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	full := fs.Bool("full", false, "re-read every file, ignoring modification times")
	verbose := fs.Bool("v", false, "list added, updated and removed files")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}

	sources, err := a.lib.SourcePaths()
	if err != nil {
		return fail(errmsg.OpSourceLoad, "", err)
	}
	if len(sources) == 0 {
		fmt.Println(dimStyle.Render("No sources, add one with 'resonance sources add <dir>'."))
		return nil
	}

	progress := make(chan library.ScanProgress)
	var wg sync.WaitGroup
	wg.Go(func() { printProgress(progress) })

	var stats *library.ScanStats
	if *full {
		stats, err = a.lib.FullRefresh(ctx, sources, progress)
	} else {
		stats, err = a.lib.Refresh(ctx, sources, progress)
	}
	wg.Wait()
	if err != nil {
		return fail(errmsg.OpLibraryScan, "", err)
	}

	fmt.Print(renderScanStats(stats, *verbose))
	return nil
}

// printProgress rewrites a single status line until progress is closed.
func printProgress(progress <-chan library.ScanProgress) {
	for p := range progress {
		switch p.Phase {
		case library.PhaseDone:
			fmt.Fprint(os.Stderr, "\r\033[K")
		case library.PhaseRead:
			fmt.Fprintf(os.Stderr, "\r\033[Kreading %s/%s files",
				humanize.Comma(int64(p.Current)), humanize.Comma(int64(p.Total)))
		default:
			fmt.Fprintf(os.Stderr, "\r\033[K%s %s files", p.Phase, humanize.Comma(int64(p.Current)))
		}
	}
}

func renderScanStats(stats *library.ScanStats, verbose bool) string {
	sources := make([]string, 0, len(stats.BySource))
	for s := range stats.BySource {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	var out string
	for _, s := range sources {
		st := stats.BySource[s]
		if st.Unavailable {
			out += headerStyle.Render(s) + ": " + errorStyle.Render("unavailable, tracks kept") + "\n"
			continue
		}
		out += fmt.Sprintf("%s: %s added, %s updated, %s removed",
			headerStyle.Render(s),
			humanize.Comma(int64(len(st.Added))),
			humanize.Comma(int64(len(st.Updated))),
			humanize.Comma(int64(len(st.Removed))))
		if st.Skipped > 0 {
			out += dimStyle.Render(fmt.Sprintf(", %s skipped", humanize.Comma(int64(st.Skipped))))
		}
		out += "\n"
		if verbose {
			out += fileList("+", st.Added) + fileList("~", st.Updated) + fileList("-", st.Removed)
		}
	}
	return out
}

func fileList(mark string, paths []string) string {
	var out string
	for _, p := range paths {
		out += "  " + mark + " " + p + "\n"
	}
	return out
}
