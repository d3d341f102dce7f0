// Command resonance recommends music from a local library.
//
// Usage:
//
//	resonance sources add ~/Music   Register a directory
//	resonance scan                  Index registered directories
//	resonance similar track roygbiv Tracks similar to a track
//	resonance similar smart 42      Tracks, albums and artists at once
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
)

const usage = `resonance - music recommendations from your library

Usage:
  resonance [-db path] [-log-level level] <command> [flags] [args]

Commands:
  sources                List library sources
  sources add <dir>      Register a directory to scan
  sources remove <dir>   Unregister a directory and drop its tracks
  scan [-full]           Scan registered sources for music files
  stats                  Library statistics
  search <query>         Find tracks and their IDs
  similar <mode> <ref>   Recommendations, where mode is one of:
                           track, tracks, album, artist, genre, year,
                           albums, artists, smart
  cache clean            Remove expired Last.fm cache entries

Run 'resonance <command> -h' for command-specific help.
`

// errUsage reports a malformed command line; the usage is already printed.
var errUsage = errors.New("invalid arguments")

func main() {
	dbPath := flag.String("db", "", "database path (default: config or XDG data dir)")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}
	cmd, args := flag.Arg(0), flag.Args()[1:]

	var run func(context.Context, *app, []string) error
	switch cmd {
	case "sources":
		run = runSources
	case "scan":
		run = runScan
	case "stats":
		run = runStats
	case "search":
		run = runSearch
	case "similar":
		run = runSimilar
	case "cache":
		run = runCache
	case "-h", "--help", "help":
		flag.Usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		flag.Usage()
		os.Exit(2)
	}

	a, err := openApp(*dbPath, *logLevel)
	if err != nil {
		exit(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = run(ctx, a, args)
	stop()
	a.Close()
	if err != nil {
		exit(err)
	}
}

func exit(err error) {
	switch {
	case errors.Is(err, errUsage):
		os.Exit(2)
	case errors.Is(err, context.Canceled):
		os.Exit(130)
	}
	fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
	os.Exit(1)
}
