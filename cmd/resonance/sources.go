package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/llehouerou/resonance/internal/errmsg"
)

func runSources(_ context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return listSources(a)
	}
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: resonance sources [add|remove <dir>]")
		return errUsage
	}

	path, err := filepath.Abs(args[1])
	if err != nil {
		return err
	}

	switch args[0] {
	case "add":
		info, err := os.Stat(path)
		if err != nil {
			return fail(errmsg.OpSourceAdd, path, err)
		}
		if !info.IsDir() {
			return fail(errmsg.OpSourceAdd, path, fmt.Errorf("not a directory"))
		}
		if err := a.lib.AddSource(path); err != nil {
			return fail(errmsg.OpSourceAdd, path, err)
		}
		fmt.Printf("Added %s, run 'resonance scan' to index it.\n", path)
	case "remove":
		count, err := a.lib.RemoveSource(path)
		if err != nil {
			return fail(errmsg.OpSourceRemove, path, err)
		}
		fmt.Printf("Removed %s (%s tracks).\n", path, humanize.Comma(int64(count)))
	default:
		fmt.Fprintf(os.Stderr, "unknown sources command: %s\n", args[0])
		return errUsage
	}
	return nil
}

func listSources(a *app) error {
	sources, err := a.lib.Sources()
	if err != nil {
		return fail(errmsg.OpSourceLoad, "", err)
	}
	if len(sources) == 0 {
		fmt.Println(dimStyle.Render("No sources, add one with 'resonance sources add <dir>'."))
		return nil
	}
	for _, s := range sources {
		fmt.Printf("%s %s\n", s.Path, dimStyle.Render(fmt.Sprintf("%s tracks, added %s",
			humanize.Comma(int64(s.Tracks)), humanize.Time(s.Added))))
	}
	return nil
}
