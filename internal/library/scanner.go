package library

import (
	"context"
	"os"
	"path/filepath"

	"github.com/llehouerou/resonance/internal/tags"
)

// Phase names a step of a scan, in the order they run.
type Phase string

const (
	PhaseDiscover Phase = "discovering"
	PhaseRead     Phase = "reading"
	PhaseClean    Phase = "cleaning"
	PhaseDone     Phase = "done"
)

// ScanProgress is sent on the progress channel while a scan runs.
type ScanProgress struct {
	Phase   Phase
	Current int
	Total   int
	Stats   *ScanStats // set with PhaseDone
}

// ScanStats is the outcome of a scan, keyed by source directory.
type ScanStats struct {
	BySource map[string]*SourceStats
}

// SourceStats lists changes relative to the source directory.
type SourceStats struct {
	Added   []string
	Updated []string
	Removed []string
	Skipped int // unreadable files and files without an artist

	// Unavailable is set when the directory could not be read. Its tracks
	// are left as they were.
	Unavailable bool
}

// Refresh indexes new and modified files under sources and drops tracks
// whose file is gone. When progress is not nil it is closed on return.
func (l *Library) Refresh(ctx context.Context, sources []string, progress chan<- ScanProgress) (*ScanStats, error) {
	return l.scan(ctx, sources, progress, false)
}

// FullRefresh is Refresh re-reading every file whatever its modification time.
func (l *Library) FullRefresh(ctx context.Context, sources []string, progress chan<- ScanProgress) (*ScanStats, error) {
	return l.scan(ctx, sources, progress, true)
}

func (l *Library) scan(ctx context.Context, sources []string, progress chan<- ScanProgress, force bool) (*ScanStats, error) {
	if progress != nil {
		defer close(progress)
	}
	report := func(p ScanProgress) {
		if progress != nil {
			progress <- p
		}
	}

	stats := &ScanStats{BySource: make(map[string]*SourceStats, len(sources))}
	var readable []string
	for _, src := range sources {
		src = filepath.Clean(src)
		if _, dup := stats.BySource[src]; dup {
			continue
		}
		st := &SourceStats{}
		stats.BySource[src] = st
		if info, err := os.Stat(src); err != nil || !info.IsDir() {
			st.Unavailable = true
			continue
		}
		readable = append(readable, src)
	}

	report(ScanProgress{Phase: PhaseDiscover})
	found, err := discover(ctx, readable, report)
	if err != nil {
		return nil, err
	}
	stored, err := l.storedFiles(ctx, readable)
	if err != nil {
		return nil, err
	}

	var pending []fileInfo
	for _, f := range found {
		s, ok := stored[f.path]
		if ok && !force && s.mtime == f.mtime {
			continue
		}
		f.known = ok
		pending = append(pending, f)
	}

	read, err := l.readFiles(ctx, pending, report)
	if err != nil {
		return nil, err
	}

	gone := vanished(stored, found)
	report(ScanProgress{Phase: PhaseClean, Total: len(gone)})
	if err := l.apply(ctx, read, gone); err != nil {
		return nil, err
	}

	for _, r := range read {
		st := stats.BySource[r.file.source]
		rel := relativePath(r.file.source, r.file.path)
		switch {
		case !r.ok:
			st.Skipped++
		case r.file.known:
			st.Updated = append(st.Updated, rel)
		default:
			st.Added = append(st.Added, rel)
		}
	}
	for _, g := range gone {
		st := stats.BySource[g.source]
		st.Removed = append(st.Removed, relativePath(g.source, g.path))
	}

	report(ScanProgress{Phase: PhaseDone, Current: len(found), Total: len(found), Stats: stats})
	return stats, nil
}

// trackFromTag builds the stored track of a file. Files without an artist
// carry nothing the recommender can compare and are skipped.
func trackFromTag(path string, mtime int64, t *tags.Tag) (Track, bool) {
	if t == nil || (t.Artist == "" && t.AlbumArtist == "") {
		return Track{}, false
	}
	return Track{
		Path:        path,
		Mtime:       mtime,
		Artist:      t.Artist,
		AlbumArtist: t.AlbumArtist,
		Album:       t.Album,
		Title:       t.Title,
		DiscNumber:  t.Disc,
		TrackNumber: t.Track,
		Year:        t.Year,
		Genre:       t.Genre,
	}, true
}
