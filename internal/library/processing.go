package library

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	dbutil "github.com/llehouerou/resonance/internal/db"
)

const (
	tagReaders       = 8
	progressInterval = 100 * time.Millisecond
)

// readResult is the outcome of reading one file. ok is false when the file
// was unreadable or had no artist.
type readResult struct {
	file  fileInfo
	track Track
	ok    bool
}

// readFiles reads the tags of files with a bounded number of readers.
// Results keep the order of files.
func (l *Library) readFiles(ctx context.Context, files []fileInfo, report func(ScanProgress)) ([]readResult, error) {
	results := make([]readResult, len(files))
	total := len(files)
	var done atomic.Int64

	stop := make(chan struct{})
	var ticker sync.WaitGroup
	ticker.Go(func() {
		t := time.NewTicker(progressInterval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				report(ScanProgress{Phase: PhaseRead, Current: int(done.Load()), Total: total})
			case <-stop:
				return
			}
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(tagReaders)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = readResult{file: f}
			if t, err := l.readTag(f.path); err == nil {
				results[i].track, results[i].ok = trackFromTag(f.path, f.mtime, t)
			}
			done.Add(1)
			return nil
		})
	}
	err := g.Wait()
	close(stop)
	ticker.Wait()

	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report(ScanProgress{Phase: PhaseRead, Current: total, Total: total})
	return results, nil
}

// apply writes a scan in one transaction: read tracks are upserted, indexed
// files that no longer yield a track are dropped, and vanished files are
// deleted.
func (l *Library) apply(ctx context.Context, read []readResult, gone []storedFile) error {
	if len(read) == 0 && len(gone) == 0 {
		return nil
	}
	return dbutil.WithTxContext(ctx, l.db, func(tx *sql.Tx) error {
		for _, r := range read {
			var err error
			switch {
			case r.ok:
				err = upsertTrack(tx, r.track)
			case r.file.known:
				err = deleteByPath(tx, r.file.path)
			}
			if err != nil {
				return err
			}
		}
		for _, g := range gone {
			if err := deleteByPath(tx, g.path); err != nil {
				return err
			}
		}
		return nil
	})
}

func deleteByPath(ex executor, path string) error {
	_, err := ex.Exec(`DELETE FROM library_tracks WHERE path = ?`, path)
	return err
}
