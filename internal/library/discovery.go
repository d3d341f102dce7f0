package library

import (
	"context"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/llehouerou/resonance/internal/tags"
)

// fileInfo is a music file found on disk.
type fileInfo struct {
	path   string
	mtime  int64
	source string
	known  bool // already indexed
}

// storedFile is a track row as the scanner needs it.
type storedFile struct {
	path   string
	mtime  int64
	source string
}

// discover walks sources for music files, in path order. Hidden directories
// and entries that cannot be read are skipped.
func discover(ctx context.Context, sources []string, report func(ScanProgress)) ([]fileInfo, error) {
	var files []fileInfo
	for _, src := range sources {
		err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				return nil //nolint:nilerr // unreadable entries do not stop the scan
			}
			if d.IsDir() {
				if path != src && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !tags.Supported(path) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil //nolint:nilerr // vanished between listing and stat
			}
			files = append(files, fileInfo{path: path, mtime: info.ModTime().Unix(), source: src})
			if len(files)%100 == 0 {
				report(ScanProgress{Phase: PhaseDiscover, Current: len(files)})
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	slices.SortFunc(files, func(a, b fileInfo) int { return strings.Compare(a.path, b.path) })
	return files, nil
}

// storedFiles returns the indexed tracks under sources, by path.
func (l *Library) storedFiles(ctx context.Context, sources []string) (map[string]storedFile, error) {
	stored := make(map[string]storedFile)
	for _, src := range sources {
		rows, err := l.db.QueryContext(ctx,
			`SELECT path, mtime FROM library_tracks WHERE path LIKE ? ESCAPE '\'`, likePrefix(src))
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			f := storedFile{source: src}
			if err := rows.Scan(&f.path, &f.mtime); err != nil {
				rows.Close()
				return nil, err
			}
			stored[f.path] = f
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}
	return stored, nil
}

// vanished returns the stored files that were not found on disk, in path order.
func vanished(stored map[string]storedFile, found []fileInfo) []storedFile {
	seen := make(map[string]bool, len(found))
	for _, f := range found {
		seen[f.path] = true
	}
	var gone []storedFile
	for path, s := range stored {
		if !seen[path] {
			gone = append(gone, s)
		}
	}
	slices.SortFunc(gone, func(a, b storedFile) int { return strings.Compare(a.path, b.path) })
	return gone
}

// relativePath returns path relative to source, or path itself when it is
// not under source.
func relativePath(source, path string) string {
	if rel, err := filepath.Rel(source, path); err == nil {
		return rel
	}
	return path
}
