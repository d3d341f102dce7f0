package tags

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// Read returns the metadata of the music file at path.
func Read(path string) (*Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		// dhowden/tag rejects some UTF-16 ID3 frames that id3v2 parses.
		if isMP3(path) {
			return readID3(path)
		}
		return nil, fmt.Errorf("read tags of %s: %w", path, err)
	}

	t := &Tag{
		Title:       m.Title(),
		Artist:      m.Artist(),
		AlbumArtist: m.AlbumArtist(),
		Album:       m.Album(),
		Genre:       m.Genre(),
		Year:        m.Year(),
	}
	t.Track, _ = m.Track()
	t.Disc, _ = m.Disc()

	// dhowden only reports TYER; ID3v2.4 files keep the year in TDRC.
	if t.Year == 0 && m.FileType() == tag.MP3 {
		if y, err := readID3Year(path); err == nil {
			t.Year = y
		}
	}

	t.fill(path)
	return t, nil
}

func isMP3(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".mp3")
}
