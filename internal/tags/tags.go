// Package tags reads the metadata of music files for the library scanner.
package tags

import (
	"path/filepath"
	"strconv"
	"strings"
)

// extensions lists the file types the scanner indexes.
var extensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".oga":  true,
	".opus": true,
	".m4a":  true,
	".mp4":  true,
}

// Supported reports whether path looks like a music file, by extension.
func Supported(path string) bool {
	return extensions[strings.ToLower(filepath.Ext(path))]
}

// Tag holds the fields the library stores for a file.
// Zero numbers mean the field is missing.
type Tag struct {
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
	Genre       string
	Year        int
	Track       int
	Disc        int
}

// fill trims every text field and applies the file name and artist
// fallbacks for title and album artist.
func (t *Tag) fill(path string) {
	for _, s := range []*string{&t.Title, &t.Artist, &t.AlbumArtist, &t.Album, &t.Genre} {
		*s = strings.TrimSpace(*s)
	}
	if t.Title == "" {
		t.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if t.AlbumArtist == "" {
		t.AlbumArtist = t.Artist
	}
}

// leadingInt parses the number at the start of s: "1998-04-20" is 1998
// and "3/12" is 3.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, _ := strconv.Atoi(s[:end])
	return n
}
