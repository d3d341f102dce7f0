package tags

import (
	"github.com/bogem/id3v2/v2"
)

// Frames read directly through id3v2.
const (
	frameAlbumArtist = "TPE2"
	frameTrack       = "TRCK"
	frameDisc        = "TPOS"
	frameRecorded    = "TDRC" // v2.4
	frameYear        = "TYER" // v2.3
	frameOriginal    = "TORY" // v2.3 original release year
)

func openID3(path string) (*id3v2.Tag, error) {
	return id3v2.Open(path, id3v2.Options{Parse: true})
}

// readID3 reads an MP3 file with id3v2 alone.
func readID3(path string) (*Tag, error) {
	id3, err := openID3(path)
	if err != nil {
		return nil, err
	}
	defer id3.Close()

	t := &Tag{
		Title:       id3.Title(),
		Artist:      id3.Artist(),
		AlbumArtist: frameText(id3, frameAlbumArtist),
		Album:       id3.Album(),
		Genre:       id3.Genre(),
		Year:        id3Year(id3),
		Track:       leadingInt(frameText(id3, frameTrack)),
		Disc:        leadingInt(frameText(id3, frameDisc)),
	}
	t.fill(path)
	return t, nil
}

func readID3Year(path string) (int, error) {
	id3, err := openID3(path)
	if err != nil {
		return 0, err
	}
	defer id3.Close()
	return id3Year(id3), nil
}

// id3Year takes the first frame holding a year, newest version first.
func id3Year(id3 *id3v2.Tag) int {
	for _, id := range []string{frameRecorded, frameYear, frameOriginal} {
		if y := leadingInt(frameText(id3, id)); y > 0 {
			return y
		}
	}
	return 0
}

func frameText(id3 *id3v2.Tag, id string) string {
	for _, f := range id3.GetFrames(id) {
		if tf, ok := f.(id3v2.TextFrame); ok {
			return tf.Text
		}
	}
	return ""
}
