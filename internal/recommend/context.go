package recommend

import "strconv"

// Context describes what "similar" means for a single call.
// The set of implementations is closed: TrackContext, AlbumContext,
// ArtistContext, GenreContext, YearContext and MultiTrackContext.
type Context interface {
	isContext()
}

// TrackContext asks for tracks similar to one track.
type TrackContext struct {
	Track Track
}

// AlbumContext asks for tracks similar to the tracks of an album.
type AlbumContext struct {
	Album string
}

// ArtistContext asks for tracks similar to an artist's tracks.
type ArtistContext struct {
	Artist string
}

// GenreContext asks for tracks similar to tracks of a genre.
type GenreContext struct {
	Genre string
}

// YearContext asks for tracks similar to tracks released in a year.
type YearContext struct {
	Year int
}

// MultiTrackContext asks for tracks similar to a set of seed tracks.
type MultiTrackContext struct {
	Tracks []Track
}

func (TrackContext) isContext()      {}
func (AlbumContext) isContext()      {}
func (ArtistContext) isContext()     {}
func (GenreContext) isContext()      {}
func (YearContext) isContext()       {}
func (MultiTrackContext) isContext() {}

// contextTags renders a context as free-text tags for an external source.
func contextTags(c Context) (trackID string, tags []string) {
	switch c := c.(type) {
	case TrackContext:
		return c.Track.ID, nil
	case MultiTrackContext:
		if len(c.Tracks) == 0 {
			return "", nil
		}
		for _, t := range c.Tracks[1:] {
			if t.ID != "" {
				tags = append(tags, "track:"+t.ID)
			}
		}
		return c.Tracks[0].ID, tags
	case AlbumContext:
		return "", []string{"album:" + c.Album}
	case ArtistContext:
		return "", []string{"artist:" + c.Artist}
	case GenreContext:
		return "", []string{"genre:" + c.Genre}
	case YearContext:
		return "", []string{"year:" + strconv.Itoa(c.Year)}
	}
	return "", nil
}
