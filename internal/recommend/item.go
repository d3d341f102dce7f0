// Package recommend computes content-based recommendations over a snapshot of
// a personal media collection.
//
// The package never performs I/O. Callers hand in a Collection, a Context
// describing what "similar" means, and Options; results point back into the
// caller's collection.
package recommend

// Track is a single library track as seen by the recommender.
// Empty strings, nil slices and a zero Year mean the field is absent.
type Track struct {
	ID      string
	Title   string
	Artists []string
	Album   string
	Genres  []string
	Year    int
}

// Album groups tracks released together.
type Album struct {
	ID      string
	Title   string
	Artists []string
	Genres  []string
	Year    int
	Tracks  []Track // in playback order
}

// Artist groups all tracks credited to one artist.
type Artist struct {
	ID     string
	Name   string
	Genres []string
	Tracks []Track
}

// Collection is a read-only snapshot of the media library.
type Collection struct {
	Tracks  []Track
	Albums  []Album
	Artists []Artist
}

// collectionIndex maps IDs to pointers into a collection.
type collectionIndex struct {
	tracks  map[string]*Track
	albums  map[string]*Album
	artists map[string]*Artist
}

func newCollectionIndex(c *Collection) *collectionIndex {
	idx := &collectionIndex{
		tracks:  make(map[string]*Track, len(c.Tracks)),
		albums:  make(map[string]*Album, len(c.Albums)),
		artists: make(map[string]*Artist, len(c.Artists)),
	}
	for i := range c.Tracks {
		if id := c.Tracks[i].ID; id != "" {
			if _, dup := idx.tracks[id]; !dup {
				idx.tracks[id] = &c.Tracks[i]
			}
		}
	}
	for i := range c.Albums {
		if id := c.Albums[i].ID; id != "" {
			if _, dup := idx.albums[id]; !dup {
				idx.albums[id] = &c.Albums[i]
			}
		}
	}
	for i := range c.Artists {
		if id := c.Artists[i].ID; id != "" {
			if _, dup := idx.artists[id]; !dup {
				idx.artists[id] = &c.Artists[i]
			}
		}
	}
	return idx
}

// Source tells where a recommendation came from.
type Source int

const (
	SourceLocal Source = iota
	SourceExternal
)

func (s Source) String() string {
	if s == SourceExternal {
		return "external"
	}
	return "local"
}

// Recommendation is one ranked result. Item points into the input collection,
// or at a hydrated item returned by an external fetcher.
type Recommendation[T Track | Album | Artist] struct {
	Item    *T
	Score   float64
	Reasons []Reason
	Source  Source
}
