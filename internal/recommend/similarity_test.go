//nolint:goconst // test files commonly repeat strings for test data
package recommend

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const epsilon = 1e-9

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"The Beatles", "beatles"},
		{"the the", "the"},
		{"Theatre of Tragedy", "theatre of tragedy"},
		{"AC/DC", "acdc"},
		{"Guns N' Roses", "guns n roses"},
		{"  Multiple   Spaces  ", "multiple spaces"},
		{"Hip-Hop", "hip hop"},
		{"Björk", "björk"},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := normalizeName(tt.input)
			if got != tt.want {
				t.Errorf("normalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{"identical", []string{"rock", "pop"}, []string{"Pop", "Rock"}, 1},
		{"disjoint", []string{"rock"}, []string{"jazz"}, 0},
		{"half", []string{"rock", "pop"}, []string{"rock", "jazz", "pop", "folk"}, 0.5},
		{"both empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := jaccard(normalizeSet(tt.a), normalizeSet(tt.b))
			assert.InDelta(t, tt.want, got, epsilon)
		})
	}
}

func TestSimilarity_WorkedExample(t *testing.T) {
	a := Track{Artists: []string{"Boards of Canada"}, Album: "Geogaddi", Genres: []string{"IDM"}, Year: 2002}
	b := Track{Artists: []string{"Boards of Canada"}, Album: "Tomorrow's Harvest", Genres: []string{"IDM"}, Year: 2013}

	got := Similarity(a, b, DefaultWeights())

	// (0.35*1 + 0.20*0 + 0.25*1 + 0.10*0) / 0.90
	assert.InDelta(t, 0.6/0.9, got, epsilon)
}

func TestSimilarity_NoComparableFields(t *testing.T) {
	tests := []struct {
		name string
		a, b Track
	}{
		{"both empty", Track{}, Track{}},
		{"disjoint fields", Track{Artists: []string{"Muse"}, Year: 2001}, Track{Album: "Origin", Genres: []string{"Rock"}}},
		{"punctuation only", Track{Artists: []string{"???"}}, Track{Artists: []string{"Muse"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Similarity(tt.a, tt.b, DefaultWeights()); got != 0 {
				t.Errorf("Similarity = %f, want 0", got)
			}
		})
	}
}

func TestSimilarity_Identical(t *testing.T) {
	a := Track{
		Artists: []string{"Radiohead"},
		Album:   "Kid A",
		Genres:  []string{"Art Rock", "Electronic"},
		Year:    2000,
	}
	b := a
	b.ID = "other"
	b.Artists = []string{"radiohead"}

	assert.InDelta(t, 1.0, Similarity(a, b, DefaultWeights()), epsilon)
}

func TestSimilarity_MissingDataIsNotPenalized(t *testing.T) {
	sparseA := Track{Artists: []string{"Muse"}}
	sparseB := Track{Artists: []string{"Muse"}}

	if got := Similarity(sparseA, sparseB, DefaultWeights()); math.Abs(got-1) > epsilon {
		t.Errorf("sparse identical artists = %f, want 1", got)
	}
}

func TestSimilarity_ArtistMatchAnyOf(t *testing.T) {
	a := Track{Artists: []string{"Jay-Z", "Kanye West"}}
	b := Track{Artists: []string{"The Kanye West"}}

	assert.InDelta(t, 1.0, Similarity(a, b, DefaultWeights()), epsilon)
}

func TestSimilarity_Year(t *testing.T) {
	tests := []struct {
		gap  int
		want float64
	}{
		{0, 1},
		{3, 0.7},
		{10, 0},
		{25, 0},
	}

	for _, tt := range tests {
		a := Track{Year: 2000}
		b := Track{Year: 2000 + tt.gap}
		assert.InDelta(t, tt.want, Similarity(a, b, DefaultWeights()), epsilon, "gap %d", tt.gap)
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	coll := electronicLibrary()
	w := DefaultWeights()
	for i := range coll.Tracks {
		for j := range coll.Tracks {
			a, b := coll.Tracks[i], coll.Tracks[j]
			if Similarity(a, b, w) != Similarity(b, a, w) {
				t.Errorf("similarity not symmetric for %s, %s", a.ID, b.ID)
			}
		}
	}
}

func TestSimilarity_InRange(t *testing.T) {
	coll := syntheticLibrary(40)
	w := Weights{Artist: 3, Album: -1, Genre: math.NaN(), Year: 0.5}
	for i := range coll.Tracks {
		for j := range coll.Tracks {
			got := Similarity(coll.Tracks[i], coll.Tracks[j], w)
			if got < 0 || got > 1 || math.IsNaN(got) {
				t.Fatalf("Similarity = %f, outside [0,1]", got)
			}
		}
	}
}

func TestSimilarity_TempoAndKeyAreInert(t *testing.T) {
	a := Track{Artists: []string{"Muse"}, Year: 2001}
	b := Track{Artists: []string{"Muse"}, Year: 2006}

	base := Similarity(a, b, DefaultWeights())
	w := DefaultWeights()
	w.Tempo, w.Key = 10, 10

	assert.InDelta(t, base, Similarity(a, b, w), epsilon)
}

func TestBreakdown(t *testing.T) {
	a := Track{Artists: []string{"Muse"}, Album: "Origin of Symmetry", Year: 2001}
	b := Track{Artists: []string{"Muse"}, Genres: []string{"Rock"}, Year: 2003}

	got := Breakdown(a, b)

	want := []FactorScore{
		{Factor: ReasonArtist, Score: 1},
		{Factor: ReasonYear, Score: 0.8},
	}
	if assert.Len(t, got, len(want)) {
		for i := range want {
			assert.Equal(t, want[i].Factor, got[i].Factor)
			assert.InDelta(t, want[i].Score, got[i].Score, epsilon)
		}
	}
}
