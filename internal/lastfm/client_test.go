package lastfm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMatch(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"0.843", 0.843},
		{"1", 1},
		{"\t0.5\n", 0.5},
		{"3.2", 1},
		{"-0.4", 0},
		{"NaN", 0},
		{"", 0},
		{"high", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.InDelta(t, tt.want, parseMatch(tt.in), 1e-9)
		})
	}
}

func TestParsePlaycount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"4212345", 4212345},
		{" 17 ", 17},
		{"-8", 0},
		{"2.5", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parsePlaycount(tt.in))
		})
	}
}

func TestArtistParams(t *testing.T) {
	p := artistParams("  Boards of Canada ", 25)

	assert.Equal(t, "Boards of Canada", p["artist"])
	assert.Equal(t, 25, p["limit"])
	assert.Equal(t, 1, p["autocorrect"])
}
