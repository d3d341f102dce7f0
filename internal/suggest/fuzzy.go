package suggest

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/llehouerou/resonance/internal/lastfm"
)

// MatchedArtist pairs a Last.fm similar artist with a local library artist.
type MatchedArtist struct {
	LastfmArtist lastfm.SimilarArtist
	LocalArtist  string
}

// remasterSuffix matches the version notes Last.fm and file tags disagree on:
// "(2011 Remaster)", "[Remastered]", "- Remastered 2009".
var remasterSuffix = regexp.MustCompile(`(?i)\s*(\([^)]*remaster[^)]*\)|\[[^\]]*remaster[^\]]*\]|\s-\s[^-]*remaster[^-]*)$`)

// fold lowercases s, drops diacritics and punctuation, and collapses
// separators to single spaces.
func fold(s string) string {
	// Chains keep state, so each call builds its own.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if plain, _, err := transform.String(stripMarks, s); err == nil {
		s = plain
	}

	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '-', r == '_':
			space = true
		}
	}
	return b.String()
}

// titleKey is the comparison form of a track title.
func titleKey(title string) string {
	return fold(remasterSuffix.ReplaceAllString(title, ""))
}

// artistKey is the comparison form of an artist name. A leading "The" is
// dropped: Last.fm and tags often disagree on it.
func artistKey(name string) string {
	k := fold(name)
	if rest, ok := strings.CutPrefix(k, "the "); ok {
		return rest
	}
	return k
}

// matchArtists pairs Last.fm similar artists with local artists. Keys that
// are equal match first; otherwise the closest unused local artist at or
// above threshold is taken. Each local artist is used once, by the highest
// ranked similar artist reaching it, and artists in exclude never match.
func matchArtists(similar []lastfm.SimilarArtist, localArtists []string, threshold float64, exclude ...string) []MatchedArtist {
	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		skip[artistKey(e)] = true
	}

	type local struct{ key, name string }
	var locals []local
	byKey := make(map[string]string, len(localArtists))
	for _, name := range localArtists {
		k := artistKey(name)
		if k == "" || skip[k] {
			continue
		}
		if _, dup := byKey[k]; dup {
			continue
		}
		byKey[k] = name
		locals = append(locals, local{k, name})
	}

	var matched []MatchedArtist
	used := make(map[string]bool)
	take := func(sa lastfm.SimilarArtist, name string) {
		used[name] = true
		matched = append(matched, MatchedArtist{LastfmArtist: sa, LocalArtist: name})
	}

	for _, sa := range similar {
		k := artistKey(sa.Name)
		if k == "" || skip[k] {
			continue
		}
		if name, ok := byKey[k]; ok {
			if !used[name] {
				take(sa, name)
			}
			continue
		}

		best, bestScore := "", threshold
		for _, l := range locals {
			if used[l.name] {
				continue
			}
			// Ties keep the earlier local artist.
			if s := similarity(k, l.key); s > bestScore || (best == "" && s >= bestScore) {
				best, bestScore = l.name, s
			}
		}
		if best != "" {
			take(sa, best)
		}
	}
	return matched
}

// similarity is 1 minus the edit distance over the longer length, in runes.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	return 1 - float64(editDistance(ra, rb))/float64(longest)
}

// editDistance is the Levenshtein distance between a and b, computed on one
// row of the matrix.
func editDistance(a, b []rune) int {
	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(a); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			above := row[j]
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			row[j] = min(above+1, row[j-1]+1, diag+cost)
			diag = above
		}
	}
	return row[len(b)]
}
