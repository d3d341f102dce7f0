package recommend

import (
	"strings"
	"unicode"
)

// normalizeName is the comparison form of an artist, album or genre name:
// lowercase words of letters and digits, without a leading "the".
func normalizeName(s string) string {
	words := strings.Fields(strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r), r == '-', r == '_':
			return ' '
		}
		return -1
	}, s))
	if len(words) > 1 && words[0] == "the" {
		words = words[1:]
	}
	return strings.Join(words, " ")
}

// normalizeSet normalizes values into a set, dropping values that normalize to "".
func normalizeSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if n := normalizeName(v); n != "" {
			set[n] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

// jaccard returns |a ∩ b| / |a ∪ b|.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	shared := 0
	for v := range a {
		if _, ok := b[v]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(a)+len(b)-shared)
}

// containsNormalized reports whether any value normalizes to want.
func containsNormalized(values []string, want string) bool {
	if want == "" {
		return false
	}
	for _, v := range values {
		if normalizeName(v) == want {
			return true
		}
	}
	return false
}
