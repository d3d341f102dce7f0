package recommend

// ReasonType identifies why an item was recommended.
type ReasonType string

const (
	ReasonArtist   ReasonType = "artist"
	ReasonAlbum    ReasonType = "album"
	ReasonGenre    ReasonType = "genre"
	ReasonYear     ReasonType = "year"
	ReasonExternal ReasonType = "external"
)

// Reason explains one contribution to a recommendation score.
type Reason struct {
	Type        ReasonType
	Weight      float64
	Description string
}

// materiality is the factor score a reason must exceed to be reported.
var materiality = map[ReasonType]float64{
	ReasonArtist: 0.5,
	ReasonAlbum:  0.5,
	ReasonGenre:  0.3,
	ReasonYear:   0.5,
}

func describe(fs factorScore) string {
	switch fs.factor {
	case ReasonArtist:
		if fs.score >= 1 {
			return "Same artist"
		}
		return "Shares artists"
	case ReasonAlbum:
		return "From the same album"
	case ReasonGenre:
		if fs.score >= 1 {
			return "Same genre"
		}
		return "Similar genre"
	case ReasonYear:
		if fs.score >= 1 {
			return "Released the same year"
		}
		return "Released around the same time"
	case ReasonExternal:
		return "Suggested by external source"
	}
	return ""
}

// explain returns the reasons for a candidate scored against refs; refs[0]
// is the primary reference. Factors against the primary reference that cross
// their materiality threshold are reported. When none do but the candidate
// still scored, the strongest contributing factor against any reference is
// reported alone.
func explain(cand *features, refs []features, score float64, w Weights) []Reason {
	if len(refs) == 0 || score <= 0 {
		return nil
	}

	var reasons []Reason
	for _, fs := range compare(&refs[0], cand) {
		weight := w.of(fs.factor)
		if weight <= 0 || fs.score <= materiality[fs.factor] {
			continue
		}
		reasons = append(reasons, Reason{
			Type:        fs.factor,
			Weight:      weight,
			Description: describe(fs),
		})
	}
	if len(reasons) > 0 {
		return reasons
	}

	var best factorScore
	bestContribution := 0.0
	for i := range refs {
		for _, fs := range compare(&refs[i], cand) {
			if c := w.of(fs.factor) * fs.score; c > bestContribution {
				best, bestContribution = fs, c
			}
		}
	}
	if bestContribution <= 0 {
		return nil
	}
	return []Reason{{
		Type:        best.factor,
		Weight:      w.of(best.factor),
		Description: describe(best),
	}}
}
