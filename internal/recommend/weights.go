package recommend

// Weights sets how much each metadata factor contributes to similarity.
//
// Tempo and Key are reserved: no track record carries tempo or key data, so
// they never take part in scoring.
type Weights struct {
	Artist float64
	Album  float64
	Genre  float64
	Year   float64
	Tempo  float64
	Key    float64
}

// DefaultWeights returns the built-in factor weights.
func DefaultWeights() Weights {
	return Weights{
		Artist: 0.35,
		Album:  0.20,
		Genre:  0.25,
		Year:   0.10,
		Tempo:  0.05,
		Key:    0.05,
	}
}

// of returns the weight configured for a factor.
func (w Weights) of(f ReasonType) float64 {
	switch f {
	case ReasonArtist:
		return w.Artist
	case ReasonAlbum:
		return w.Album
	case ReasonGenre:
		return w.Genre
	case ReasonYear:
		return w.Year
	default:
		return 0
	}
}

// sanitized replaces negative or non-finite weights with zero.
func (w Weights) sanitized() Weights {
	return Weights{
		Artist: nonNegative(w.Artist),
		Album:  nonNegative(w.Album),
		Genre:  nonNegative(w.Genre),
		Year:   nonNegative(w.Year),
		Tempo:  nonNegative(w.Tempo),
		Key:    nonNegative(w.Key),
	}
}
