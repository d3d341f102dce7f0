package recommend

import (
	"math"
	"time"
)

// Limits applied to every call.
const (
	DefaultLimit = 10
	MaxLimit     = 50

	// MaxCollectionSize is the largest number of tracks analyzed per call.
	MaxCollectionSize = 10000

	// DefaultBudget is the wall-clock budget of a blocking call.
	DefaultBudget = 200 * time.Millisecond

	// DefaultBatchSize is the number of candidates scored between yields
	// in cooperative mode.
	DefaultBatchSize = 50

	maxGroupReferences = 20 // album, artist and multi-track contexts
	maxScanReferences  = 50 // genre and year contexts
	maxUsedReferences  = 5  // references actually compared per candidate

	diversityWindow        = 100
	diversityMaxIterations = 500

	albumSampleSize  = 3
	artistSampleSize = 5
)

// Options controls a single recommendation call.
// Out-of-range values are clamped by Sanitize, never rejected.
type Options struct {
	Limit     int      // 0 means DefaultLimit; clamped to [1, MaxLimit]
	MinScore  float64  // clamped to [0, 1]
	Diversity float64  // clamped to [0, 1]; 0 disables re-ranking
	Weights   *Weights // nil means DefaultWeights
}

// Sanitize returns a copy of o with every field in its valid range.
func (o Options) Sanitize() Options {
	switch {
	case o.Limit == 0:
		o.Limit = DefaultLimit
	case o.Limit < 1:
		o.Limit = 1
	case o.Limit > MaxLimit:
		o.Limit = MaxLimit
	}
	o.MinScore = clamp01(o.MinScore)
	o.Diversity = clamp01(o.Diversity)

	w := DefaultWeights()
	if o.Weights != nil {
		w = o.Weights.sanitized()
	}
	o.Weights = &w
	return o
}

// weights returns the effective weights of sanitized options.
func (o Options) weights() Weights {
	if o.Weights == nil {
		return DefaultWeights()
	}
	return *o.Weights
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
