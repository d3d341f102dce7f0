package recommend

import "slices"

// diversify greedily re-ranks a score-sorted pool, blending each candidate's
// raw score with its mean dissimilarity to the items already picked:
//
//	blended = (1-d)*score + d*mean(1 - sim(selected_i, candidate))
//
// The top-scored candidate always comes first. Each step only looks at the
// best diversityWindow remaining candidates and the loop stops after
// diversityMaxIterations steps. Ties keep the higher raw score, so d == 0
// yields plain top-N order.
func diversify(pool []scored, limit int, d float64, w Weights) []scored {
	if len(pool) == 0 || limit <= 0 {
		return nil
	}

	selected := make([]scored, 0, min(limit, len(pool)))
	selected = append(selected, pool[0])
	remaining := slices.Clone(pool[1:])

	for iter := 0; len(selected) < limit && len(remaining) > 0 && iter < diversityMaxIterations; iter++ {
		window := min(len(remaining), diversityWindow)

		best := 0
		bestValue := -1.0
		for i := 0; i < window; i++ {
			c := &remaining[i]

			dissimilarity := 0.0
			for j := range selected {
				dissimilarity += 1 - weigh(compare(&selected[j].feat, &c.feat), w)
			}
			dissimilarity /= float64(len(selected))

			value := (1-d)*c.score + d*dissimilarity
			if value > bestValue {
				best, bestValue = i, value
			}
		}

		selected = append(selected, remaining[best])
		remaining = slices.Delete(remaining, best, best+1)
	}

	return selected
}
