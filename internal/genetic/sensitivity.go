package genetic

import (
	"sort"

	"github.com/kestrel-quant/stratcore/internal/genome"
)

// ParameterSpread is one parameter's fitness spread across its
// value-decile buckets, read from an evolution run's already-collected
// history.
type ParameterSpread struct {
	Parameter string
	Spread    float64 // max decile mean fitness - min decile mean fitness
}

// ParameterInfluence buckets a result's full history by each genome
// parameter's value decile (within that family's declared bound) and
// reports how much mean fitness varies across deciles; a higher spread
// means the search was more sensitive to that parameter. This is a
// read-only view over data the EvolutionEngine already collected; it
// performs no additional search.
func ParameterInfluence(result Result, family genome.Family) []ParameterSpread {
	bounds := genome.Bounds[family]
	names := genome.ParamNames(family)

	out := make([]ParameterSpread, 0, len(names))
	for _, name := range names {
		b := bounds[name]
		width := b.High - b.Low + 1
		const deciles = 10
		bucketSum := make([]float64, deciles)
		bucketCount := make([]int, deciles)

		for _, e := range result.History {
			if e.Genome.Family != family {
				continue
			}
			v, ok := e.Genome.Params[name]
			if !ok {
				continue
			}
			frac := float64(v-b.Low) / float64(width)
			idx := int(frac * deciles)
			if idx >= deciles {
				idx = deciles - 1
			}
			if idx < 0 {
				idx = 0
			}
			bucketSum[idx] += e.Fitness
			bucketCount[idx]++
		}

		var means []float64
		for i := range bucketSum {
			if bucketCount[i] > 0 {
				means = append(means, bucketSum[i]/float64(bucketCount[i]))
			}
		}
		if len(means) == 0 {
			out = append(out, ParameterSpread{Parameter: name, Spread: 0})
			continue
		}
		sort.Float64s(means)
		out = append(out, ParameterSpread{Parameter: name, Spread: means[len(means)-1] - means[0]})
	}
	return out
}
