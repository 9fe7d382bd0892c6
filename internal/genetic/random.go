// Package genetic implements the genome-parameterized genetic optimizer:
// mutation, uniform crossover, tournament selection with elitism, and
// the two-mode fitness evaluator that drive the EvolutionEngine's search
// over the strategy genome space.
package genetic

import (
	"math/rand"

	"github.com/kestrel-quant/stratcore/internal/genome"
)

// randomGenome draws a uniformly random family, then a uniformly random
// value within each of that family's parameter bounds (in ParamNames
// order, for deterministic RNG consumption), repairing the
// moving_average short < long invariant by resampling both consistently.
func randomGenome(rng *rand.Rand) genome.Genome {
	family := genome.Families[rng.Intn(len(genome.Families))]
	names := genome.ParamNames(family)
	bounds := genome.Bounds[family]

	params := make(map[string]int, len(names))
	for _, name := range names {
		b := bounds[name]
		params[name] = b.Low + rng.Intn(b.High-b.Low+1)
	}

	g := genome.Genome{Family: family, Params: params}
	if family == genome.MovingAverage {
		repairMovingAverage(rng, g)
	}
	return g
}

// repairMovingAverage resamples short and long until short < long.
func repairMovingAverage(rng *rand.Rand, g genome.Genome) {
	shortBound := genome.Bounds[genome.MovingAverage]["short"]
	longBound := genome.Bounds[genome.MovingAverage]["long"]
	for g.Params["short"] >= g.Params["long"] {
		g.Params["short"] = shortBound.Low + rng.Intn(shortBound.High-shortBound.Low+1)
		g.Params["long"] = longBound.Low + rng.Intn(longBound.High-longBound.Low+1)
	}
}
