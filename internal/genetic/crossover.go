package genetic

import (
	"fmt"
	"math/rand"

	"github.com/kestrel-quant/stratcore/internal/genome"
	"github.com/kestrel-quant/stratcore/internal/xerrors"
)

// CrossoverEngine performs uniform crossover between two same-family
// parent genomes.
type CrossoverEngine struct {
	rng *rand.Rand
}

// NewCrossoverEngine builds a CrossoverEngine; seed == 0 seeds from the
// current time.
func NewCrossoverEngine(seed int64) *CrossoverEngine {
	return &CrossoverEngine{rng: newRNG(seed)}
}

func newCrossoverEngineWithRNG(rng *rand.Rand) *CrossoverEngine {
	return &CrossoverEngine{rng: rng}
}

// Crossover requires a and b to share the same family. For every
// parameter it picks from either parent with probability 0.5, then (for
// moving_average) repairs the short < long invariant by falling back to
// parent a's values wholesale.
func (c *CrossoverEngine) Crossover(a, b genome.Genome) (genome.Genome, error) {
	if a.Family != b.Family {
		return genome.Genome{}, xerrors.New(xerrors.InvalidArgument,
			fmt.Sprintf("crossover requires matching families, got %q and %q", a.Family, b.Family)).WithField("type")
	}

	child := a.Clone()
	for _, name := range genome.ParamNames(a.Family) {
		if c.rng.Float64() < 0.5 {
			child.Params[name] = a.Params[name]
		} else {
			child.Params[name] = b.Params[name]
		}
	}

	if child.Family == genome.MovingAverage && child.Params["short"] >= child.Params["long"] {
		child.Params["short"] = a.Params["short"]
		child.Params["long"] = a.Params["long"]
	}

	return child, nil
}
