package genetic

import (
	"math/rand"
	"time"

	"github.com/kestrel-quant/stratcore/internal/genome"
	"github.com/kestrel-quant/stratcore/internal/xerrors"
)

// MutationEngine independently resamples each bounded parameter of a
// genome with probability MutationRate, repairing the moving_average
// short < long invariant afterward.
type MutationEngine struct {
	mutationRate float64
	rng          *rand.Rand
}

// NewMutationEngine requires mutationRate in [0, 1]. seed == 0 seeds from
// the current time; any other value seeds deterministically.
func NewMutationEngine(mutationRate float64, seed int64) (*MutationEngine, error) {
	if mutationRate < 0 || mutationRate > 1 {
		return nil, xerrors.New(xerrors.InvalidArgument, "mutation_rate must be in [0, 1]").WithField("mutation_rate")
	}
	return &MutationEngine{mutationRate: mutationRate, rng: newRNG(seed)}, nil
}

func newMutationEngineWithRNG(mutationRate float64, rng *rand.Rand) *MutationEngine {
	return &MutationEngine{mutationRate: mutationRate, rng: rng}
}

func newRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Mutate returns a deep-copied, possibly-mutated genome: every parameter
// is independently resampled within its bound with probability
// MutationRate, then (for moving_average) the short < long invariant is
// repaired by resampling both parameters consistently.
func (m *MutationEngine) Mutate(g genome.Genome) genome.Genome {
	out := g.Clone()
	bounds := genome.Bounds[out.Family]
	for _, name := range genome.ParamNames(out.Family) {
		if m.rng.Float64() < m.mutationRate {
			b := bounds[name]
			out.Params[name] = b.Low + m.rng.Intn(b.High-b.Low+1)
		}
	}
	if out.Family == genome.MovingAverage && out.Params["short"] >= out.Params["long"] {
		repairMovingAverage(m.rng, out)
	}
	return out
}
