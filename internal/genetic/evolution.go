package genetic

import (
	"math"
	"math/rand"
	"sort"

	"github.com/kestrel-quant/stratcore/internal/genome"
	"github.com/kestrel-quant/stratcore/internal/xerrors"
)

// Evaluation is one genome's fitness, as recorded in the evolution
// history.
type Evaluation struct {
	Genome  genome.Genome
	Fitness float64
}

// Config bundles the EvolutionEngine's search parameters.
type Config struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	CrossoverRate  float64
	Elitism        int
	TournamentSize int
	Seed           int64
}

// Result is the outcome of a full evolutionary run.
type Result struct {
	BestGenome      genome.Genome
	BestFitness     float64
	GenerationBests []float64
	History         []Evaluation
}

// EvolutionEngine searches the genome space against a FitnessEvaluator
// using elitism, tournament selection, uniform crossover and mutation.
// All randomness is drawn from a single RNG seeded by Config.Seed, so
// two engines built with equal Config (with a non-zero Seed) and equal
// evaluator inputs produce bit-equal results. A zero Seed seeds the RNG
// from the current time.
type EvolutionEngine struct {
	cfg       Config
	evaluator *FitnessEvaluator
	rng       *rand.Rand
	mutation  *MutationEngine
	crossover *CrossoverEngine
}

// NewEvolutionEngine validates cfg and wires a shared RNG across random
// initialization, tournament selection, crossover and mutation.
func NewEvolutionEngine(cfg Config, evaluator *FitnessEvaluator) (*EvolutionEngine, error) {
	if cfg.PopulationSize < 2 {
		return nil, xerrors.New(xerrors.InvalidArgument, "population_size must be >= 2").WithField("population_size")
	}
	if cfg.Generations < 1 {
		return nil, xerrors.New(xerrors.InvalidArgument, "generations must be >= 1").WithField("generations")
	}
	if cfg.TournamentSize < 1 {
		return nil, xerrors.New(xerrors.InvalidArgument, "tournament_size must be >= 1").WithField("tournament_size")
	}
	if cfg.Elitism < 0 || cfg.Elitism > cfg.PopulationSize {
		return nil, xerrors.New(xerrors.InvalidArgument, "elitism must be in [0, population_size]").WithField("elitism")
	}

	if cfg.MutationRate < 0 || cfg.MutationRate > 1 {
		return nil, xerrors.New(xerrors.InvalidArgument, "mutation_rate must be in [0, 1]").WithField("mutation_rate")
	}

	rng := newRNG(cfg.Seed)
	mutation := newMutationEngineWithRNG(cfg.MutationRate, rng)
	crossover := newCrossoverEngineWithRNG(rng)

	return &EvolutionEngine{cfg: cfg, evaluator: evaluator, rng: rng, mutation: mutation, crossover: crossover}, nil
}

// Run executes the full generational search and returns the best genome
// found, alongside per-generation bests and the complete evaluation
// history.
func (e *EvolutionEngine) Run() Result {
	population := make([]genome.Genome, e.cfg.PopulationSize)
	for i := range population {
		population[i] = randomGenome(e.rng)
	}

	var history []Evaluation
	var generationBests []float64
	var bestGenome genome.Genome
	bestFitness := math.Inf(-1)

	for gen := 0; gen < e.cfg.Generations; gen++ {
		scored := e.evaluatePopulation(population)
		history = append(history, scored...)

		sort.SliceStable(scored, func(i, j int) bool { return scored[i].Fitness > scored[j].Fitness })
		generationBests = append(generationBests, scored[0].Fitness)
		if scored[0].Fitness > bestFitness {
			bestFitness = scored[0].Fitness
			bestGenome = scored[0].Genome
		}

		population = e.nextGeneration(scored)
	}

	// Final evaluation pass over the last generation produced.
	finalScored := e.evaluatePopulation(population)
	history = append(history, finalScored...)
	sort.SliceStable(finalScored, func(i, j int) bool { return finalScored[i].Fitness > finalScored[j].Fitness })
	if finalScored[0].Fitness > bestFitness {
		bestFitness = finalScored[0].Fitness
		bestGenome = finalScored[0].Genome
	}

	return Result{
		BestGenome:      bestGenome,
		BestFitness:     bestFitness,
		GenerationBests: generationBests,
		History:         history,
	}
}

func (e *EvolutionEngine) evaluatePopulation(population []genome.Genome) []Evaluation {
	scored := make([]Evaluation, len(population))
	for i, g := range population {
		scored[i] = Evaluation{Genome: g, Fitness: e.evaluator.Evaluate(g)}
	}
	return scored
}

func (e *EvolutionEngine) nextGeneration(scored []Evaluation) []genome.Genome {
	next := make([]genome.Genome, 0, e.cfg.PopulationSize)

	for i := 0; i < e.cfg.Elitism && i < len(scored); i++ {
		next = append(next, scored[i].Genome.Clone())
	}

	for len(next) < e.cfg.PopulationSize {
		winnerA := e.tournamentSelect(scored)
		var child genome.Genome
		if e.rng.Float64() < e.cfg.CrossoverRate {
			winnerB := e.tournamentSelect(scored)
			if winnerB.Family == winnerA.Family {
				c, err := e.crossover.Crossover(winnerA, winnerB)
				if err == nil {
					child = c
				} else {
					child = winnerA.Clone()
				}
			} else {
				child = winnerA.Clone()
			}
		} else {
			child = winnerA.Clone()
		}
		next = append(next, e.mutation.Mutate(child))
	}

	return next
}

// tournamentSelect samples TournamentSize scored entries (with
// replacement) and returns the highest-fitness genome among them.
func (e *EvolutionEngine) tournamentSelect(scored []Evaluation) genome.Genome {
	best := scored[e.rng.Intn(len(scored))]
	for i := 1; i < e.cfg.TournamentSize; i++ {
		candidate := scored[e.rng.Intn(len(scored))]
		if candidate.Fitness > best.Fitness {
			best = candidate
		}
	}
	return best.Genome
}

