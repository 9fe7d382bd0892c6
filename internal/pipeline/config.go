// Package pipeline wires together the genetic optimizer, ranking engine,
// capital allocator and portfolio lifecycle manager into the single
// research-pipeline entry point.
package pipeline

import (
	"strings"

	"github.com/spf13/viper"
)

// Config bundles every tunable the research pipeline and the engines it
// drives accept.
type Config struct {
	PopulationSize    int     `mapstructure:"population_size"`
	Generations       int     `mapstructure:"generations"`
	MutationRate      float64 `mapstructure:"mutation_rate"`
	CrossoverRate     float64 `mapstructure:"crossover_rate"`
	Elitism           int     `mapstructure:"elitism"`
	TournamentSize    int     `mapstructure:"tournament_size"`
	RebalanceInterval int     `mapstructure:"rebalance_interval"`
	AllocatorMode     string  `mapstructure:"allocator_mode"`
	DecayThreshold    float64 `mapstructure:"decay_threshold"`
	MonteCarloSims    int     `mapstructure:"monte_carlo_simulations"`
	InitialCapital    float64 `mapstructure:"initial_capital"`
	Seed              int64   `mapstructure:"seed"`
	SlippagePct       float64 `mapstructure:"slippage_pct"`
}

// DefaultConfig returns the stock pipeline tuning.
func DefaultConfig() Config {
	return Config{
		PopulationSize:    50,
		Generations:       20,
		MutationRate:      0.15,
		CrossoverRate:     0.7,
		Elitism:           2,
		TournamentSize:    3,
		RebalanceInterval: 20,
		AllocatorMode:     "sharpe",
		DecayThreshold:    0,
		MonteCarloSims:    200,
		InitialCapital:    10000,
		Seed:              0,
		SlippagePct:       0,
	}
}

// LoadConfig reads a Config from an optional YAML file at path (skipped
// entirely when path is empty), then layers STRATCORE_-prefixed
// environment variables on top via viper.AutomaticEnv.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix("stratcore")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("population_size", cfg.PopulationSize)
	v.SetDefault("generations", cfg.Generations)
	v.SetDefault("mutation_rate", cfg.MutationRate)
	v.SetDefault("crossover_rate", cfg.CrossoverRate)
	v.SetDefault("elitism", cfg.Elitism)
	v.SetDefault("tournament_size", cfg.TournamentSize)
	v.SetDefault("rebalance_interval", cfg.RebalanceInterval)
	v.SetDefault("allocator_mode", cfg.AllocatorMode)
	v.SetDefault("decay_threshold", cfg.DecayThreshold)
	v.SetDefault("monte_carlo_simulations", cfg.MonteCarloSims)
	v.SetDefault("initial_capital", cfg.InitialCapital)
	v.SetDefault("seed", cfg.Seed)
	v.SetDefault("slippage_pct", cfg.SlippagePct)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
