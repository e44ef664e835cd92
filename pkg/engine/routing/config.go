package routing

import (
	"runtime"

	"github.com/lintang-b-s/swarmnav/pkg/util"
	"github.com/spf13/viper"
)

type GreedyMetric uint8

const (
	GOAL_DISTANCE GreedyMetric = iota // straight-line distance from the candidate's far endpoint to the destination
	EDGE_LENGTH
)

func GetGreedyMetric(name string) (GreedyMetric, bool) {
	switch name {
	case "goal_distance":
		return GOAL_DISTANCE, true
	case "edge_length":
		return EDGE_LENGTH, true
	default:
		return GOAL_DISTANCE, false
	}
}

type GreedyConfig struct {
	Metric   GreedyMetric
	MaxSteps int
}

type ACOConfig struct {
	Rounds           int
	Ants             int
	MaxMoves         int
	Evaporation      float64
	TraceDelta       float64
	Beta             float64
	InitialPheromone float64
	MinPheromone     float64
	Workers          int
	Seed             int64
}

type PSOConfig struct {
	Particles     int
	MaxIterations int
	VelocityMin   float64
	VelocityMax   float64
	C1            float64
	C2            float64
	Inertia       float64
	StopThreshold float64
	CheckPoints   int
	Seed          int64
}

type DiscretePSOConfig struct {
	Particles        int
	MaxIterations    int
	StagnationLimit  int
	C1               float64
	C2               float64
	Inertia          float64 // probability that a velocity operator survives an update
	MutationRate     float64
	MaxVelocityOps   int
	MaxPathLength    int
	GoalBias         float64
	UnreachedPenalty float64
	Seed             int64
}

type Config struct {
	Greedy      GreedyConfig
	ACO         ACOConfig
	PSO         PSOConfig
	DiscretePSO DiscretePSOConfig
}

func DefaultGreedyConfig() GreedyConfig {
	return GreedyConfig{
		Metric:   GOAL_DISTANCE,
		MaxSteps: 100000,
	}
}

func DefaultACOConfig() ACOConfig {
	return ACOConfig{
		Rounds:           15,
		Ants:             300,
		MaxMoves:         5500,
		Evaporation:      0.4,
		TraceDelta:       10,
		Beta:             1.37,
		InitialPheromone: 100,
		MinPheromone:     0.1,
		Workers:          runtime.NumCPU(),
	}
}

func DefaultPSOConfig() PSOConfig {
	return PSOConfig{
		Particles:     100,
		MaxIterations: 500,
		VelocityMin:   -15,
		VelocityMax:   15,
		C1:            0.9,
		C2:            1.25,
		Inertia:       0.99,
		StopThreshold: 1.15,
		CheckPoints:   15,
	}
}

func DefaultDiscretePSOConfig() DiscretePSOConfig {
	return DiscretePSOConfig{
		Particles:        30,
		MaxIterations:    200,
		StagnationLimit:  40,
		C1:               0.9,
		C2:               1.25,
		Inertia:          0.99,
		MutationRate:     0.1,
		MaxVelocityOps:   8,
		MaxPathLength:    5500,
		GoalBias:         0.7,
		UnreachedPenalty: 1e6,
	}
}

func DefaultConfig() Config {
	return Config{
		Greedy:      DefaultGreedyConfig(),
		ACO:         DefaultACOConfig(),
		PSO:         DefaultPSOConfig(),
		DiscretePSO: DefaultDiscretePSOConfig(),
	}
}

// Validate. rejects values a search cannot run with: a pheromone level or floor of zero would leave ants
// with an all zero distribution, inverted velocity bounds would make the clamp meaningless.
func (c Config) Validate() error {
	checks := []struct {
		ok     bool
		format string
		value  any
	}{
		{c.Greedy.MaxSteps > 0, "greedy.max_steps must be positive, got %v", c.Greedy.MaxSteps},

		{c.ACO.Rounds > 0, "aco.rounds must be positive, got %v", c.ACO.Rounds},
		{c.ACO.Ants > 0, "aco.ants must be positive, got %v", c.ACO.Ants},
		{c.ACO.MaxMoves > 0, "aco.max_moves must be positive, got %v", c.ACO.MaxMoves},
		{inUnitInterval(c.ACO.Evaporation), "aco.evaporation must be in [0,1], got %v", c.ACO.Evaporation},
		{c.ACO.TraceDelta > 0, "aco.trace_delta must be positive, got %v", c.ACO.TraceDelta},
		{c.ACO.Beta >= 0, "aco.beta must not be negative, got %v", c.ACO.Beta},
		{c.ACO.InitialPheromone > 0, "aco.initial_pheromone must be positive, got %v", c.ACO.InitialPheromone},
		{c.ACO.MinPheromone > 0, "aco.min_pheromone must be positive, got %v", c.ACO.MinPheromone},

		{c.PSO.Particles > 0, "pso.particles must be positive, got %v", c.PSO.Particles},
		{c.PSO.MaxIterations > 0, "pso.max_iterations must be positive, got %v", c.PSO.MaxIterations},
		{c.PSO.VelocityMin <= c.PSO.VelocityMax, "pso.velocity_min must not exceed pso.velocity_max (%v)",
			[2]float64{c.PSO.VelocityMin, c.PSO.VelocityMax}},
		{c.PSO.CheckPoints > 0, "pso.check_points must be positive, got %v", c.PSO.CheckPoints},
		{c.PSO.StopThreshold >= 0, "pso.stop_threshold must not be negative, got %v", c.PSO.StopThreshold},

		{c.DiscretePSO.Particles > 0, "dpso.particles must be positive, got %v", c.DiscretePSO.Particles},
		{c.DiscretePSO.MaxIterations > 0, "dpso.max_iterations must be positive, got %v",
			c.DiscretePSO.MaxIterations},
		{inUnitInterval(c.DiscretePSO.Inertia), "dpso.inertia must be in [0,1], got %v", c.DiscretePSO.Inertia},
		{inUnitInterval(c.DiscretePSO.MutationRate), "dpso.mutation_rate must be in [0,1], got %v",
			c.DiscretePSO.MutationRate},
		{inUnitInterval(c.DiscretePSO.GoalBias), "dpso.goal_bias must be in [0,1], got %v", c.DiscretePSO.GoalBias},
		{c.DiscretePSO.MaxVelocityOps >= 0, "dpso.max_velocity_ops must not be negative, got %v",
			c.DiscretePSO.MaxVelocityOps},
		{c.DiscretePSO.MaxPathLength > 0, "dpso.max_path_length must be positive, got %v",
			c.DiscretePSO.MaxPathLength},
	}
	for _, check := range checks {
		if !check.ok {
			return util.WrapErrorf(nil, util.ErrBadParamInput, check.format, check.value)
		}
	}
	return nil
}

func inUnitInterval(v float64) bool {
	return v >= 0 && v <= 1
}

// NewConfigFromViper. keys greedy.*, aco.*, pso.*, dpso.*; anything unset keeps its default.
func NewConfigFromViper() Config {
	d := DefaultConfig()

	viper.SetDefault("greedy.metric", "goal_distance")
	viper.SetDefault("greedy.max_steps", d.Greedy.MaxSteps)

	viper.SetDefault("aco.rounds", d.ACO.Rounds)
	viper.SetDefault("aco.ants", d.ACO.Ants)
	viper.SetDefault("aco.max_moves", d.ACO.MaxMoves)
	viper.SetDefault("aco.evaporation", d.ACO.Evaporation)
	viper.SetDefault("aco.trace_delta", d.ACO.TraceDelta)
	viper.SetDefault("aco.beta", d.ACO.Beta)
	viper.SetDefault("aco.initial_pheromone", d.ACO.InitialPheromone)
	viper.SetDefault("aco.min_pheromone", d.ACO.MinPheromone)
	viper.SetDefault("aco.workers", d.ACO.Workers)
	viper.SetDefault("aco.seed", 0)

	viper.SetDefault("pso.particles", d.PSO.Particles)
	viper.SetDefault("pso.max_iterations", d.PSO.MaxIterations)
	viper.SetDefault("pso.velocity_min", d.PSO.VelocityMin)
	viper.SetDefault("pso.velocity_max", d.PSO.VelocityMax)
	viper.SetDefault("pso.c1", d.PSO.C1)
	viper.SetDefault("pso.c2", d.PSO.C2)
	viper.SetDefault("pso.inertia", d.PSO.Inertia)
	viper.SetDefault("pso.stop_threshold", d.PSO.StopThreshold)
	viper.SetDefault("pso.check_points", d.PSO.CheckPoints)
	viper.SetDefault("pso.seed", 0)

	viper.SetDefault("dpso.particles", d.DiscretePSO.Particles)
	viper.SetDefault("dpso.max_iterations", d.DiscretePSO.MaxIterations)
	viper.SetDefault("dpso.stagnation_limit", d.DiscretePSO.StagnationLimit)
	viper.SetDefault("dpso.c1", d.DiscretePSO.C1)
	viper.SetDefault("dpso.c2", d.DiscretePSO.C2)
	viper.SetDefault("dpso.inertia", d.DiscretePSO.Inertia)
	viper.SetDefault("dpso.mutation_rate", d.DiscretePSO.MutationRate)
	viper.SetDefault("dpso.max_velocity_ops", d.DiscretePSO.MaxVelocityOps)
	viper.SetDefault("dpso.max_path_length", d.DiscretePSO.MaxPathLength)
	viper.SetDefault("dpso.goal_bias", d.DiscretePSO.GoalBias)
	viper.SetDefault("dpso.unreached_penalty", d.DiscretePSO.UnreachedPenalty)
	viper.SetDefault("dpso.seed", 0)

	metric, ok := GetGreedyMetric(viper.GetString("greedy.metric"))
	if !ok {
		metric = GOAL_DISTANCE
	}

	return Config{
		Greedy: GreedyConfig{
			Metric:   metric,
			MaxSteps: viper.GetInt("greedy.max_steps"),
		},
		ACO: ACOConfig{
			Rounds:           viper.GetInt("aco.rounds"),
			Ants:             viper.GetInt("aco.ants"),
			MaxMoves:         viper.GetInt("aco.max_moves"),
			Evaporation:      viper.GetFloat64("aco.evaporation"),
			TraceDelta:       viper.GetFloat64("aco.trace_delta"),
			Beta:             viper.GetFloat64("aco.beta"),
			InitialPheromone: viper.GetFloat64("aco.initial_pheromone"),
			MinPheromone:     viper.GetFloat64("aco.min_pheromone"),
			Workers:          viper.GetInt("aco.workers"),
			Seed:             viper.GetInt64("aco.seed"),
		},
		PSO: PSOConfig{
			Particles:     viper.GetInt("pso.particles"),
			MaxIterations: viper.GetInt("pso.max_iterations"),
			VelocityMin:   viper.GetFloat64("pso.velocity_min"),
			VelocityMax:   viper.GetFloat64("pso.velocity_max"),
			C1:            viper.GetFloat64("pso.c1"),
			C2:            viper.GetFloat64("pso.c2"),
			Inertia:       viper.GetFloat64("pso.inertia"),
			StopThreshold: viper.GetFloat64("pso.stop_threshold"),
			CheckPoints:   viper.GetInt("pso.check_points"),
			Seed:          viper.GetInt64("pso.seed"),
		},
		DiscretePSO: DiscretePSOConfig{
			Particles:        viper.GetInt("dpso.particles"),
			MaxIterations:    viper.GetInt("dpso.max_iterations"),
			StagnationLimit:  viper.GetInt("dpso.stagnation_limit"),
			C1:               viper.GetFloat64("dpso.c1"),
			C2:               viper.GetFloat64("dpso.c2"),
			Inertia:          viper.GetFloat64("dpso.inertia"),
			MutationRate:     viper.GetFloat64("dpso.mutation_rate"),
			MaxVelocityOps:   viper.GetInt("dpso.max_velocity_ops"),
			MaxPathLength:    viper.GetInt("dpso.max_path_length"),
			GoalBias:         viper.GetFloat64("dpso.goal_bias"),
			UnreachedPenalty: viper.GetFloat64("dpso.unreached_penalty"),
			Seed:             viper.GetInt64("dpso.seed"),
		},
	}
}
