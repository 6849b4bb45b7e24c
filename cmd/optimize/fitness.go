package main

import (
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/pthm-cable/boids/config"
	"github.com/pthm-cable/boids/game"
	"github.com/pthm-cable/boids/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	mu        sync.Mutex
	lastScore Score // from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, statsWindow float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: statsWindow,
	}
}

// LastScore returns the score breakdown from the most recent evaluation.
func (fe *FitnessEvaluator) LastScore() Score {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastScore
}

// Score is the quality breakdown of one or more runs, each term in [0, 1].
type Score struct {
	Quality      float64
	Polarization float64
	Cohesion     float64
	Containment  float64
	Crowding     float64
}

// Quality component weights.
const (
	qualityWeightPolarization = 0.40
	qualityWeightCohesion     = 0.30
	qualityWeightContainment  = 0.20
	qualityWeightCrowding     = 0.10

	qualityWarmupWindows = 2 // skip first N windows while the flock forms

	// Spread target as a fraction of the mean half extent
	targetSpreadFrac = 0.35
	spreadTolerance  = 0.15

	targetNeighbors = 6.0
)

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the negated mean quality over all seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		// Unreachable for clamped values, but never reward a broken config
		return 0
	}

	// Run all seeds in parallel
	scores := make([]Score, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			windows, err := fe.runSimulation(cfg, s)
			if err != nil {
				log.Printf("run failed: %v", err)
				return
			}
			scores[idx] = computeScore(windows, cfg)
		}(i, seed)
	}
	wg.Wait()

	var mean Score
	for _, s := range scores {
		mean.Quality += s.Quality
		mean.Polarization += s.Polarization
		mean.Cohesion += s.Cohesion
		mean.Containment += s.Containment
		mean.Crowding += s.Crowding
	}
	n := float64(len(scores))
	mean.Quality /= n
	mean.Polarization /= n
	mean.Cohesion /= n
	mean.Containment /= n
	mean.Crowding /= n

	fe.mu.Lock()
	fe.lastScore = mean
	fe.mu.Unlock()

	return -mean.Quality
}

// runSimulation executes a single headless run and returns its stats windows.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) ([]telemetry.WindowStats, error) {
	var windows []telemetry.WindowStats

	g, err := game.NewGameWithOptions(game.Options{
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		Config:         cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			windows = append(windows, stats)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("seed %d: %w", seed, err)
	}
	defer g.Unload()

	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()
	}
	return windows, nil
}

// copyConfig returns a copy of the base config the evaluation may mutate.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// computeScore rates a run's windows after warmup.
func computeScore(windows []telemetry.WindowStats, cfg *config.Config) Score {
	if len(windows) <= qualityWarmupWindows {
		return Score{}
	}
	valid := windows[qualityWarmupWindows:]

	h := cfg.Derived.HalfExtents
	meanHalf := (h[0] + h[1] + h[2]) / 3

	var s Score
	var counted int
	for _, w := range valid {
		if w.Agents == 0 {
			continue
		}
		counted++

		s.Polarization += clamp01(w.Polarization)

		if meanHalf > 0 {
			z := (w.Spread/meanHalf - targetSpreadFrac) / spreadTolerance
			s.Cohesion += math.Exp(-z * z)
		}

		s.Containment += 1 - float64(w.Outside)/float64(w.Agents)

		if w.MeanNeighbors > 0 {
			l := math.Log(w.MeanNeighbors / targetNeighbors)
			s.Crowding += math.Exp(-l * l)
		}
	}
	if counted == 0 {
		return Score{}
	}

	n := float64(counted)
	s.Polarization /= n
	s.Cohesion /= n
	s.Containment /= n
	s.Crowding /= n

	s.Quality = clamp01(qualityWeightPolarization*s.Polarization +
		qualityWeightCohesion*s.Cohesion +
		qualityWeightContainment*s.Containment +
		qualityWeightCrowding*s.Crowding)
	return s
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
