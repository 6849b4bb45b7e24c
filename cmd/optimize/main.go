// Package main provides CMA-ES optimization for finding boid parameters
// that produce a cohesive, aligned flock.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/boids/config"
)

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// evalRecord is one row of optimize_log.csv.
type evalRecord struct {
	Eval             int     `csv:"eval"`
	Fitness          float64 `csv:"fitness"`
	Polarization     float64 `csv:"polarization"`
	Cohesion         float64 `csv:"cohesion"`
	Containment      float64 `csv:"containment"`
	Crowding         float64 `csv:"crowding"`
	CohesionWeight   float64 `csv:"cohesion_weight"`
	SeparationWeight float64 `csv:"separation_weight"`
	AlignmentWeight  float64 `csv:"alignment_weight"`
	CohesionRadius   float64 `csv:"cohesion_radius"`
	SeparationRadius float64 `csv:"separation_radius"`
	AlignmentRadius  float64 `csv:"alignment_radius"`
	MaxSpeed         float64 `csv:"max_speed"`
	MaxSteerForce    float64 `csv:"max_steer_force"`
	AvoidWallWeight  float64 `csv:"avoid_wall_weight"`
}

func newEvalRecord(eval int, fitness float64, s Score, cfg *config.Config) evalRecord {
	b := &cfg.Boid
	return evalRecord{
		Eval:             eval,
		Fitness:          fitness,
		Polarization:     s.Polarization,
		Cohesion:         s.Cohesion,
		Containment:      s.Containment,
		Crowding:         s.Crowding,
		CohesionWeight:   b.Cohesion.Weight,
		SeparationWeight: b.Separation.Weight,
		AlignmentWeight:  b.Alignment.Weight,
		CohesionRadius:   b.Cohesion.Radius,
		SeparationRadius: b.Separation.Radius,
		AlignmentRadius:  b.Alignment.Radius,
		MaxSpeed:         b.MaxSpeed,
		MaxSteerForce:    b.MaxSteerForce,
		AvoidWallWeight:  b.AvoidWallWeight,
	}
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxTicks := flag.Int("max-ticks", 3600, "Simulation duration in ticks per run")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	statsWindow := flag.Float64("stats-window", 5, "Stats window in simulation seconds")
	count := flag.Int("count", 0, "Agents per run (0 = use config)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()
	if *count > 0 {
		baseCfg.Simulation.Count = *count
	}

	params := NewParamVector()

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, int32(*maxTicks), evalSeeds, baseCfg, *statsWindow)

	dim := params.Dim()
	initX := params.Normalize(params.DefaultVector())

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // seeds already run in parallel
	}

	logPath := filepath.Join(*outputDir, "optimize_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			fitness := evaluator.Evaluate(raw)
			score := evaluator.LastScore()
			evalCount++

			// Log clamped values, these are the values actually used
			clamped := params.Clamp(raw)
			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = clamped
			}

			applied := *baseCfg
			if err := params.ApplyToConfig(&applied, clamped); err == nil {
				rec := []evalRecord{newEvalRecord(evalCount, fitness, score, &applied)}
				if evalCount == 1 {
					err = gocsv.Marshal(rec, logFile)
				} else {
					err = gocsv.MarshalWithoutHeaders(rec, logFile)
				}
				if err != nil {
					log.Printf("failed to write log row: %v", err)
				}
			}

			elapsed := time.Since(startTime)
			avgPerEval := elapsed / time.Duration(evalCount)
			remaining := time.Duration(*maxEvals-evalCount) * avgPerEval

			fmt.Printf("Eval %d/%d: quality=%.3f (pol=%.2f coh=%.2f in=%.2f crowd=%.2f) best=%.3f | elapsed: %s, ETA: %s\n",
				evalCount, *maxEvals, score.Quality, score.Polarization, score.Cohesion, score.Containment, score.Crowding,
				-bestFitness, formatDuration(elapsed), formatDuration(remaining))

			return fitness
		},
	}

	fmt.Printf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, ticks per run: %d, agents: %d\n", *seeds, *maxTicks, baseCfg.Simulation.Count)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	// Use best params found (may be from any evaluation, not just final)
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluation completed")
	}

	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best quality: %.4f\n", -bestFitness)

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Name, bestParams[i])
	}

	bestCfg := *baseCfg
	if err := params.ApplyToConfig(&bestCfg, bestParams); err != nil {
		log.Fatalf("best parameters do not validate: %v", err)
	}

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}
