package game

import (
	"errors"
	"fmt"
	"iter"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/boids/components"
	"github.com/pthm-cable/boids/config"
	"github.com/pthm-cable/boids/systems"
	"github.com/pthm-cable/boids/telemetry"
)

// ErrUnknownMode is returned for a simulation mode other than all_search or neighbor_search.
var ErrUnknownMode = errors.New("unknown simulation mode")

// Params holds everything one simulation step reads.
type Params struct {
	Mode      config.SimulationMode
	Steering  systems.SteeringParams
	Integrate systems.IntegrateParams
	Grid      systems.GridParams

	ParallelThreshold int
}

// ParamsFromConfig builds step parameters from a loaded configuration.
func ParamsFromConfig(cfg *config.Config) Params {
	d := &cfg.Derived
	return Params{
		Mode: cfg.Simulation.Mode,
		Steering: systems.SteeringParams{
			Cohesion:      systems.Behavior{Weight: cfg.Boid.Cohesion.Weight, RadiusSq: d.CohesionRadiusSq},
			Separation:    systems.Behavior{Weight: cfg.Boid.Separation.Weight, RadiusSq: d.SeparationRadiusSq},
			Alignment:     systems.Behavior{Weight: cfg.Boid.Alignment.Weight, RadiusSq: d.AlignmentRadiusSq},
			MaxSpeed:      cfg.Boid.MaxSpeed,
			MaxSteerForce: cfg.Boid.MaxSteerForce,
		},
		Integrate: systems.IntegrateParams{
			Center:          vec3(cfg.Area.Center),
			HalfExtents:     vec3(d.HalfExtents),
			AvoidWallWeight: cfg.Boid.AvoidWallWeight,
			MaxSpeed:        cfg.Boid.MaxSpeed,
			Scale:           cfg.Boid.InstanceScale,
		},
		Grid: systems.GridParams{
			Min:      vec3(d.GridMin),
			CellSize: d.GridCellSize,
			Counts:   d.GridCounts,
		},
		ParallelThreshold: cfg.Physics.ParallelThreshold,
	}
}

func vec3(a [3]float64) r3.Vec {
	return r3.Vec{X: a[0], Y: a[1], Z: a[2]}
}

// workerScratch holds per-worker counters, padded so workers do not share a line.
type workerScratch struct {
	candidates int
	_          [56]byte
}

// Simulator advances a flock by one step at a time.
// It is not safe for concurrent use; the parallelism is internal to Step.
type Simulator struct {
	params Params
	grid   *systems.SpatialGrid
	pool   *workerPool
	perf   *telemetry.PerfCollector

	snapshot   []components.Agent
	forces     []r3.Vec
	neighbors  []int
	transforms []components.Transform
	scratches  []workerScratch
}

// NewSimulator creates a simulator. perf may be nil.
func NewSimulator(p Params, perf *telemetry.PerfCollector) (*Simulator, error) {
	if !p.Mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, p.Mode)
	}
	pool := newWorkerPool(p.ParallelThreshold)
	return &Simulator{
		params:    p,
		grid:      systems.NewSpatialGrid(systems.DefaultShards),
		pool:      pool,
		perf:      perf,
		scratches: make([]workerScratch, pool.numWorkers),
	}, nil
}

// Params returns the current step parameters.
func (s *Simulator) Params() Params {
	return s.params
}

// SetParams replaces the step parameters, effective from the next Step.
func (s *Simulator) SetParams(p Params) error {
	if !p.Mode.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownMode, p.Mode)
	}
	s.params = p
	if p.ParallelThreshold > 0 {
		s.pool.threshold = p.ParallelThreshold
	}
	return nil
}

// Mode returns the active neighbor search mode.
func (s *Simulator) Mode() config.SimulationMode {
	return s.params.Mode
}

// SetMode switches between grid and all-pairs neighbor search.
func (s *Simulator) SetMode(m config.SimulationMode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownMode, m)
	}
	s.params.Mode = m
	return nil
}

// Neighbors returns each agent's neighbor count from the last step.
func (s *Simulator) Neighbors() []int {
	return s.neighbors
}

// Candidates returns how many candidate pairs the last step examined.
func (s *Simulator) Candidates() int {
	total := 0
	for i := range s.scratches {
		total += s.scratches[i].candidates
	}
	return total
}

// Close stops the worker goroutines.
func (s *Simulator) Close() {
	s.pool.stop()
}

// Step advances every agent by dt and returns one transform per agent.
// agents is updated in place. The returned slice is reused by the next Step.
func (s *Simulator) Step(agents []components.Agent, dt float64) []components.Transform {
	n := len(agents)
	s.resize(n)

	// Steering reads this copy only, never positions moved in this step.
	s.perf.StartPhase(telemetry.PhaseSnapshot)
	copy(s.snapshot, agents)
	for i := range s.scratches {
		s.scratches[i].candidates = 0
	}

	if s.params.Mode == config.ModeNeighborSearch {
		s.perf.StartPhase(telemetry.PhaseGridBuild)
		s.grid.Build(n)
		s.pool.run(n, s.insertChunk)
	}

	s.perf.StartPhase(telemetry.PhaseSteering)
	s.pool.run(n, s.steerChunk)

	s.perf.StartPhase(telemetry.PhaseIntegrate)
	s.pool.run(n, func(start, end, _ int) {
		for i := start; i < end; i++ {
			s.transforms[i] = systems.Integrate(&agents[i], s.forces[i], &s.params.Integrate, dt)
		}
	})

	return s.transforms
}

func (s *Simulator) resize(n int) {
	if cap(s.snapshot) < n {
		s.snapshot = make([]components.Agent, n)
		s.forces = make([]r3.Vec, n)
		s.neighbors = make([]int, n)
		s.transforms = make([]components.Transform, n)
	}
	s.snapshot = s.snapshot[:n]
	s.forces = s.forces[:n]
	s.neighbors = s.neighbors[:n]
	s.transforms = s.transforms[:n]
}

func (s *Simulator) insertChunk(start, end, _ int) {
	for i := start; i < end; i++ {
		s.grid.Insert(systems.GridIndex(s.snapshot[i].Position, s.params.Grid), i)
	}
}

func (s *Simulator) steerChunk(start, end, worker int) {
	scratch := &s.scratches[worker]
	allPairs := s.params.Mode == config.ModeAllSearch
	n := len(s.snapshot)

	for i := start; i < end; i++ {
		var candidates iter.Seq[int]
		if allPairs {
			candidates = systems.AllPairs(n)
			scratch.candidates += n
		} else {
			candidates = counted(systems.Candidates(s.snapshot[i].Position, s.grid, s.params.Grid), &scratch.candidates)
		}

		force, sums := systems.SteeringForce(i, s.snapshot, candidates, &s.params.Steering)
		s.forces[i] = force
		s.neighbors[i] = sums.Neighbors()
	}
}

// counted passes seq through, adding every yielded value to *n.
func counted(seq iter.Seq[int], n *int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for v := range seq {
			*n++
			if !yield(v) {
				return
			}
		}
	}
}
