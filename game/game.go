// Package game runs the flock: it owns the ECS world, drives the simulator
// once per tick and wires telemetry, input and rendering around it.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/boids/camera"
	"github.com/pthm-cable/boids/components"
	"github.com/pthm-cable/boids/config"
	"github.com/pthm-cable/boids/renderer"
	"github.com/pthm-cable/boids/telemetry"
	"github.com/pthm-cable/boids/ui"
)

// bookmarkHistory is the number of windows the bookmark detector remembers.
const bookmarkHistory = 10

// maxStepsPerUpdate bounds the speed multiplier in graphics mode.
const maxStepsPerUpdate = 10

// Options configures game initialization.
type Options struct {
	Seed           int64
	Headless       bool
	LogStats       bool
	StatsWindowSec float64 // 0 = telemetry.stats_window
	OutputDir      string  // empty = no CSV output
	StepsPerUpdate int

	// Config is copied; nil uses the global config.
	Config *config.Config
	// Mode overrides simulation.mode when set.
	Mode config.SimulationMode

	// StatsCallback, when set, receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete simulation state.
type Game struct {
	world *ecs.World
	rng   *rand.Rand
	seed  int64
	cfg   *config.Config

	boidMapper *ecs.Map3[components.Position, components.Velocity, components.Transform]
	boidFilter *ecs.Filter3[components.Position, components.Velocity, components.Transform]
	entities   []ecs.Entity

	sim    *Simulator
	agents []components.Agent // step buffer, in entity order

	// State
	tick           int32
	paused         bool
	stepsPerUpdate int
	headless       bool

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	outputManager    *telemetry.OutputManager
	bookmarkDetector *telemetry.BookmarkDetector
	logStats         bool
	statsCallback    func(telemetry.WindowStats)
	lastStats        telemetry.WindowStats

	// Graphics mode only
	camera       *camera.Orbit
	boidRenderer *renderer.BoidRenderer
	backdrop     *renderer.Backdrop
	hud          *ui.HUD
	perfPanel    *ui.PerfPanel
	tuning       *ui.TuningPanel
	showPerf     bool
	transforms   []components.Transform // draw buffer

	screenWidth, screenHeight float32
}

// NewGameWithOptions creates a game and spawns the initial flock.
func NewGameWithOptions(opts Options) (*Game, error) {
	src := opts.Config
	if src == nil {
		src = config.Cfg()
	}
	// The game tunes its own copy at runtime.
	cfg := *src
	if opts.Mode != "" {
		cfg.Simulation.Mode = opts.Mode
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	sim, err := NewSimulator(ParamsFromConfig(&cfg), perf)
	if err != nil {
		return nil, err
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		sim.Close()
		return nil, err
	}
	if err := output.WriteConfig(&cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	world := ecs.NewWorld()
	g := &Game{
		world:          world,
		rng:            rand.New(rand.NewSource(opts.Seed)),
		seed:           opts.Seed,
		cfg:            &cfg,
		boidMapper:     ecs.NewMap3[components.Position, components.Velocity, components.Transform](world),
		boidFilter:     ecs.NewFilter3[components.Position, components.Velocity, components.Transform](world),
		sim:            sim,
		stepsPerUpdate: steps,
		headless:       opts.Headless,

		collector:        telemetry.NewCollector(statsWindow, cfg.Derived.DT32),
		perfCollector:    perf,
		outputManager:    output,
		bookmarkDetector: telemetry.NewBookmarkDetector(bookmarkHistory),
		logStats:         opts.LogStats,
		statsCallback:    opts.StatsCallback,

		screenWidth:  float32(cfg.Screen.Width),
		screenHeight: float32(cfg.Screen.Height),
	}

	if !opts.Headless {
		g.initGraphics()
	}

	g.spawnInitialFlock()

	slog.Info("flock spawned",
		"agents", len(g.entities),
		"mode", cfg.Simulation.Mode,
		"seed", opts.Seed,
		"grid", cfg.Derived.GridCounts,
		"cell_size", cfg.Derived.GridCellSize,
	)

	return g, nil
}

func (g *Game) initGraphics() {
	cfg := g.cfg
	p := g.sim.Params()

	g.camera = camera.New(p.Integrate.Center, cfg.Camera.Distance)
	g.boidRenderer = renderer.NewBoidRenderer()
	g.backdrop = renderer.NewBackdrop(int32(g.screenWidth), int32(g.screenHeight))
	g.hud = ui.NewHUD()
	g.perfPanel = ui.NewPerfPanel(10, 130)
	g.tuning = ui.NewTuningPanel(int32(g.screenWidth)-tuningPanelWidth-10, 10, tuningPanelWidth)
}

// config returns the game's configuration.
func (g *Game) config() *config.Config {
	return g.cfg
}

// Config returns a copy of the effective configuration, including live tuning.
func (g *Game) Config() config.Config {
	return *g.cfg
}

// UpdateHeadless runs stepsPerUpdate simulation steps without input or drawing.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// Update processes input and, unless paused, advances the simulation.
func (g *Game) Update() {
	g.handleInput()

	if g.paused {
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// simulationStep advances the flock by one tick.
func (g *Game) simulationStep() {
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseSnapshot)
	g.gatherAgents()

	transforms := g.sim.Step(g.agents, g.cfg.Physics.DT)

	g.perfCollector.StartPhase(telemetry.PhaseWriteback)
	g.writeBack(transforms)

	g.tick++

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.collector.RecordStep(len(g.agents), g.sim.Candidates())
	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// gatherAgents copies entity state into the step buffer.
func (g *Game) gatherAgents() {
	if cap(g.agents) < len(g.entities) {
		g.agents = make([]components.Agent, len(g.entities))
	}
	g.agents = g.agents[:len(g.entities)]

	for i, e := range g.entities {
		pos, vel, _ := g.boidMapper.Get(e)
		g.agents[i] = components.Agent{Position: pos.Vec, Velocity: vel.Vec}
	}
}

// writeBack stores stepped agents and their transforms on the entities.
func (g *Game) writeBack(transforms []components.Transform) {
	for i, e := range g.entities {
		pos, vel, tr := g.boidMapper.Get(e)
		pos.Vec = g.agents[i].Position
		vel.Vec = g.agents[i].Velocity
		*tr = transforms[i]
	}
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.tick
}

// Count returns the number of agents.
func (g *Game) Count() int {
	return len(g.entities)
}

// Agents returns a copy of every agent's state in spawn order.
func (g *Game) Agents() []components.Agent {
	out := make([]components.Agent, 0, len(g.entities))
	for _, e := range g.entities {
		pos, vel, _ := g.boidMapper.Get(e)
		out = append(out, components.Agent{Position: pos.Vec, Velocity: vel.Vec})
	}
	return out
}

// Transforms returns every agent's render transform from the ECS.
// The slice is reused by the next call.
func (g *Game) Transforms() []components.Transform {
	g.transforms = g.transforms[:0]
	query := g.boidFilter.Query()
	for query.Next() {
		_, _, tr := query.Get()
		g.transforms = append(g.transforms, *tr)
	}
	return g.transforms
}

// Mode returns the active neighbor search mode.
func (g *Game) Mode() config.SimulationMode {
	return g.sim.Mode()
}

// SetMode switches the neighbor search mode from the next step on.
func (g *Game) SetMode(m config.SimulationMode) error {
	if m == g.sim.Mode() {
		return nil
	}
	if err := g.sim.SetMode(m); err != nil {
		return err
	}
	g.cfg.Simulation.Mode = m
	g.collector.RecordModeSwitch()
	slog.Info("mode switched", "mode", m, "tick", g.tick)
	return nil
}

// toggleMode flips between all_search and neighbor_search.
func (g *Game) toggleMode() {
	next := config.ModeNeighborSearch
	if g.sim.Mode() == config.ModeNeighborSearch {
		next = config.ModeAllSearch
	}
	if err := g.SetMode(next); err != nil {
		slog.Error("failed to switch mode", "error", err)
	}
}

// applyTuning pushes edited boid parameters into the simulator.
func (g *Game) applyTuning() error {
	if err := g.cfg.Finalize(); err != nil {
		return fmt.Errorf("applying tuning: %w", err)
	}
	return g.sim.SetParams(ParamsFromConfig(g.cfg))
}

// Unload releases worker goroutines, output files and GPU resources.
func (g *Game) Unload() {
	g.sim.Close()
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
	if g.boidRenderer != nil {
		g.boidRenderer.Unload()
	}
	if g.backdrop != nil {
		g.backdrop.Unload()
	}
}
