// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure returned from Load.
var ErrInvalid = errors.New("invalid config")

// SimulationMode selects the neighbor search strategy.
type SimulationMode string

const (
	// ModeAllSearch scans every other agent (O(n²) baseline).
	ModeAllSearch SimulationMode = "all_search"
	// ModeNeighborSearch queries the 3x3x3 grid neighborhood.
	ModeNeighborSearch SimulationMode = "neighbor_search"
)

// Valid reports whether m is one of the known modes.
func (m SimulationMode) Valid() bool {
	return m == ModeAllSearch || m == ModeNeighborSearch
}

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Simulation SimulationConfig `yaml:"simulation"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Boid       BoidConfig       `yaml:"boid"`
	Area       AreaConfig       `yaml:"area"`
	Grid       GridConfig       `yaml:"grid"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Camera     CameraConfig     `yaml:"camera"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SimulationConfig selects the solver and the flock size.
type SimulationConfig struct {
	Mode         SimulationMode `yaml:"mode"`
	Count        int            `yaml:"count"`
	InitialSpeed float64        `yaml:"initial_speed"`
}

// PhysicsConfig holds time stepping parameters.
type PhysicsConfig struct {
	DT                float64 `yaml:"dt"`
	ParallelThreshold int     `yaml:"parallel_threshold"` // below this agent count phases run inline
}

// BehaviorConfig is one steering rule: its weight and effect radius.
type BehaviorConfig struct {
	Weight float64 `yaml:"weight"`
	Radius float64 `yaml:"radius"`
}

// BoidConfig holds the per-agent behavior parameters.
type BoidConfig struct {
	Cohesion        BehaviorConfig `yaml:"cohesion"`
	Separation      BehaviorConfig `yaml:"separation"`
	Alignment       BehaviorConfig `yaml:"alignment"`
	MaxSpeed        float64        `yaml:"max_speed"`
	MaxSteerForce   float64        `yaml:"max_steer_force"`
	AvoidWallWeight float64        `yaml:"avoid_wall_weight"`
	InstanceScale   float64        `yaml:"instance_scale"`
}

// AreaConfig describes the simulation volume.
// Size is the full edge length per axis; agents are steered back inside center ± size/2.
type AreaConfig struct {
	Center [3]float64 `yaml:"center"`
	Size   [3]float64 `yaml:"size"`
}

// GridConfig holds spatial grid parameters. Zero values are derived from the area.
type GridConfig struct {
	CellSize float64   `yaml:"cell_size"` // 0 = largest effect radius
	Min      []float64 `yaml:"min"`       // empty = area center - size/2
	Counts   []int     `yaml:"counts"`    // empty = ceil(size / cell_size) per axis
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// CameraConfig holds the orbit camera defaults for graphics mode.
type CameraConfig struct {
	Distance   float64 `yaml:"distance"`
	Fovy       float64 `yaml:"fovy"`
	OrbitSpeed float64 `yaml:"orbit_speed"` // radians per second
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32 float32 // Physics.DT as float32

	CohesionRadiusSq   float64
	SeparationRadiusSq float64
	AlignmentRadiusSq  float64

	HalfExtents [3]float64 // Area.Size / 2

	GridCellSize float64
	GridMin      [3]float64
	GridCounts   [3]int
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize recomputes derived values and validates the result.
// Call it after mutating a loaded Config in code.
func (c *Config) Finalize() error {
	c.computeDerived()
	return c.Validate()
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)

	c.Derived.CohesionRadiusSq = c.Boid.Cohesion.Radius * c.Boid.Cohesion.Radius
	c.Derived.SeparationRadiusSq = c.Boid.Separation.Radius * c.Boid.Separation.Radius
	c.Derived.AlignmentRadiusSq = c.Boid.Alignment.Radius * c.Boid.Alignment.Radius

	for a := 0; a < 3; a++ {
		c.Derived.HalfExtents[a] = c.Area.Size[a] / 2
	}

	cell := c.Grid.CellSize
	if cell == 0 {
		cell = max(c.Boid.Cohesion.Radius, c.Boid.Separation.Radius, c.Boid.Alignment.Radius)
	}
	c.Derived.GridCellSize = cell

	for a := 0; a < 3; a++ {
		if len(c.Grid.Min) == 3 {
			c.Derived.GridMin[a] = c.Grid.Min[a]
		} else {
			c.Derived.GridMin[a] = c.Area.Center[a] - c.Derived.HalfExtents[a]
		}

		if len(c.Grid.Counts) == 3 {
			c.Derived.GridCounts[a] = c.Grid.Counts[a]
		} else if cell > 0 {
			c.Derived.GridCounts[a] = max(1, int(math.Ceil(c.Area.Size[a]/cell)))
		} else {
			c.Derived.GridCounts[a] = 1
		}
	}
}

// Validate checks the invariants the simulation core relies on.
func (c *Config) Validate() error {
	if !c.Simulation.Mode.Valid() {
		return fmt.Errorf("%w: simulation.mode %q (want %s or %s)", ErrInvalid, c.Simulation.Mode, ModeAllSearch, ModeNeighborSearch)
	}
	if c.Simulation.Count < 0 {
		return fmt.Errorf("%w: simulation.count %d is negative", ErrInvalid, c.Simulation.Count)
	}
	if c.Physics.DT <= 0 {
		return fmt.Errorf("%w: physics.dt must be positive, got %v", ErrInvalid, c.Physics.DT)
	}
	if c.Boid.MaxSpeed <= 0 {
		return fmt.Errorf("%w: boid.max_speed must be positive, got %v", ErrInvalid, c.Boid.MaxSpeed)
	}
	if c.Boid.MaxSteerForce < 0 {
		return fmt.Errorf("%w: boid.max_steer_force is negative", ErrInvalid)
	}
	if c.Boid.AvoidWallWeight < 0 {
		return fmt.Errorf("%w: boid.avoid_wall_weight is negative", ErrInvalid)
	}

	behaviors := []struct {
		name string
		b    BehaviorConfig
	}{
		{"cohesion", c.Boid.Cohesion},
		{"separation", c.Boid.Separation},
		{"alignment", c.Boid.Alignment},
	}
	for _, bh := range behaviors {
		if bh.b.Weight < 0 {
			return fmt.Errorf("%w: boid.%s.weight is negative", ErrInvalid, bh.name)
		}
		if bh.b.Radius < 0 {
			return fmt.Errorf("%w: boid.%s.radius is negative", ErrInvalid, bh.name)
		}
		// The 3x3x3 window only sees one cell in each direction.
		if bh.b.Radius > c.Derived.GridCellSize {
			return fmt.Errorf("%w: boid.%s.radius %v exceeds grid cell size %v", ErrInvalid, bh.name, bh.b.Radius, c.Derived.GridCellSize)
		}
	}

	for a, s := range c.Area.Size {
		if s < 0 {
			return fmt.Errorf("%w: area.size[%d] is negative", ErrInvalid, a)
		}
	}
	if c.Derived.GridCellSize <= 0 {
		return fmt.Errorf("%w: grid cell size must be positive", ErrInvalid)
	}
	if len(c.Grid.Min) != 0 && len(c.Grid.Min) != 3 {
		return fmt.Errorf("%w: grid.min needs 3 values, got %d", ErrInvalid, len(c.Grid.Min))
	}
	if len(c.Grid.Counts) != 0 && len(c.Grid.Counts) != 3 {
		return fmt.Errorf("%w: grid.counts needs 3 values, got %d", ErrInvalid, len(c.Grid.Counts))
	}
	for a, n := range c.Derived.GridCounts {
		if n < 1 {
			return fmt.Errorf("%w: grid count on axis %d must be at least 1", ErrInvalid, a)
		}
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
