package main

import (
	"github.com/pthm-cable/boids/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	Field func(cfg *config.Config) *float64
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
// Radii stay within 4 so the derived grid cell never exceeds the volume.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Weights
			{Name: "cohesion_weight", Min: 0, Max: 4, Default: 1, Field: func(c *config.Config) *float64 { return &c.Boid.Cohesion.Weight }},
			{Name: "separation_weight", Min: 0, Max: 4, Default: 1, Field: func(c *config.Config) *float64 { return &c.Boid.Separation.Weight }},
			{Name: "alignment_weight", Min: 0, Max: 4, Default: 1, Field: func(c *config.Config) *float64 { return &c.Boid.Alignment.Weight }},
			// Radii
			{Name: "cohesion_radius", Min: 0.5, Max: 4, Default: 2, Field: func(c *config.Config) *float64 { return &c.Boid.Cohesion.Radius }},
			{Name: "separation_radius", Min: 0.2, Max: 2, Default: 1, Field: func(c *config.Config) *float64 { return &c.Boid.Separation.Radius }},
			{Name: "alignment_radius", Min: 0.5, Max: 4, Default: 2, Field: func(c *config.Config) *float64 { return &c.Boid.Alignment.Radius }},
			// Limits
			{Name: "max_speed", Min: 1, Max: 10, Default: 5, Field: func(c *config.Config) *float64 { return &c.Boid.MaxSpeed }},
			{Name: "max_steer_force", Min: 0.05, Max: 3, Default: 0.5, Field: func(c *config.Config) *float64 { return &c.Boid.MaxSteerForce }},
			{Name: "avoid_wall_weight", Min: 1, Max: 30, Default: 10, Field: func(c *config.Config) *float64 { return &c.Boid.AvoidWallWeight }},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg and re-derives it.
// The grid is reset to derive from the new radii.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	for i, v := range pv.Clamp(values) {
		*pv.Specs[i].Field(cfg) = v
	}

	cfg.Grid.CellSize = 0
	cfg.Grid.Min = nil
	cfg.Grid.Counts = nil

	return cfg.Finalize()
}

// Values reads the current parameter values out of cfg.
func (pv *ParamVector) Values(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = *spec.Field(cfg)
	}
	return v
}
