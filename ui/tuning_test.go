package ui

import (
	"testing"

	"github.com/pthm-cable/boids/config"
)

func TestDefaultSlidersCoverDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}

	seen := make(map[*float64]string)
	for _, s := range DefaultSliders() {
		t.Run(s.Label, func(t *testing.T) {
			if s.Min >= s.Max {
				t.Fatalf("range [%v, %v] is empty", s.Min, s.Max)
			}
			field := s.Field(&cfg.Boid)
			if v := float32(*field); v < s.Min || v > s.Max {
				t.Errorf("default %v outside [%v, %v]", v, s.Min, s.Max)
			}
			if prev, ok := seen[field]; ok {
				t.Errorf("shares a field with %q", prev)
			}
			seen[field] = s.Label
		})
	}
}

func TestSliderWritesThroughField(t *testing.T) {
	var b config.BoidConfig
	for _, s := range DefaultSliders() {
		*s.Field(&b) = 1.5
	}
	if b.Cohesion.Weight != 1.5 || b.Separation.Weight != 1.5 || b.Alignment.Weight != 1.5 {
		t.Errorf("weights = %v %v %v, want 1.5", b.Cohesion.Weight, b.Separation.Weight, b.Alignment.Weight)
	}
	if b.MaxSpeed != 1.5 || b.MaxSteerForce != 1.5 || b.AvoidWallWeight != 1.5 {
		t.Errorf("limits = %v %v %v, want 1.5", b.MaxSpeed, b.MaxSteerForce, b.AvoidWallWeight)
	}
}

func TestShortMode(t *testing.T) {
	tests := []struct {
		mode config.SimulationMode
		want string
	}{
		{config.ModeAllSearch, "all"},
		{config.ModeNeighborSearch, "grid"},
		{"octree", "octree"},
	}
	for _, tt := range tests {
		if got := shortMode(tt.mode); got != tt.want {
			t.Errorf("shortMode(%q) = %q, want %q", tt.mode, got, tt.want)
		}
	}
}
