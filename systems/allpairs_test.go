package systems

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/boids/components"
)

// randomFlock places n agents strictly inside [0, extent)³.
func randomFlock(rng *rand.Rand, n int, extent float64) []components.Agent {
	agents := make([]components.Agent, n)
	for i := range agents {
		agents[i] = components.Agent{
			Position: r3.Vec{X: rng.Float64() * extent, Y: rng.Float64() * extent, Z: rng.Float64() * extent},
			Velocity: r3.Vec{X: rng.Float64() - 0.5, Y: rng.Float64() - 0.5, Z: rng.Float64() - 0.5},
		}
	}
	return agents
}

func buildGrid(agents []components.Agent, g GridParams) *SpatialGrid {
	grid := NewSpatialGrid(DefaultShards)
	grid.Build(len(agents))
	for i := range agents {
		grid.Insert(GridIndex(agents[i].Position, g), i)
	}
	return grid
}

func TestAllPairs(t *testing.T) {
	got := collect(AllPairs(4))
	if len(got) != 4 || got[0] != 0 || got[3] != 3 {
		t.Errorf("AllPairs(4) = %v, want [0 1 2 3]", got)
	}
	if got := collect(AllPairs(0)); len(got) != 0 {
		t.Errorf("AllPairs(0) = %v, want empty", got)
	}
}

func TestGridMatchesAllPairs(t *testing.T) {
	g := GridParams{CellSize: 2, Counts: [3]int{8, 8, 8}}
	p := &SteeringParams{
		Cohesion:      Behavior{Weight: 1, RadiusSq: 1.9 * 1.9},
		Separation:    Behavior{Weight: 1.5, RadiusSq: 0.8 * 0.8},
		Alignment:     Behavior{Weight: 0.7, RadiusSq: 1.5 * 1.5},
		MaxSpeed:      5,
		MaxSteerForce: 0.5,
	}

	rng := rand.New(rand.NewSource(42))
	agents := randomFlock(rng, 400, 16)
	grid := buildGrid(agents, g)

	const tol = 1e-9
	for i := range agents {
		brute := AccumulateNeighbors(i, agents, AllPairs(len(agents)), p)
		near := AccumulateNeighbors(i, agents, Candidates(agents[i].Position, grid, g), p)

		if brute.CohesionCount != near.CohesionCount ||
			brute.SeparationCount != near.SeparationCount ||
			brute.AlignmentCount != near.AlignmentCount {
			t.Fatalf("agent %d: counts differ, all-pairs %+v grid %+v", i, brute, near)
		}
		// Sums may be accumulated in a different order
		if !vecNear(brute.CohesionPos, near.CohesionPos, tol) ||
			!vecNear(brute.SeparationRepulse, near.SeparationRepulse, tol) ||
			!vecNear(brute.AlignmentVel, near.AlignmentVel, tol) {
			t.Fatalf("agent %d: sums differ, all-pairs %+v grid %+v", i, brute, near)
		}

		fb := p.Steer(agents[i], brute)
		fn := p.Steer(agents[i], near)
		if !vecNear(fb, fn, tol) {
			t.Fatalf("agent %d: force %v vs %v", i, fb, fn)
		}
	}
}

func BenchmarkSteeringAllPairs(b *testing.B) {
	p := &SteeringParams{
		Cohesion:      Behavior{Weight: 1, RadiusSq: 4},
		Separation:    Behavior{Weight: 1, RadiusSq: 1},
		Alignment:     Behavior{Weight: 1, RadiusSq: 4},
		MaxSpeed:      5,
		MaxSteerForce: 0.5,
	}
	agents := randomFlock(rand.New(rand.NewSource(1)), 1024, 32)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		for i := range agents {
			SteeringForce(i, agents, AllPairs(len(agents)), p)
		}
	}
}

func BenchmarkSteeringGrid(b *testing.B) {
	g := GridParams{CellSize: 2, Counts: [3]int{16, 16, 16}}
	p := &SteeringParams{
		Cohesion:      Behavior{Weight: 1, RadiusSq: 4},
		Separation:    Behavior{Weight: 1, RadiusSq: 1},
		Alignment:     Behavior{Weight: 1, RadiusSq: 4},
		MaxSpeed:      5,
		MaxSteerForce: 0.5,
	}
	agents := randomFlock(rand.New(rand.NewSource(1)), 1024, 32)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		grid := buildGrid(agents, g)
		for i := range agents {
			SteeringForce(i, agents, Candidates(agents[i].Position, grid, g), p)
		}
	}
}
