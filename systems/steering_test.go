package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/boids/components"
)

func testSteering() *SteeringParams {
	return &SteeringParams{
		Cohesion:      Behavior{Weight: 1, RadiusSq: 4},
		Separation:    Behavior{Weight: 1, RadiusSq: 1},
		Alignment:     Behavior{Weight: 1, RadiusSq: 4},
		MaxSpeed:      10,
		MaxSteerForce: 10,
	}
}

func vecNear(a, b r3.Vec, tol float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= tol
}

func TestSteeringNoNeighbors(t *testing.T) {
	p := testSteering()
	tests := []struct {
		name   string
		agents []components.Agent
	}{
		{"alone", []components.Agent{{Velocity: r3.Vec{Z: 1}}}},
		{"all out of range", []components.Agent{
			{Velocity: r3.Vec{Z: 1}},
			{Position: r3.Vec{X: 3}, Velocity: r3.Vec{X: -1}},
			{Position: r3.Vec{Y: -2.5}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			force, sums := SteeringForce(0, tt.agents, AllPairs(len(tt.agents)), p)
			if force != (r3.Vec{}) {
				t.Errorf("force = %v, want zero", force)
			}
			if sums.Neighbors() != 0 {
				t.Errorf("neighbors = %d, want 0", sums.Neighbors())
			}
		})
	}
}

func TestAccumulateIndependentGates(t *testing.T) {
	p := testSteering()
	agents := []components.Agent{
		{},
		{Position: r3.Vec{X: 1.5}, Velocity: r3.Vec{Y: 2}}, // cohesion + alignment only
		{Position: r3.Vec{Z: 0.5}, Velocity: r3.Vec{X: 1}}, // all three
	}

	s := AccumulateNeighbors(0, agents, AllPairs(len(agents)), p)

	if s.CohesionCount != 2 || s.AlignmentCount != 2 || s.SeparationCount != 1 {
		t.Fatalf("counts = (%d, %d, %d), want (2, 1, 2)", s.CohesionCount, s.SeparationCount, s.AlignmentCount)
	}
	if !vecNear(s.CohesionPos, r3.Vec{X: 1.5, Z: 0.5}, 1e-12) {
		t.Errorf("cohesion sum = %v", s.CohesionPos)
	}
	if !vecNear(s.AlignmentVel, r3.Vec{X: 1, Y: 2}, 1e-12) {
		t.Errorf("alignment sum = %v", s.AlignmentVel)
	}
	// unit vector away from the neighbour divided by its distance
	if !vecNear(s.SeparationRepulse, r3.Vec{Z: -2}, 1e-12) {
		t.Errorf("separation sum = %v, want (0,0,-2)", s.SeparationRepulse)
	}
}

func TestAccumulateSkipsSelf(t *testing.T) {
	p := testSteering()
	agents := []components.Agent{{}, {}}

	// Candidates may include self any number of times
	dup := func(yield func(int) bool) {
		for _, i := range []int{0, 0, 1} {
			if !yield(i) {
				return
			}
		}
	}
	s := AccumulateNeighbors(0, agents, dup, p)
	if s.CohesionCount != 1 {
		t.Errorf("cohesion count = %d, want 1", s.CohesionCount)
	}
}

func TestSeparationCoincidentNeighbor(t *testing.T) {
	p := testSteering()
	agents := []components.Agent{
		{Velocity: r3.Vec{X: 1}},
		{Velocity: r3.Vec{X: 1}},
	}

	force, sums := SteeringForce(0, agents, AllPairs(2), p)
	if sums.SeparationCount != 1 {
		t.Errorf("separation count = %d, want 1", sums.SeparationCount)
	}
	if sums.SeparationRepulse != (r3.Vec{}) {
		t.Errorf("coincident repulsion = %v, want zero", sums.SeparationRepulse)
	}
	for _, c := range []float64{force.X, force.Y, force.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			t.Fatalf("force = %v, want finite", force)
		}
	}
}

func TestSeparationPushesAway(t *testing.T) {
	p := &SteeringParams{
		Separation:    Behavior{Weight: 1, RadiusSq: 1},
		MaxSpeed:      10,
		MaxSteerForce: 100,
	}
	agents := []components.Agent{
		{},
		{Position: r3.Vec{X: 0.5}},
	}

	force, _ := SteeringForce(0, agents, AllPairs(2), p)
	if !vecNear(force, r3.Vec{X: -10}, 1e-9) {
		t.Errorf("force = %v, want (-10,0,0)", force)
	}
}

func TestSteerWeightsAndLimit(t *testing.T) {
	p := &SteeringParams{
		Cohesion:      Behavior{Weight: 0.5, RadiusSq: 100},
		Alignment:     Behavior{Weight: 2, RadiusSq: 100},
		MaxSpeed:      10,
		MaxSteerForce: 1,
	}
	own := components.Agent{}
	sums := NeighborSums{
		CohesionPos:    r3.Vec{X: 8, Y: 4}, // two neighbours averaging (4,2,0)
		CohesionCount:  2,
		AlignmentVel:   r3.Vec{Z: -3},
		AlignmentCount: 1,
	}

	got := p.Steer(own, sums)
	cohesion := r3.Scale(0.5, Normalize(r3.Vec{X: 4, Y: 2}))
	alignment := r3.Vec{Z: -2}
	want := r3.Add(cohesion, alignment)
	if !vecNear(got, want, 1e-9) {
		t.Errorf("Steer = %v, want %v", got, want)
	}
}

func TestTwoAgentSteering(t *testing.T) {
	p := &SteeringParams{
		Cohesion:      Behavior{Weight: 1, RadiusSq: 100},
		Separation:    Behavior{Weight: 1, RadiusSq: 1},
		Alignment:     Behavior{Weight: 1, RadiusSq: 100},
		MaxSpeed:      10,
		MaxSteerForce: 10,
	}
	agents := []components.Agent{
		{Position: r3.Vec{}, Velocity: r3.Vec{Z: 1}},
		{Position: r3.Vec{X: 5}, Velocity: r3.Vec{Z: -1}},
	}

	f0, s0 := SteeringForce(0, agents, AllPairs(2), p)
	f1, s1 := SteeringForce(1, agents, AllPairs(2), p)

	if s0.SeparationCount != 0 || s1.SeparationCount != 0 {
		t.Errorf("separation active at distance 5")
	}
	if f0.X <= 0 || f1.X >= 0 {
		t.Errorf("cohesion should pull together along x: f0=%v f1=%v", f0, f1)
	}
	// alignment opposes each agent's own z motion
	if f0.Z >= 0 || f1.Z <= 0 {
		t.Errorf("alignment should decelerate z motion: f0=%v f1=%v", f0, f1)
	}
	if math.Abs(f0.X+f1.X) > 1e-9 || math.Abs(f0.Z+f1.Z) > 1e-9 {
		t.Errorf("forces should mirror: f0=%v f1=%v", f0, f1)
	}
}
