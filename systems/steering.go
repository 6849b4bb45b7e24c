package systems

import (
	"iter"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/boids/components"
)

// Behavior is one flocking rule's weight and squared effect radius.
type Behavior struct {
	Weight   float64
	RadiusSq float64
}

// SteeringParams holds the flocking rule parameters shared by every agent.
type SteeringParams struct {
	Cohesion   Behavior
	Separation Behavior
	Alignment  Behavior

	MaxSpeed      float64
	MaxSteerForce float64
}

// NeighborSums are the running totals gathered in one pass over the candidates.
type NeighborSums struct {
	CohesionPos   r3.Vec
	CohesionCount int

	SeparationRepulse r3.Vec
	SeparationCount   int

	AlignmentVel   r3.Vec
	AlignmentCount int
}

// Neighbors returns the largest of the three behavior counts.
func (s NeighborSums) Neighbors() int {
	return max(s.CohesionCount, s.SeparationCount, s.AlignmentCount)
}

// AccumulateNeighbors scans candidates once, skipping self, and gathers the
// cohesion, separation and alignment sums. The three radii gate independently.
func AccumulateNeighbors(self int, agents []components.Agent, candidates iter.Seq[int], p *SteeringParams) NeighborSums {
	var s NeighborSums
	pos := agents[self].Position

	for j := range candidates {
		if j == self {
			continue
		}
		other := &agents[j]
		diff := r3.Sub(pos, other.Position)
		d2 := r3.Norm2(diff)

		if d2 <= p.Cohesion.RadiusSq {
			s.CohesionPos = r3.Add(s.CohesionPos, other.Position)
			s.CohesionCount++
		}

		if d2 <= p.Separation.RadiusSq {
			// Closer neighbours push harder. Coincident ones are counted but add nothing.
			if d2 > 0 {
				s.SeparationRepulse = r3.Add(s.SeparationRepulse, r3.Scale(1/math.Sqrt(d2), Normalize(diff)))
			}
			s.SeparationCount++
		}

		if d2 <= p.Alignment.RadiusSq {
			s.AlignmentVel = r3.Add(s.AlignmentVel, other.Velocity)
			s.AlignmentCount++
		}
	}

	return s
}

// Steer converts neighbor sums into the weighted steering force for own.
// A behavior with no neighbors contributes nothing.
func (p *SteeringParams) Steer(own components.Agent, s NeighborSums) r3.Vec {
	var force r3.Vec

	if s.CohesionCount > 0 {
		avg := r3.Scale(1/float64(s.CohesionCount), s.CohesionPos)
		steer := p.seek(r3.Sub(avg, own.Position), own.Velocity)
		force = r3.Add(force, r3.Scale(p.Cohesion.Weight, steer))
	}

	if s.SeparationCount > 0 {
		avg := r3.Scale(1/float64(s.SeparationCount), s.SeparationRepulse)
		steer := p.seek(avg, own.Velocity)
		force = r3.Add(force, r3.Scale(p.Separation.Weight, steer))
	}

	if s.AlignmentCount > 0 {
		avg := r3.Scale(1/float64(s.AlignmentCount), s.AlignmentVel)
		steer := p.seek(avg, own.Velocity)
		force = r3.Add(force, r3.Scale(p.Alignment.Weight, steer))
	}

	return force
}

// seek returns the bounded change that turns vel toward dir at full speed.
func (p *SteeringParams) seek(dir, vel r3.Vec) r3.Vec {
	desired := r3.Scale(p.MaxSpeed, Normalize(dir))
	return Limit(r3.Sub(desired, vel), p.MaxSteerForce)
}

// SteeringForce runs AccumulateNeighbors and Steer for agent self.
func SteeringForce(self int, agents []components.Agent, candidates iter.Seq[int], p *SteeringParams) (r3.Vec, NeighborSums) {
	sums := AccumulateNeighbors(self, agents, candidates, p)
	return p.Steer(agents[self], sums), sums
}
