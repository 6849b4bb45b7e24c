// Package components defines ECS components for the simulation.
package components

import "gonum.org/v1/gonum/spatial/r3"

// Position represents a boid's world position.
type Position struct {
	r3.Vec
}

// Velocity represents a boid's velocity in world units per second.
type Velocity struct {
	r3.Vec
}

// Agent is the flat per-step view of one boid.
// The simulator works on []Agent where the slice index is the agent's identity.
type Agent struct {
	Position r3.Vec
	Velocity r3.Vec
}
