package game

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/boids/components"
	"github.com/pthm-cable/boids/systems"
)

// SpawnFlock returns count agents placed uniformly inside center ± half,
// each moving at initialSpeed in a uniformly random direction.
func SpawnFlock(rng *rand.Rand, count int, center, half r3.Vec, initialSpeed float64) []components.Agent {
	agents := make([]components.Agent, count)
	for i := range agents {
		agents[i] = components.Agent{
			Position: r3.Vec{
				X: center.X + (rng.Float64()*2-1)*half.X,
				Y: center.Y + (rng.Float64()*2-1)*half.Y,
				Z: center.Z + (rng.Float64()*2-1)*half.Z,
			},
			Velocity: r3.Scale(initialSpeed, randomDirection(rng)),
		}
	}
	return agents
}

// randomDirection samples a unit vector uniformly on the sphere.
func randomDirection(rng *rand.Rand) r3.Vec {
	for {
		v := r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
		if n := r3.Norm(v); n > 1e-9 {
			return r3.Scale(1/n, v)
		}
	}
}

// spawnInitialFlock creates one entity per agent of a fresh flock.
func (g *Game) spawnInitialFlock() {
	cfg := g.config()
	p := g.sim.Params()

	flock := SpawnFlock(g.rng, cfg.Simulation.Count, p.Integrate.Center, p.Integrate.HalfExtents, cfg.Simulation.InitialSpeed)
	for i := range flock {
		g.spawnEntity(flock[i])
	}
}

// spawnEntity creates an entity holding a's state.
func (g *Game) spawnEntity(a components.Agent) ecs.Entity {
	p := g.sim.Params()

	pos := components.Position{Vec: a.Position}
	vel := components.Velocity{Vec: a.Velocity}
	tr := components.Transform{
		Position: a.Position,
		Rotation: systems.Orientation(a.Velocity),
		Scale:    p.Integrate.Scale,
	}

	e := g.boidMapper.NewEntity(&pos, &vel, &tr)
	g.entities = append(g.entities, e)
	return e
}

// respawn scatters the existing entities as a fresh flock.
func (g *Game) respawn() {
	cfg := g.config()
	p := g.sim.Params()

	flock := SpawnFlock(g.rng, len(g.entities), p.Integrate.Center, p.Integrate.HalfExtents, cfg.Simulation.InitialSpeed)
	for i, e := range g.entities {
		pos, vel, tr := g.boidMapper.Get(e)
		pos.Vec = flock[i].Position
		vel.Vec = flock[i].Velocity
		tr.Position = flock[i].Position
		tr.Rotation = systems.Orientation(flock[i].Velocity)
	}
}
