package systems

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/boids/components"
)

// orientationEpsilon keeps the pitch term finite for a stationary agent.
const orientationEpsilon = 1e-8

var (
	axisX = r3.Vec{X: 1}
	axisY = r3.Vec{Y: 1}
)

// IntegrateParams holds the volume and motion limits applied after steering.
type IntegrateParams struct {
	Center      r3.Vec
	HalfExtents r3.Vec

	AvoidWallWeight float64
	MaxSpeed        float64
	Scale           float64 // visual instance scale
}

// AvoidWall returns +1 on each axis where p is at or below the low face of
// the volume and -1 where it is at or above the high face.
func AvoidWall(p, center, half r3.Vec) r3.Vec {
	return r3.Vec{
		X: wallAxis(p.X, center.X, half.X),
		Y: wallAxis(p.Y, center.Y, half.Y),
		Z: wallAxis(p.Z, center.Z, half.Z),
	}
}

func wallAxis(p, c, h float64) float64 {
	var f float64
	if p <= c-h {
		f++
	}
	if p >= c+h {
		f--
	}
	return f
}

// Integrate applies wall avoidance and the steering force to a, advances it
// by dt and returns its render transform. The velocity is clamped before the
// position update reads it.
func Integrate(a *components.Agent, force r3.Vec, p *IntegrateParams, dt float64) components.Transform {
	wall := AvoidWall(a.Position, p.Center, p.HalfExtents)
	force = r3.Add(force, r3.Scale(p.AvoidWallWeight, wall))

	a.Velocity = Limit(r3.Add(a.Velocity, r3.Scale(dt, force)), p.MaxSpeed)
	a.Position = r3.Add(a.Position, r3.Scale(dt, a.Velocity))

	return components.Transform{
		Position: a.Position,
		Rotation: Orientation(a.Velocity),
		Scale:    p.Scale,
	}
}

// YawPitch returns the heading angles of v: yaw about +Y measured from +Z,
// pitch about +X with positive values pointing down.
func YawPitch(v r3.Vec) (yaw, pitch float64) {
	yaw = math.Atan2(v.X, v.Z)
	pitch = -math.Asin(v.Y / (r3.Norm(v) + orientationEpsilon))
	return yaw, pitch
}

// Orientation returns the rotation that turns +Z toward v (pitch first, then yaw, no roll).
func Orientation(v r3.Vec) r3.Rotation {
	yaw, pitch := YawPitch(v)
	qYaw := quat.Number(r3.NewRotation(yaw, axisY))
	qPitch := quat.Number(r3.NewRotation(pitch, axisX))
	return r3.Rotation(quat.Mul(qYaw, qPitch))
}
