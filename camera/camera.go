// Package camera provides an orbit camera for viewing the simulation volume.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// maxPitch keeps the eye off the poles, where the up vector degenerates.
const maxPitch = math.Pi/2 - 0.05

var worldUp = r3.Vec{Y: 1}

// Orbit circles a target point at a distance.
// Yaw is measured about +Y from +Z, pitch is the elevation above the XZ plane.
type Orbit struct {
	Target   r3.Vec
	Yaw      float64
	Pitch    float64
	Distance float64

	// Distance constraints
	MinDistance, MaxDistance float64

	home pose
}

// pose is the part of an Orbit that Reset restores.
type pose struct {
	target           r3.Vec
	yaw, pitch, dist float64
}

// New creates a camera looking at target from distance, raised slightly above it.
func New(target r3.Vec, distance float64) *Orbit {
	o := &Orbit{
		Target:      target,
		Yaw:         math.Pi / 4,
		Pitch:       math.Pi / 8,
		Distance:    distance,
		MinDistance: distance / 10,
		MaxDistance: distance * 10,
	}
	o.home = pose{target: o.Target, yaw: o.Yaw, pitch: o.Pitch, dist: o.Distance}
	return o
}

// Eye returns the camera position in world coordinates.
func (o *Orbit) Eye() r3.Vec {
	cp := math.Cos(o.Pitch)
	offset := r3.Vec{
		X: o.Distance * cp * math.Sin(o.Yaw),
		Y: o.Distance * math.Sin(o.Pitch),
		Z: o.Distance * cp * math.Cos(o.Yaw),
	}
	return r3.Add(o.Target, offset)
}

// Up returns the world up vector used for the view.
func (o *Orbit) Up() r3.Vec {
	return worldUp
}

// Forward returns the unit view direction, from the eye toward the target.
func (o *Orbit) Forward() r3.Vec {
	return r3.Unit(r3.Sub(o.Target, o.Eye()))
}

// Rotate orbits by the given yaw and pitch deltas in radians.
// Pitch is clamped short of straight up or down; yaw wraps to [-π, π].
func (o *Orbit) Rotate(dyaw, dpitch float64) {
	o.Yaw = math.Remainder(o.Yaw+dyaw, 2*math.Pi)
	o.Pitch = clamp(o.Pitch+dpitch, -maxPitch, maxPitch)
}

// SetDistance sets the orbit distance, clamped to min/max.
func (o *Orbit) SetDistance(d float64) {
	o.Distance = clamp(d, o.MinDistance, o.MaxDistance)
}

// ZoomBy divides the distance by factor; factors above 1 move closer.
func (o *Orbit) ZoomBy(factor float64) {
	if factor <= 0 {
		return
	}
	o.SetDistance(o.Distance / factor)
}

// Pan moves the target within the view plane. dx moves right, dy moves up,
// both in world units.
func (o *Orbit) Pan(dx, dy float64) {
	fwd := o.Forward()
	right := r3.Unit(r3.Cross(fwd, worldUp))
	up := r3.Cross(right, fwd)
	o.Target = r3.Add(o.Target, r3.Add(r3.Scale(dx, right), r3.Scale(dy, up)))
}

// Reset returns the camera to the pose it was created with.
func (o *Orbit) Reset() {
	o.Target = o.home.target
	o.Yaw = o.home.yaw
	o.Pitch = o.home.pitch
	o.Distance = o.home.dist
}

func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
