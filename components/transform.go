package components

import "gonum.org/v1/gonum/spatial/r3"

// Forward is the model-space heading of a boid mesh.
var Forward = r3.Vec{Z: 1}

// Transform is the render state derived from an Agent each step.
type Transform struct {
	Position r3.Vec
	Rotation r3.Rotation
	Scale    float64
}

// Heading returns the model forward axis rotated into world space.
func (t Transform) Heading() r3.Vec {
	return t.Rotation.Rotate(Forward)
}

// Matrix returns the translate-rotate-scale matrix in column-major order,
// matching the memory layout graphics APIs expect.
func (t Transform) Matrix() [16]float64 {
	var m [16]float64
	rot := t.Rotation.Mat()
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			m[col*4+row] = rot.At(row, col) * t.Scale
		}
	}
	m[12] = t.Position.X
	m[13] = t.Position.Y
	m[14] = t.Position.Z
	m[15] = 1
	return m
}
