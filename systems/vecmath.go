// Package systems implements the per-step flocking pipeline: spatial grid,
// neighbor query, steering accumulation and integration.
package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Limit returns v rescaled to length max when |v| > max, otherwise v unchanged.
func Limit(v r3.Vec, max float64) r3.Vec {
	n2 := r3.Norm2(v)
	if n2 <= max*max {
		return v
	}
	return r3.Scale(max/math.Sqrt(n2), v)
}

// Normalize returns the unit vector colinear to v, or the zero vector when v is zero.
func Normalize(v r3.Vec) r3.Vec {
	if v == (r3.Vec{}) {
		return r3.Vec{}
	}
	return r3.Unit(v)
}

// GridIndex returns the cell containing p. Each axis is clamped into
// [0, Counts[a]] so out-of-volume positions alias to the boundary slab.
func GridIndex(p r3.Vec, g GridParams) CellCoord {
	return CellCoord{
		X: cellAxis(p.X, g.Min.X, g.CellSize, g.Counts[0]),
		Y: cellAxis(p.Y, g.Min.Y, g.CellSize, g.Counts[1]),
		Z: cellAxis(p.Z, g.Min.Z, g.CellSize, g.Counts[2]),
	}
}

func cellAxis(p, min, size float64, count int) int {
	f := math.Floor((p - min) / size)
	// Clamp in float space first; int conversion of huge values is undefined.
	if !(f >= 0) {
		return 0
	}
	if f > float64(count) {
		return count
	}
	return int(f)
}
