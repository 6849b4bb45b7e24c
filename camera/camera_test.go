package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func vecNear(a, b r3.Vec, tol float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= tol
}

func TestNew(t *testing.T) {
	target := r3.Vec{X: 1, Y: 2, Z: 3}
	cam := New(target, 60)

	if cam.Target != target {
		t.Errorf("target = %v, want %v", cam.Target, target)
	}
	if d := r3.Norm(r3.Sub(cam.Eye(), target)); math.Abs(d-60) > 1e-9 {
		t.Errorf("eye distance = %v, want 60", d)
	}
	if cam.Eye().Y <= target.Y {
		t.Errorf("eye %v should start above the target", cam.Eye())
	}
}

func TestEyeAxes(t *testing.T) {
	tests := []struct {
		name       string
		yaw, pitch float64
		want       r3.Vec
	}{
		{"front", 0, 0, r3.Vec{Z: 10}},
		{"right", math.Pi / 2, 0, r3.Vec{X: 10}},
		{"behind", math.Pi, 0, r3.Vec{Z: -10}},
		{"above", 0, math.Pi / 2, r3.Vec{Y: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := New(r3.Vec{}, 10)
			cam.Yaw, cam.Pitch = tt.yaw, tt.pitch
			if got := cam.Eye(); !vecNear(got, tt.want, 1e-9) {
				t.Errorf("Eye() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestForwardLooksAtTarget(t *testing.T) {
	cam := New(r3.Vec{X: 5}, 20)
	cam.Rotate(0.7, -0.3)

	fwd := cam.Forward()
	if math.Abs(r3.Norm(fwd)-1) > 1e-12 {
		t.Errorf("forward not unit: %v", fwd)
	}
	// eye + distance*forward lands on the target
	if got := r3.Add(cam.Eye(), r3.Scale(cam.Distance, fwd)); !vecNear(got, cam.Target, 1e-9) {
		t.Errorf("eye + d*forward = %v, want %v", got, cam.Target)
	}
}

func TestRotateClampsPitch(t *testing.T) {
	cam := New(r3.Vec{}, 10)

	cam.Rotate(0, 10)
	if cam.Pitch != maxPitch {
		t.Errorf("pitch = %v, want clamped to %v", cam.Pitch, maxPitch)
	}
	cam.Rotate(0, -20)
	if cam.Pitch != -maxPitch {
		t.Errorf("pitch = %v, want clamped to %v", cam.Pitch, -maxPitch)
	}

	cam.Yaw = 0
	cam.Rotate(3*math.Pi, 0)
	if math.Abs(math.Abs(cam.Yaw)-math.Pi) > 1e-9 {
		t.Errorf("yaw = %v, want wrapped to ±π", cam.Yaw)
	}
}

func TestZoomClamped(t *testing.T) {
	cam := New(r3.Vec{}, 50)

	cam.ZoomBy(2)
	if math.Abs(cam.Distance-25) > 1e-9 {
		t.Errorf("distance = %v, want 25", cam.Distance)
	}

	cam.ZoomBy(1000)
	if cam.Distance != cam.MinDistance {
		t.Errorf("distance = %v, want min %v", cam.Distance, cam.MinDistance)
	}

	cam.ZoomBy(0.0001)
	if cam.Distance != cam.MaxDistance {
		t.Errorf("distance = %v, want max %v", cam.Distance, cam.MaxDistance)
	}

	before := cam.Distance
	cam.ZoomBy(0)
	if cam.Distance != before {
		t.Error("zero zoom factor changed the distance")
	}
}

func TestPanKeepsViewDirection(t *testing.T) {
	cam := New(r3.Vec{}, 30)
	fwd := cam.Forward()

	cam.Pan(3, -2)

	if moved := r3.Norm(cam.Target); math.Abs(moved-math.Sqrt(13)) > 1e-9 {
		t.Errorf("target moved %v, want √13", moved)
	}
	if !vecNear(cam.Forward(), fwd, 1e-9) {
		t.Errorf("forward changed from %v to %v", fwd, cam.Forward())
	}
	// Pan stays in the view plane
	if d := r3.Dot(cam.Target, fwd); math.Abs(d) > 1e-9 {
		t.Errorf("pan has a component %v along the view direction", d)
	}
}

func TestReset(t *testing.T) {
	cam := New(r3.Vec{Y: 1}, 40)
	eye := cam.Eye()

	cam.Rotate(1, 0.2)
	cam.ZoomBy(3)
	cam.Pan(5, 5)
	cam.Reset()

	if !vecNear(cam.Eye(), eye, 1e-9) || cam.Target != (r3.Vec{Y: 1}) {
		t.Errorf("after Reset eye = %v target = %v, want %v and (0,1,0)", cam.Eye(), cam.Target, eye)
	}
}
