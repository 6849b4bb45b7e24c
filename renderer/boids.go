// Package renderer draws the flock and its volume with raylib.
package renderer

import (
	_ "embed"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/boids/components"
)

// BatchSize is the number of instances submitted per draw call.
const BatchSize = 1023

// Cone mesh dimensions before instance scaling.
const (
	coneRadius = 0.5
	coneHeight = 2.0
	coneSlices = 8
)

var (
	//go:embed shaders/boid.vs
	boidVS string
	//go:embed shaders/boid.fs
	boidFS string
)

// BoidRenderer draws every agent as an instanced cone pointing along its velocity.
type BoidRenderer struct {
	mesh     rl.Mesh
	material rl.Material
	shader   rl.Shader

	lightDirLoc   int32
	halfHeightLoc int32

	matrices    []rl.Matrix
	initialized bool
}

// NewBoidRenderer creates a renderer. Resources are loaded on first Draw,
// after the raylib window exists.
func NewBoidRenderer() *BoidRenderer {
	return &BoidRenderer{}
}

// Init loads the mesh, shader and material.
func (r *BoidRenderer) Init() {
	if r.initialized {
		return
	}

	r.shader = rl.LoadShaderFromMemory(boidVS, boidFS)
	r.shader.UpdateLocation(rl.ShaderLocMatrixMvp, rl.GetShaderLocation(r.shader, "mvp"))
	r.shader.UpdateLocation(rl.ShaderLocMatrixModel, rl.GetShaderLocationAttrib(r.shader, "instanceTransform"))
	r.lightDirLoc = rl.GetShaderLocation(r.shader, "lightDir")
	r.halfHeightLoc = rl.GetShaderLocation(r.shader, "halfHeight")

	light := r3.Unit(r3.Vec{X: -0.4, Y: -1, Z: -0.3})
	rl.SetShaderValue(r.shader, r.lightDirLoc, []float32{float32(light.X), float32(light.Y), float32(light.Z)}, rl.ShaderUniformVec3)

	r.material = rl.LoadMaterialDefault()
	r.material.Shader = r.shader
	r.material.GetMap(rl.MapDiffuse).Color = rl.NewColor(120, 200, 255, 255)

	r.mesh = rl.GenMeshCone(coneRadius, coneHeight, coneSlices)

	r.initialized = true
}

// Draw renders one instance per transform in batches of BatchSize.
// halfHeight is the volume's vertical half extent, used for altitude tinting.
func (r *BoidRenderer) Draw(transforms []components.Transform, halfHeight float64) {
	if !r.initialized {
		r.Init()
	}
	if len(transforms) == 0 {
		return
	}

	rl.SetShaderValue(r.shader, r.halfHeightLoc, []float32{float32(halfHeight)}, rl.ShaderUniformFloat)

	r.matrices = r.matrices[:0]
	for i := range transforms {
		r.matrices = append(r.matrices, InstanceMatrix(&transforms[i]))
	}

	for start := 0; start < len(r.matrices); start += BatchSize {
		end := min(start+BatchSize, len(r.matrices))
		rl.DrawMeshInstanced(r.mesh, r.material, r.matrices[start:end], end-start)
	}
}

// InstanceMatrix converts t to a raylib matrix for the cone mesh.
// The cone is generated along +Y; its axis is turned onto the +Z forward axis.
func InstanceMatrix(t *components.Transform) rl.Matrix {
	m := t.Matrix()
	// M·Rx(90°): column 1 takes column 2, column 2 takes -column 1.
	for row := 0; row < 3; row++ {
		m[4+row], m[8+row] = m[8+row], -m[4+row]
	}
	return rl.Matrix{
		M0: float32(m[0]), M4: float32(m[4]), M8: float32(m[8]), M12: float32(m[12]),
		M1: float32(m[1]), M5: float32(m[5]), M9: float32(m[9]), M13: float32(m[13]),
		M2: float32(m[2]), M6: float32(m[6]), M10: float32(m[10]), M14: float32(m[14]),
		M3: float32(m[3]), M7: float32(m[7]), M11: float32(m[11]), M15: float32(m[15]),
	}
}

// DrawBounds draws the simulation volume as a wire box.
func DrawBounds(center, size r3.Vec, color rl.Color) {
	rl.DrawCubeWiresV(toVector3(center), toVector3(size), color)
}

func toVector3(v r3.Vec) rl.Vector3 {
	return rl.NewVector3(float32(v.X), float32(v.Y), float32(v.Z))
}

// Unload frees GPU resources.
func (r *BoidRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadMesh(&r.mesh)
	// UnloadMaterial also releases the attached shader.
	rl.UnloadMaterial(r.material)
	r.initialized = false
}
