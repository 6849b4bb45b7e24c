package renderer

import (
	_ "embed"

	rl "github.com/gen2brain/raylib-go/raylib"
)

//go:embed shaders/backdrop.fs
var backdropFS string

// Backdrop fills the screen with a vertical gradient behind the 3D scene.
type Backdrop struct {
	shader        rl.Shader
	resolutionLoc int32
	topLoc        int32
	bottomLoc     int32
	width         float32
	height        float32
	initialized   bool
}

// NewBackdrop creates a backdrop for a screen of the given size.
func NewBackdrop(width, height int32) *Backdrop {
	return &Backdrop{
		width:  float32(width),
		height: float32(height),
	}
}

// Init loads the shader (must be called after raylib window is created).
func (b *Backdrop) Init() {
	if b.initialized {
		return
	}

	b.shader = rl.LoadShaderFromMemory("", backdropFS)
	b.resolutionLoc = rl.GetShaderLocation(b.shader, "resolution")
	b.topLoc = rl.GetShaderLocation(b.shader, "topColor")
	b.bottomLoc = rl.GetShaderLocation(b.shader, "bottomColor")

	rl.SetShaderValue(b.shader, b.topLoc, []float32{0.10, 0.14, 0.22}, rl.ShaderUniformVec3)
	rl.SetShaderValue(b.shader, b.bottomLoc, []float32{0.02, 0.02, 0.04}, rl.ShaderUniformVec3)
	b.setResolution()

	b.initialized = true
}

func (b *Backdrop) setResolution() {
	rl.SetShaderValue(b.shader, b.resolutionLoc, []float32{b.width, b.height}, rl.ShaderUniformVec2)
}

// Resize updates the screen size the gradient spans.
func (b *Backdrop) Resize(width, height float32) {
	b.width = width
	b.height = height
	if b.initialized {
		b.setResolution()
	}
}

// Draw renders the gradient over the whole screen.
func (b *Backdrop) Draw() {
	if !b.initialized {
		b.Init()
	}

	rl.BeginShaderMode(b.shader)
	rl.DrawRectangle(0, 0, int32(b.width), int32(b.height), rl.White)
	rl.EndShaderMode()
}

// Unload frees resources.
func (b *Backdrop) Unload() {
	if b.initialized {
		rl.UnloadShader(b.shader)
		b.initialized = false
	}
}
