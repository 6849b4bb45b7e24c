package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/boids/config"
)

// Slider binds one boid parameter to a slider range.
type Slider struct {
	Label    string
	Min, Max float32
	Field    func(b *config.BoidConfig) *float64
}

// DefaultSliders returns the parameters exposed in the tuning panel.
// Radii are left out: they are bounded by the grid cell size fixed at startup.
func DefaultSliders() []Slider {
	return []Slider{
		{"Cohesion", 0, 5, func(b *config.BoidConfig) *float64 { return &b.Cohesion.Weight }},
		{"Separation", 0, 5, func(b *config.BoidConfig) *float64 { return &b.Separation.Weight }},
		{"Alignment", 0, 5, func(b *config.BoidConfig) *float64 { return &b.Alignment.Weight }},
		{"Max speed", 0.5, 20, func(b *config.BoidConfig) *float64 { return &b.MaxSpeed }},
		{"Max steer", 0.01, 5, func(b *config.BoidConfig) *float64 { return &b.MaxSteerForce }},
		{"Wall weight", 0, 50, func(b *config.BoidConfig) *float64 { return &b.AvoidWallWeight }},
	}
}

// TuningAction reports what the user did in the panel this frame.
type TuningAction struct {
	Changed    bool // a slider moved
	ToggleMode bool
	Respawn    bool
}

// TuningPanel edits boid parameters live with raygui sliders.
type TuningPanel struct {
	renderer *Renderer
	sliders  []Slider
	x, y     int32
	width    int32
	visible  bool
}

// NewTuningPanel creates a visible panel anchored at x, y.
func NewTuningPanel(x, y, width int32) *TuningPanel {
	return &TuningPanel{
		renderer: NewRenderer(),
		sliders:  DefaultSliders(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (t *TuningPanel) SetPosition(x, y int32) {
	t.x = x
	t.y = y
}

// Toggle flips visibility and returns the new state.
func (t *TuningPanel) Toggle() bool {
	t.visible = !t.visible
	return t.visible
}

// IsVisible reports whether the panel is drawn.
func (t *TuningPanel) IsVisible() bool {
	return t.visible
}

// Height returns the panel's drawn height.
func (t *TuningPanel) Height() int32 {
	th := t.renderer.Theme
	return th.Padding*2 + th.HeaderSize + 4 + int32(len(t.sliders))*(th.LineHeight+22) + 34
}

// Contains reports whether the screen point lies over the visible panel.
func (t *TuningPanel) Contains(px, py float32) bool {
	if !t.visible {
		return false
	}
	return px >= float32(t.x) && px <= float32(t.x+t.width) &&
		py >= float32(t.y) && py <= float32(t.y+t.Height())
}

// Draw renders the panel and writes slider edits straight into boid.
func (t *TuningPanel) Draw(boid *config.BoidConfig, mode config.SimulationMode) TuningAction {
	var act TuningAction
	if !t.visible {
		return act
	}

	th := t.renderer.Theme
	t.renderer.DrawPanel(t.x, t.y, t.width, t.Height())

	x := t.x + th.Padding
	y := t.renderer.DrawSectionHeader(x, t.y+th.Padding, "Tuning [H]")
	sliderW := float32(t.width - 2*th.Padding - 50)

	for _, s := range t.sliders {
		field := s.Field(boid)
		y = t.renderer.DrawLabelValue(x, y, s.Label, fmt.Sprintf("%.2f", *field))

		next := gui.SliderBar(
			rl.Rectangle{X: float32(x), Y: float32(y), Width: sliderW, Height: 16},
			"", "",
			float32(*field), s.Min, s.Max,
		)
		if next != float32(*field) {
			*field = float64(next)
			act.Changed = true
		}
		y += 22
	}

	btnW := float32(t.width-3*th.Padding) / 2
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: btnW, Height: 24}, fmt.Sprintf("Mode: %s", shortMode(mode))) {
		act.ToggleMode = true
	}
	if gui.Button(rl.Rectangle{X: float32(x) + btnW + float32(th.Padding), Y: float32(y), Width: btnW, Height: 24}, "Respawn") {
		act.Respawn = true
	}

	return act
}

func shortMode(m config.SimulationMode) string {
	switch m {
	case config.ModeAllSearch:
		return "all"
	case config.ModeNeighborSearch:
		return "grid"
	}
	return string(m)
}
