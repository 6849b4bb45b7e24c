package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title          string
	Mode           string
	Agents         int
	Tick           int32
	StepsPerUpdate int
	FPS            int32
	Paused         bool
	Polarization   float64
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD in the top-left corner.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Agents: %d | Mode: %s", data.Agents, data.Mode),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d", data.Tick, data.StepsPerUpdate, data.FPS),
		10, 55, 16, rl.LightGray,
	)
	h.renderer.DrawBar(10, 77, "Polarization", float32(data.Polarization), 240)

	if data.Paused {
		rl.DrawText("PAUSED", 10, 97, 16, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanelData holds step timings for display.
type PerfPanelData struct {
	PhaseAvg       map[string]time.Duration
	Total          time.Duration
	TicksPerSecond float64
	AgentsPerSec   float64
}

// PerfPanel renders per-phase step timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the panel with phases listed in the given order.
func (p *PerfPanel) Draw(data PerfPanelData, phases []string) {
	x, y := p.x, p.y

	rl.DrawText("Step Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Tick: %s  (%.0f/s)", data.Total.Round(time.Microsecond), data.TicksPerSecond), x, y, 14, rl.Yellow)
	y += 16
	if data.AgentsPerSec > 0 {
		rl.DrawText(fmt.Sprintf("%.2fM agent updates/s", data.AgentsPerSec/1e6), x, y, 12, rl.LightGray)
		y += 16
	}

	for _, name := range phases {
		avg, ok := data.PhaseAvg[name]
		if !ok {
			continue
		}
		pct := float64(0)
		if data.Total > 0 {
			pct = float64(avg) / float64(data.Total) * 100
		}

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(fmt.Sprintf("%-12s %8s %5.1f%%", name, avg.Round(time.Microsecond), pct), x, y, 12, color)
		y += 14
	}
}
