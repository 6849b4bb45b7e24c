package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	tuningPanelWidth = 220
	mouseOrbitSpeed  = 0.005 // radians per pixel
)

// handleInput processes keyboard, mouse and tuning panel input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < maxStepsPerUpdate {
		g.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyM) {
		g.toggleMode()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.respawn()
	}
	if rl.IsKeyPressed(rl.KeyH) {
		g.tuning.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.showPerf = !g.showPerf
	}

	g.handleCameraInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.backdrop.Resize(w, h)
	g.tuning.SetPosition(int32(w)-tuningPanelWidth-10, 10)
}

// handleCameraInput processes orbit, pan and zoom controls.
func (g *Game) handleCameraInput() {
	if g.camera == nil {
		return
	}

	step := g.cfg.Camera.OrbitSpeed * float64(rl.GetFrameTime())

	// Arrow keys orbit
	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Rotate(step, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Rotate(-step, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Rotate(0, step)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Rotate(0, -step)
	}

	// Mouse drag: left orbits, right pans. Drags starting on the panel belong to raygui.
	mouse := rl.GetMousePosition()
	if !g.tuning.Contains(mouse.X, mouse.Y) {
		delta := rl.GetMouseDelta()
		if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
			g.camera.Rotate(-float64(delta.X)*mouseOrbitSpeed, float64(delta.Y)*mouseOrbitSpeed)
		}
		if rl.IsMouseButtonDown(rl.MouseButtonRight) {
			// Pan speed scales with distance so the target tracks the cursor
			scale := g.camera.Distance * 0.002
			g.camera.Pan(-float64(delta.X)*scale, float64(delta.Y)*scale)
		}

		if wheel := rl.GetMouseWheelMove(); wheel != 0 {
			g.camera.ZoomBy(1 + float64(wheel)*0.1)
		}
	}

	// Keyboard zoom with +/- (= and - keys)
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	// Home key to reset camera
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

// drawTuning draws the tuning panel and applies what the user changed.
func (g *Game) drawTuning() {
	act := g.tuning.Draw(&g.cfg.Boid, g.sim.Mode())

	if act.Changed {
		if err := g.applyTuning(); err != nil {
			slog.Error("rejected tuning", "error", err)
		}
	}
	if act.ToggleMode {
		g.toggleMode()
	}
	if act.Respawn {
		g.respawn()
	}
}
