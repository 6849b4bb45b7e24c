package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/boids/renderer"
	"github.com/pthm-cable/boids/telemetry"
	"github.com/pthm-cable/boids/ui"
)

const controlsLegend = "[Space] pause  [,/.] speed  [M] mode  [R] respawn  [H] tuning  [P] perf  [drag] orbit  [wheel] zoom  [Home] reset"

var boundsColor = rl.NewColor(120, 140, 160, 160)

// Draw renders one frame.
func (g *Game) Draw() {
	g.perfCollector.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	g.backdrop.Draw()

	rl.BeginMode3D(g.camera3D())
	p := g.sim.Params()
	renderer.DrawBounds(p.Integrate.Center, r3.Scale(2, p.Integrate.HalfExtents), boundsColor)
	g.boidRenderer.Draw(g.Transforms(), p.Integrate.HalfExtents.Y)
	rl.EndMode3D()

	g.drawHUD()
	g.drawTuning()

	rl.EndDrawing()
}

// camera3D converts the orbit camera into a raylib camera.
func (g *Game) camera3D() rl.Camera3D {
	return rl.Camera3D{
		Position:   toVector3(g.camera.Eye()),
		Target:     toVector3(g.camera.Target),
		Up:         toVector3(g.camera.Up()),
		Fovy:       float32(g.cfg.Camera.Fovy),
		Projection: rl.CameraPerspective,
	}
}

func (g *Game) drawHUD() {
	p := g.sim.Params()
	sample := telemetry.SampleFlock(g.agents, nil, p.Integrate.Center, p.Integrate.HalfExtents)

	g.hud.Draw(ui.HUDData{
		Title:          "Boids",
		Mode:           string(g.sim.Mode()),
		Agents:         len(g.entities),
		Tick:           g.tick,
		StepsPerUpdate: g.stepsPerUpdate,
		FPS:            rl.GetFPS(),
		Paused:         g.paused,
		Polarization:   sample.Polarization,
	})

	if g.showPerf {
		stats := g.perfCollector.Stats()
		g.perfPanel.Draw(ui.PerfPanelData{
			PhaseAvg:       stats.PhaseAvg,
			Total:          stats.AvgTickDuration,
			TicksPerSecond: stats.TicksPerSecond,
			AgentsPerSec:   stats.TicksPerSecond * float64(len(g.entities)),
		}, telemetry.Phases)
	}

	g.hud.DrawControls(int32(g.screenHeight), controlsLegend)
}

func toVector3(v r3.Vec) rl.Vector3 {
	return rl.NewVector3(float32(v.X), float32(v.Y), float32(v.Z))
}
