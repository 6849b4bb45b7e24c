package game

import (
	"log/slog"

	"github.com/pthm-cable/boids/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	p := g.sim.Params()
	sample := telemetry.SampleFlock(g.agents, g.sim.Neighbors(), p.Integrate.Center, p.Integrate.HalfExtents)
	mode := string(g.sim.Mode())

	stats := g.collector.Flush(g.tick, mode, sample)
	g.lastStats = stats

	perfStats := g.perfCollector.Stats()
	perfStats.AgentsPerSec = perfStats.TicksPerSecond * float64(len(g.agents))

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats.ToCSV(stats.WindowEndTick, mode, len(g.agents))); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
}

// LastStats returns the most recently flushed stats window.
func (g *Game) LastStats() telemetry.WindowStats {
	return g.lastStats
}
