// Package telemetry collects windowed flock statistics and step timings and writes them as CSV.
package telemetry

import "math"

// Collector accumulates per-step counters within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	windowStartTick int32

	// Counters for the current window
	steps        int
	candidates   int
	agentSteps   int
	modeSwitches int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(math.Round(windowDurationSec / float64(dt)))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordStep records one simulation step over agents that examined
// candidates neighbor pairs in total.
func (c *Collector) RecordStep(agents, candidates int) {
	c.steps++
	c.agentSteps += agents
	c.candidates += candidates
}

// RecordModeSwitch records a runtime change of the neighbor search mode.
func (c *Collector) RecordModeSwitch() {
	c.modeSwitches++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats from the window counters and a flock sample
// taken at currentTick, then resets the counters for the next window.
func (c *Collector) Flush(currentTick int32, mode string, sample FlockSample) WindowStats {
	mean, std, p10, p50, p90 := ComputeDistribution(sample.Speeds)

	var meanCandidates float64
	if c.agentSteps > 0 {
		meanCandidates = float64(c.candidates) / float64(c.agentSteps)
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),
		Mode:            mode,

		Agents:        len(sample.Speeds),
		SpeedMean:     mean,
		SpeedStd:      std,
		SpeedP10:      p10,
		SpeedP50:      p50,
		SpeedP90:      p90,
		Polarization:  sample.Polarization,
		Spread:        sample.Spread,
		MeanNeighbors: sample.MeanNeighbors,
		Outside:       sample.Outside,

		Steps:          c.steps,
		MeanCandidates: meanCandidates,
		ModeSwitches:   c.modeSwitches,
	}

	c.windowStartTick = currentTick
	c.steps = 0
	c.candidates = 0
	c.agentSteps = 0
	c.modeSwitches = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
