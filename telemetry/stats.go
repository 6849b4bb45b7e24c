package telemetry

import (
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/boids/components"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Mode            string  `csv:"mode"`

	// Flock state sampled at window end
	Agents        int     `csv:"agents"`
	SpeedMean     float64 `csv:"speed_mean"`
	SpeedStd      float64 `csv:"speed_std"`
	SpeedP10      float64 `csv:"speed_p10"`
	SpeedP50      float64 `csv:"speed_p50"`
	SpeedP90      float64 `csv:"speed_p90"`
	Polarization  float64 `csv:"polarization"` // 1 = all agents heading the same way
	Spread        float64 `csv:"spread"`       // RMS distance to the centroid
	MeanNeighbors float64 `csv:"mean_neighbors"`
	Outside       int     `csv:"outside"` // agents beyond the volume faces

	// Accumulated during the window
	Steps          int     `csv:"steps"`
	MeanCandidates float64 `csv:"mean_candidates"` // pairs examined per agent per step
	ModeSwitches   int     `csv:"mode_switches"`
}

// FlockSample is a point-in-time summary of the flock.
type FlockSample struct {
	Speeds        []float64
	Polarization  float64
	Spread        float64
	MeanNeighbors float64
	Outside       int
}

// SampleFlock summarizes agents. neighbors holds per-agent neighbor counts
// from the last step and may be shorter than agents (missing entries count as 0).
func SampleFlock(agents []components.Agent, neighbors []int, center, half r3.Vec) FlockSample {
	n := len(agents)
	s := FlockSample{Speeds: make([]float64, n)}
	if n == 0 {
		return s
	}

	var heading, centroid r3.Vec
	for i := range agents {
		a := &agents[i]
		speed := r3.Norm(a.Velocity)
		s.Speeds[i] = speed
		if speed > 0 {
			heading = r3.Add(heading, r3.Scale(1/speed, a.Velocity))
		}
		centroid = r3.Add(centroid, a.Position)
		if outside(a.Position, center, half) {
			s.Outside++
		}
	}
	s.Polarization = r3.Norm(heading) / float64(n)
	centroid = r3.Scale(1/float64(n), centroid)

	var sq float64
	for i := range agents {
		sq += r3.Norm2(r3.Sub(agents[i].Position, centroid))
	}
	s.Spread = math.Sqrt(sq / float64(n))

	var total int
	for _, c := range neighbors {
		total += c
	}
	s.MeanNeighbors = float64(total) / float64(n)

	return s
}

func outside(p, c, h r3.Vec) bool {
	return math.Abs(p.X-c.X) > h.X || math.Abs(p.Y-c.Y) > h.Y || math.Abs(p.Z-c.Z) > h.Z
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution returns the mean, sample standard deviation and
// 10/50/90th percentiles of values. values is not modified.
func ComputeDistribution(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, std = stat.MeanStdDev(values, nil)
	if n < 2 {
		std = 0
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.String("mode", s.Mode),
		slog.Int("agents", s.Agents),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("polarization", s.Polarization),
		slog.Float64("spread", s.Spread),
		slog.Float64("mean_neighbors", s.MeanNeighbors),
		slog.Int("outside", s.Outside),
		slog.Int("steps", s.Steps),
		slog.Float64("mean_candidates", s.MeanCandidates),
		slog.Int("mode_switches", s.ModeSwitches),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"mode", s.Mode,
		"agents", s.Agents,
		"speed_mean", s.SpeedMean,
		"speed_p10", s.SpeedP10,
		"speed_p50", s.SpeedP50,
		"speed_p90", s.SpeedP90,
		"polarization", s.Polarization,
		"spread", s.Spread,
		"mean_neighbors", s.MeanNeighbors,
		"outside", s.Outside,
		"mean_candidates", s.MeanCandidates,
	)
}
