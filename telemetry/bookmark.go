package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFlockFormed BookmarkType = "flock_formed"
	BookmarkContraction BookmarkType = "contraction"
	BookmarkEscape      BookmarkType = "escape"
	BookmarkSteadyState BookmarkType = "steady_state"
)

// Thresholds for bookmark detection.
const (
	formedPolarization = 0.9
	escapeFraction     = 0.05
	steadyWindows      = 5
	steadyVariance     = 0.0004 // polarization std below 0.02
)

// Bookmark is a notable moment in a run, detected from window stats.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector watches successive windows for changes in flock structure.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	escaping     bool // an escape bookmark fired and the flock has not returned yet
	steadyStreak int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	for _, check := range []func(WindowStats) *Bookmark{
		bd.checkFlockFormed,
		bd.checkContraction,
		bd.checkEscape,
		bd.checkSteadyState,
	} {
		if b := check(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns the stored windows, oldest first.
func (bd *BookmarkDetector) getHistory() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	out := make([]WindowStats, 0, bd.historySize)
	out = append(out, bd.history[bd.historyIdx:]...)
	return append(out, bd.history[:bd.historyIdx]...)
}

func (bd *BookmarkDetector) last() (WindowStats, bool) {
	if !bd.historyFull && bd.historyIdx == 0 {
		return WindowStats{}, false
	}
	return bd.history[(bd.historyIdx+bd.historySize-1)%bd.historySize], true
}

func (bd *BookmarkDetector) checkFlockFormed(stats WindowStats) *Bookmark {
	prev, ok := bd.last()
	if !ok || prev.Polarization >= formedPolarization || stats.Polarization < formedPolarization {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkFlockFormed,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Polarization rose from %.2f to %.2f", prev.Polarization, stats.Polarization),
	}
}

func (bd *BookmarkDetector) checkContraction(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.Spread
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.Spread < avg*0.5 {
		return &Bookmark{
			Type:        BookmarkContraction,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Spread %.2f is %.0f%% of average (%.2f)", stats.Spread, stats.Spread/avg*100, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkEscape(stats WindowStats) *Bookmark {
	if stats.Agents == 0 {
		return nil
	}
	frac := float64(stats.Outside) / float64(stats.Agents)
	if frac < escapeFraction {
		bd.escaping = false
		return nil
	}
	if bd.escaping {
		return nil
	}
	bd.escaping = true
	return &Bookmark{
		Type:        BookmarkEscape,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d of %d agents outside the volume", stats.Outside, stats.Agents),
	}
}

func (bd *BookmarkDetector) checkSteadyState(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := make([]WindowStats, 0, 5)
	recent = append(recent, history[len(history)-4:]...)
	recent = append(recent, stats)

	var sum float64
	for _, h := range recent {
		sum += h.Polarization
	}
	mean := sum / float64(len(recent))

	var variance float64
	for _, h := range recent {
		d := h.Polarization - mean
		variance += d * d
	}
	variance /= float64(len(recent))

	if variance < steadyVariance {
		bd.steadyStreak++
	} else {
		bd.steadyStreak = 0
	}

	if bd.steadyStreak == steadyWindows { // trigger exactly once per streak
		return &Bookmark{
			Type:        BookmarkSteadyState,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Polarization steady at %.2f over %d+ windows", mean, steadyWindows),
		}
	}
	return nil
}
