package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_FlockFormed(t *testing.T) {
	bd := NewBookmarkDetector(10)

	if bms := bd.Check(WindowStats{Polarization: 0.95}); hasBookmark(bms, BookmarkFlockFormed) {
		t.Error("first window has nothing to compare against")
	}

	bd.Check(WindowStats{WindowEndTick: 600, Polarization: 0.4})
	bms := bd.Check(WindowStats{WindowEndTick: 1200, Polarization: 0.92})
	if !hasBookmark(bms, BookmarkFlockFormed) {
		t.Error("expected flock_formed bookmark")
	}

	// Staying above the threshold does not fire again
	bms = bd.Check(WindowStats{WindowEndTick: 1800, Polarization: 0.97})
	if hasBookmark(bms, BookmarkFlockFormed) {
		t.Error("flock_formed fired twice")
	}
}

func TestBookmarkDetector_Contraction(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 600), Spread: 10})
	}

	bms := bd.Check(WindowStats{WindowEndTick: 3000, Spread: 4})
	if !hasBookmark(bms, BookmarkContraction) {
		t.Error("expected contraction bookmark")
	}
}

func TestBookmarkDetector_Escape(t *testing.T) {
	bd := NewBookmarkDetector(10)

	if bms := bd.Check(WindowStats{Agents: 100, Outside: 2}); hasBookmark(bms, BookmarkEscape) {
		t.Error("2% outside should not count as an escape")
	}
	if bms := bd.Check(WindowStats{Agents: 100, Outside: 20}); !hasBookmark(bms, BookmarkEscape) {
		t.Error("expected escape bookmark")
	}
	if bms := bd.Check(WindowStats{Agents: 100, Outside: 30}); hasBookmark(bms, BookmarkEscape) {
		t.Error("escape fired again before the flock returned")
	}

	bd.Check(WindowStats{Agents: 100})
	if bms := bd.Check(WindowStats{Agents: 100, Outside: 10}); !hasBookmark(bms, BookmarkEscape) {
		t.Error("expected a second escape after the flock returned")
	}
}

func TestBookmarkDetector_SteadyState(t *testing.T) {
	bd := NewBookmarkDetector(10)

	fired := -1
	for i := 0; i < 12; i++ {
		bms := bd.Check(WindowStats{WindowEndTick: int32(i * 600), Polarization: 0.8})
		if hasBookmark(bms, BookmarkSteadyState) {
			if fired >= 0 {
				t.Fatalf("steady_state fired twice (windows %d and %d)", fired, i)
			}
			fired = i
		}
	}
	if fired != 8 {
		t.Errorf("steady_state fired at window %d, want 8", fired)
	}
}

func TestBookmarkDetector_HistoryWraps(t *testing.T) {
	bd := NewBookmarkDetector(5)
	for i := 0; i < 7; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i)})
	}

	h := bd.getHistory()
	if len(h) != 5 || h[0].WindowEndTick != 2 || h[4].WindowEndTick != 6 {
		t.Errorf("history = %v, want ticks 2..6 oldest first", h)
	}
	if last, _ := bd.last(); last.WindowEndTick != 6 {
		t.Errorf("last = %d, want 6", last.WindowEndTick)
	}
}
