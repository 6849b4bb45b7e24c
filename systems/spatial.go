package systems

import (
	"iter"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

// CellCoord identifies one grid bucket.
type CellCoord struct {
	X, Y, Z int
}

// GridParams describes the uniform grid laid over the simulation volume.
type GridParams struct {
	Min      r3.Vec // minimum corner
	CellSize float64
	Counts   [3]int // cells per axis covering the volume
}

// gridShard owns the buckets whose coordinates hash to it.
type gridShard struct {
	mu    sync.Mutex
	cells map[CellCoord][]int
	_     [48]byte // pad to a cache line
}

// SpatialGrid is a multi-valued map from cell coordinate to agent index.
// Insert is safe for concurrent use; reads must not start until every
// insert of the current build has returned.
type SpatialGrid struct {
	shards []gridShard
	mask   uint64
}

// DefaultShards is the shard count used by the simulator.
const DefaultShards = 64

// NewSpatialGrid creates an empty grid. shards is rounded up to a power of two.
func NewSpatialGrid(shards int) *SpatialGrid {
	n := 1
	for n < shards {
		n <<= 1
	}
	return &SpatialGrid{
		shards: make([]gridShard, n),
		mask:   uint64(n - 1),
	}
}

// Build empties the grid for a new step. Bucket storage from the previous
// step is reused; capacityHint sizes shards that have not been allocated yet.
func (g *SpatialGrid) Build(capacityHint int) {
	perShard := capacityHint/len(g.shards) + 1
	for i := range g.shards {
		s := &g.shards[i]
		if s.cells == nil {
			s.cells = make(map[CellCoord][]int, perShard)
			continue
		}
		for k, v := range s.cells {
			s.cells[k] = v[:0]
		}
	}
}

// Insert files agent under cell c.
func (g *SpatialGrid) Insert(c CellCoord, agent int) {
	s := &g.shards[hashCell(c)&g.mask]
	s.mu.Lock()
	if s.cells == nil {
		s.cells = make(map[CellCoord][]int)
	}
	s.cells[c] = append(s.cells[c], agent)
	s.mu.Unlock()
}

// EntriesAt yields every agent index filed under exactly c.
func (g *SpatialGrid) EntriesAt(c CellCoord) iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, idx := range g.bucket(c) {
			if !yield(idx) {
				return
			}
		}
	}
}

// Len returns the number of entries in the grid.
func (g *SpatialGrid) Len() int {
	n := 0
	for i := range g.shards {
		for _, v := range g.shards[i].cells {
			n += len(v)
		}
	}
	return n
}

func (g *SpatialGrid) bucket(c CellCoord) []int {
	return g.shards[hashCell(c)&g.mask].cells[c]
}

// hashCell mixes the coordinate with large primes.
func hashCell(c CellCoord) uint64 {
	const (
		p1 = 73856093
		p2 = 19349663
		p3 = 83492791
	)
	h := uint64(c.X*p1 ^ c.Y*p2 ^ c.Z*p3)
	// fold high bits down so the shard mask sees them
	return h ^ h>>17
}

// NeighborWindow returns the inclusive cell range searched around c.
// The low side clamps to 0. On the high side, when c+1 would reach the
// cell count the window stops at c itself rather than at count-1.
func NeighborWindow(c CellCoord, counts [3]int) (lo, hi CellCoord) {
	lo.X, hi.X = windowAxis(c.X, counts[0])
	lo.Y, hi.Y = windowAxis(c.Y, counts[1])
	lo.Z, hi.Z = windowAxis(c.Z, counts[2])
	return lo, hi
}

func windowAxis(i, count int) (lo, hi int) {
	lo = i - 1
	if lo < 0 {
		lo = 0
	}
	hi = i + 1
	if hi >= count {
		hi = i
	}
	return lo, hi
}

// Candidates yields every agent filed in the 3x3x3 window around p's cell.
// The caller still applies exact distance checks.
func Candidates(p r3.Vec, grid *SpatialGrid, g GridParams) iter.Seq[int] {
	lo, hi := NeighborWindow(GridIndex(p, g), g.Counts)
	return func(yield func(int) bool) {
		for x := lo.X; x <= hi.X; x++ {
			for y := lo.Y; y <= hi.Y; y++ {
				for z := lo.Z; z <= hi.Z; z++ {
					for _, idx := range grid.bucket(CellCoord{x, y, z}) {
						if !yield(idx) {
							return
						}
					}
				}
			}
		}
	}
}
