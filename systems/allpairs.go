package systems

import "iter"

// AllPairs yields every agent index in [0, n). Used in place of Candidates
// for the brute-force solver; AccumulateNeighbors skips the self index.
func AllPairs(n int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; i < n; i++ {
			if !yield(i) {
				return
			}
		}
	}
}
