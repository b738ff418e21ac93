// Package stats implements the counting visitor that populates
// store.Stats summary totals, run as a first pass before
// connect/tessellate so downstream passes can pre-size their scratch
// slices.
package stats

import "github.com/dshills/rvmscene/pkg/store"

// Collect recomputes s's Stats via UpdateCounts and returns the result,
// matching the dedicated-visitor phrasing used elsewhere in the pipeline
// even though the counting itself lives on Store.
func Collect(s *store.Store) store.Stats {
	s.UpdateCounts()
	return s.Stats()
}
