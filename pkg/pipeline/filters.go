package pipeline

import (
	"github.com/dshills/rvmscene/pkg/filter"
	"github.com/dshills/rvmscene/pkg/rvmlog"
	"github.com/dshills/rvmscene/pkg/store"
)

// ApplyFilters runs the group-name keep/discard pass if either name list
// is non-empty. Keep
// takes precedence over Discard when both are given, since applying both
// independently would be ambiguous about intersection vs union semantics.
func ApplyFilters(s *store.Store, log rvmlog.Logger, keep, discard []string) {
	switch {
	case len(keep) > 0:
		filter.Keep(s, log, keep)
	case len(discard) > 0:
		filter.Discard(s, log, discard)
	}
}
