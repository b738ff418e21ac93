// Package pipeline wires the fixed pass order: parse ->
// stats -> connect -> align -> bbox -> colorize -> tessellate. It is the
// only place in the module that sequences the passes; every pass itself
// stays a free function taking a *store.Store; there is no package-level
// state and no global logger.
package pipeline

import (
	"fmt"
	"io"

	"github.com/dshills/rvmscene/pkg/align"
	"github.com/dshills/rvmscene/pkg/bbox"
	"github.com/dshills/rvmscene/pkg/colorize"
	"github.com/dshills/rvmscene/pkg/connect"
	"github.com/dshills/rvmscene/pkg/rvmatt"
	"github.com/dshills/rvmscene/pkg/rvmbin"
	"github.com/dshills/rvmscene/pkg/rvmcfg"
	"github.com/dshills/rvmscene/pkg/rvmlog"
	"github.com/dshills/rvmscene/pkg/stats"
	"github.com/dshills/rvmscene/pkg/store"
	"github.com/dshills/rvmscene/pkg/tessellate"
)

// Options bundles everything a caller can vary about one pipeline run
// beyond the tessellation/connection tunables already in rvmcfg.Config.
type Options struct {
	Config rvmcfg.Config

	// AttributeFile, if non-nil, is read and attached to matching groups
	// after parsing, before any other pass runs.
	AttributeFile io.Reader

	// ColorAttribute names a group attribute key whose value overrides the
	// material-derived color (see pkg/colorize.Run); empty disables the
	// override.
	ColorAttribute string

	// KeepNames/DiscardNames apply the group-name filter passes
	// (pkg/filter) after parsing and attribute attachment, before stats.
	// At most one of the two should be non-empty; Keep takes precedence.
	KeepNames, DiscardNames []string

	// RunTessellate controls whether the tessellate pass runs at all; some
	// callers (a pure connectivity report, a binary round-trip check) have
	// no use for triangulation and can skip the module's most expensive
	// pass.
	RunTessellate bool
}

// DefaultOptions returns an Options with rvmcfg.DefaultConfig and
// tessellation enabled.
func DefaultOptions() Options {
	return Options{Config: rvmcfg.DefaultConfig(), RunTessellate: true}
}

// Result reports what each pass produced, for callers that want to print a
// summary (the CLI's -verbose output) without re-deriving it.
type Result struct {
	Stats            store.Stats
	Connections      int
	Components       int
	TessellateReport tessellate.Report
}

// Run parses r into a fresh Store and runs every enabled pass in the fixed
// dependency order. On parse failure it returns the error rvmbin.Parse
// produced; every later pass is fatal-free by construction, since
// structural errors are a parser-only concern.
func Run(r io.Reader, opt Options, log rvmlog.Logger) (*store.Store, Result, error) {
	if log == nil {
		log = rvmlog.Nop{}
	}

	s, err := rvmbin.Parse(r, log)
	if err != nil {
		return nil, Result{}, fmt.Errorf("pipeline: parse: %w", err)
	}

	if opt.AttributeFile != nil {
		tree, err := rvmatt.Parse(opt.AttributeFile)
		if err != nil {
			return nil, Result{}, fmt.Errorf("pipeline: attribute file: %w", err)
		}
		rvmatt.Attach(s, tree)
	}

	ApplyFilters(s, log, opt.KeepNames, opt.DiscardNames)

	var res Result
	res.Stats = stats.Collect(s)

	if err := connect.Find(s, opt.Config); err != nil {
		return nil, Result{}, fmt.Errorf("pipeline: connect: %w", err)
	}
	res.Connections = len(s.Connections())
	res.Components = len(connect.Components(s))

	align.Run(s)
	bbox.Run(s)
	colorize.Run(s, log, opt.ColorAttribute)

	if opt.RunTessellate {
		res.TessellateReport = tessellate.Run(s, opt.Config, log)
	}

	s.ForwardGroupIDToGeometries()
	return s, res, nil
}
