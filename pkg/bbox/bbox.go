// Package bbox implements the bottom-up world bbox rollup: each
// group's BBoxWorld is the union of its own geometries' world bboxes and
// its children's already-computed world bboxes.
package bbox

import (
	"github.com/dshills/rvmscene/pkg/geom"
	"github.com/dshills/rvmscene/pkg/store"
)

// Run computes BBoxWorld for every group in s via a single depth-first
// pass.
func Run(s *store.Store) {
	v := &rollup{s: s, stack: make([]geom.BBox3, 0, 32)}
	s.Apply(v)
}

type rollup struct {
	store.BaseVisitor
	s     *store.Store
	stack []geom.BBox3
}

func (r *rollup) BeginGroup(store.NodeHandle, *store.Node) {
	r.stack = append(r.stack, geom.BBox3{})
}

func (r *rollup) Geometry(_ store.NodeHandle, _ store.GeometryHandle, g *store.Geometry) {
	top := len(r.stack) - 1
	r.stack[top].EngulfBox(geom.TransformBBox(g.M, g.BBoxLocal))
}

func (r *rollup) EndGroup(_ store.NodeHandle, n *store.Node) {
	top := len(r.stack) - 1
	n.Group.BBoxWorld = r.stack[top]
	r.stack = r.stack[:top]
	if len(r.stack) > 0 {
		r.stack[len(r.stack)-1].EngulfBox(n.Group.BBoxWorld)
	}
	emitBoxEdges(r.s, n.Group.BBoxWorld)
}

// groupBoxRGB is the neutral grey used for bbox diagnostic edges; it carries
// no material meaning, unlike colorize's palette.
const groupBoxRGB = 0x606060

// emitBoxEdges records b's twelve edges as debug lines for the diagnostic
// SVG export, skipped for unset boxes (empty groups).
func emitBoxEdges(s *store.Store, b geom.BBox3) {
	if !b.Set {
		return
	}
	c := b.Corners()
	edges := [12][2]int{
		{0, 1}, {1, 3}, {3, 2}, {2, 0},
		{4, 5}, {5, 7}, {7, 6}, {6, 4},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
	for _, e := range edges {
		s.AddDebugLine(c[e[0]], c[e[1]], groupBoxRGB)
	}
}
