// Package connect implements the anchor-based connection finder: it
// derives candidate attachment points from each primitive's geometry,
// greedily pairs antiparallel anchors that coincide within an epsilon, and
// records the resulting two-way links on the store. It also walks the
// resulting graph into connected components for statistics and culling.
package connect

import (
	"github.com/dshills/rvmscene/pkg/geom"
	"github.com/dshills/rvmscene/pkg/rvmcfg"
	"github.com/dshills/rvmscene/pkg/store"
)

// Find derives every connection in s by greedy matching: anchors with
// antiparallel normals (dot < cfg.NormalDotThreshold) and squared distance
// under cfg.ConnectionEpsilon^2 are paired, closest match first, each
// anchor withdrawn once used.
func Find(s *store.Store, cfg rvmcfg.Config) error {
	// Scratch is pre-sized from the cached Stats: no kind yields more than
	// six anchors.
	anchors := make([]anchor, 0, 6*s.Stats().Geometries)

	s.AllGeometries(func(h store.GeometryHandle, g *store.Geometry) {
		local, kind := geometryAnchors(g)
		for _, la := range local {
			anchors = append(anchors, anchor{
				geo:  h,
				slot: la.slot,
				p:    g.M.TransformPoint(la.p),
				n:    g.M.TransformNormal(la.n),
				kind: kind,
			})
		}
	})

	eps2 := float32(cfg.ConnectionEpsilon * cfg.ConnectionEpsilon)
	dotMax := float32(cfg.NormalDotThreshold)

	active := anchors
	for j := 0; j < len(active); {
		a0 := active[j]
		best := -1
		var bestDist float32
		for i := j + 1; i < len(active); i++ {
			a1 := active[i]
			dot := geom.Dot(a0.n, a1.n)
			if dot >= dotMax {
				continue
			}
			d2 := geom.DistanceSquared(a0.p, a1.p)
			if d2 >= eps2 {
				continue
			}
			if best == -1 || d2 < bestDist {
				best = i
				bestDist = d2
			}
		}
		if best == -1 {
			j++
			continue
		}
		a1 := active[best]
		connect(s, a0, a1)

		// Withdraw both matched anchors: swap-remove the partner, then
		// swap-remove j itself, leaving whatever lands at j for the next
		// iteration (j is not advanced).
		last := len(active) - 1
		active[best] = active[last]
		active = active[:last]

		last = len(active) - 1
		active[j] = active[last]
		active = active[:last]
	}

	return nil
}

// connect records a0<->a1 as a single Connection and writes the back
// references onto both geometries' Connections slots.
func connect(s *store.Store, a0, a1 anchor) {
	idx := s.NewConnection()
	c := s.ConnectionAt(idx)
	c.Geo = [2]store.GeometryHandle{a0.geo, a1.geo}
	c.Offset = [2]uint8{a0.slot, a1.slot}
	c.P = geom.Scale(0.5, geom.Add(a0.p, a1.p))
	c.D = geom.Normalize(geom.Sub(a0.n, a1.n))
	c.Flags = a0.kind | a1.kind

	g0 := s.Geometry(a0.geo)
	g1 := s.Geometry(a1.geo)
	g0.Connections[a0.slot] = idx
	g1.Connections[a1.slot] = idx
}

// Component is a maximal set of geometries reachable from one another
// through recorded connections, with the world bbox enclosing all of them.
type Component struct {
	Geometries []store.GeometryHandle
	BBox       geom.BBox3
	Size       float32
}

// Components walks the connection graph with an explicit-stack DFS,
// grouping geometries into connected components and rolling up each
// component's world bbox.
func Components(s *store.Store) []Component {
	visited := make(map[store.GeometryHandle]bool)
	var comps []Component

	s.AllGeometries(func(h store.GeometryHandle, _ *store.Geometry) {
		if visited[h] {
			return
		}
		var comp Component
		stack := []store.GeometryHandle{h}
		visited[h] = true
		for len(stack) > 0 {
			n := len(stack) - 1
			cur := stack[n]
			stack = stack[:n]

			g := s.Geometry(cur)
			comp.Geometries = append(comp.Geometries, cur)
			comp.BBox.EngulfBox(geom.TransformBBox(g.M, g.BBoxLocal))

			for _, idx := range g.Connections {
				if idx == 0 {
					continue
				}
				c := s.ConnectionAt(idx)
				other := c.Geo[0]
				if other == cur {
					other = c.Geo[1]
				}
				if other == 0 || visited[other] {
					continue
				}
				visited[other] = true
				stack = append(stack, other)
			}
		}
		d := geom.Sub(comp.BBox.Max, comp.BBox.Min)
		comp.Size = max3(d.X, d.Y, d.Z)
		comps = append(comps, comp)
	})

	return comps
}

func max3(a, b, c float32) float32 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
