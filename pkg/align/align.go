// Package align implements the seam-alignment pass: it
// propagates a poloidal reference angle across circular connections by
// breadth-first search, so that two connected curved surfaces start their
// ring of samples at the same world-space seam instead of tessellating
// independently and leaving a visible crack.
package align

import (
	"math"

	"github.com/dshills/rvmscene/pkg/geom"
	"github.com/dshills/rvmscene/pkg/store"
)

// workItem is one BFS step: the geometry to align, the connection it was
// reached through, and the shared "up" direction in world space. The up
// vector lives in the plane of the connection's interface; every geometry
// that sees it derives its SampleStartAngle from where up lands in its own
// local frame.
type workItem struct {
	geo  store.GeometryHandle
	conn store.ConnectionIndex
	up   geom.Vec3
}

// Run assigns SampleStartAngle to every circular primitive reachable
// through circular connections, consistent with its neighbors up to the
// BFS ordering. Rectangular connections terminate propagation. Running
// time is linear in connections.
func Run(s *store.Store) {
	conns := s.Connections()
	connDone := make([]bool, len(conns)+1) // 1-based, index 0 unused
	geoDone := make(map[store.GeometryHandle]bool)

	for i := range conns {
		idx := store.ConnectionIndex(i + 1)
		if connDone[idx] {
			continue
		}
		c := s.ConnectionAt(idx)
		if c.Flags&store.HasCircularSide == 0 {
			continue
		}
		connDone[idx] = true

		up := seedUp(c.D)
		queue := []workItem{
			{geo: c.Geo[0], conn: idx, up: up},
			{geo: c.Geo[1], conn: idx, up: up},
		}
		for len(queue) > 0 {
			it := queue[0]
			queue = queue[1:]
			if it.geo == 0 || geoDone[it.geo] {
				continue
			}
			g := s.Geometry(it.geo)
			if !isCircular(g.Kind) {
				continue
			}
			geoDone[it.geo] = true

			slot := connSlot(s, it.conn, it.geo)
			localUp := g.M.InverseLinear().TransformVector(it.up)
			g.SampleStartAngle = startAngle(g, slot, localUp)

			for o, next := range g.Connections {
				if next == 0 || connDone[next] {
					continue
				}
				nc := s.ConnectionAt(next)
				if nc.Flags&store.HasCircularSide == 0 {
					continue
				}
				connDone[next] = true
				outUp := transportUp(g, slot, uint8(o), localUp, it.up)
				other := nc.Geo[0]
				if other == it.geo {
					other = nc.Geo[1]
				}
				queue = append(queue, workItem{geo: other, conn: next, up: outUp})
			}
		}
	}
}

// seedUp picks a unit vector orthogonal to the connection direction d,
// keyed on d's dominant axis so the choice is deterministic and never
// degenerate; any unit vector orthogonal to the connection direction
// serves, since only relative phase between neighbors matters.
func seedUp(d geom.Vec3) geom.Vec3 {
	ax, ay, az := abs32(d.X), abs32(d.Y), abs32(d.Z)
	var ref geom.Vec3
	switch {
	case az >= ax && az >= ay:
		ref = geom.Vec3{X: 1}
	case ay >= ax:
		ref = geom.Vec3{Z: 1}
	default:
		ref = geom.Vec3{Y: 1}
	}
	// Project ref off d to guarantee orthogonality even when d is not
	// axis-aligned.
	up := geom.Sub(ref, geom.Scale(geom.Dot(ref, d), d))
	return geom.Normalize(up)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// connSlot returns which of g's face slots connection idx occupies.
func connSlot(s *store.Store, idx store.ConnectionIndex, g store.GeometryHandle) uint8 {
	c := s.ConnectionAt(idx)
	if c.Geo[0] == g {
		return c.Offset[0]
	}
	return c.Offset[1]
}

// isCircular reports whether kind tessellates as a circular cross-section
// primitive whose seam can be rotated: Cylinder, Snout, EllipticalDish,
// SphericalDish, CircularTorus. RectangularTorus is
// excluded even though its "torus" name suggests otherwise: its cross
// section is a flat rectangle, so its ends are rectangular interfaces.
func isCircular(k store.GeometryKind) bool {
	switch k {
	case store.KindCylinder, store.KindSnout, store.KindEllipticalDish,
		store.KindSphericalDish, store.KindCircularTorus:
		return true
	default:
		return false
	}
}

// startAngle maps a local-frame up vector to the sampling phase for g's
// cross-section at the given face slot. Cylinders, snouts, and dishes all
// sample their ring in the local X-Y plane, so the angle is a plain atan2.
// CircularTorus is the special case: its poloidal ring
// lives in the plane spanned by the local radial direction and Z, and the
// radial direction at the far end is rotated by the torus's sweep angle.
func startAngle(g *store.Geometry, slot uint8, localUp geom.Vec3) float32 {
	if g.Kind != store.KindCircularTorus {
		return float32(math.Atan2(float64(localUp.Y), float64(localUp.X)))
	}
	ct := g.CircularTorus()
	radial := geom.Vec3{X: 1}
	if slot == 1 {
		c, s := math.Cos(float64(ct.Angle)), math.Sin(float64(ct.Angle))
		radial = geom.Vec3{X: float32(c), Y: float32(s)}
	}
	return float32(math.Atan2(float64(localUp.Z), float64(geom.Dot(localUp, radial))))
}

// transportUp carries the reference direction from the slot g was entered
// through to the slot it is leaving through, returning the world-space up
// for the next connection. For prismatic kinds (cylinder, snout, dishes)
// the cross-section is constant along the axis and the world up passes
// through unchanged. A CircularTorus rotates its cross-section by the
// sweep angle between its two ends, so the local up is rotated about local
// Z by ±Angle before going back to world space.
func transportUp(g *store.Geometry, inSlot, outSlot uint8, localUp, worldUp geom.Vec3) geom.Vec3 {
	if g.Kind != store.KindCircularTorus || inSlot == outSlot {
		return worldUp
	}
	ct := g.CircularTorus()
	a := float64(ct.Angle)
	if outSlot == 0 {
		a = -a
	}
	c, s := float32(math.Cos(a)), float32(math.Sin(a))
	rotated := geom.Vec3{
		X: c*localUp.X - s*localUp.Y,
		Y: s*localUp.X + c*localUp.Y,
		Z: localUp.Z,
	}
	return geom.Normalize(g.M.TransformVector(rotated))
}
