package tessellate

import (
	"math"

	"github.com/dshills/rvmscene/pkg/geom"
	"github.com/dshills/rvmscene/pkg/rvmlog"
	"github.com/dshills/rvmscene/pkg/store"
)

// buildGeneralPolygon triangulates a polygon with an arbitrary outer
// contour and zero or more hole contours: project onto the polygon's
// dominant plane, bridge each hole into the outer loop, then ear-clip.
// Normals are carried from the source vertices through the remap, never
// recomputed. A polygon that yields zero triangles is skipped silently.
func buildGeneralPolygon(b *builder, geoID uint32, poly store.Polygon, warn *rvmlog.Deduper) {
	// Flatten all contour vertices; ring i occupies a contiguous index
	// range so the 2D loops below can refer back to positions and normals.
	var verts []store.Vertex
	var rings [][]int
	for _, c := range poly.Contours {
		if len(c.Vertices) < 3 {
			warn.WarnOnce(rvmlog.String("degenerate-contour-", geoID),
				"geometry %d: degenerate contour with %d vertices", geoID, len(c.Vertices))
			continue
		}
		ring := make([]int, len(c.Vertices))
		for i, v := range c.Vertices {
			ring[i] = len(verts)
			verts = append(verts, v)
		}
		rings = append(rings, ring)
	}
	if len(rings) == 0 {
		return
	}

	n := newellNormal(verts, rings[0])
	u, v := planeBasis(n)

	// Project into the plane, centering on the polygon's bbox midpoint
	// for numeric conditioning.
	var bb geom.BBox3
	for _, vv := range verts {
		bb.Engulf(vv.Pos)
	}
	mid := geom.Scale(0.5, geom.Add(bb.Min, bb.Max))
	pt2 := make([]vec2, len(verts))
	for i, vv := range verts {
		rel := geom.Sub(vv.Pos, mid)
		pt2[i] = vec2{geom.Dot(rel, u), geom.Dot(rel, v)}
	}

	outer := rings[0]
	if signedArea(pt2, outer) < 0 {
		reverse(outer)
	}
	for _, hole := range rings[1:] {
		if signedArea(pt2, hole) > 0 {
			reverse(hole)
		}
		outer = bridgeHole(pt2, outer, hole)
	}

	tris := earClip(pt2, outer)
	if len(tris) == 0 {
		return
	}

	remap := make(map[int]uint32, len(verts))
	emit := func(i int) uint32 {
		if idx, ok := remap[i]; ok {
			return idx
		}
		idx := b.addVertex(verts[i].Pos, verts[i].Normal)
		remap[i] = idx
		return idx
	}
	for _, t := range tris {
		b.addTri(emit(t[0]), emit(t[1]), emit(t[2]))
	}
}

type vec2 struct{ x, y float32 }

// newellNormal computes the polygon normal of one ring by Newell's method,
// robust against concave and slightly non-planar contours.
func newellNormal(verts []store.Vertex, ring []int) geom.Vec3 {
	var n geom.Vec3
	for i := range ring {
		a := verts[ring[i]].Pos
		c := verts[ring[(i+1)%len(ring)]].Pos
		n.X += (a.Y - c.Y) * (a.Z + c.Z)
		n.Y += (a.Z - c.Z) * (a.X + c.X)
		n.Z += (a.X - c.X) * (a.Y + c.Y)
	}
	return geom.Normalize(n)
}

// planeBasis returns two unit vectors spanning the plane orthogonal to n.
func planeBasis(n geom.Vec3) (geom.Vec3, geom.Vec3) {
	ref := geom.Vec3{X: 1}
	if abs32(n.X) > abs32(n.Y) && abs32(n.X) > abs32(n.Z) {
		ref = geom.Vec3{Y: 1}
	}
	u := geom.Normalize(geom.Cross(n, ref))
	v := geom.Cross(n, u)
	return u, v
}

func signedArea(pts []vec2, ring []int) float32 {
	var a float32
	for i := range ring {
		p, q := pts[ring[i]], pts[ring[(i+1)%len(ring)]]
		a += p.x*q.y - q.x*p.y
	}
	return a / 2
}

func reverse(ring []int) {
	for i, j := 0, len(ring)-1; i < j; i, j = i+1, j-1 {
		ring[i], ring[j] = ring[j], ring[i]
	}
}

// bridgeHole splices hole into outer with a zero-width bridge between the
// hole's rightmost vertex and the nearest outer vertex at or beyond it,
// producing a single (self-touching) loop ear clipping can consume.
func bridgeHole(pts []vec2, outer, hole []int) []int {
	hi := 0
	for i := range hole {
		if pts[hole[i]].x > pts[hole[hi]].x {
			hi = i
		}
	}
	hp := pts[hole[hi]]

	oi, best := -1, float32(math.MaxFloat32)
	for i := range outer {
		op := pts[outer[i]]
		if op.x < hp.x {
			continue
		}
		dx, dy := op.x-hp.x, op.y-hp.y
		if d := dx*dx + dy*dy; d < best {
			best, oi = d, i
		}
	}
	if oi == -1 {
		// Degenerate projection; fall back to the nearest outer vertex
		// regardless of side.
		for i := range outer {
			op := pts[outer[i]]
			dx, dy := op.x-hp.x, op.y-hp.y
			if d := dx*dx + dy*dy; d < best {
				best, oi = d, i
			}
		}
	}

	merged := make([]int, 0, len(outer)+len(hole)+2)
	merged = append(merged, outer[:oi+1]...)
	for k := 0; k <= len(hole); k++ {
		merged = append(merged, hole[(hi+k)%len(hole)])
	}
	merged = append(merged, outer[oi:]...)
	return merged
}

// earClip triangulates the CCW loop ring by iteratively removing ears. A
// full sweep with no ear found (a self-intersecting or fully degenerate
// remainder) aborts, leaving whatever was emitted so far.
func earClip(pts []vec2, ring []int) [][3]int {
	work := append([]int(nil), ring...)
	var tris [][3]int

	for len(work) > 3 {
		clipped := false
		for i := 0; i < len(work); i++ {
			p := work[(i+len(work)-1)%len(work)]
			c := work[i]
			n := work[(i+1)%len(work)]
			if !isEar(pts, work, p, c, n) {
				continue
			}
			tris = append(tris, [3]int{p, c, n})
			work = append(work[:i], work[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			return tris
		}
	}
	if len(work) == 3 && cross2(pts[work[0]], pts[work[1]], pts[work[2]]) > 0 {
		tris = append(tris, [3]int{work[0], work[1], work[2]})
	}
	return tris
}

func cross2(a, b, c vec2) float32 {
	return (b.x-a.x)*(c.y-a.y) - (b.y-a.y)*(c.x-a.x)
}

func isEar(pts []vec2, ring []int, p, c, n int) bool {
	if cross2(pts[p], pts[c], pts[n]) <= 0 {
		return false
	}
	for _, o := range ring {
		if o == p || o == c || o == n {
			continue
		}
		if pointInTri(pts[o], pts[p], pts[c], pts[n]) {
			return false
		}
	}
	return true
}

func pointInTri(q, a, b, c vec2) bool {
	d1 := cross2(a, b, q)
	d2 := cross2(b, c, q)
	d3 := cross2(c, a, q)
	return d1 > 0 && d2 > 0 && d3 > 0
}
