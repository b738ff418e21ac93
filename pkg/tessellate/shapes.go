package tessellate

import (
	"math"

	"github.com/dshills/rvmscene/pkg/geom"
	"github.com/dshills/rvmscene/pkg/rvmcfg"
	"github.com/dshills/rvmscene/pkg/rvmlog"
	"github.com/dshills/rvmscene/pkg/store"
)

// capElision reports, for the two canonical end slots of a capped
// primitive, whether that end's cap should be omitted because a connected
// neighbor presents a matching interface: a circular interface
// whose radius agrees within cfg.CapRadiusTolerance, or a rectangular
// torus end whose cross-section rectangle agrees within
// cfg.CapVertexTolerance.
func capElision(s *store.Store, h store.GeometryHandle, g *store.Geometry, cfg rvmcfg.Config) (elideA, elideB bool) {
	switch g.Kind {
	case store.KindCylinder, store.KindSnout, store.KindCircularTorus:
		elideA = elideCircularSlot(s, h, g, 0, cfg)
		elideB = elideCircularSlot(s, h, g, 1, cfg)
	case store.KindEllipticalDish, store.KindSphericalDish:
		elideA = elideCircularSlot(s, h, g, 0, cfg)
	case store.KindRectangularTorus:
		elideA = elideRectangularSlot(s, h, g, 0, cfg)
		elideB = elideRectangularSlot(s, h, g, 1, cfg)
	}
	return
}

func connectionOther(s *store.Store, idx store.ConnectionIndex, h store.GeometryHandle) (store.GeometryHandle, uint8) {
	c := s.ConnectionAt(idx)
	if c.Geo[0] == h {
		return c.Geo[1], c.Offset[1]
	}
	return c.Geo[0], c.Offset[0]
}

func elideCircularSlot(s *store.Store, h store.GeometryHandle, g *store.Geometry, slot uint8, cfg rvmcfg.Config) bool {
	idx := g.Connections[slot]
	if idx == 0 {
		return false
	}
	other, otherSlot := connectionOther(s, idx, h)
	if other == 0 {
		return false
	}
	r0 := faceRadius(g, slot)
	r1 := faceRadius(s.Geometry(other), otherSlot)
	if r0 <= 0 || r1 <= 0 {
		return false
	}
	return math.Abs(r0-r1)/math.Max(r0, r1) <= cfg.CapRadiusTolerance
}

// elideRectangularSlot matches two rectangular torus ends by their
// cross-section rectangles: both the radial width and the height must
// agree within the vertex tolerance for the quads to coincide.
func elideRectangularSlot(s *store.Store, h store.GeometryHandle, g *store.Geometry, slot uint8, cfg rvmcfg.Config) bool {
	idx := g.Connections[slot]
	if idx == 0 {
		return false
	}
	other, _ := connectionOther(s, idx, h)
	if other == 0 {
		return false
	}
	og := s.Geometry(other)
	if og.Kind != store.KindRectangularTorus {
		return false
	}
	a, b := g.RectangularTorus(), og.RectangularTorus()
	tol := float32(cfg.CapVertexTolerance)
	return abs32(a.OuterRadius-a.InnerRadius-(b.OuterRadius-b.InnerRadius)) <= tol &&
		abs32(a.Height-b.Height) <= tol
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func buildGeometry(b *builder, g *store.Geometry, cfg rvmcfg.Config, elideA, elideB bool, warn *rvmlog.Deduper) {
	switch g.Kind {
	case store.KindBox:
		buildBox(b, g.Box())
	case store.KindPyramid:
		buildPyramid(b, g.Pyramid())
	case store.KindCylinder:
		c := g.Cylinder()
		buildConeLike(b, cfg, g.SampleStartAngle, c.Radius, c.Radius, c.Height, [2]float32{}, [2]float32{}, [2]float32{}, elideA, elideB)
	case store.KindSnout:
		sn := g.Snout()
		buildConeLike(b, cfg, g.SampleStartAngle, sn.RadiusBottom, sn.RadiusTop, sn.Height, sn.Offset, sn.BShear, sn.TShear, elideA, elideB)
	case store.KindEllipticalDish:
		d := g.EllipticalDish()
		a := d.Diameter / 2
		zscale := float32(1)
		if a > 0 {
			zscale = d.Radius / a
		}
		buildRingStack(b, cfg, g.SampleStartAngle, a, zscale, 0, math.Pi/2, elideA)
	case store.KindSphericalDish:
		d := g.SphericalDish()
		r, hh := float64(d.Diameter)/2, float64(d.Height)
		if hh <= 0 {
			break
		}
		// The dish is a slice of the sphere through its base circle: the
		// sphere radius and polar arc follow from the base radius / height
		// ratio.
		sphereR := (r*r + hh*hh) / (2 * hh)
		arc := math.Acos((sphereR - hh) / sphereR)
		buildRingStack(b, cfg, g.SampleStartAngle, float32(sphereR), 1, float32(hh-sphereR), arc, elideA)
	case store.KindSphere:
		r := g.Sphere().Diameter / 2
		buildRingStack(b, cfg, 0, r, 1, 0, math.Pi, false)
	case store.KindRectangularTorus:
		buildRectangularTorus(b, cfg, g.RectangularTorus(), elideA, elideB)
	case store.KindCircularTorus:
		buildCircularTorus(b, cfg, g.CircularTorus(), g.SampleStartAngle, elideA, elideB)
	case store.KindFacetGroup:
		buildFacetGroup(b, g, warn)
	}
}

// --- Box / Pyramid: explicit quads -----------------------------------------

func buildBox(b *builder, box *store.Box) {
	x, y, z := 0.5*box.Lengths[0], 0.5*box.Lengths[1], 0.5*box.Lengths[2]
	quadFace(b, geom.Vec3{X: -x, Y: -y, Z: -z}, geom.Vec3{X: -x, Y: y, Z: -z}, geom.Vec3{X: -x, Y: y, Z: z}, geom.Vec3{X: -x, Y: -y, Z: z}, geom.Vec3{X: -1})
	quadFace(b, geom.Vec3{X: x, Y: -y, Z: -z}, geom.Vec3{X: x, Y: -y, Z: z}, geom.Vec3{X: x, Y: y, Z: z}, geom.Vec3{X: x, Y: y, Z: -z}, geom.Vec3{X: 1})
	quadFace(b, geom.Vec3{X: -x, Y: -y, Z: -z}, geom.Vec3{X: x, Y: -y, Z: -z}, geom.Vec3{X: x, Y: -y, Z: z}, geom.Vec3{X: -x, Y: -y, Z: z}, geom.Vec3{Y: -1})
	quadFace(b, geom.Vec3{X: -x, Y: y, Z: -z}, geom.Vec3{X: -x, Y: y, Z: z}, geom.Vec3{X: x, Y: y, Z: z}, geom.Vec3{X: x, Y: y, Z: -z}, geom.Vec3{Y: 1})
	quadFace(b, geom.Vec3{X: -x, Y: -y, Z: -z}, geom.Vec3{X: -x, Y: y, Z: -z}, geom.Vec3{X: x, Y: y, Z: -z}, geom.Vec3{X: x, Y: -y, Z: -z}, geom.Vec3{Z: -1})
	quadFace(b, geom.Vec3{X: -x, Y: -y, Z: z}, geom.Vec3{X: x, Y: -y, Z: z}, geom.Vec3{X: x, Y: y, Z: z}, geom.Vec3{X: -x, Y: y, Z: z}, geom.Vec3{Z: 1})
}

func quadFace(b *builder, p0, p1, p2, p3, n geom.Vec3) {
	a := b.addVertex(p0, n)
	bb := b.addVertex(p1, n)
	c := b.addVertex(p2, n)
	d := b.addVertex(p3, n)
	b.addQuad(a, bb, c, d)
}

func buildPyramid(b *builder, p *store.Pyramid) {
	bx, by := 0.5*p.Bottom[0], 0.5*p.Bottom[1]
	tx, ty := 0.5*p.Top[0], 0.5*p.Top[1]
	ox, oy := 0.5*p.Offset[0], 0.5*p.Offset[1]
	h2 := 0.5 * p.Height

	bot := [4]geom.Vec3{
		{X: -bx - ox, Y: -by - oy, Z: -h2}, {X: bx - ox, Y: -by - oy, Z: -h2},
		{X: bx - ox, Y: by - oy, Z: -h2}, {X: -bx - ox, Y: by - oy, Z: -h2},
	}
	top := [4]geom.Vec3{
		{X: -tx + ox, Y: -ty + oy, Z: h2}, {X: tx + ox, Y: -ty + oy, Z: h2},
		{X: tx + ox, Y: ty + oy, Z: h2}, {X: -tx + ox, Y: ty + oy, Z: h2},
	}

	if bx > 0 && by > 0 {
		quadFace(b, bot[3], bot[2], bot[1], bot[0], geom.Vec3{Z: -1})
	}
	if tx > 0 && ty > 0 {
		quadFace(b, top[0], top[1], top[2], top[3], geom.Vec3{Z: 1})
	}
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		n := sideNormal(bot[i], bot[j], top[j], top[i])
		quadFace(b, bot[i], bot[j], top[j], top[i], n)
	}
}

func sideNormal(a, c2, c3, d geom.Vec3) geom.Vec3 {
	e1 := geom.Sub(c2, a)
	e2 := geom.Sub(d, a)
	return geom.Normalize(geom.Cross(e1, e2))
}

// --- Cylinder / Snout: single ring each end, optional caps -----------------

// shearNormal returns the outward end-plane normal for the given shear
// angles, pointing along sign*Z before tilting (the same construction the
// connection finder's snout anchors use, so caps and anchors agree).
func shearNormal(sx, sy float64, sign float32) geom.Vec3 {
	return geom.Vec3{
		X: float32(sign) * float32(math.Sin(sx)*math.Cos(sy)),
		Y: float32(sign) * float32(math.Sin(sy)),
		Z: sign * float32(math.Cos(sx)*math.Cos(sy)),
	}
}

// shearZ solves the end plane n*(p-p0)=0 for the z displacement of a ring
// point at (dx, dy) relative to the end's center.
func shearZ(n geom.Vec3, dx, dy float32) float32 {
	if n.Z == 0 {
		return 0
	}
	return -(n.X*dx + n.Y*dy) / n.Z
}

func buildConeLike(b *builder, cfg rvmcfg.Config, startAngle, rb, rt, height float32, offset, bshear, tshear [2]float32, elideA, elideB bool) {
	n := sampleCount(cfg, 2*math.Pi, math.Max(float64(rb), float64(rt)))
	h2 := 0.5 * height
	ox, oy := 0.5*offset[0], 0.5*offset[1]

	nBot := shearNormal(float64(bshear[0]), float64(bshear[1]), -1)
	nTop := shearNormal(float64(tshear[0]), float64(tshear[1]), 1)

	bottom := make([]uint32, n)
	top := make([]uint32, n)
	botPts := make([]geom.Vec3, n)
	topPts := make([]geom.Vec3, n)
	slant := geom.Normalize(geom.Vec3{X: rb - rt, Y: 0, Z: height})

	for i := 0; i < n; i++ {
		ang := startAngle + 2*math.Pi*float32(i)/float32(n)
		c, s := float32(math.Cos(float64(ang))), float32(math.Sin(float64(ang)))
		pb := geom.Vec3{X: rb*c - ox, Y: rb*s - oy, Z: -h2 + shearZ(nBot, rb*c, rb*s)}
		pt := geom.Vec3{X: rt*c + ox, Y: rt*s + oy, Z: h2 + shearZ(nTop, rt*c, rt*s)}
		ns := geom.Normalize(geom.Vec3{X: c * slant.Z, Y: s * slant.Z, Z: slant.X})
		botPts[i], topPts[i] = pb, pt
		bottom[i] = b.addVertex(pb, ns)
		top[i] = b.addVertex(pt, ns)
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		b.addQuad(bottom[i], bottom[j], top[j], top[i])
	}
	// Caps get their own vertices so the flat end normal doesn't bleed
	// into the shell's smooth shading.
	if !elideA && rb > 0 {
		ringCap(b, botPts, nBot, true)
	}
	if !elideB && rt > 0 {
		ringCap(b, topPts, nTop, false)
	}
}

// ringCap emits a flat ear-fan cap over pts with a uniform normal,
// allocating fresh vertices.
func ringCap(b *builder, pts []geom.Vec3, n geom.Vec3, reverse bool) {
	if len(pts) < 3 {
		return
	}
	idx := make([]uint32, len(pts))
	for i, p := range pts {
		idx[i] = b.addVertex(p, n)
	}
	for i := 1; i < len(idx)-1; i++ {
		if reverse {
			b.addTri(idx[0], idx[i+1], idx[i])
		} else {
			b.addTri(idx[0], idx[i], idx[i+1])
		}
	}
}

// --- Dish / Sphere: stitched ring-stack --------------------------------------

// buildRingStack approximates a (possibly z-scaled) spherical cap of
// polar arc as a stack of latitude rings under a pole vertex, shared by
// EllipticalDish, SphericalDish, and Sphere. Each ring's
// sample count adapts to its own radius; transitions between rings of
// different counts are stitched with one bridging triangle per finer-ring
// vertex. sphereR is the sampled sphere's radius, zscale compresses the
// z-axis (elliptical dishes), zoff shifts the whole stack so a dish's base
// circle lands on z=0.
func buildRingStack(b *builder, cfg rvmcfg.Config, startAngle, sphereR, zscale, zoff float32, arc float64, elideBase bool) {
	if sphereR <= 0 || zscale <= 0 {
		return
	}
	rings := sampleCount(cfg, arc, float64(sphereR))
	full := arc >= math.Pi-1e-6

	normalAt := func(lat float64) func(c, s float32) geom.Vec3 {
		sl, cl := float32(math.Sin(lat)), float32(math.Cos(lat))
		return func(c, s float32) geom.Vec3 {
			return geom.Normalize(geom.Vec3{X: sl * c, Y: sl * s, Z: cl / zscale})
		}
	}

	pole := b.addVertex(geom.Vec3{Z: zscale*sphereR + zoff}, geom.Vec3{Z: 1})

	var prev []uint32
	var prevPts []geom.Vec3
	lastRing := rings
	if full {
		lastRing = rings - 1 // the bottom pole replaces the final ring
	}

	for ring := 1; ring <= lastRing; ring++ {
		lat := arc * float64(ring) / float64(rings)
		rr := sphereR * float32(math.Sin(lat))
		z := zscale*sphereR*float32(math.Cos(lat)) + zoff
		around := sampleCount(cfg, 2*math.Pi, float64(rr))
		nrm := normalAt(lat)

		cur := make([]uint32, around)
		curPts := make([]geom.Vec3, around)
		for i := 0; i < around; i++ {
			ang := startAngle + 2*math.Pi*float32(i)/float32(around)
			c, s := float32(math.Cos(float64(ang))), float32(math.Sin(float64(ang)))
			curPts[i] = geom.Vec3{X: rr * c, Y: rr * s, Z: z}
			cur[i] = b.addVertex(curPts[i], nrm(c, s))
		}
		if prev == nil {
			for i := 0; i < around; i++ {
				j := (i + 1) % around
				b.addTri(pole, cur[i], cur[j])
			}
		} else {
			stitchRings(b, prev, cur)
		}
		prev, prevPts = cur, curPts
	}

	switch {
	case full && prev != nil:
		bottom := b.addVertex(geom.Vec3{Z: -zscale*sphereR + zoff}, geom.Vec3{Z: -1})
		for i := 0; i < len(prev); i++ {
			j := (i + 1) % len(prev)
			b.addTri(bottom, prev[j], prev[i])
		}
	case !full && !elideBase && prev != nil:
		ringCap(b, prevPts, geom.Vec3{Z: -1}, true)
	}
}

// stitchRings joins two sample rings that share a start phase but may have
// different counts: walking both by angle, the pointer whose next sample
// comes first advances, emitting one triangle per step. When the counts
// are equal this degenerates to the usual quad strip split.
func stitchRings(b *builder, prev, cur []uint32) {
	n1, n2 := len(prev), len(cur)
	i, j := 0, 0
	for i < n1 || j < n2 {
		advanceI := j == n2
		if !advanceI && i < n1 {
			advanceI = float64(i+1)*float64(n2) <= float64(j+1)*float64(n1)
		}
		if advanceI {
			b.addTri(prev[i%n1], cur[j%n2], prev[(i+1)%n1])
			i++
		} else {
			b.addTri(prev[i%n1], cur[j%n2], cur[(j+1)%n2])
			j++
		}
	}
}

// --- Torus -------------------------------------------------------------------

func buildCircularTorus(b *builder, cfg rvmcfg.Config, t *store.CircularTorus, startAngle float32, elideA, elideB bool) {
	segL := sampleCount(cfg, float64(t.Angle), float64(t.Offset+t.Radius))
	segS := sampleCount(cfg, 2*math.Pi, float64(t.Radius))

	grid := make([][]uint32, segL+1)
	pts := make([][]geom.Vec3, segL+1)
	for i := 0; i <= segL; i++ {
		toroidal := float64(t.Angle) * float64(i) / float64(segL)
		ct, st := float32(math.Cos(toroidal)), float32(math.Sin(toroidal))
		row := make([]uint32, segS)
		rowPts := make([]geom.Vec3, segS)
		for j := 0; j < segS; j++ {
			poloidal := startAngle + 2*math.Pi*float32(j)/float32(segS)
			cp, sp := float32(math.Cos(float64(poloidal))), float32(math.Sin(float64(poloidal)))
			rr := t.Offset + t.Radius*cp
			rowPts[j] = geom.Vec3{X: rr * ct, Y: rr * st, Z: t.Radius * sp}
			n := geom.Normalize(geom.Vec3{X: cp * ct, Y: cp * st, Z: sp})
			row[j] = b.addVertex(rowPts[j], n)
		}
		grid[i] = row
		pts[i] = rowPts
	}
	for i := 0; i < segL; i++ {
		for j := 0; j < segS; j++ {
			jn := (j + 1) % segS
			b.addQuad(grid[i][j], grid[i][jn], grid[i+1][jn], grid[i+1][j])
		}
	}
	if !elideA {
		ringCap(b, pts[0], geom.Vec3{Y: -1}, false)
	}
	if !elideB {
		ca, sa := float32(math.Cos(float64(t.Angle))), float32(math.Sin(float64(t.Angle)))
		ringCap(b, pts[segL], geom.Vec3{X: -sa, Y: ca}, true)
	}
}

func buildRectangularTorus(b *builder, cfg rvmcfg.Config, t *store.RectangularTorus, elideA, elideB bool) {
	segs := sampleCount(cfg, float64(t.Angle), 0.5*float64(t.InnerRadius+t.OuterRadius))
	h2 := 0.5 * t.Height

	inner := make([]uint32, segs+1)
	outer := make([]uint32, segs+1)
	innerTop := make([]uint32, segs+1)
	outerTop := make([]uint32, segs+1)
	innerPts := make([]geom.Vec3, segs+1)
	outerPts := make([]geom.Vec3, segs+1)
	innerTopPts := make([]geom.Vec3, segs+1)
	outerTopPts := make([]geom.Vec3, segs+1)

	for i := 0; i <= segs; i++ {
		ang := t.Angle * float32(i) / float32(segs)
		c, s := float32(math.Cos(float64(ang))), float32(math.Sin(float64(ang)))
		ni := geom.Vec3{X: -c, Y: -s}
		no := geom.Vec3{X: c, Y: s}
		innerPts[i] = geom.Vec3{X: t.InnerRadius * c, Y: t.InnerRadius * s, Z: -h2}
		outerPts[i] = geom.Vec3{X: t.OuterRadius * c, Y: t.OuterRadius * s, Z: -h2}
		innerTopPts[i] = geom.Vec3{X: t.InnerRadius * c, Y: t.InnerRadius * s, Z: h2}
		outerTopPts[i] = geom.Vec3{X: t.OuterRadius * c, Y: t.OuterRadius * s, Z: h2}
		inner[i] = b.addVertex(innerPts[i], ni)
		outer[i] = b.addVertex(outerPts[i], no)
		innerTop[i] = b.addVertex(innerTopPts[i], ni)
		outerTop[i] = b.addVertex(outerTopPts[i], no)
	}
	for i := 0; i < segs; i++ {
		b.addQuad(inner[i], outer[i], outer[i+1], inner[i+1])
		b.addQuad(outerTop[i], innerTop[i], innerTop[i+1], outerTop[i+1])
	}
	for i := 0; i < segs; i++ {
		n := sideNormal(innerPts[i], innerTopPts[i], innerTopPts[i+1], innerPts[i+1])
		quadFace(b, innerPts[i], innerTopPts[i], innerTopPts[i+1], innerPts[i+1], n)
	}
	for i := 0; i < segs; i++ {
		n := sideNormal(outerPts[i+1], outerTopPts[i+1], outerTopPts[i], outerPts[i])
		quadFace(b, outerPts[i+1], outerTopPts[i+1], outerTopPts[i], outerPts[i], n)
	}
	if !elideA {
		n := geom.Vec3{Y: -1}
		quadFace(b, innerPts[0], outerPts[0], outerTopPts[0], innerTopPts[0], n)
	}
	if !elideB {
		ca, sa := float32(math.Cos(float64(t.Angle))), float32(math.Sin(float64(t.Angle)))
		n := geom.Vec3{X: -sa, Y: ca}
		quadFace(b, outerPts[segs], innerPts[segs], innerTopPts[segs], outerTopPts[segs], n)
	}
}

// --- FacetGroup --------------------------------------------------------------

func buildFacetGroup(b *builder, g *store.Geometry, warn *rvmlog.Deduper) {
	fg := g.FacetGroup()
	for _, poly := range fg.Polygons {
		if len(poly.Contours) == 0 {
			continue
		}
		outer := poly.Contours[0]
		if len(outer.Vertices) < 3 {
			warn.WarnOnce(rvmlog.String("degenerate-contour-", g.ID),
				"geometry %d: degenerate contour with %d vertices", g.ID, len(outer.Vertices))
			continue
		}
		switch {
		case len(outer.Vertices) == 3 && len(poly.Contours) == 1:
			v := outer.Vertices
			a := b.addVertex(v[0].Pos, v[0].Normal)
			c2 := b.addVertex(v[1].Pos, v[1].Normal)
			c3 := b.addVertex(v[2].Pos, v[2].Normal)
			b.addTri(a, c2, c3)
		case len(outer.Vertices) == 4 && len(poly.Contours) == 1:
			buildQuadBestDiagonal(b, outer.Vertices)
		default:
			buildGeneralPolygon(b, g.ID, poly, warn)
		}
	}
}

// buildQuadBestDiagonal picks the diagonal whose two resulting triangle
// normals have the larger dot product (the flatter split).
func buildQuadBestDiagonal(b *builder, v []store.Vertex) {
	idx := make([]uint32, 4)
	for i, vv := range v {
		idx[i] = b.addVertex(vv.Pos, vv.Normal)
	}
	n013 := triNormal(v[0].Pos, v[1].Pos, v[3].Pos)
	n123 := triNormal(v[1].Pos, v[2].Pos, v[3].Pos)
	n012 := triNormal(v[0].Pos, v[1].Pos, v[2].Pos)
	n023 := triNormal(v[0].Pos, v[2].Pos, v[3].Pos)

	dotA := geom.Dot(n012, n023) // diagonal 0-2
	dotB := geom.Dot(n013, n123) // diagonal 1-3
	if dotA >= dotB {
		b.addTri(idx[0], idx[1], idx[2])
		b.addTri(idx[0], idx[2], idx[3])
	} else {
		b.addTri(idx[0], idx[1], idx[3])
		b.addTri(idx[1], idx[2], idx[3])
	}
}

func triNormal(a, bb, c geom.Vec3) geom.Vec3 {
	return geom.Normalize(geom.Cross(geom.Sub(bb, a), geom.Sub(c, a)))
}
