package connect

import (
	"math"

	"github.com/dshills/rvmscene/pkg/geom"
	"github.com/dshills/rvmscene/pkg/store"
)

// anchor is a candidate attachment point on a primitive's face, in world
// space, plus the face slot and interface kind it belongs to.
type anchor struct {
	geo  store.GeometryHandle
	slot uint8
	p    geom.Vec3
	n    geom.Vec3
	kind store.ConnectionFlags
}

// localAnchor is one (normal, origin, slot) triple in a geometry's local
// frame, transformed to world space by addAnchors.
type localAnchor struct {
	n    geom.Vec3
	p    geom.Vec3
	slot uint8
}

// geometryAnchors returns g's local-frame anchors and their interface
// kind. Sphere, Line, and FacetGroup contribute none.
func geometryAnchors(g *store.Geometry) ([]localAnchor, store.ConnectionFlags) {
	switch g.Kind {
	case store.KindPyramid:
		return pyramidAnchors(g.Pyramid()), store.HasRectangularSide
	case store.KindBox:
		return boxAnchors(g.Box()), store.HasRectangularSide
	case store.KindRectangularTorus:
		return rectangularTorusAnchors(g.RectangularTorus()), store.HasRectangularSide
	case store.KindCircularTorus:
		return circularTorusAnchors(g.CircularTorus()), store.HasCircularSide
	case store.KindEllipticalDish:
		return dishAnchors(), store.HasCircularSide
	case store.KindSphericalDish:
		return dishAnchors(), store.HasCircularSide
	case store.KindSnout:
		return snoutAnchors(g.Snout()), store.HasCircularSide
	case store.KindCylinder:
		return cylinderAnchors(g.Cylinder()), store.HasCircularSide
	default:
		return nil, 0
	}
}

func pyramidAnchors(p *store.Pyramid) []localAnchor {
	bx, by := 0.5*p.Bottom[0], 0.5*p.Bottom[1]
	tx, ty := 0.5*p.Top[0], 0.5*p.Top[1]
	ox, oy := 0.5*p.Offset[0], 0.5*p.Offset[1]
	h2 := 0.5 * p.Height

	n := [6]geom.Vec3{
		{X: 0, Y: -h2, Z: (-ty + oy) - (-by - oy)},
		{X: h2, Y: 0, Z: -((tx + ox) - (bx - ox))},
		{X: 0, Y: h2, Z: -((ty + oy) - (by - oy))},
		{X: -h2, Y: 0, Z: (-tx + ox) - (-bx - ox)},
		{X: 0, Y: 0, Z: -1},
		{X: 0, Y: 0, Z: 1},
	}
	pp := [6]geom.Vec3{
		{X: 0, Y: -0.5 * (by + ty), Z: 0},
		{X: 0.5 * (bx + tx), Y: 0, Z: 0},
		{X: 0, Y: 0.5 * (by + ty), Z: 0},
		{X: -0.5 * (bx + tx), Y: 0, Z: 0},
		{X: -ox, Y: -oy, Z: -h2},
		{X: ox, Y: oy, Z: h2},
	}
	out := make([]localAnchor, 6)
	for i := range out {
		out[i] = localAnchor{n: n[i], p: pp[i], slot: uint8(i)}
	}
	return out
}

func boxAnchors(b *store.Box) []localAnchor {
	xp, yp, zp := 0.5*b.Lengths[0], 0.5*b.Lengths[1], 0.5*b.Lengths[2]
	n := [6]geom.Vec3{
		{X: -1}, {X: 1}, {Y: -1}, {Y: 1}, {Z: -1}, {Z: 1},
	}
	p := [6]geom.Vec3{
		{X: -xp}, {X: xp}, {Y: -yp}, {Y: yp}, {Z: -zp}, {Z: zp},
	}
	out := make([]localAnchor, 6)
	for i := range out {
		out[i] = localAnchor{n: n[i], p: p[i], slot: uint8(i)}
	}
	return out
}

func rectangularTorusAnchors(rt *store.RectangularTorus) []localAnchor {
	c, s := float32(math.Cos(float64(rt.Angle))), float32(math.Sin(float64(rt.Angle)))
	m := 0.5 * (rt.InnerRadius + rt.OuterRadius)
	return []localAnchor{
		{n: geom.Vec3{X: 0, Y: -1, Z: 0}, p: geom.Vec3{X: m}, slot: 0},
		{n: geom.Vec3{X: -s, Y: c, Z: 0}, p: geom.Vec3{X: m * c, Y: m * s, Z: 0}, slot: 1},
	}
}

func circularTorusAnchors(ct *store.CircularTorus) []localAnchor {
	c, s := float32(math.Cos(float64(ct.Angle))), float32(math.Sin(float64(ct.Angle)))
	return []localAnchor{
		{n: geom.Vec3{X: 0, Y: -1, Z: 0}, p: geom.Vec3{X: ct.Offset, Y: 0, Z: 0}, slot: 0},
		{n: geom.Vec3{X: -s, Y: c, Z: 0}, p: geom.Vec3{X: ct.Offset * c, Y: ct.Offset * s, Z: 0}, slot: 1},
	}
}

func dishAnchors() []localAnchor {
	return []localAnchor{
		{n: geom.Vec3{X: 0, Y: 0, Z: -1}, p: geom.Vec3{}, slot: 0},
	}
}

func snoutAnchors(sn *store.Snout) []localAnchor {
	bsx, bsy := float64(sn.BShear[0]), float64(sn.BShear[1])
	tsx, tsy := float64(sn.TShear[0]), float64(sn.TShear[1])
	n0 := geom.Vec3{
		X: float32(math.Sin(bsx) * math.Cos(bsy)),
		Y: float32(math.Sin(bsy)),
		Z: float32(-math.Cos(bsx) * math.Cos(bsy)),
	}
	n1 := geom.Vec3{
		X: float32(-math.Sin(tsx) * math.Cos(tsy)),
		Y: float32(-math.Sin(tsy)),
		Z: float32(math.Cos(tsx) * math.Cos(tsy)),
	}
	return []localAnchor{
		{n: n0, p: geom.Vec3{X: -0.5 * sn.Offset[0], Y: -0.5 * sn.Offset[1], Z: -0.5 * sn.Height}, slot: 0},
		{n: n1, p: geom.Vec3{X: 0.5 * sn.Offset[0], Y: 0.5 * sn.Offset[1], Z: 0.5 * sn.Height}, slot: 1},
	}
}

func cylinderAnchors(cy *store.Cylinder) []localAnchor {
	h2 := 0.5 * cy.Height
	return []localAnchor{
		{n: geom.Vec3{X: 0, Y: 0, Z: -1}, p: geom.Vec3{X: 0, Y: 0, Z: -h2}, slot: 0},
		{n: geom.Vec3{X: 0, Y: 0, Z: 1}, p: geom.Vec3{X: 0, Y: 0, Z: h2}, slot: 1},
	}
}
