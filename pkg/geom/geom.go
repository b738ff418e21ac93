// Package geom provides the minimal linear algebra the scene pipeline needs:
// 3-vectors, column-major 3x4 affine transforms, and axis-aligned bounding
// boxes. It has no dependency on store so every other package can import it
// without cycles.
package geom

import "math"

// Vec3 is a 3-component vector or point.
type Vec3 struct {
	X, Y, Z float32
}

// Add returns a+b.
func Add(a, b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

// Sub returns a-b.
func Sub(a, b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

// Scale returns s*v.
func Scale(s float32, v Vec3) Vec3 { return Vec3{s * v.X, s * v.Y, s * v.Z} }

// Dot returns the dot product of a and b.
func Dot(a, b Vec3) float32 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// Cross returns the cross product a x b.
func Cross(a, b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// LengthSquared returns |v|^2.
func LengthSquared(v Vec3) float32 { return Dot(v, v) }

// Length returns |v|.
func Length(v Vec3) float32 { return float32(math.Sqrt(float64(LengthSquared(v)))) }

// DistanceSquared returns |a-b|^2.
func DistanceSquared(a, b Vec3) float32 { return LengthSquared(Sub(a, b)) }

// Normalize returns v scaled to unit length. The zero vector is returned
// unchanged rather than producing NaN, since several callers (anchor
// generation on degenerate primitives) may legitimately hit a zero normal.
func Normalize(v Vec3) Vec3 {
	l := Length(v)
	if l == 0 {
		return v
	}
	return Scale(1/l, v)
}

// Mat3x4 is a column-major affine transform: 3 rows x 4 columns, the first
// three columns are the rotation/scale basis and the fourth is translation.
// Layout matches the wire format: M[0..2] is column 0 (local
// x-axis in world space), M[3..5] column 1, M[6..8] column 2, M[9..11] the
// translation.
type Mat3x4 [12]float32

// Identity returns the identity transform.
func Identity() Mat3x4 {
	return Mat3x4{1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0}
}

// TransformPoint applies M to a point, including translation.
func (m Mat3x4) TransformPoint(p Vec3) Vec3 {
	return Vec3{
		m[0]*p.X + m[3]*p.Y + m[6]*p.Z + m[9],
		m[1]*p.X + m[4]*p.Y + m[7]*p.Z + m[10],
		m[2]*p.X + m[5]*p.Y + m[8]*p.Z + m[11],
	}
}

// TransformVector applies the linear part of M to v, ignoring translation.
func (m Mat3x4) TransformVector(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[3]*v.Y + m[6]*v.Z,
		m[1]*v.X + m[4]*v.Y + m[7]*v.Z,
		m[2]*v.X + m[5]*v.Y + m[8]*v.Z,
	}
}

// TransformNormal applies M's linear part to a normal and renormalizes,
// matching FindConnections::addAnchor's `1/sqrt(...)` rescale.
func (m Mat3x4) TransformNormal(n Vec3) Vec3 {
	return Normalize(m.TransformVector(n))
}

// Translation returns the transform's translation column.
func (m Mat3x4) Translation() Vec3 { return Vec3{m[9], m[10], m[11]} }

// Linear returns the 3x3 rotation/scale part as three basis column vectors.
func (m Mat3x4) Linear() (x, y, z Vec3) {
	return Vec3{m[0], m[1], m[2]}, Vec3{m[3], m[4], m[5]}, Vec3{m[6], m[7], m[8]}
}

// InverseLinear returns the inverse of M's 3x3 linear part, used by the
// align pass to carry an "up" vector from world space into a geometry's
// local frame. Panics if the linear part is singular; that is a
// ProgrammerError-class condition since the parser never produces singular
// transforms for well-formed input.
func (m Mat3x4) InverseLinear() Mat3x4 {
	a, b, c := m[0], m[3], m[6]
	d, e, f := m[1], m[4], m[7]
	g, h, i := m[2], m[5], m[8]

	det := a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
	if det == 0 {
		panic("geom: singular transform has no inverse")
	}
	invDet := 1 / det

	return Mat3x4{
		(e*i - f*h) * invDet, (f*g - d*i) * invDet, (d*h - e*g) * invDet,
		(c*h - b*i) * invDet, (a*i - c*g) * invDet, (b*g - a*h) * invDet,
		(b*f - c*e) * invDet, (c*d - a*f) * invDet, (a*e - b*d) * invDet,
		0, 0, 0,
	}
}

// BBox3 is an axis-aligned bounding box. Empty returns true for the zero
// value, which is treated as "no extent yet" by Engulf.
type BBox3 struct {
	Min, Max Vec3
	Set      bool
}

// Engulf grows b to include p, marking it as set.
func (b *BBox3) Engulf(p Vec3) {
	if !b.Set {
		b.Min, b.Max, b.Set = p, p, true
		return
	}
	b.Min = Vec3{min32(b.Min.X, p.X), min32(b.Min.Y, p.Y), min32(b.Min.Z, p.Z)}
	b.Max = Vec3{max32(b.Max.X, p.X), max32(b.Max.Y, p.Y), max32(b.Max.Z, p.Z)}
}

// EngulfBox grows b to include the whole of other. A not-Set other leaves b
// unchanged.
func (b *BBox3) EngulfBox(other BBox3) {
	if !other.Set {
		return
	}
	b.Engulf(other.Min)
	b.Engulf(other.Max)
}

// Corners returns the 8 corners of the box in a fixed order, used to compute
// a world-space bbox from a local one by transforming each corner.
func (b BBox3) Corners() [8]Vec3 {
	return [8]Vec3{
		{b.Min.X, b.Min.Y, b.Min.Z}, {b.Max.X, b.Min.Y, b.Min.Z},
		{b.Min.X, b.Max.Y, b.Min.Z}, {b.Max.X, b.Max.Y, b.Min.Z},
		{b.Min.X, b.Min.Y, b.Max.Z}, {b.Max.X, b.Min.Y, b.Max.Z},
		{b.Min.X, b.Max.Y, b.Max.Z}, {b.Max.X, b.Max.Y, b.Max.Z},
	}
}

// Diagonal returns the length of the box's space diagonal, 0 for an unset
// box.
func (b BBox3) Diagonal() float32 {
	if !b.Set {
		return 0
	}
	return Length(Sub(b.Max, b.Min))
}

// TransformBBox computes the world-space bbox of a local bbox under m by
// transforming its 8 corners and taking their componentwise extent.
func TransformBBox(m Mat3x4, local BBox3) BBox3 {
	var out BBox3
	if !local.Set {
		return out
	}
	for _, c := range local.Corners() {
		out.Engulf(m.TransformPoint(c))
	}
	return out
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
