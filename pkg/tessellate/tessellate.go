// Package tessellate implements the deterministic per-geometry
// tessellator: curvature-adaptive sampling, cap elision across matching
// connected interfaces, bbox-driven culling, and content-hash caching of
// the resulting Triangulation.
package tessellate

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/dshills/rvmscene/pkg/geom"
	"github.com/dshills/rvmscene/pkg/rvmcfg"
	"github.com/dshills/rvmscene/pkg/rvmlog"
	"github.com/dshills/rvmscene/pkg/store"
)

// Report tallies the non-fatal decisions the tessellator made.
type Report struct {
	DiscardedCaps  int
	CulledLeaf     int
	CulledGeometry int
}

// Run tessellates every geometry in s that doesn't already have a cached
// triangulation for its content hash, writing results into s's
// triangulation arena.
func Run(s *store.Store, cfg rvmcfg.Config, log rvmlog.Logger) Report {
	if log == nil {
		log = rvmlog.Nop{}
	}
	warn := rvmlog.NewDeduper(log)

	var rpt Report
	cache := make(map[uint64]store.TriangulationHandle)

	s.AllGeometries(func(h store.GeometryHandle, g *store.Geometry) {
		group := s.Node(g.Group)
		if group.Group.BBoxWorld.Set && group.Group.BBoxWorld.Diagonal() < float32(cfg.CullLeafThreshold*cfg.Tolerance) {
			rpt.CulledLeaf++
			g.Triangulation = cull(s, group.Group.BBoxWorld.Diagonal())
			return
		}
		if g.BBoxWorld.Set && g.BBoxWorld.Diagonal() < float32(cfg.CullGeometryThreshold*cfg.Tolerance) {
			rpt.CulledGeometry++
			g.Triangulation = cull(s, g.BBoxWorld.Diagonal())
			return
		}

		if g.Kind == store.KindLine {
			return
		}

		elideA, elideB := capElision(s, h, g, cfg)
		if elideA {
			rpt.DiscardedCaps++
		}
		if elideB {
			rpt.DiscardedCaps++
		}

		// Elision changes the output mesh, so it is part of the cache
		// identity even though it is not part of the payload bytes.
		key := contentHash(g)
		if elideA {
			key ^= 0x9e3779b97f4a7c15
		}
		if elideB {
			key ^= 0xc2b2ae3d27d4eb4f
		}
		if th, ok := cache[key]; ok {
			g.Triangulation = th
			return
		}

		b := newBuilder()
		buildGeometry(b, g, cfg, elideA, elideB, warn)

		th := s.NewTriangulationHandle()
		t := s.Triangulation(th)
		t.Vertices = b.verts
		t.Normals = b.normals
		t.Indices = b.indices
		t.Error = sagitta(g, cfg)

		g.Triangulation = th
		cache[key] = th
	})

	return rpt
}

func cull(s *store.Store, diag float32) store.TriangulationHandle {
	th := s.NewTriangulationHandle()
	t := s.Triangulation(th)
	t.Error = diag
	return th
}

// sampleCount picks the segment count for a curve of the given arc and
// radius so the sagitta stays under Tolerance, clamped to [MinSamples,
// MaxSamples].
func sampleCount(cfg rvmcfg.Config, arc float64, radius float64) int {
	if radius <= 0 || arc <= 0 {
		return cfg.MinSamples
	}
	ratio := 1 - cfg.Tolerance/(cfg.Scale*radius)
	if ratio < -1 {
		ratio = -1
	}
	if ratio > 1 {
		ratio = 1
	}
	theta := math.Acos(ratio)
	n := cfg.MinSamples
	if theta > 0 {
		n = int(math.Ceil(arc / theta))
	}
	if n < cfg.MinSamples {
		n = cfg.MinSamples
	}
	if n > cfg.MaxSamples {
		n = cfg.MaxSamples
	}
	return n
}

// sagitta reports the worst-case sagitta error for g's chosen sampling.
func sagitta(g *store.Geometry, cfg rvmcfg.Config) float32 {
	r, arc := representativeRadius(g)
	if r <= 0 {
		return 0
	}
	n := sampleCount(cfg, arc, r)
	return float32(cfg.Scale * r * (1 - math.Cos(arc/float64(n))))
}

func representativeRadius(g *store.Geometry) (radius, arc float64) {
	switch g.Kind {
	case store.KindCylinder:
		return float64(g.Cylinder().Radius), 2 * math.Pi
	case store.KindSnout:
		sn := g.Snout()
		r := math.Max(float64(sn.RadiusBottom), float64(sn.RadiusTop))
		return r, 2 * math.Pi
	case store.KindCircularTorus:
		ct := g.CircularTorus()
		return float64(ct.Radius), 2 * math.Pi
	case store.KindRectangularTorus:
		rt := g.RectangularTorus()
		return 0.5 * float64(rt.InnerRadius+rt.OuterRadius), float64(rt.Angle)
	case store.KindEllipticalDish:
		d := g.EllipticalDish()
		return float64(d.Diameter) / 2, math.Pi / 2
	case store.KindSphericalDish:
		d := g.SphericalDish()
		return float64(d.Diameter) / 2, math.Pi / 2
	case store.KindSphere:
		return float64(g.Sphere().Diameter) / 2, math.Pi
	default:
		return 0, 0
	}
}

// faceRadius returns the circular interface radius g exposes at the given
// face slot, or 0 when that slot has no circular interface. The cap-elision
// match compares these across a connection, so the lookup is per-slot
// rather than per-kind: a snout's two ends can carry different radii.
func faceRadius(g *store.Geometry, slot uint8) float64 {
	switch g.Kind {
	case store.KindCylinder:
		return float64(g.Cylinder().Radius)
	case store.KindSnout:
		sn := g.Snout()
		if slot == 0 {
			return float64(sn.RadiusBottom)
		}
		return float64(sn.RadiusTop)
	case store.KindCircularTorus:
		return float64(g.CircularTorus().Radius)
	case store.KindEllipticalDish:
		return float64(g.EllipticalDish().Diameter) / 2
	case store.KindSphericalDish:
		return float64(g.SphericalDish().Diameter) / 2
	default:
		return 0
	}
}

// contentHash hashes a geometry's kind-specific payload bytes plus its
// seam start angle; the transform and bboxes never enter the key.
func contentHash(g *store.Geometry) uint64 {
	h := fnv.New64a()
	var buf [4]byte
	wf := func(v float32) {
		binary.BigEndian.PutUint32(buf[:], math.Float32bits(v))
		h.Write(buf[:])
	}
	wu := func(v uint32) {
		binary.BigEndian.PutUint32(buf[:], v)
		h.Write(buf[:])
	}
	h.Write([]byte{byte(g.Kind)})
	wf(g.SampleStartAngle)

	switch g.Kind {
	case store.KindPyramid:
		p := g.Pyramid()
		for _, v := range []float32{p.Bottom[0], p.Bottom[1], p.Top[0], p.Top[1], p.Offset[0], p.Offset[1], p.Height} {
			wf(v)
		}
	case store.KindBox:
		for _, v := range g.Box().Lengths {
			wf(v)
		}
	case store.KindRectangularTorus:
		t := g.RectangularTorus()
		for _, v := range []float32{t.InnerRadius, t.OuterRadius, t.Height, t.Angle} {
			wf(v)
		}
	case store.KindCircularTorus:
		t := g.CircularTorus()
		for _, v := range []float32{t.Offset, t.Radius, t.Angle} {
			wf(v)
		}
	case store.KindEllipticalDish:
		d := g.EllipticalDish()
		wf(d.Diameter)
		wf(d.Radius)
	case store.KindSphericalDish:
		d := g.SphericalDish()
		wf(d.Diameter)
		wf(d.Height)
	case store.KindSnout:
		sn := g.Snout()
		for _, v := range []float32{sn.RadiusBottom, sn.RadiusTop, sn.Height, sn.Offset[0], sn.Offset[1], sn.BShear[0], sn.BShear[1], sn.TShear[0], sn.TShear[1]} {
			wf(v)
		}
	case store.KindCylinder:
		c := g.Cylinder()
		wf(c.Radius)
		wf(c.Height)
	case store.KindSphere:
		wf(g.Sphere().Diameter)
	case store.KindFacetGroup:
		fg := g.FacetGroup()
		wu(uint32(len(fg.Polygons)))
		for _, poly := range fg.Polygons {
			wu(uint32(len(poly.Contours)))
			for _, c := range poly.Contours {
				wu(uint32(len(c.Vertices)))
				for _, v := range c.Vertices {
					wf(v.Pos.X)
					wf(v.Pos.Y)
					wf(v.Pos.Z)
					wf(v.Normal.X)
					wf(v.Normal.Y)
					wf(v.Normal.Z)
				}
			}
		}
	}
	return h.Sum64()
}

// builder accumulates a triangulation's flat vertex/normal/index buffers.
type builder struct {
	verts, normals []float32
	indices        []uint32
}

func newBuilder() *builder { return &builder{} }

func (b *builder) addVertex(p, n geom.Vec3) uint32 {
	idx := uint32(len(b.verts) / 3)
	b.verts = append(b.verts, p.X, p.Y, p.Z)
	b.normals = append(b.normals, n.X, n.Y, n.Z)
	return idx
}

func (b *builder) addTri(a, c2, c3 uint32) {
	b.indices = append(b.indices, a, c2, c3)
}

// addQuad triangulates the quad a-b-c-d (in winding order) by the diagonal
// a-c, two triangles.
func (b *builder) addQuad(a, bb, c, d uint32) {
	b.addTri(a, bb, c)
	b.addTri(a, c, d)
}
