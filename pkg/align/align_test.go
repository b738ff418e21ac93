package align

import (
	"math"
	"testing"

	"github.com/dshills/rvmscene/pkg/connect"
	"github.com/dshills/rvmscene/pkg/geom"
	"github.com/dshills/rvmscene/pkg/rvmcfg"
	"github.com/dshills/rvmscene/pkg/store"
)

func newGroup(s *store.Store) store.NodeHandle {
	file := s.NewNode(0, store.NodeFile)
	model := s.NewNode(file, store.NodeModel)
	return s.NewNode(model, store.NodeGroup)
}

func translatedIdentity(x, y, z float32) geom.Mat3x4 {
	m := geom.Identity()
	m[9], m[10], m[11] = x, y, z
	return m
}

// rotZ returns a rotation of a radians about Z plus a translation.
func rotZ(a float64, t geom.Vec3) geom.Mat3x4 {
	c, s := float32(math.Cos(a)), float32(math.Sin(a))
	return geom.Mat3x4{c, s, 0, -s, c, 0, 0, 0, 1, t.X, t.Y, t.Z}
}

func TestRunGivesConnectedCylindersTheSameSeam(t *testing.T) {
	s := store.New()
	group := newGroup(s)

	a := s.NewGeometry(group)
	s.Geometry(a).M = translatedIdentity(0, 0, 0)
	s.Geometry(a).SetPayload(store.KindCylinder, &store.Cylinder{Radius: 1, Height: 2})

	b := s.NewGeometry(group)
	s.Geometry(b).M = translatedIdentity(0, 0, 2)
	s.Geometry(b).SetPayload(store.KindCylinder, &store.Cylinder{Radius: 1, Height: 2})

	if err := connect.Find(s, rvmcfg.DefaultConfig()); err != nil {
		t.Fatalf("connect.Find: %v", err)
	}
	if len(s.Connections()) != 1 {
		t.Fatalf("test fixture did not connect (got %d connections)", len(s.Connections()))
	}

	Run(s)

	ga := s.Geometry(a)
	gb := s.Geometry(b)
	if ga.SampleStartAngle != gb.SampleStartAngle {
		t.Fatalf("SampleStartAngle a=%v b=%v, want equal (shared seam)", ga.SampleStartAngle, gb.SampleStartAngle)
	}
}

// A cylinder rotated about its own axis must get a start angle that undoes
// the rotation, so the world-space seam still matches its unrotated
// neighbor.
func TestRunCompensatesForAxialRotation(t *testing.T) {
	const spin = 0.7
	s := store.New()
	group := newGroup(s)

	a := s.NewGeometry(group)
	s.Geometry(a).M = translatedIdentity(0, 0, 0)
	s.Geometry(a).SetPayload(store.KindCylinder, &store.Cylinder{Radius: 1, Height: 2})

	b := s.NewGeometry(group)
	s.Geometry(b).M = rotZ(spin, geom.Vec3{Z: 2})
	s.Geometry(b).SetPayload(store.KindCylinder, &store.Cylinder{Radius: 1, Height: 2})

	if err := connect.Find(s, rvmcfg.DefaultConfig()); err != nil {
		t.Fatalf("connect.Find: %v", err)
	}
	if len(s.Connections()) != 1 {
		t.Fatalf("fixture did not connect (got %d connections)", len(s.Connections()))
	}

	Run(s)

	ga := s.Geometry(a)
	gb := s.Geometry(b)

	// Seam vertex 0 of each cylinder in world space, on the shared plane.
	seam := func(g *store.Geometry) geom.Vec3 {
		c := float32(math.Cos(float64(g.SampleStartAngle)))
		sn := float32(math.Sin(float64(g.SampleStartAngle)))
		return g.M.TransformPoint(geom.Vec3{X: c, Y: sn})
	}
	pa, pb := seam(ga), seam(gb)
	pa.Z, pb.Z = 0, 0 // compare in the interface plane only
	if d := geom.Length(geom.Sub(pa, pb)); d > 1e-5 {
		t.Fatalf("world seam points differ by %v: a=%+v b=%+v", d, pa, pb)
	}
}

func TestRunLeavesUnconnectedGeometryAtZero(t *testing.T) {
	s := store.New()
	group := newGroup(s)
	a := s.NewGeometry(group)
	s.Geometry(a).M = geom.Identity()
	s.Geometry(a).SetPayload(store.KindCylinder, &store.Cylinder{Radius: 1, Height: 2})

	Run(s)
	if s.Geometry(a).SampleStartAngle != 0 {
		t.Fatalf("SampleStartAngle = %v, want 0", s.Geometry(a).SampleStartAngle)
	}
}

func TestSeedUpIsOrthogonalAndUnit(t *testing.T) {
	dirs := []geom.Vec3{
		{Z: 1}, {Z: -1}, {X: 1}, {Y: -1},
		geom.Normalize(geom.Vec3{X: 1, Y: 1, Z: 1}),
		geom.Normalize(geom.Vec3{X: 0.1, Y: -0.9, Z: 0.3}),
	}
	for _, d := range dirs {
		up := seedUp(d)
		if dot := geom.Dot(up, d); math.Abs(float64(dot)) > 1e-6 {
			t.Errorf("seedUp(%+v) not orthogonal: dot = %v", d, dot)
		}
		if l := geom.Length(up); math.Abs(float64(l)-1) > 1e-6 {
			t.Errorf("seedUp(%+v) not unit: |up| = %v", d, l)
		}
	}
}
