package connect

import (
	"testing"

	"github.com/dshills/rvmscene/pkg/geom"
	"github.com/dshills/rvmscene/pkg/rvmcfg"
	"github.com/dshills/rvmscene/pkg/store"
)

func newGroup(s *store.Store) store.NodeHandle {
	file := s.NewNode(0, store.NodeFile)
	model := s.NewNode(file, store.NodeModel)
	return s.NewNode(model, store.NodeGroup)
}

func translatedIdentity(z float32) geom.Mat3x4 {
	m := geom.Identity()
	m[11] = z
	return m
}

func TestFindConnectsTouchingCylinders(t *testing.T) {
	s := store.New()
	group := newGroup(s)

	a := s.NewGeometry(group)
	ga := s.Geometry(a)
	ga.M = translatedIdentity(0)
	ga.SetPayload(store.KindCylinder, &store.Cylinder{Radius: 1, Height: 2})

	b := s.NewGeometry(group)
	gb := s.Geometry(b)
	gb.M = translatedIdentity(2) // b's bottom anchor (local z=-1) lands at world z=1, matching a's top anchor
	gb.SetPayload(store.KindCylinder, &store.Cylinder{Radius: 1, Height: 2})

	if err := Find(s, rvmcfg.DefaultConfig()); err != nil {
		t.Fatalf("Find: %v", err)
	}

	conns := s.Connections()
	if len(conns) != 1 {
		t.Fatalf("Connections() = %d, want 1", len(conns))
	}

	// Back-reference symmetry: each side's Connections slot points at the
	// same connection index, and that connection's Geo pair names both
	// geometries (in either order).
	idx := store.ConnectionIndex(1)
	if ga.Connections[1] != idx {
		t.Fatalf("a's top-slot connection = %d, want %d", ga.Connections[1], idx)
	}
	if gb.Connections[0] != idx {
		t.Fatalf("b's bottom-slot connection = %d, want %d", gb.Connections[0], idx)
	}
	c := s.ConnectionAt(idx)
	if !((c.Geo[0] == a && c.Geo[1] == b) || (c.Geo[0] == b && c.Geo[1] == a)) {
		t.Fatalf("connection Geo = %v, want {%d,%d} in some order", c.Geo, a, b)
	}
}

func TestFindDoesNotConnectDistantGeometries(t *testing.T) {
	s := store.New()
	group := newGroup(s)

	a := s.NewGeometry(group)
	s.Geometry(a).M = translatedIdentity(0)
	s.Geometry(a).SetPayload(store.KindCylinder, &store.Cylinder{Radius: 1, Height: 2})

	b := s.NewGeometry(group)
	s.Geometry(b).M = translatedIdentity(100) // far away
	s.Geometry(b).SetPayload(store.KindCylinder, &store.Cylinder{Radius: 1, Height: 2})

	if err := Find(s, rvmcfg.DefaultConfig()); err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(s.Connections()) != 0 {
		t.Fatalf("Connections() = %d, want 0 for distant geometries", len(s.Connections()))
	}
}

func TestComponentsGroupsConnectedGeometriesAndIsolatesSeparately(t *testing.T) {
	s := store.New()
	group := newGroup(s)

	a := s.NewGeometry(group)
	s.Geometry(a).M = translatedIdentity(0)
	s.Geometry(a).SetPayload(store.KindCylinder, &store.Cylinder{Radius: 1, Height: 2})

	b := s.NewGeometry(group)
	s.Geometry(b).M = translatedIdentity(2)
	s.Geometry(b).SetPayload(store.KindCylinder, &store.Cylinder{Radius: 1, Height: 2})

	isolated := s.NewGeometry(group)
	s.Geometry(isolated).M = translatedIdentity(1000)
	s.Geometry(isolated).SetPayload(store.KindCylinder, &store.Cylinder{Radius: 1, Height: 2})

	if err := Find(s, rvmcfg.DefaultConfig()); err != nil {
		t.Fatalf("Find: %v", err)
	}

	comps := Components(s)
	if len(comps) != 2 {
		t.Fatalf("Components() returned %d components, want 2 (one pair, one isolated)", len(comps))
	}
	sizes := map[int]int{}
	for _, c := range comps {
		sizes[len(c.Geometries)]++
	}
	if sizes[2] != 1 || sizes[1] != 1 {
		t.Fatalf("component sizes = %v, want one of size 2 and one of size 1", sizes)
	}
}
