package bbox

import (
	"testing"

	"github.com/dshills/rvmscene/pkg/geom"
	"github.com/dshills/rvmscene/pkg/store"
)

func TestRunUnionsGeometryAndChildBoxes(t *testing.T) {
	s := store.New()
	file := s.NewNode(0, store.NodeFile)
	model := s.NewNode(file, store.NodeModel)
	parent := s.NewNode(model, store.NodeGroup)
	child := s.NewNode(parent, store.NodeGroup)

	g1 := s.NewGeometry(parent)
	gg1 := s.Geometry(g1)
	gg1.M = geom.Identity()
	gg1.BBoxLocal = geom.BBox3{Min: geom.Vec3{X: -1, Y: -1, Z: -1}, Max: geom.Vec3{X: 1, Y: 1, Z: 1}, Set: true}
	gg1.SetPayload(store.KindBox, &store.Box{Lengths: [3]float32{2, 2, 2}})

	g2 := s.NewGeometry(child)
	gg2 := s.Geometry(g2)
	gg2.M = geom.Identity()
	gg2.M[11] = 10 // translate child's geometry far along Z
	gg2.BBoxLocal = geom.BBox3{Min: geom.Vec3{X: -1, Y: -1, Z: -1}, Max: geom.Vec3{X: 1, Y: 1, Z: 1}, Set: true}
	gg2.SetPayload(store.KindBox, &store.Box{Lengths: [3]float32{2, 2, 2}})

	Run(s)

	childBox := s.Node(child).Group.BBoxWorld
	if childBox.Max.Z != 11 || childBox.Min.Z != 9 {
		t.Fatalf("child bbox = %+v, want z in [9,11]", childBox)
	}

	parentBox := s.Node(parent).Group.BBoxWorld
	if parentBox.Min.Z != -1 || parentBox.Max.Z != 11 {
		t.Fatalf("parent bbox = %+v, want union spanning z in [-1,11]", parentBox)
	}
}

func TestRunEmitsDebugLinesForGroupBoxes(t *testing.T) {
	s := store.New()
	file := s.NewNode(0, store.NodeFile)
	model := s.NewNode(file, store.NodeModel)
	group := s.NewNode(model, store.NodeGroup)
	g1 := s.NewGeometry(group)
	gg1 := s.Geometry(g1)
	gg1.M = geom.Identity()
	gg1.BBoxLocal = geom.BBox3{Min: geom.Vec3{X: -1, Y: -1, Z: -1}, Max: geom.Vec3{X: 1, Y: 1, Z: 1}, Set: true}
	gg1.SetPayload(store.KindBox, &store.Box{Lengths: [3]float32{2, 2, 2}})

	Run(s)

	if len(s.DebugLines()) != 12 {
		t.Fatalf("DebugLines() = %d, want 12 (one AABB's edges)", len(s.DebugLines()))
	}
}

func TestRunSkipsDebugLinesForEmptyGroup(t *testing.T) {
	s := store.New()
	file := s.NewNode(0, store.NodeFile)
	model := s.NewNode(file, store.NodeModel)
	s.NewNode(model, store.NodeGroup) // no geometries: BBoxWorld stays unset

	Run(s)

	if len(s.DebugLines()) != 0 {
		t.Fatalf("DebugLines() = %d, want 0 for an empty group", len(s.DebugLines()))
	}
}
