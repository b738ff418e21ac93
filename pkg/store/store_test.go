package store

import "testing"

// buildFileModelGroup creates a minimal File -> Model -> Group tree with one
// Box geometry and returns their handles.
func buildFileModelGroup(s *Store) (file, model, group NodeHandle, geo GeometryHandle) {
	file = s.NewNode(0, NodeFile)
	model = s.NewNode(file, NodeModel)
	group = s.NewNode(model, NodeGroup)
	s.Node(group).Group.Name = s.Strings.Intern("ROOT")
	geo = s.NewGeometry(group)
	s.Geometry(geo).SetPayload(KindBox, &Box{Lengths: [3]float32{1, 1, 1}})
	return
}

func TestNewNodeRootsVsChildren(t *testing.T) {
	s := New()
	file, model, group, _ := buildFileModelGroup(s)

	if len(s.Roots()) != 1 || s.Roots()[0] != file {
		t.Fatalf("Roots() = %v, want [%d]", s.Roots(), file)
	}
	if s.Node(file).Children[0] != model {
		t.Fatalf("file's child = %d, want %d", s.Node(file).Children[0], model)
	}
	if s.Node(model).Children[0] != group {
		t.Fatalf("model's child = %d, want %d", s.Node(model).Children[0], group)
	}
	if s.Node(group).Parent != model {
		t.Fatalf("group's parent = %d, want %d", s.Node(group).Parent, model)
	}
}

func TestNewGeometryAssignsDenseIDs(t *testing.T) {
	s := New()
	_, _, group, _ := buildFileModelGroup(s)
	g2 := s.NewGeometry(group)
	s.Geometry(g2).SetPayload(KindBox, &Box{})
	g3 := s.NewGeometry(group)
	s.Geometry(g3).SetPayload(KindBox, &Box{})

	ids := map[uint32]bool{}
	s.AllGeometries(func(_ GeometryHandle, g *Geometry) {
		if ids[g.ID] {
			t.Fatalf("duplicate geometry id %d", g.ID)
		}
		ids[g.ID] = true
	})
	if len(ids) != 3 {
		t.Fatalf("got %d distinct ids, want 3", len(ids))
	}
}

func TestNewGeometryRequiresGroupParent(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewGeometry on a non-Group parent did not panic")
		}
	}()
	s := New()
	file := s.NewNode(0, NodeFile)
	s.NewGeometry(file)
}

func TestGeometryKindAccessorPanicsOnMismatch(t *testing.T) {
	s := New()
	_, _, group, geo := buildFileModelGroup(s)
	defer func() {
		if recover() == nil {
			t.Fatal("Cylinder() on a Box-kind geometry did not panic")
		}
	}()
	_ = s.Geometry(geo).Cylinder()
	_ = group
}

func TestAttributeListIsLIFOAndGetAttributeFindsKey(t *testing.T) {
	s := New()
	_, _, group, _ := buildFileModelGroup(s)
	kA := s.Strings.Intern("Tag")
	kB := s.Strings.Intern("Material")

	h1 := s.NewAttribute(group, kA)
	s.Attribute(h1).Value = s.Strings.Intern("first")
	h2 := s.NewAttribute(group, kB)
	s.Attribute(h2).Value = s.Strings.Intern("second")

	// Most recently added attribute is the new head.
	if s.Node(group).Group.Attributes != h2 {
		t.Fatalf("Group.Attributes = %d, want head %d", s.Node(group).Group.Attributes, h2)
	}
	if found := s.GetAttribute(group, kA); found != h1 {
		t.Fatalf("GetAttribute(kA) = %d, want %d", found, h1)
	}
	if found := s.GetAttribute(group, s.Strings.Intern("Missing")); found != 0 {
		t.Fatalf("GetAttribute(missing key) = %d, want 0", found)
	}
}

func TestNewConnectionIndexingIsOneBased(t *testing.T) {
	s := New()
	idx1 := s.NewConnection()
	idx2 := s.NewConnection()
	if idx1 != 1 || idx2 != 2 {
		t.Fatalf("connection indices = %d, %d, want 1, 2", idx1, idx2)
	}
	s.ConnectionAt(idx1).Flags = HasCircularSide
	if s.Connections()[0].Flags != HasCircularSide {
		t.Fatalf("ConnectionAt and Connections() disagree on index 1")
	}
}

func TestConnectionAtZeroPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("ConnectionAt(0) did not panic")
		}
	}()
	s := New()
	s.NewConnection()
	s.ConnectionAt(0)
}

func TestFindRootGroupMatchesByInternedName(t *testing.T) {
	s := New()
	_, _, group, _ := buildFileModelGroup(s)
	name := s.Node(group).Group.Name

	if got := s.FindRootGroup(name); got != group {
		t.Fatalf("FindRootGroup = %d, want %d", got, group)
	}
	if got := s.FindRootGroup(s.Strings.Intern("NOPE")); got != 0 {
		t.Fatalf("FindRootGroup(unknown) = %d, want 0", got)
	}
}

func TestUpdateCountsTalliesWholeGraph(t *testing.T) {
	s := New()
	_, _, group, _ := buildFileModelGroup(s)
	child := s.NewNode(group, NodeGroup)
	s.Node(child).Group.Name = s.Strings.Intern("CHILD")
	g2 := s.NewGeometry(child)
	s.Geometry(g2).SetPayload(KindCylinder, &Cylinder{Radius: 1, Height: 2})

	s.UpdateCounts()
	st := s.Stats()
	if st.Files != 1 || st.Models != 1 || st.Groups != 2 || st.Geometries != 2 {
		t.Fatalf("Stats = %+v, want Files=1 Models=1 Groups=2 Geometries=2", st)
	}
	if st.ByKind[KindBox] != 1 || st.ByKind[KindCylinder] != 1 {
		t.Fatalf("ByKind = %+v, want one Box and one Cylinder", st.ByKind)
	}
}

func TestApplyVisitsDepthFirstInInsertionOrder(t *testing.T) {
	s := New()
	file := s.NewNode(0, NodeFile)
	model := s.NewNode(file, NodeModel)
	g1 := s.NewNode(model, NodeGroup)
	s.Node(g1).Group.Name = s.Strings.Intern("A")
	g2 := s.NewNode(g1, NodeGroup)
	s.Node(g2).Group.Name = s.Strings.Intern("B")

	var order []string
	rec := &recordingVisitor{s: s, order: &order}
	s.Apply(rec)

	want := []string{"begin:A", "begin:B", "end:B", "end:A"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

type recordingVisitor struct {
	BaseVisitor
	s     *Store
	order *[]string
}

func (v *recordingVisitor) BeginGroup(_ NodeHandle, n *Node) {
	*v.order = append(*v.order, "begin:"+v.s.Strings.String(n.Group.Name))
}

func (v *recordingVisitor) EndGroup(_ NodeHandle, n *Node) {
	*v.order = append(*v.order, "end:"+v.s.Strings.String(n.Group.Name))
}
