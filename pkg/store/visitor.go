package store

// Visitor is the depth-first traversal protocol: every hook is a method,
// and a concrete visitor only needs to override the ones it cares about
// by embedding BaseVisitor.
type Visitor interface {
	BeginFile(h NodeHandle, n *Node)
	EndFile(h NodeHandle, n *Node)

	BeginModel(h NodeHandle, n *Node)
	EndModel(h NodeHandle, n *Node)

	BeginGroup(h NodeHandle, n *Node)
	EndGroup(h NodeHandle, n *Node)

	BeginAttributes(group NodeHandle)
	Attribute(group NodeHandle, h AttributeHandle, a *Attribute)
	EndAttributes(group NodeHandle)

	BeginGeometries(group NodeHandle)
	Geometry(group NodeHandle, h GeometryHandle, g *Geometry)
	EndGeometries(group NodeHandle)

	// DoneGroupContents is called after a group's attributes and
	// geometries have both been visited, before its children.
	DoneGroupContents(h NodeHandle, n *Node)

	BeginChildren(h NodeHandle, n *Node)
	EndChildren(h NodeHandle, n *Node)

	// Done signals whether the traversal is finished; returning false
	// repeats it. Single-pass visitors return true unconditionally.
	Done() bool
}

// BaseVisitor implements every Visitor method as a no-op and Done as
// always-true, so a concrete visitor can embed it and override only the
// hooks it needs.
type BaseVisitor struct{}

func (BaseVisitor) BeginFile(NodeHandle, *Node) {}
func (BaseVisitor) EndFile(NodeHandle, *Node)   {}

func (BaseVisitor) BeginModel(NodeHandle, *Node) {}
func (BaseVisitor) EndModel(NodeHandle, *Node)   {}

func (BaseVisitor) BeginGroup(NodeHandle, *Node) {}
func (BaseVisitor) EndGroup(NodeHandle, *Node)   {}

func (BaseVisitor) BeginAttributes(NodeHandle)                        {}
func (BaseVisitor) Attribute(NodeHandle, AttributeHandle, *Attribute) {}
func (BaseVisitor) EndAttributes(NodeHandle)                          {}

func (BaseVisitor) BeginGeometries(NodeHandle)                     {}
func (BaseVisitor) Geometry(NodeHandle, GeometryHandle, *Geometry) {}
func (BaseVisitor) EndGeometries(NodeHandle)                       {}

func (BaseVisitor) DoneGroupContents(NodeHandle, *Node) {}

func (BaseVisitor) BeginChildren(NodeHandle, *Node) {}
func (BaseVisitor) EndChildren(NodeHandle, *Node)   {}

func (BaseVisitor) Done() bool { return true }

// MaxPasses bounds the multi-pass trampoline so a buggy Done() that never
// returns true cannot loop forever.
const MaxPasses = 64

// Apply runs visitor depth-first over the whole store in insertion order,
// repeating the traversal until visitor.Done() returns true or MaxPasses
// passes have run.
func (s *Store) Apply(v Visitor) {
	for pass := 0; pass < MaxPasses; pass++ {
		for _, fh := range s.roots {
			s.applyFile(v, fh)
		}
		if v.Done() {
			return
		}
	}
}

func (s *Store) applyFile(v Visitor, h NodeHandle) {
	n := s.nodes.Get(h)
	v.BeginFile(h, n)
	for _, mh := range n.Children {
		s.applyModel(v, mh)
	}
	v.EndFile(h, n)
}

func (s *Store) applyModel(v Visitor, h NodeHandle) {
	n := s.nodes.Get(h)
	v.BeginModel(h, n)
	for _, gh := range n.Children {
		s.applyGroup(v, gh)
	}
	v.EndModel(h, n)
}

func (s *Store) applyGroup(v Visitor, h NodeHandle) {
	n := s.nodes.Get(h)
	v.BeginGroup(h, n)

	v.BeginAttributes(h)
	for ah := n.Group.Attributes; ah != 0; {
		a := s.attributes.Get(ah)
		v.Attribute(h, ah, a)
		ah = a.Next
	}
	v.EndAttributes(h)

	v.BeginGeometries(h)
	for _, geoH := range n.Group.Geometries {
		v.Geometry(h, geoH, s.geometries.Get(geoH))
	}
	v.EndGeometries(h)

	v.DoneGroupContents(h, n)

	v.BeginChildren(h, n)
	for _, ch := range n.Children {
		s.applyGroup(v, ch)
	}
	v.EndChildren(h, n)

	v.EndGroup(h, n)
}
