package store

import (
	"github.com/dshills/rvmscene/pkg/arena"
	"github.com/dshills/rvmscene/pkg/geom"
	"github.com/dshills/rvmscene/pkg/intern"
)

// Store owns the arenas, interner, roots list, connections list,
// debug-line list, cached stats, and error string for one parsed scene.
// A Store is exclusively owned by one goroutine;
// arenas are not safe for concurrent allocation.
type Store struct {
	Strings *intern.Interner

	nodes         *arena.Arena[Node]
	geometries    *arena.Arena[Geometry]
	triangulation *arena.Arena[Triangulation]

	roots       []NodeHandle
	connections []Connection
	debugLines  []DebugLine
	attributes  *arena.Arena[Attribute]

	nextGeometryID uint32
	stats          Stats
	errorStr       string
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		Strings:       intern.New(),
		nodes:         arena.New[Node](0),
		geometries:    arena.New[Geometry](0),
		triangulation: arena.New[Triangulation](0),
		attributes:    arena.New[Attribute](0),
	}
}

// Node returns a pointer to the node identified by h.
func (s *Store) Node(h NodeHandle) *Node { return s.nodes.Get(h) }

// Geometry returns a pointer to the geometry identified by h.
func (s *Store) Geometry(h GeometryHandle) *Geometry { return s.geometries.Get(h) }

// Attribute returns a pointer to the attribute identified by h.
func (s *Store) Attribute(h AttributeHandle) *Attribute { return s.attributes.Get(h) }

// Triangulation returns a pointer to the triangulation identified by h, or
// nil for the zero handle.
func (s *Store) Triangulation(h TriangulationHandle) *Triangulation {
	if h == 0 {
		return nil
	}
	return s.triangulation.Get(h)
}

// Roots returns the top-level node handles (always File nodes for
// well-formed input), in insertion order.
func (s *Store) Roots() []NodeHandle { return s.roots }

// Connections returns the store's connection list in insertion order.
func (s *Store) Connections() []Connection { return s.connections }

// ConnectionAt returns a pointer to the connection at index (1-based,
// matching ConnectionIndex's "0 means absent" convention).
func (s *Store) ConnectionAt(idx ConnectionIndex) *Connection {
	if idx == 0 {
		panic("store: ConnectionAt called with the zero index")
	}
	return &s.connections[idx-1]
}

// DebugLines returns the store's debug-line list in insertion order.
func (s *Store) DebugLines() []DebugLine { return s.debugLines }

// Stats returns the most recently computed Stats (see UpdateCounts).
func (s *Store) Stats() Stats { return s.stats }

// ErrorString returns the last structural error message, or "" if none or
// cleared.
func (s *Store) ErrorString() string { return s.errorStr }

// SetErrorString stores a message used by the parser to surface fatal
// structural errors; passing "" clears it.
func (s *Store) SetErrorString(msg string) { s.errorStr = msg }

// NewNode allocates a blank node of the given kind, appending it to
// parent's child list (or the store's roots if parent is the zero handle).
// The caller must populate the kind-specific fields.
func (s *Store) NewNode(parent NodeHandle, kind NodeKind) NodeHandle {
	h := s.nodes.Alloc()
	n := s.nodes.Get(h)
	n.Kind = kind
	n.Parent = parent
	if parent == 0 {
		s.roots = append(s.roots, h)
	} else {
		p := s.nodes.Get(parent)
		p.Children = append(p.Children, h)
	}
	return h
}

// NewGeometry allocates a blank geometry owned by parent, which must be a
// Group node. It assigns a unique
// dense id and appends the geometry to the group's geometry list.
func (s *Store) NewGeometry(parent NodeHandle) GeometryHandle {
	p := s.nodes.Get(parent)
	if p.Kind != NodeGroup {
		panic("store: NewGeometry parent must be a Group node")
	}
	h := s.geometries.Alloc()
	g := s.geometries.Get(h)
	g.ID = s.nextGeometryID
	g.Group = parent
	s.nextGeometryID++
	p.Group.Geometries = append(p.Group.Geometries, h)
	return h
}

// NewAttribute creates an attribute on group with the given interned key,
// returning its handle. This is append-only: it does not
// check for an existing key (GetAttribute does the lookup).
func (s *Store) NewAttribute(group NodeHandle, key intern.Handle) AttributeHandle {
	g := s.nodes.Get(group)
	if g.Kind != NodeGroup {
		panic("store: NewAttribute target must be a Group node")
	}
	h := s.attributes.Alloc()
	a := s.attributes.Get(h)
	a.Key = key
	a.Next = g.Group.Attributes
	g.Group.Attributes = h
	return h
}

// GetAttribute searches group's attribute list for key, returning its
// handle or 0 if absent.
func (s *Store) GetAttribute(group NodeHandle, key intern.Handle) AttributeHandle {
	g := s.nodes.Get(group)
	for h := g.Group.Attributes; h != 0; {
		a := s.attributes.Get(h)
		if a.Key == key {
			return h
		}
		h = a.Next
	}
	return 0
}

// AddDebugLine appends a world-space diagnostic line segment.
func (s *Store) AddDebugLine(a, b geom.Vec3, rgb uint32) {
	s.debugLines = append(s.debugLines, DebugLine{A: a, B: b, RGB: rgb})
}

// NewConnection appends a new zero-valued Connection and returns its
// 1-based index. Callers
// populate Geo/Offset/P/D/Flags and must call Geometry.Connections[o] = idx
// on both sides to establish the back-reference invariant.
func (s *Store) NewConnection() ConnectionIndex {
	s.connections = append(s.connections, Connection{})
	return ConnectionIndex(len(s.connections))
}

// FindRootGroup performs the linear depth-3 (file -> model -> group) search
// returning the first Group node whose interned
// name equals name's handle, or 0 if none match.
func (s *Store) FindRootGroup(name intern.Handle) NodeHandle {
	for _, fh := range s.roots {
		file := s.nodes.Get(fh)
		for _, mh := range file.Children {
			model := s.nodes.Get(mh)
			for _, gh := range model.Children {
				grp := s.nodes.Get(gh)
				if grp.Kind == NodeGroup && grp.Group.Name == name {
					return gh
				}
			}
		}
	}
	return 0
}

// UpdateCounts recomputes summary totals over the whole graph.
func (s *Store) UpdateCounts() {
	var st Stats
	for _, fh := range s.roots {
		st.Files++
		file := s.nodes.Get(fh)
		for _, mh := range file.Children {
			st.Models++
			model := s.nodes.Get(mh)
			s.countGroups(model.Children, &st)
		}
	}
	s.geometries.Each(func(_ arena.Handle, g *Geometry) {
		st.Geometries++
		if int(g.Kind) < len(st.ByKind) {
			st.ByKind[g.Kind]++
		}
	})
	s.attributes.Each(func(_ arena.Handle, _ *Attribute) { st.Attributes++ })
	s.stats = st
}

func (s *Store) countGroups(handles []NodeHandle, st *Stats) {
	for _, gh := range handles {
		st.Groups++
		grp := s.nodes.Get(gh)
		s.countGroups(grp.Children, st)
	}
}

// ForwardGroupIDToGeometries exists for export stability, so repeated
// exports of the same store assign the same ids to the same geometries.
// Geometry ids are already dense and stable once assigned by NewGeometry,
// so this pass changes no id: it only checks that no two geometries share
// an id, and panics if two do, matching source's
// `forwardGroupIdToGeometries` under the Go-native invariant that ids
// never get reshuffled behind the parser's back.
func (s *Store) ForwardGroupIDToGeometries() {
	seen := make(map[uint32]bool, s.geometries.Len())
	s.geometries.Each(func(_ arena.Handle, g *Geometry) {
		if seen[g.ID] {
			panic("store: duplicate geometry id, dense-id invariant violated")
		}
		seen[g.ID] = true
	})
}

// NewTriangulationHandle allocates a blank Triangulation in the store's
// triangulation arena, letting a tessellation pass regenerate meshes
// without disturbing the parsed graph.
func (s *Store) NewTriangulationHandle() TriangulationHandle {
	return s.triangulation.Alloc()
}

// GeometryCount returns the number of geometries allocated so far.
func (s *Store) GeometryCount() int { return s.geometries.Len() }

// AllGeometries calls fn for every geometry in allocation (= parse) order.
func (s *Store) AllGeometries(fn func(h GeometryHandle, g *Geometry)) {
	s.geometries.Each(fn)
}
