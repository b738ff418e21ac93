package export

import (
	"encoding/json"
	"os"

	"github.com/dshills/rvmscene/pkg/store"
)

// jsonNode mirrors one store.Node for serialization; geometries are
// flattened onto their owning group since Store's own graph is
// handle-addressed, not a tree of values.
type jsonNode struct {
	Kind       string          `json:"kind"`
	Name       string          `json:"name,omitempty"`
	Children   []jsonNode      `json:"children,omitempty"`
	Geometries []jsonGeometry  `json:"geometries,omitempty"`
	Attributes []jsonAttribute `json:"attributes,omitempty"`
}

type jsonGeometry struct {
	ID        uint32     `json:"id"`
	Kind      string     `json:"kind"`
	ColorName string     `json:"colorName,omitempty"`
	Color     uint32     `json:"color"`
	Triangles int        `json:"triangles"`
	Vertices  int        `json:"vertices"`
	Error     float32    `json:"sagittaError"`
	BBoxMin   [3]float32 `json:"bboxMin"`
	BBoxMax   [3]float32 `json:"bboxMax"`
}

type jsonAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ExportJSON renders the whole graph rooted at s as an indented JSON
// document: one top-level array of File nodes, fully expanded down to
// geometries and their tessellation summaries.
func ExportJSON(s *store.Store) ([]byte, error) {
	var roots []jsonNode
	for _, fh := range s.Roots() {
		roots = append(roots, jsonFromNode(s, fh))
	}
	return json.MarshalIndent(roots, "", "  ")
}

// SaveJSON writes ExportJSON's output to path with 0644 permissions.
func SaveJSON(s *store.Store, path string) error {
	data, err := ExportJSON(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func jsonFromNode(s *store.Store, h store.NodeHandle) jsonNode {
	n := s.Node(h)
	jn := jsonNode{Kind: n.Kind.String()}
	switch n.Kind {
	case store.NodeModel:
		jn.Name = s.Strings.String(n.Model.Name)
	case store.NodeGroup:
		jn.Name = s.Strings.String(n.Group.Name)
		for _, gh := range n.Group.Geometries {
			jn.Geometries = append(jn.Geometries, jsonFromGeometry(s, gh))
		}
		for h := n.Group.Attributes; h != 0; {
			a := s.Attribute(h)
			jn.Attributes = append(jn.Attributes, jsonAttribute{
				Key:   s.Strings.String(a.Key),
				Value: s.Strings.String(a.Value),
			})
			h = a.Next
		}
	}
	for _, ch := range n.Children {
		jn.Children = append(jn.Children, jsonFromNode(s, ch))
	}
	return jn
}

func jsonFromGeometry(s *store.Store, h store.GeometryHandle) jsonGeometry {
	g := s.Geometry(h)
	t := s.Triangulation(g.Triangulation)
	jg := jsonGeometry{
		ID:        g.ID,
		Kind:      g.Kind.String(),
		ColorName: s.Strings.String(g.ColorName),
		Color:     g.Color,
		Triangles: t.TriangleCount(),
		Vertices:  t.VertexCount(),
	}
	if t != nil {
		jg.Error = t.Error
	}
	jg.BBoxMin = [3]float32{g.BBoxWorld.Min.X, g.BBoxWorld.Min.Y, g.BBoxWorld.Min.Z}
	jg.BBoxMax = [3]float32{g.BBoxWorld.Max.X, g.BBoxWorld.Max.Y, g.BBoxWorld.Max.Z}
	return jg
}
