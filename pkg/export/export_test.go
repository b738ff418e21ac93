package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dshills/rvmscene/pkg/geom"
	"github.com/dshills/rvmscene/pkg/store"
)

// buildTriangulatedScene constructs a File -> Model -> Group -> Geometry
// tree with a hand-built single-triangle triangulation, bypassing
// pkg/tessellate so export tests don't depend on it.
func buildTriangulatedScene(t *testing.T) (*store.Store, store.NodeHandle, store.GeometryHandle) {
	t.Helper()
	s := store.New()
	file := s.NewNode(0, store.NodeFile)
	model := s.NewNode(file, store.NodeModel)
	group := s.NewNode(model, store.NodeGroup)
	s.Node(group).Group.Name = s.Strings.Intern("UNIT")

	geo := s.NewGeometry(group)
	g := s.Geometry(geo)
	g.M = geom.Identity()
	g.SetPayload(store.KindBox, &store.Box{Lengths: [3]float32{1, 1, 1}})
	g.Color = 0x00ff00
	g.ColorName = s.Strings.Intern("Green")
	g.BBoxWorld = geom.BBox3{Min: geom.Vec3{X: -1, Y: -1, Z: -1}, Max: geom.Vec3{X: 1, Y: 1, Z: 1}, Set: true}

	th := s.NewTriangulationHandle()
	tri := s.Triangulation(th)
	tri.Vertices = []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}
	tri.Normals = []float32{0, 0, 1, 0, 0, 1, 0, 0, 1}
	tri.Indices = []uint32{0, 1, 2}
	g.Triangulation = th

	return s, group, geo
}

func TestWriteOBJEmitsVerticesAndFace(t *testing.T) {
	s, _, _ := buildTriangulatedScene(t)
	var buf bytes.Buffer
	if err := WriteOBJ(&buf, s); err != nil {
		t.Fatalf("WriteOBJ: %v", err)
	}
	out := buf.String()
	if strings.Count(out, "\nv ") != 3 {
		t.Fatalf("expected 3 vertex lines, got:\n%s", out)
	}
	if !strings.Contains(out, "f 1//1 2//2 3//3") {
		t.Fatalf("expected a 1-based face line, got:\n%s", out)
	}
	if !strings.Contains(out, "g UNIT") {
		t.Fatalf("expected a group line 'g UNIT', got:\n%s", out)
	}
}

func TestWriteOBJSkipsGeometryWithoutTriangulation(t *testing.T) {
	s := store.New()
	file := s.NewNode(0, store.NodeFile)
	model := s.NewNode(file, store.NodeModel)
	group := s.NewNode(model, store.NodeGroup)
	geo := s.NewGeometry(group)
	s.Geometry(geo).SetPayload(store.KindLine, &store.Line{A: 0, B: 1})

	var buf bytes.Buffer
	if err := WriteOBJ(&buf, s); err != nil {
		t.Fatalf("WriteOBJ: %v", err)
	}
	if strings.Contains(buf.String(), "\nv ") {
		t.Fatalf("expected no vertex lines for an untriangulated Line, got:\n%s", buf.String())
	}
}

func TestWriteGLTFProducesValidJSONWithOneMesh(t *testing.T) {
	s, _, _ := buildTriangulatedScene(t)
	var buf bytes.Buffer
	if err := WriteGLTF(&buf, s); err != nil {
		t.Fatalf("WriteGLTF: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("glTF output is not valid JSON: %v", err)
	}
	meshes, _ := doc["meshes"].([]any)
	if len(meshes) != 1 {
		t.Fatalf("meshes = %v, want exactly 1", doc["meshes"])
	}
	asset, _ := doc["asset"].(map[string]any)
	if asset["version"] != "2.0" {
		t.Fatalf("asset.version = %v, want 2.0", asset["version"])
	}
}

func TestExportJSONRoundTripsGeometryFields(t *testing.T) {
	s, _, _ := buildTriangulatedScene(t)
	data, err := ExportJSON(s)
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	var roots []jsonNode
	if err := json.Unmarshal(data, &roots); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(roots) != 1 || len(roots[0].Children) != 1 {
		t.Fatalf("roots = %+v, want 1 file with 1 model", roots)
	}
	model := roots[0].Children[0]
	if len(model.Children) != 1 {
		t.Fatalf("model.Children = %+v, want 1 group", model.Children)
	}
	group := model.Children[0]
	if group.Name != "UNIT" || len(group.Geometries) != 1 {
		t.Fatalf("group = %+v, want name UNIT with 1 geometry", group)
	}
	geo := group.Geometries[0]
	if geo.ColorName != "Green" || geo.Triangles != 1 {
		t.Fatalf("geometry = %+v, want ColorName Green, Triangles 1", geo)
	}
}

func TestWriteDebugSVGProducesSVGDocument(t *testing.T) {
	s, _, _ := buildTriangulatedScene(t)
	s.AddDebugLine(geom.Vec3{X: -1, Y: -1}, geom.Vec3{X: 1, Y: 1}, 0xff0000)

	var buf bytes.Buffer
	if err := WriteDebugSVG(&buf, s, DefaultSVGOptions()); err != nil {
		t.Fatalf("WriteDebugSVG: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") || !strings.Contains(out, "</svg>") {
		t.Fatalf("output is not a well-formed SVG document:\n%s", out)
	}
	if !strings.Contains(out, "<line") {
		t.Fatalf("expected at least one <line> element for the debug line, got:\n%s", out)
	}
}
