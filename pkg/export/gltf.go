package export

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"io"
	"math"

	"github.com/dshills/rvmscene/pkg/store"
)

// gltfDoc is the minimal glTF 2.0 JSON document shape WriteGLTF produces:
// one binary buffer (embedded as a base64 data URI, so the output is a
// single self-contained file), one bufferView + accessor pair per
// position/normal/index array, and one mesh primitive per tessellated
// geometry, grouped into nodes mirroring the scene's group hierarchy.
type gltfDoc struct {
	Asset       gltfAsset        `json:"asset"`
	Scene       int              `json:"scene"`
	Scenes      []gltfScene      `json:"scenes"`
	Nodes       []gltfNode       `json:"nodes"`
	Meshes      []gltfMesh       `json:"meshes"`
	Accessors   []gltfAccessor   `json:"accessors"`
	BufferViews []gltfBufferView `json:"bufferViews"`
	Buffers     []gltfBuffer     `json:"buffers"`
}

type gltfAsset struct {
	Version string `json:"version"`
}

type gltfScene struct {
	Nodes []int `json:"nodes"`
}

type gltfNode struct {
	Name     string `json:"name,omitempty"`
	Mesh     *int   `json:"mesh,omitempty"`
	Children []int  `json:"children,omitempty"`
}

type gltfMesh struct {
	Primitives []gltfPrimitive `json:"primitives"`
}

type gltfPrimitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    int            `json:"indices"`
	Mode       int            `json:"mode"`
}

type gltfAccessor struct {
	BufferView    int       `json:"bufferView"`
	ComponentType int       `json:"componentType"`
	Count         int       `json:"count"`
	Type          string    `json:"type"`
	Min           []float64 `json:"min,omitempty"`
	Max           []float64 `json:"max,omitempty"`
}

type gltfBufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
	Target     int `json:"target,omitempty"`
}

type gltfBuffer struct {
	URI        string `json:"uri"`
	ByteLength int    `json:"byteLength"`
}

const (
	gltfComponentFloat     = 5126
	gltfComponentUint      = 5125
	gltfTargetArray        = 34962
	gltfTargetElementArray = 34963
	gltfModeTriangles      = 4
)

// WriteGLTF writes the scene as a minimal, valid glTF 2.0 asset: every
// tessellated geometry becomes one mesh primitive under a node with no
// transform of its own: the full world transform (basis and translation)
// is baked directly into the vertex data, since glTF nodes expect a
// TRS/matrix decomposition that a sheared RVM transform may not have.
func WriteGLTF(w io.Writer, s *store.Store) error {
	var bin buffer
	b := &gltfBuilder{s: s, doc: &gltfDoc{Asset: gltfAsset{Version: "2.0"}}, bin: &bin}

	root := gltfNode{Name: "scene"}
	for _, fh := range s.Roots() {
		file := s.Node(fh)
		for _, mh := range file.Children {
			model := s.Node(mh)
			for _, gh := range model.Children {
				if idx, ok := b.group(gh); ok {
					root.Children = append(root.Children, idx)
				}
			}
		}
	}
	rootIdx := len(b.doc.Nodes)
	b.doc.Nodes = append(b.doc.Nodes, root)
	b.doc.Scene = 0
	b.doc.Scenes = []gltfScene{{Nodes: []int{rootIdx}}}

	b.doc.Buffers = []gltfBuffer{{
		URI:        "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(bin.bytes),
		ByteLength: len(bin.bytes),
	}}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b.doc)
}

// buffer accumulates the single binary blob every accessor's bufferView
// slices into, padding each addition to a 4-byte boundary as glTF
// requires.
type buffer struct{ bytes []byte }

func (b *buffer) add(data []byte) (offset int) {
	offset = len(b.bytes)
	b.bytes = append(b.bytes, data...)
	for len(b.bytes)%4 != 0 {
		b.bytes = append(b.bytes, 0)
	}
	return offset
}

type gltfBuilder struct {
	s   *store.Store
	doc *gltfDoc
	bin *buffer
}

// group emits a node for a scene Group (and its child groups and
// geometries), returning its node index, or false if the group and all its
// descendants contribute nothing exportable (no tessellated geometry
// anywhere beneath it).
func (b *gltfBuilder) group(h store.NodeHandle) (int, bool) {
	n := b.s.Node(h)
	node := gltfNode{Name: b.s.Strings.String(n.Group.Name)}
	any := false

	for _, gh := range n.Group.Geometries {
		if meshIdx, ok := b.geometry(gh); ok {
			m := meshIdx
			child := len(b.doc.Nodes)
			b.doc.Nodes = append(b.doc.Nodes, gltfNode{Mesh: &m})
			node.Children = append(node.Children, child)
			any = true
		}
	}
	for _, ch := range n.Children {
		if idx, ok := b.group(ch); ok {
			node.Children = append(node.Children, idx)
			any = true
		}
	}
	if !any {
		return 0, false
	}
	idx := len(b.doc.Nodes)
	b.doc.Nodes = append(b.doc.Nodes, node)
	return idx, true
}

func (b *gltfBuilder) geometry(h store.GeometryHandle) (int, bool) {
	g := b.s.Geometry(h)
	t := b.s.Triangulation(g.Triangulation)
	if t == nil || len(t.Indices) == 0 {
		return 0, false
	}

	posAccessor := b.vec3Accessor(t.Vertices, g)
	normals := make([]float32, len(t.Normals))
	for i := 0; i < len(t.Normals)/3; i++ {
		n := g.M.TransformNormal(packedVec3(t.Normals, i))
		normals[3*i], normals[3*i+1], normals[3*i+2] = n.X, n.Y, n.Z
	}
	normAccessor := b.vec3Accessor(normals, nil)
	idxAccessor := b.indexAccessor(t.Indices)

	meshIdx := len(b.doc.Meshes)
	b.doc.Meshes = append(b.doc.Meshes, gltfMesh{Primitives: []gltfPrimitive{{
		Attributes: map[string]int{"POSITION": posAccessor, "NORMAL": normAccessor},
		Indices:    idxAccessor,
		Mode:       gltfModeTriangles,
	}}})
	return meshIdx, true
}

// vec3Accessor writes packed xyz float32 triples as a new bufferView +
// accessor. When g is non-nil the points are first transformed to world
// space by g.M (used for POSITION; NORMAL passes g==nil because geometry()
// has already carried the local normals into world space with
// TransformNormal).
func (b *gltfBuilder) vec3Accessor(packed []float32, g *store.Geometry) int {
	out := make([]float32, len(packed))
	copy(out, packed)
	if g != nil {
		for i := 0; i < len(packed)/3; i++ {
			p := g.M.TransformPoint(packedVec3(packed, i))
			out[3*i], out[3*i+1], out[3*i+2] = p.X, p.Y, p.Z
		}
	}

	buf := make([]byte, len(out)*4)
	for i, v := range out {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	offset := b.bin.add(buf)

	bv := gltfBufferView{ByteOffset: offset, ByteLength: len(buf), Target: gltfTargetArray}
	bvIdx := len(b.doc.BufferViews)
	b.doc.BufferViews = append(b.doc.BufferViews, bv)

	count := len(out) / 3
	lo, hi := vec3Bounds(out)
	acc := gltfAccessor{
		BufferView: bvIdx, ComponentType: gltfComponentFloat, Count: count, Type: "VEC3",
		Min: lo, Max: hi,
	}
	accIdx := len(b.doc.Accessors)
	b.doc.Accessors = append(b.doc.Accessors, acc)
	return accIdx
}

func (b *gltfBuilder) indexAccessor(indices []uint32) int {
	buf := make([]byte, len(indices)*4)
	for i, v := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	offset := b.bin.add(buf)

	bv := gltfBufferView{ByteOffset: offset, ByteLength: len(buf), Target: gltfTargetElementArray}
	bvIdx := len(b.doc.BufferViews)
	b.doc.BufferViews = append(b.doc.BufferViews, bv)

	acc := gltfAccessor{BufferView: bvIdx, ComponentType: gltfComponentUint, Count: len(indices), Type: "SCALAR"}
	accIdx := len(b.doc.Accessors)
	b.doc.Accessors = append(b.doc.Accessors, acc)
	return accIdx
}

func vec3Bounds(packed []float32) (lo, hi []float64) {
	if len(packed) == 0 {
		return []float64{0, 0, 0}, []float64{0, 0, 0}
	}
	lo = []float64{float64(packed[0]), float64(packed[1]), float64(packed[2])}
	hi = []float64{float64(packed[0]), float64(packed[1]), float64(packed[2])}
	for i := 1; i < len(packed)/3; i++ {
		for c := 0; c < 3; c++ {
			v := float64(packed[3*i+c])
			if v < lo[c] {
				lo[c] = v
			}
			if v > hi[c] {
				hi[c] = v
			}
		}
	}
	return lo, hi
}
