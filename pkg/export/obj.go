package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/dshills/rvmscene/pkg/geom"
	"github.com/dshills/rvmscene/pkg/store"
)

// WriteOBJ writes every tessellated geometry in s as a Wavefront OBJ mesh,
// one `g <name>` group per scene Group, vertices/normals emitted once per
// geometry and faces indexed relative to the running OBJ vertex count
// (OBJ indices are 1-based and file-global, unlike Triangulation's
// per-geometry 0-based indices). Geometries with no triangulation (culled,
// or Line) contribute no faces but are otherwise skipped silently.
func WriteOBJ(w io.Writer, s *store.Store) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# exported by rvmscene")

	nextVertex := 1
	v := &objVisitor{s: s, w: bw, nextVertex: &nextVertex}
	s.Apply(v)
	return bw.Flush()
}

type objVisitor struct {
	store.BaseVisitor
	s          *store.Store
	w          *bufio.Writer
	nextVertex *int
}

func (v *objVisitor) BeginGroup(_ store.NodeHandle, n *store.Node) {
	fmt.Fprintf(v.w, "g %s\n", v.s.Strings.String(n.Group.Name))
}

func (v *objVisitor) Geometry(_ store.NodeHandle, _ store.GeometryHandle, g *store.Geometry) {
	t := v.s.Triangulation(g.Triangulation)
	if t == nil || len(t.Indices) == 0 {
		return
	}
	base := *v.nextVertex
	nv := t.VertexCount()
	for i := 0; i < nv; i++ {
		p := g.M.TransformPoint(packedVec3(t.Vertices, i))
		fmt.Fprintf(v.w, "v %g %g %g\n", p.X, p.Y, p.Z)
	}
	for i := 0; i < nv; i++ {
		n := g.M.TransformNormal(packedVec3(t.Normals, i))
		fmt.Fprintf(v.w, "vn %g %g %g\n", n.X, n.Y, n.Z)
	}
	for i := 0; i+2 < len(t.Indices); i += 3 {
		a := base + int(t.Indices[i])
		b := base + int(t.Indices[i+1])
		c := base + int(t.Indices[i+2])
		fmt.Fprintf(v.w, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
	}
	*v.nextVertex += nv
}

// packedVec3 reads the i'th xyz triple out of a flat float32 slice, the
// layout Triangulation.Vertices/Normals use throughout the module.
func packedVec3(packed []float32, i int) geom.Vec3 {
	return geom.Vec3{X: packed[3*i], Y: packed[3*i+1], Z: packed[3*i+2]}
}
