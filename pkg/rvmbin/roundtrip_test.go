package rvmbin

import (
	"bytes"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"

	"github.com/dshills/rvmscene/pkg/geom"
	"github.com/dshills/rvmscene/pkg/rvmlog"
	"github.com/dshills/rvmscene/pkg/store"
)

// flatGeometry is the comparable projection of a parsed geometry used by
// the round-trip property: kind, transform, bbox, and the payload struct,
// everything that must survive Write-then-Parse bit-identically.
type flatGeometry struct {
	Kind    store.GeometryKind
	M       geom.Mat3x4
	BBox    geom.BBox3
	Payload any
}

func flatten(s *store.Store) []flatGeometry {
	var out []flatGeometry
	var walk func(h store.NodeHandle)
	walk = func(h store.NodeHandle) {
		n := s.Node(h)
		for _, gh := range n.Group.Geometries {
			flattenOne(s.Geometry(gh), &out)
		}
		for _, ch := range n.Children {
			walk(ch)
		}
	}
	for _, r := range s.Roots() {
		walk(r)
	}
	return out
}

// flattenOne appends g's comparable projection to out.
func flattenOne(g *store.Geometry, out *[]flatGeometry) {
	{
		var payload any
		switch g.Kind {
		case store.KindPyramid:
			payload = *g.Pyramid()
		case store.KindBox:
			payload = *g.Box()
		case store.KindRectangularTorus:
			payload = *g.RectangularTorus()
		case store.KindCircularTorus:
			payload = *g.CircularTorus()
		case store.KindEllipticalDish:
			payload = *g.EllipticalDish()
		case store.KindSphericalDish:
			payload = *g.SphericalDish()
		case store.KindSnout:
			payload = *g.Snout()
		case store.KindCylinder:
			payload = *g.Cylinder()
		case store.KindSphere:
			payload = *g.Sphere()
		case store.KindLine:
			payload = *g.Line()
		case store.KindFacetGroup:
			payload = *g.FacetGroup()
		}
		*out = append(*out, flatGeometry{Kind: g.Kind, M: g.M, BBox: g.BBoxLocal, Payload: payload})
	}
}

// finiteF32 draws float32 values that survive a write/read cycle exactly
// (no NaN canonicalization concerns, no subnormal edge cases).
func finiteF32(t *rapid.T, label string) float32 {
	return float32(rapid.IntRange(-1_000_000, 1_000_000).Draw(t, label)) / 1024
}

func randomPayload(t *rapid.T, kind store.GeometryKind) (store.GeometryKind, any) {
	f := func(label string) float32 { return finiteF32(t, label) }
	switch kind {
	case store.KindPyramid:
		return kind, &store.Pyramid{
			Bottom: [2]float32{f("b0"), f("b1")}, Top: [2]float32{f("t0"), f("t1")},
			Offset: [2]float32{f("o0"), f("o1")}, Height: f("h"),
		}
	case store.KindBox:
		return kind, &store.Box{Lengths: [3]float32{f("x"), f("y"), f("z")}}
	case store.KindRectangularTorus:
		return kind, &store.RectangularTorus{InnerRadius: f("ri"), OuterRadius: f("ro"), Height: f("h"), Angle: f("a")}
	case store.KindCircularTorus:
		return kind, &store.CircularTorus{Offset: f("o"), Radius: f("r"), Angle: f("a")}
	case store.KindEllipticalDish:
		return kind, &store.EllipticalDish{Diameter: f("d"), Radius: f("r")}
	case store.KindSphericalDish:
		return kind, &store.SphericalDish{Diameter: f("d"), Height: f("h")}
	case store.KindSnout:
		return kind, &store.Snout{
			RadiusBottom: f("rb"), RadiusTop: f("rt"), Height: f("h"),
			Offset: [2]float32{f("o0"), f("o1")},
			BShear: [2]float32{f("bs0"), f("bs1")}, TShear: [2]float32{f("ts0"), f("ts1")},
		}
	case store.KindCylinder:
		return kind, &store.Cylinder{Radius: f("r"), Height: f("h")}
	case store.KindSphere:
		return kind, &store.Sphere{Diameter: f("d")}
	case store.KindLine:
		return kind, &store.Line{A: f("a"), B: f("b")}
	default:
		fg := &store.FacetGroup{}
		nPoly := rapid.IntRange(1, 3).Draw(t, "polys")
		for p := 0; p < nPoly; p++ {
			var poly store.Polygon
			nCont := rapid.IntRange(1, 2).Draw(t, "contours")
			for c := 0; c < nCont; c++ {
				var cont store.Contour
				nVert := rapid.IntRange(3, 6).Draw(t, "verts")
				for v := 0; v < nVert; v++ {
					cont.Vertices = append(cont.Vertices, store.Vertex{
						Pos:    geom.Vec3{X: f("px"), Y: f("py"), Z: f("pz")},
						Normal: geom.Vec3{X: f("nx"), Y: f("ny"), Z: f("nz")},
					})
				}
				poly.Contours = append(poly.Contours, cont)
			}
			fg.Polygons = append(fg.Polygons, poly)
		}
		return store.KindFacetGroup, fg
	}
}

// Parsing a written store yields identical node counts, identical
// geometry kinds in identical traversal order, and bit-identical
// primitive parameters.
func TestWriteParseRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := store.New()
		file := s.NewNode(0, store.NodeFile)
		fn := s.Node(file)
		fn.File.Info = s.Strings.Intern(rapid.StringMatching(`[a-zA-Z0-9 ]{0,12}`).Draw(t, "info"))
		fn.File.Note = s.Strings.Intern("note")
		fn.File.Date = s.Strings.Intern("2026-08-01")
		fn.File.User = s.Strings.Intern("prop")

		model := s.NewNode(file, store.NodeModel)
		mn := s.Node(model)
		mn.Model.Project = s.Strings.Intern("P")
		mn.Model.Name = s.Strings.Intern("M")

		nGroups := rapid.IntRange(1, 4).Draw(t, "groups")
		parents := []store.NodeHandle{}
		for i := 0; i < nGroups; i++ {
			parent := model
			if len(parents) > 0 && rapid.Bool().Draw(t, "nest") {
				parent = parents[rapid.IntRange(0, len(parents)-1).Draw(t, "pidx")]
			}
			g := s.NewNode(parent, store.NodeGroup)
			gn := s.Node(g)
			gn.Group.Name = s.Strings.Intern(rapid.StringMatching(`[A-Z]{1,8}`).Draw(t, "name"))
			gn.Group.Translation = geom.Vec3{X: finiteF32(t, "tx"), Y: finiteF32(t, "ty"), Z: finiteF32(t, "tz")}
			gn.Group.Material = uint32(rapid.IntRange(0, 99).Draw(t, "mat"))
			gn.Group.CNTETrailer = uint32(rapid.IntRange(0, 1<<20).Draw(t, "trailer"))
			parents = append(parents, g)

			nGeos := rapid.IntRange(0, 3).Draw(t, "geos")
			for k := 0; k < nGeos; k++ {
				kind := store.GeometryKind(rapid.IntRange(1, 11).Draw(t, "kind"))
				geoH := s.NewGeometry(g)
				geo := s.Geometry(geoH)
				geo.M = geom.Identity()
				geo.M[9] = finiteF32(t, "mx")
				geo.BBoxLocal = geom.BBox3{
					Min: geom.Vec3{X: -1, Y: -1, Z: -1},
					Max: geom.Vec3{X: 1, Y: 1, Z: 1},
					Set: true,
				}
				geo.SetPayload(randomPayload(t, kind))
			}
		}

		var buf bytes.Buffer
		if err := Write(&buf, s); err != nil {
			t.Fatalf("Write: %v", err)
		}
		s2, err := Parse(bytes.NewReader(buf.Bytes()), rvmlog.Nop{})
		if err != nil {
			t.Fatalf("Parse after Write: %v", err)
		}

		s.UpdateCounts()
		s2.UpdateCounts()
		if diff := cmp.Diff(s.Stats(), s2.Stats()); diff != "" {
			t.Fatalf("node counts changed across round trip (-orig +reparsed):\n%s", diff)
		}
		if diff := cmp.Diff(flatten(s), flatten(s2)); diff != "" {
			t.Fatalf("geometries changed across round trip (-orig +reparsed):\n%s", diff)
		}
	})
}

// The CNTB translation crosses the wire in millimetres: writing multiplies
// by 1000, parsing divides. Round-tripping twice pins the scaling down as
// an involution rather than an accumulating drift.
func TestTranslationUnitConversionIsStable(t *testing.T) {
	s := store.New()
	file := s.NewNode(0, store.NodeFile)
	fn := s.Node(file)
	fn.File.Info = s.Strings.Intern("")
	fn.File.Note = s.Strings.Intern("")
	fn.File.Date = s.Strings.Intern("")
	fn.File.User = s.Strings.Intern("")
	model := s.NewNode(file, store.NodeModel)
	s.Node(model).Model.Project = s.Strings.Intern("p")
	s.Node(model).Model.Name = s.Strings.Intern("m")
	group := s.NewNode(model, store.NodeGroup)
	s.Node(group).Group.Name = s.Strings.Intern("G")
	s.Node(group).Group.Translation = geom.Vec3{X: 1, Y: 2, Z: 3}

	once := roundTrip(t, s)
	twice := roundTrip(t, once)

	g1 := once.Node(once.Node(once.Node(once.Roots()[0]).Children[0]).Children[0])
	g2 := twice.Node(twice.Node(twice.Node(twice.Roots()[0]).Children[0]).Children[0])
	if g1.Group.Translation != g2.Group.Translation {
		t.Fatalf("translation drifted: %+v then %+v", g1.Group.Translation, g2.Group.Translation)
	}
	if math.Abs(float64(g1.Group.Translation.X-1)) > 1e-6 {
		t.Fatalf("translation x = %v, want 1", g1.Group.Translation.X)
	}
}

func roundTrip(t *testing.T, s *store.Store) *store.Store {
	t.Helper()
	var buf bytes.Buffer
	if err := Write(&buf, s); err != nil {
		t.Fatalf("Write: %v", err)
	}
	s2, err := Parse(bytes.NewReader(buf.Bytes()), rvmlog.Nop{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return s2
}
