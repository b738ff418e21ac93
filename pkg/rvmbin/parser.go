// Package rvmbin implements the big-endian chunked binary reader and
// writer: it streams HEAD/MODL/CNTB/CNTE/PRIM/COLR/END: chunks and
// materializes a *store.Store, or, in the other direction, serializes a
// *store.Store back to the same wire format for lossless round trips.
package rvmbin

import (
	"fmt"
	"io"

	"github.com/dshills/rvmscene/pkg/geom"
	"github.com/dshills/rvmscene/pkg/rvmlog"
	"github.com/dshills/rvmscene/pkg/store"
)

// Parse reads a complete RVM-style binary stream from r into a fresh
// Store. The top-level sequence is fixed: HEAD, MODL, then a repetition
// of CNTB/PRIM/COLR terminated by END:. On failure it returns a non-nil
// error and the caller must discard the store; no partial commit is
// guaranteed beyond the last successfully parsed chunk.
func Parse(r io.Reader, log rvmlog.Logger) (*store.Store, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("rvmbin: reading input: %w", err)
	}
	s := store.New()
	p := &parser{r: &reader{buf: data}, s: s, log: log}
	if err := p.run(); err != nil {
		s.SetErrorString(err.Error())
		return nil, err
	}
	return s, nil
}

type parser struct {
	r     *reader
	s     *store.Store
	log   rvmlog.Logger
	stack []store.NodeHandle // File -> Model -> Group...
}

func (p *parser) top() store.NodeHandle { return p.stack[len(p.stack)-1] }

// chunkHeader is the id + prologue read at the start of every chunk:
// [4 x 4B id][uint32 next_offset][uint32 version/flags].
type chunkHeader struct {
	id     string
	next   uint32
	vflags uint32
}

func (p *parser) readHeader() (chunkHeader, error) {
	id, err := p.r.chunkID()
	if err != nil {
		return chunkHeader{}, err
	}
	next, err := p.r.u32()
	if err != nil {
		return chunkHeader{}, err
	}
	vflags, err := p.r.u32()
	if err != nil {
		return chunkHeader{}, err
	}
	return chunkHeader{id: id, next: next, vflags: vflags}, nil
}

func (p *parser) run() error {
	h, err := p.readHeader()
	if err != nil {
		return err
	}
	if h.id != "HEAD" {
		return errf("Expected chunk HEAD, got %s", h.id)
	}
	if err := p.parseHead(h); err != nil {
		return err
	}

	h, err = p.readHeader()
	if err != nil {
		return err
	}
	if h.id != "MODL" {
		return errf("Expected chunk MODL, got %s", h.id)
	}
	if err := p.parseModl(h); err != nil {
		return err
	}

	for {
		h, err := p.readHeader()
		if err != nil {
			return err
		}
		if h.id == "END:" {
			return nil
		}
		if err := p.dispatch(h); err != nil {
			return err
		}
	}
}

// dispatch handles the chunk kinds legal after MODL: CNTB, PRIM, COLR.
// Inside a CNTB body only CNTB and PRIM reach it (parseCntb rejects the
// rest). Each parse* function itself enforces its structural
// preconditions (e.g. PRIM requires a Group parent).
func (p *parser) dispatch(h chunkHeader) error {
	switch h.id {
	case "CNTB":
		return p.parseCntb(h)
	case "PRIM":
		return p.parsePrim(h)
	case "COLR":
		return p.parseColr(h)
	default:
		return errf("unrecognized chunk id %q at offset %#x", h.id, p.r.pos-16)
	}
}

func (p *parser) parseHead(h chunkHeader) error {
	if len(p.stack) != 0 {
		return errf("HEAD chunk seen after the start of the file")
	}
	version, err := p.r.u32()
	if err != nil {
		return err
	}
	file := p.s.NewNode(0, store.NodeFile)
	n := p.s.Node(file)

	if n.File.Info, err = p.r.str(p.s.Strings); err != nil {
		return err
	}
	if n.File.Note, err = p.r.str(p.s.Strings); err != nil {
		return err
	}
	if n.File.Date, err = p.r.str(p.s.Strings); err != nil {
		return err
	}
	if n.File.User, err = p.r.str(p.s.Strings); err != nil {
		return err
	}
	if version >= 2 {
		if n.File.Encoding, err = p.r.str(p.s.Strings); err != nil {
			return err
		}
	}

	p.stack = append(p.stack, file)
	return p.r.verifyOffset("HEAD", h.next)
}

func (p *parser) parseModl(h chunkHeader) error {
	if len(p.stack) != 1 {
		return errf("MODL chunk seen without a preceding HEAD")
	}
	if _, err := p.r.u32(); err != nil { // version, unused beyond presence
		return err
	}
	model := p.s.NewNode(p.top(), store.NodeModel)
	n := p.s.Node(model)
	var err error
	if n.Model.Project, err = p.r.str(p.s.Strings); err != nil {
		return err
	}
	if n.Model.Name, err = p.r.str(p.s.Strings); err != nil {
		return err
	}
	p.stack = append(p.stack, model)
	return p.r.verifyOffset("MODL", h.next)
}

func (p *parser) parseCntb(h chunkHeader) error {
	parent := p.top()
	if p.s.Node(parent).Kind == store.NodeFile {
		return errf("In CNTB, parent chunk is the file header, not a model or group")
	}
	if _, err := p.r.u32(); err != nil { // version
		return err
	}
	group := p.s.NewNode(parent, store.NodeGroup)
	n := p.s.Node(group)
	var err error
	if n.Group.Name, err = p.r.str(p.s.Strings); err != nil {
		return err
	}
	t, err := p.r.floats(3)
	if err != nil {
		return err
	}
	// CNTB stores millimetres; the store works in metres.
	n.Group.Translation = geom.Vec3{X: t[0] / 1000, Y: t[1] / 1000, Z: t[2] / 1000}
	if n.Group.Material, err = p.r.u32(); err != nil {
		return err
	}
	if err := p.r.verifyOffset("CNTB", h.next); err != nil {
		return err
	}

	p.stack = append(p.stack, group)
	for {
		ch, err := p.readHeader()
		if err != nil {
			return err
		}
		if ch.id == "CNTE" {
			trailer, err := p.r.u32()
			if err != nil {
				return err
			}
			n.Group.CNTETrailer = trailer
			break
		}
		if ch.id != "CNTB" && ch.id != "PRIM" {
			return errf("In CNTB, unknown chunk id %s", ch.id)
		}
		if err := p.dispatch(ch); err != nil {
			return err
		}
	}
	p.stack = p.stack[:len(p.stack)-1]
	return nil
}

func (p *parser) parsePrim(h chunkHeader) error {
	parent := p.top()
	if p.s.Node(parent).Kind != store.NodeGroup {
		return errf("In PRIM, parent chunk is not CNTB")
	}
	if _, err := p.r.u32(); err != nil { // version
		return err
	}
	kind, err := p.r.u32()
	if err != nil {
		return err
	}

	geoH := p.s.NewGeometry(parent)
	g := p.s.Geometry(geoH)

	mFloats, err := p.r.floats(12)
	if err != nil {
		return err
	}
	copy(g.M[:], mFloats)

	bboxFloats, err := p.r.floats(6)
	if err != nil {
		return err
	}
	g.BBoxLocal = geom.BBox3{
		Min: geom.Vec3{X: bboxFloats[0], Y: bboxFloats[1], Z: bboxFloats[2]},
		Max: geom.Vec3{X: bboxFloats[3], Y: bboxFloats[4], Z: bboxFloats[5]},
		Set: true,
	}
	g.BBoxWorld = geom.TransformBBox(g.M, g.BBoxLocal)

	if err := p.parsePrimPayload(g, kind); err != nil {
		return err
	}

	return p.r.verifyOffset("PRIM", h.next)
}

func (p *parser) parsePrimPayload(g *store.Geometry, kind uint32) error {
	switch kind {
	case 1:
		f, err := p.r.floats(7)
		if err != nil {
			return err
		}
		g.SetPayload(store.KindPyramid, &store.Pyramid{
			Bottom: [2]float32{f[0], f[1]}, Top: [2]float32{f[2], f[3]},
			Offset: [2]float32{f[4], f[5]}, Height: f[6],
		})
	case 2:
		f, err := p.r.floats(3)
		if err != nil {
			return err
		}
		g.SetPayload(store.KindBox, &store.Box{Lengths: [3]float32{f[0], f[1], f[2]}})
	case 3:
		f, err := p.r.floats(4)
		if err != nil {
			return err
		}
		g.SetPayload(store.KindRectangularTorus, &store.RectangularTorus{
			InnerRadius: f[0], OuterRadius: f[1], Height: f[2], Angle: f[3],
		})
	case 4:
		f, err := p.r.floats(3)
		if err != nil {
			return err
		}
		g.SetPayload(store.KindCircularTorus, &store.CircularTorus{Offset: f[0], Radius: f[1], Angle: f[2]})
	case 5:
		f, err := p.r.floats(2)
		if err != nil {
			return err
		}
		g.SetPayload(store.KindEllipticalDish, &store.EllipticalDish{Diameter: f[0], Radius: f[1]})
	case 6:
		f, err := p.r.floats(2)
		if err != nil {
			return err
		}
		g.SetPayload(store.KindSphericalDish, &store.SphericalDish{Diameter: f[0], Height: f[1]})
	case 7:
		f, err := p.r.floats(9)
		if err != nil {
			return err
		}
		g.SetPayload(store.KindSnout, &store.Snout{
			RadiusBottom: f[0], RadiusTop: f[1], Height: f[2],
			Offset: [2]float32{f[3], f[4]}, BShear: [2]float32{f[5], f[6]}, TShear: [2]float32{f[7], f[8]},
		})
	case 8:
		f, err := p.r.floats(2)
		if err != nil {
			return err
		}
		g.SetPayload(store.KindCylinder, &store.Cylinder{Radius: f[0], Height: f[1]})
	case 9:
		f, err := p.r.floats(1)
		if err != nil {
			return err
		}
		g.SetPayload(store.KindSphere, &store.Sphere{Diameter: f[0]})
	case 10:
		f, err := p.r.floats(2)
		if err != nil {
			return err
		}
		g.SetPayload(store.KindLine, &store.Line{A: f[0], B: f[1]})
	case 11:
		fg, err := p.parseFacetGroup()
		if err != nil {
			return err
		}
		g.SetPayload(store.KindFacetGroup, fg)
	default:
		return errf("In PRIM, unknown primitive kind %d", kind)
	}
	return nil
}

func (p *parser) parseFacetGroup() (*store.FacetGroup, error) {
	polyN, err := p.r.u32()
	if err != nil {
		return nil, err
	}
	fg := &store.FacetGroup{Polygons: make([]store.Polygon, polyN)}
	for pi := range fg.Polygons {
		contN, err := p.r.u32()
		if err != nil {
			return nil, err
		}
		poly := store.Polygon{Contours: make([]store.Contour, contN)}
		for ci := range poly.Contours {
			vertN, err := p.r.u32()
			if err != nil {
				return nil, err
			}
			cont := store.Contour{Vertices: make([]store.Vertex, vertN)}
			for vi := range cont.Vertices {
				pos, err := p.r.floats(3)
				if err != nil {
					return nil, err
				}
				nrm, err := p.r.floats(3)
				if err != nil {
					return nil, err
				}
				cont.Vertices[vi] = store.Vertex{
					Pos:    geom.Vec3{X: pos[0], Y: pos[1], Z: pos[2]},
					Normal: geom.Vec3{X: nrm[0], Y: nrm[1], Z: nrm[2]},
				}
			}
			poly.Contours[ci] = cont
		}
		fg.Polygons[pi] = poly
	}
	return fg, nil
}

func (p *parser) parseColr(h chunkHeader) error {
	model := p.findModelAncestor()
	if model == 0 {
		return errf("COLR chunk seen outside a MODL")
	}
	var c store.Color
	var err error
	if c.Kind, err = p.r.u32(); err != nil {
		return err
	}
	if c.Index, err = p.r.u32(); err != nil {
		return err
	}
	if err := p.r.require(4); err != nil {
		return err
	}
	rgb := p.r.buf[p.r.pos : p.r.pos+4]
	c.RGB = uint32(rgb[0])<<16 | uint32(rgb[1])<<8 | uint32(rgb[2])
	p.r.pos += 4 // 3 rgb bytes + 1 pad byte

	n := p.s.Node(model)
	n.Model.Colors = append(n.Model.Colors, c)

	return p.r.verifyOffset("COLR", h.next)
}

// findModelAncestor returns the top of stack if it is the Model node, and
// 0 otherwise; it does not look below a Group. COLR is only legal directly after
// MODL, at the same nesting level as the first CNTB (a COLR anywhere
// else is an error), so the top of stack must be the Model node itself.
func (p *parser) findModelAncestor() store.NodeHandle {
	top := p.top()
	if p.s.Node(top).Kind == store.NodeModel {
		return top
	}
	return 0
}
