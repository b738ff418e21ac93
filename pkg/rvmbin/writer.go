package rvmbin

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/dshills/rvmscene/pkg/intern"
	"github.com/dshills/rvmscene/pkg/store"
)

// Write serializes s back to the chunked binary wire format, preserving
// node counts, geometry kinds in traversal order, and bit-identical
// primitive parameters modulo the CNTB translation's x1000 unit
// conversion. The CNTE trailer word is written back verbatim.
func Write(w io.Writer, s *store.Store) error {
	var buf bytes.Buffer
	wr := &writer{buf: &buf}

	roots := s.Roots()
	if len(roots) != 1 {
		return fmt.Errorf("rvmbin: Write requires exactly one root File node, got %d", len(roots))
	}
	fileH := roots[0]
	file := s.Node(fileH)
	if file.Kind != store.NodeFile {
		return fmt.Errorf("rvmbin: root node is not a File")
	}
	if len(file.Children) != 1 {
		return fmt.Errorf("rvmbin: Write requires exactly one Model child, got %d", len(file.Children))
	}
	modelH := file.Children[0]
	model := s.Node(modelH)

	version := uint32(1)
	if file.File.Encoding != 0 {
		version = 2
	}
	wr.writeChunk("HEAD", func() {
		wr.u32(version)
		wr.str(s, file.File.Info)
		wr.str(s, file.File.Note)
		wr.str(s, file.File.Date)
		wr.str(s, file.File.User)
		if version >= 2 {
			wr.str(s, file.File.Encoding)
		}
	})

	wr.writeChunk("MODL", func() {
		wr.u32(1)
		wr.str(s, model.Model.Project)
		wr.str(s, model.Model.Name)
	})

	for _, ch := range model.Children {
		if err := wr.writeGroup(s, ch); err != nil {
			return err
		}
	}
	for _, c := range model.Model.Colors {
		wr.writeChunk("COLR", func() {
			wr.u32(c.Kind)
			wr.u32(c.Index)
			wr.buf.WriteByte(byte(c.RGB >> 16))
			wr.buf.WriteByte(byte(c.RGB >> 8))
			wr.buf.WriteByte(byte(c.RGB))
			wr.buf.WriteByte(0)
		})
	}

	wr.writeChunk("END:", func() {})

	_, err := w.Write(buf.Bytes())
	return err
}

type writer struct {
	buf *bytes.Buffer
}

func (w *writer) chunkID(id string) {
	for i := 0; i < 4; i++ {
		w.buf.WriteByte(0)
		w.buf.WriteByte(0)
		w.buf.WriteByte(0)
		w.buf.WriteByte(id[i])
	}
}

func (w *writer) u32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) f32(v float32) {
	w.u32(math.Float32bits(v))
}

func (w *writer) floats(vs []float32) {
	for _, v := range vs {
		w.f32(v)
	}
}

// str writes a length-prefixed string: the word count, then the bytes
// padded with zeros to a multiple of 4. The truncate-at-NUL rule only
// matters for reading; here the full interned string is written and
// zero-padded.
func (w *writer) str(s *store.Store, h intern.Handle) {
	raw := s.Strings.String(h)
	words := (len(raw) + 3) / 4
	w.u32(uint32(words))
	w.buf.WriteString(raw)
	for i := len(raw); i < words*4; i++ {
		w.buf.WriteByte(0)
	}
}

// writeChunk writes id and a placeholder next-offset/prologue word pair,
// then body() (which writes the chunk's own payload, including any
// payload-level version field), then backpatches the next-offset once the
// payload length is known. The prologue "version/flags" word is opaque
// and never retained by the parser, so it is written as 0.
func (w *writer) writeChunk(id string, body func()) {
	w.chunkID(id)
	nextOffsetPos := w.buf.Len()
	w.u32(0) // next_offset placeholder, backpatched below
	w.u32(0) // opaque prologue version/flags word, never round-tripped
	body()
	end := w.buf.Len()
	binary.BigEndian.PutUint32(w.buf.Bytes()[nextOffsetPos:nextOffsetPos+4], uint32(end))
}

func (w *writer) writeGroup(s *store.Store, h store.NodeHandle) error {
	n := s.Node(h)
	w.writeChunk("CNTB", func() {
		w.u32(2)
		w.str(s, n.Group.Name)
		w.f32(n.Group.Translation.X * 1000)
		w.f32(n.Group.Translation.Y * 1000)
		w.f32(n.Group.Translation.Z * 1000)
		w.u32(n.Group.Material)
	})

	for _, gh := range n.Group.Geometries {
		w.writeGeometry(s, gh)
	}
	for _, ch := range n.Children {
		w.writeGroup(s, ch)
	}

	w.writeChunk("CNTE", func() {
		w.u32(n.Group.CNTETrailer)
	})
	return nil
}

func (w *writer) writeGeometry(s *store.Store, h store.GeometryHandle) {
	g := s.Geometry(h)
	w.writeChunk("PRIM", func() {
		w.u32(2)
		w.u32(uint32(g.Kind))
		w.floats(g.M[:])
		w.floats([]float32{g.BBoxLocal.Min.X, g.BBoxLocal.Min.Y, g.BBoxLocal.Min.Z, g.BBoxLocal.Max.X, g.BBoxLocal.Max.Y, g.BBoxLocal.Max.Z})
		w.writePayload(g)
	})
}

func (w *writer) writePayload(g *store.Geometry) {
	switch g.Kind {
	case store.KindPyramid:
		p := g.Pyramid()
		w.floats([]float32{p.Bottom[0], p.Bottom[1], p.Top[0], p.Top[1], p.Offset[0], p.Offset[1], p.Height})
	case store.KindBox:
		b := g.Box()
		w.floats(b.Lengths[:])
	case store.KindRectangularTorus:
		t := g.RectangularTorus()
		w.floats([]float32{t.InnerRadius, t.OuterRadius, t.Height, t.Angle})
	case store.KindCircularTorus:
		t := g.CircularTorus()
		w.floats([]float32{t.Offset, t.Radius, t.Angle})
	case store.KindEllipticalDish:
		d := g.EllipticalDish()
		w.floats([]float32{d.Diameter, d.Radius})
	case store.KindSphericalDish:
		d := g.SphericalDish()
		w.floats([]float32{d.Diameter, d.Height})
	case store.KindSnout:
		sn := g.Snout()
		w.floats([]float32{sn.RadiusBottom, sn.RadiusTop, sn.Height, sn.Offset[0], sn.Offset[1], sn.BShear[0], sn.BShear[1], sn.TShear[0], sn.TShear[1]})
	case store.KindCylinder:
		c := g.Cylinder()
		w.floats([]float32{c.Radius, c.Height})
	case store.KindSphere:
		w.floats([]float32{g.Sphere().Diameter})
	case store.KindLine:
		l := g.Line()
		w.floats([]float32{l.A, l.B})
	case store.KindFacetGroup:
		fg := g.FacetGroup()
		w.u32(uint32(len(fg.Polygons)))
		for _, poly := range fg.Polygons {
			w.u32(uint32(len(poly.Contours)))
			for _, cont := range poly.Contours {
				w.u32(uint32(len(cont.Vertices)))
				for _, v := range cont.Vertices {
					w.floats([]float32{v.Pos.X, v.Pos.Y, v.Pos.Z})
					w.floats([]float32{v.Normal.X, v.Normal.Y, v.Normal.Z})
				}
			}
		}
	}
}
