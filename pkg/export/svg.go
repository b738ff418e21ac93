package export

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/dshills/rvmscene/pkg/geom"
	"github.com/dshills/rvmscene/pkg/store"
)

// SVGOptions configures the debug-line/bbox plan-view export.
type SVGOptions struct {
	Width, Height  int
	Margin         int
	ShowGroupBoxes bool
}

// DefaultSVGOptions returns sane canvas dimensions for a plan view.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Width: 1000, Height: 1000, Margin: 40, ShowGroupBoxes: true}
}

// WriteDebugSVG renders an orthographic (top-down, X/Y) projection of s's
// DebugLine list and, when requested, every group's world bbox outline
// outline. This is a debugging aid, not a scene renderer: geometries
// themselves are not drawn.
func WriteDebugSVG(w io.Writer, s *store.Store, opt SVGOptions) error {
	bounds := sceneBounds(s, opt)
	proj := newProjector(bounds, opt)

	canvas := svg.New(w)
	canvas.Start(opt.Width, opt.Height)
	canvas.Rect(0, 0, opt.Width, opt.Height, "fill:white")

	if opt.ShowGroupBoxes {
		drawGroupBoxes(canvas, s, proj)
	}
	for _, dl := range s.DebugLines() {
		x1, y1 := proj.point(dl.A)
		x2, y2 := proj.point(dl.B)
		canvas.Line(x1, y1, x2, y2, colorStyle(dl.RGB, "stroke", 2))
	}

	canvas.End()
	return nil
}

func drawGroupBoxes(canvas *svg.SVG, s *store.Store, proj projector) {
	v := &bboxVisitor{s: s, canvas: canvas, proj: proj}
	s.Apply(v)
}

type bboxVisitor struct {
	store.BaseVisitor
	s      *store.Store
	canvas *svg.SVG
	proj   projector
}

func (v *bboxVisitor) EndGroup(_ store.NodeHandle, n *store.Node) {
	b := n.Group.BBoxWorld
	if !b.Set {
		return
	}
	x1, y1 := v.proj.point(geom.Vec3{X: b.Min.X, Y: b.Min.Y})
	x2, y2 := v.proj.point(geom.Vec3{X: b.Max.X, Y: b.Max.Y})
	x, y := x1, y2
	width, height := x2-x1, y1-y2
	if width < 0 {
		width = -width
	}
	if height < 0 {
		height = -height
	}
	v.canvas.Rect(x, y, width, height, "fill:none;stroke:#999;stroke-width:1")
}

// projector maps world-space X/Y into SVG pixel coordinates, flipping Y
// (SVG's origin is top-left, the scene's is arbitrary) and fitting the
// scene's bounds within the canvas minus margin.
type projector struct {
	scale            float64
	originX, originY float64
	opt              SVGOptions
}

func newProjector(b geom.BBox3, opt SVGOptions) projector {
	if !b.Set {
		return projector{scale: 1, opt: opt}
	}
	w := float64(b.Max.X - b.Min.X)
	h := float64(b.Max.Y - b.Min.Y)
	avail := float64(min(opt.Width, opt.Height) - 2*opt.Margin)
	scale := 1.0
	if w > 0 || h > 0 {
		dim := w
		if h > dim {
			dim = h
		}
		if dim > 0 {
			scale = avail / dim
		}
	}
	return projector{scale: scale, originX: float64(b.Min.X), originY: float64(b.Min.Y), opt: opt}
}

func (p projector) point(v geom.Vec3) (int, int) {
	x := p.opt.Margin + int((float64(v.X)-p.originX)*p.scale)
	y := p.opt.Height - p.opt.Margin - int((float64(v.Y)-p.originY)*p.scale)
	return x, y
}

func sceneBounds(s *store.Store, opt SVGOptions) geom.BBox3 {
	var b geom.BBox3
	for _, dl := range s.DebugLines() {
		b.Engulf(dl.A)
		b.Engulf(dl.B)
	}
	if opt.ShowGroupBoxes {
		v := &boundsVisitor{bbox: &b}
		s.Apply(v)
	}
	return b
}

type boundsVisitor struct {
	store.BaseVisitor
	bbox *geom.BBox3
}

func (v *boundsVisitor) EndGroup(_ store.NodeHandle, n *store.Node) {
	v.bbox.EngulfBox(n.Group.BBoxWorld)
}

func colorStyle(rgb uint32, prop string, width int) string {
	r, g, b := (rgb>>16)&0xff, (rgb>>8)&0xff, rgb&0xff
	return fmt.Sprintf("%s:rgb(%d,%d,%d);%s-width:%d", prop, r, g, b, prop, width)
}
