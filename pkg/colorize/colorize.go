// Package colorize implements the material-to-color resolution pass:
// each group inherits a color from its
// material id unless an explicit color attribute overrides it, and every
// geometry in the group picks up the group's resolved color.
package colorize

import (
	"github.com/dshills/rvmscene/pkg/intern"
	"github.com/dshills/rvmscene/pkg/rvmlog"
	"github.com/dshills/rvmscene/pkg/store"
)

// Run resolves Geometry.Color/ColorName for every geometry in s. colorAttr,
// if non-empty, names a group attribute key ("Color" is typical) whose
// value overrides the material-derived color for that group and its
// descendants.
func Run(s *store.Store, log rvmlog.Logger, colorAttr string) {
	c := &colorizer{
		s:           s,
		log:         rvmlog.NewDeduper(log),
		defaultName: s.Strings.Intern(defaultColorName),
	}
	if colorAttr != "" {
		c.colorAttrKey = s.Strings.Intern(colorAttr)
	}
	s.Apply(c)
}

type item struct {
	name     intern.Handle
	rgb      uint32
	override bool
}

type colorizer struct {
	store.BaseVisitor
	s            *store.Store
	log          *rvmlog.Deduper
	defaultName  intern.Handle
	colorAttrKey intern.Handle // 0 if no override attribute configured
	stack        []item
}

func (c *colorizer) BeginGroup(_ store.NodeHandle, n *store.Node) {
	var it item
	if len(c.stack) == 0 {
		it = item{name: c.defaultName, rgb: defaultColorRGB}
	} else {
		it = c.stack[len(c.stack)-1]
	}

	if !it.override {
		mat := n.Group.Material
		switch {
		case mat == 0:
			it.name, it.rgb = c.defaultName, defaultColorRGB
		default:
			if name, ok := materialColorName[mat]; ok {
				if rgb, ok := namedColorRGB[name]; ok {
					it.name = c.s.Strings.Intern(name)
					it.rgb = rgb
				} else {
					c.log.WarnOnce(rvmlog.String("color-name", name), "unrecognized color name %s", name)
				}
			} else {
				c.log.WarnOnce(rvmlog.String("material-id", mat), "unrecognized material id %d", mat)
			}
		}
	}

	c.stack = append(c.stack, it)
}

func (c *colorizer) Attribute(_ store.NodeHandle, _ store.AttributeHandle, a *store.Attribute) {
	if c.colorAttrKey == 0 || a.Key != c.colorAttrKey || len(c.stack) == 0 {
		return
	}
	val := c.s.Strings.String(a.Value)
	top := &c.stack[len(c.stack)-1]
	if rgb, ok := namedColorRGB[val]; ok {
		top.name = a.Value
		top.rgb = rgb
		top.override = true
	} else {
		c.log.WarnOnce(rvmlog.String("color-name", val), "unrecognized color name %s", val)
	}
}

func (c *colorizer) Geometry(_ store.NodeHandle, _ store.GeometryHandle, g *store.Geometry) {
	top := c.stack[len(c.stack)-1]
	g.ColorName = top.name
	g.Color = top.rgb
}

func (c *colorizer) EndGroup(store.NodeHandle, *store.Node) {
	c.stack = c.stack[:len(c.stack)-1]
}
