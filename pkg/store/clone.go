package store

// CloneGeometry deep-copies src into a new geometry owned by parent,
// duplicating variable-length payloads such as FacetGroup's polygon list.
// ColorName is copied as a handle, not re-interned (see below). The clone gets a fresh dense id
// and an empty Connections array: connections describe adjacency between
// specific geometry instances and are never meaningful to copy.
func (dst *Store) CloneGeometry(parent NodeHandle, src *Geometry) GeometryHandle {
	h := dst.NewGeometry(parent)
	g := dst.geometries.Get(h)
	g.Kind = src.Kind
	g.M = src.M
	g.BBoxLocal = src.BBoxLocal
	g.BBoxWorld = src.BBoxWorld
	// ColorName is an intern.Handle; this is only valid when dst shares
	// src's Interner (the common case: cloning within one store, e.g. the
	// pkg/filter keep/discard passes). A cross-store clone must re-intern
	// the resolved string itself before calling CloneGeometry.
	g.ColorName = src.ColorName
	g.Color = src.Color
	g.SampleStartAngle = src.SampleStartAngle
	g.payload = clonePayload(src.Kind, src.payload)
	return h
}

func clonePayload(kind GeometryKind, payload any) any {
	switch kind {
	case KindPyramid:
		v := *payload.(*Pyramid)
		return &v
	case KindBox:
		v := *payload.(*Box)
		return &v
	case KindRectangularTorus:
		v := *payload.(*RectangularTorus)
		return &v
	case KindCircularTorus:
		v := *payload.(*CircularTorus)
		return &v
	case KindEllipticalDish:
		v := *payload.(*EllipticalDish)
		return &v
	case KindSphericalDish:
		v := *payload.(*SphericalDish)
		return &v
	case KindSnout:
		v := *payload.(*Snout)
		return &v
	case KindCylinder:
		v := *payload.(*Cylinder)
		return &v
	case KindSphere:
		v := *payload.(*Sphere)
		return &v
	case KindLine:
		v := *payload.(*Line)
		return &v
	case KindFacetGroup:
		src := payload.(*FacetGroup)
		out := &FacetGroup{Polygons: make([]Polygon, len(src.Polygons))}
		for i, poly := range src.Polygons {
			contours := make([]Contour, len(poly.Contours))
			for j, c := range poly.Contours {
				verts := make([]Vertex, len(c.Vertices))
				copy(verts, c.Vertices)
				contours[j] = Contour{Vertices: verts}
			}
			out.Polygons[i] = Polygon{Contours: contours}
		}
		return out
	default:
		panic("store: clonePayload: unknown geometry kind")
	}
}

// CloneGroup deep-copies src (a Group node) into a new Group child of
// parent, cloning its attributes and geometries but not recursing into its
// children; callers that need a full subtree copy call CloneGroup
// top-down, parent before child. Names, attributes and geometry color
// names are re-interned against dst's interner.
func (dst *Store) CloneGroup(parent NodeHandle, src *Store, srcGroup NodeHandle) NodeHandle {
	sg := src.nodes.Get(srcGroup)
	if sg.Kind != NodeGroup {
		panic("store: CloneGroup source must be a Group node")
	}
	h := dst.NewNode(parent, NodeGroup)
	g := dst.nodes.Get(h)
	g.Group.Name = dst.Strings.Intern(src.Strings.String(sg.Group.Name))
	g.Group.Translation = sg.Group.Translation
	g.Group.Material = sg.Group.Material
	g.Group.CNTETrailer = sg.Group.CNTETrailer

	for attrH := sg.Group.Attributes; attrH != 0; {
		a := src.attributes.Get(attrH)
		key := dst.Strings.Intern(src.Strings.String(a.Key))
		val := dst.Strings.Intern(src.Strings.String(a.Value))
		na := dst.NewAttribute(h, key)
		dst.attributes.Get(na).Value = val
		attrH = a.Next
	}

	for _, gh := range sg.Group.Geometries {
		srcGeo := src.geometries.Get(gh)
		nh := dst.CloneGeometry(h, srcGeo)
		dst.geometries.Get(nh).ColorName = dst.Strings.Intern(src.Strings.String(srcGeo.ColorName))
	}

	return h
}
