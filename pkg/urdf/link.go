// SPDX-License-Identifier: MPL-2.0

package urdf

import (
	"errors"

	"github.com/urdfkit/urdfkit/internal/xmltree"

	"gonum.org/v1/gonum/mat"
)

// inertiaAttrs lists the <inertia> attributes with their (row, col) in the tensor.
var inertiaAttrs = []struct {
	name     string
	row, col int
}{
	{"ixx", 0, 0}, {"ixy", 0, 1}, {"ixz", 0, 2},
	{"iyy", 1, 1}, {"iyz", 1, 2}, {"izz", 2, 2},
}

func (p *parser) parseMaterial(el *xmltree.Element) {
	name, ok := el.Attr("name")
	if !ok || name == "" {
		p.errorf(el, "material tag is missing name attribute.")
		return
	}
	m, ok := p.inlineMaterial(el, name)
	if !ok {
		return
	}
	if prev, exists := p.model.Materials[name]; exists {
		if !sameMaterial(prev, m) {
			p.errorf(el, "Material '%s' was previously defined with a different color or texture.", name)
		}
		return
	}
	p.model.Materials[name] = m
}

// inlineMaterial reads <color rgba> and <texture filename> children.
func (p *parser) inlineMaterial(el *xmltree.Element, name string) (Material, bool) {
	m := Material{Name: name}
	if c := el.FirstChild("color"); c != nil {
		rgba, ok := c.Attr("rgba")
		if !ok {
			p.errorf(c, "Material '%s' has a <color> without an 'rgba' attribute.", name)
			return Material{}, false
		}
		color, err := ParseColor(rgba)
		if err != nil {
			p.errorf(c, "Failed to parse 'rgba' of material '%s': %v", name, err)
			return Material{}, false
		}
		m.Color = &color
	}
	if t := el.FirstChild("texture"); t != nil {
		m.Texture, _ = t.Attr("filename")
	}
	return m, true
}

func (p *parser) parseLink(el *xmltree.Element) {
	if isTrue(el, "drake_ignore") {
		return
	}
	name, ok := el.Attr("name")
	if !ok || name == "" {
		p.errorf(el, "link tag is missing name attribute.")
		return
	}

	link := &Link{Name: name, Instance: p.instance(), Location: el.Location()}
	inertialEl := el.FirstChild("inertial")
	if name == WorldLinkName {
		link.Instance = WorldModelInstance
		if inertialEl != nil {
			p.warnf(inertialEl, "A URDF file declared the \"world\" link and then attempted to assign "+
				"mass properties (via the <inertial> tag). Only geometries, <collision> and <visual>, "+
				"can be assigned to the world link. The <inertial> tag is being ignored.")
		}
	} else if inertialEl != nil {
		inertial, err := parseInertial(inertialEl)
		if err != nil {
			p.errorf(inertialEl, "link '%s': %v", name, err)
			return
		}
		link.Inertial = inertial
	}

	if err := p.res.Declare(KindLink, name, link); err != nil {
		p.errorf(el, "%v", err)
		return
	}
	if !link.IsWorld() {
		if err := p.ws.Builder.AddLink(p.instance(), link); err != nil {
			p.fail(el, err)
			return
		}
	}

	for _, child := range el.Children {
		switch {
		case child.Is("visual"):
			p.parseGeometry(link, child, GeometryVisual)
		case child.Is("collision"):
			p.parseGeometry(link, child, GeometryCollision)
		}
	}
	p.model.Links = append(p.model.Links, link)
}

// parseInertial reads mass, origin and the rotational inertia. Missing parts are zero.
func parseInertial(el *xmltree.Element) (*Inertial, error) {
	in := &Inertial{Inertia: mat.NewSymDense(3, nil)}
	if m := el.FirstChild("mass"); m != nil {
		v, err := scalarAttr(m, "value", 0)
		if err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, errors.New("mass must not be negative")
		}
		in.Mass = v
	}
	origin, err := originOf(el)
	if err != nil {
		return nil, err
	}
	in.Origin = origin
	if i := el.FirstChild("inertia"); i != nil {
		for _, a := range inertiaAttrs {
			v, err := scalarAttr(i, a.name, 0)
			if err != nil {
				return nil, err
			}
			in.Inertia.SetSym(a.row, a.col, v)
		}
	}
	return in, nil
}

func (p *parser) parseGeometry(link *Link, el *xmltree.Element, kind GeometryKind) {
	if isTrue(el, "drake_ignore") {
		return
	}
	g := &Geometry{Link: link.Name, Kind: kind, Location: el.Location()}
	g.Name, _ = el.Attr("name")
	if kind == GeometryCollision {
		g.Roles = RoleProximity
	} else {
		g.Roles = RoleIllustration | RolePerception
	}

	origin, err := originOf(el)
	if err != nil {
		p.errorf(el, "%s of link '%s': %v", kind, link.Name, err)
		return
	}
	g.Origin = origin

	geomEl := el.FirstChild("geometry")
	if geomEl == nil {
		p.errorf(el, "The <%s> element of link '%s' is missing a <geometry> element.", kind, link.Name)
		return
	}
	if len(geomEl.Children) == 0 {
		p.errorf(geomEl, "The <geometry> of a <%s> in link '%s' does not contain a shape.", kind, link.Name)
		return
	}
	g.Shape = geomEl.Children[0]

	if kind == GeometryVisual {
		if matEl := el.FirstChild("material"); matEl != nil {
			m, ok := p.resolveMaterial(matEl)
			if !ok {
				return
			}
			g.Material = m
		}
	}

	if p.ws.Geometry != nil {
		ids, err := p.ws.Geometry.RegisterGeometry(p.ctx, p.instance(), g)
		if err != nil {
			p.errorf(g.Shape, "%v", err)
			return
		}
		g.IDs = ids
	}
	link.Geometries = append(link.Geometries, g)
}

// resolveMaterial returns the inline material of a visual, falling back to the named
// top-level definition.
func (p *parser) resolveMaterial(el *xmltree.Element) (*Material, bool) {
	name, _ := el.Attr("name")
	if el.FirstChild("color") != nil || el.FirstChild("texture") != nil {
		m, ok := p.inlineMaterial(el, name)
		if !ok {
			return nil, false
		}
		if name != "" {
			if _, exists := p.model.Materials[name]; !exists {
				p.model.Materials[name] = m
			}
		}
		return &m, true
	}
	if name == "" {
		return nil, true
	}
	m, ok := p.model.Materials[name]
	if !ok {
		p.errorf(el, "Material '%s' was not previously defined.", name)
		return nil, false
	}
	return &m, true
}

func (p *parser) parseFrame(el *xmltree.Element) {
	name, ok := el.Attr("name")
	if !ok || name == "" {
		p.errorf(el, "Error parsing frame name.")
		return
	}
	linkName, ok := el.Attr("link")
	if !ok || linkName == "" {
		p.errorf(el, "missing link name for frame %s.", name)
		return
	}
	pose, err := poseAttrs(el)
	if err != nil {
		p.errorf(el, "frame '%s': %v", name, err)
		return
	}
	if _, err := p.res.Resolve(KindLink, linkName); err != nil {
		p.errorf(el, "Could not find link named '%s' with model instance ID %s for element '%s'.",
			linkName, formatScope(p.instance()), name)
		return
	}

	frame := &Frame{
		Name:     name,
		Link:     linkName,
		Pose:     pose,
		Instance: p.instance(),
		Location: el.Location(),
	}
	if err := p.res.Declare(KindFrame, name, frame); err != nil {
		p.errorf(el, "%v", err)
		return
	}
	if err := p.ws.Builder.AddFrame(p.instance(), frame); err != nil {
		p.fail(el, err)
		return
	}
	p.model.Frames = append(p.model.Frames, frame)
}

func sameMaterial(a, b Material) bool {
	if a.Texture != b.Texture {
		return false
	}
	if a.Color == nil || b.Color == nil {
		return a.Color == b.Color
	}
	return *a.Color == *b.Color
}
