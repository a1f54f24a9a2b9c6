// SPDX-License-Identifier: MPL-2.0

package plant

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urdfkit/urdfkit/internal/xmltree"
	"github.com/urdfkit/urdfkit/pkg/urdf"
)

// Shape kinds.
const (
	ShapeBox       ShapeKind = "Box"
	ShapeSphere    ShapeKind = "Sphere"
	ShapeCylinder  ShapeKind = "Cylinder"
	ShapeCapsule   ShapeKind = "Capsule"
	ShapeEllipsoid ShapeKind = "Ellipsoid"
	ShapeMesh      ShapeKind = "Mesh"
	ShapeConvex    ShapeKind = "Convex"
)

// ErrUnknownShape is returned for a <geometry> child that is not a supported shape.
var ErrUnknownShape = errors.New("unknown geometry type")

type (
	// ShapeKind names a supported shape.
	ShapeKind string

	// Shape is a parsed geometry description. Params holds the dimensions in the order
	// listed by the shape: box (x, y, z), sphere (radius), cylinder and capsule
	// (radius, length), ellipsoid (a, b, c), mesh and convex (scale).
	Shape struct {
		Kind   ShapeKind
		Params []float64
		File   string
	}

	// Geometry is a registered shape.
	Geometry struct {
		ID       urdf.GeometryID
		Name     string
		Instance urdf.ModelInstance
		Body     string
		Roles    urdf.Roles
		Shape    Shape
		Pose     urdf.Pose
		Material *urdf.Material

		// owner is the instance that registered the geometry. It differs from
		// Instance for geometry attached to the world body.
		owner urdf.ModelInstance
	}
)

// RegisterGeometry implements urdf.GeometryEngine. Each record yields one geometry that
// carries all of the record's roles.
func (p *Plant) RegisterGeometry(ctx context.Context, instance urdf.ModelInstance, g *urdf.Geometry) ([]urdf.GeometryID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	shape, err := p.parseShape(g.Shape)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkInstance(instance); err != nil {
		return nil, err
	}
	body := p.bodyKey(instance, g.Link)
	if _, ok := p.bodies[body]; !ok {
		return nil, &UnknownEntityError{Kind: "body", Name: g.Link, Instance: instance}
	}

	name := g.Name
	if name == "" {
		name = string(shape.Kind)
	}
	name = p.uniqueGeometryName(body, g.Roles, p.instances[instance]+"::"+name)
	geom := &Geometry{
		ID:       p.nextGeometry,
		Name:     name,
		Instance: body.instance,
		Body:     body.name,
		Roles:    g.Roles,
		Shape:    shape,
		Pose:     g.Origin,
		Material: g.Material,
		owner:    instance,
	}
	p.nextGeometry++
	p.geometries = append(p.geometries, geom)
	p.geometryByID[geom.ID] = geom
	return []urdf.GeometryID{geom.ID}, nil
}

// ExcludeCollisionsBetween implements urdf.GeometryEngine.
func (p *Plant) ExcludeCollisionsBetween(a, b []urdf.GeometryID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ids := range [][]urdf.GeometryID{a, b} {
		for _, id := range ids {
			if _, ok := p.geometryByID[id]; !ok {
				return &UnknownEntityError{Kind: "geometry", Name: fmt.Sprint(int(id))}
			}
		}
	}
	p.exclude(a, b)
	return nil
}

// CollisionFiltered reports whether the pair (a, b) is excluded from collision.
func (p *Plant) CollisionFiltered(a, b urdf.GeometryID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.filters[pairKey(a, b)]
	return ok
}

// NumFilteredPairs returns the number of excluded geometry pairs.
func (p *Plant) NumFilteredPairs() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.filters)
}

// Geometries returns every registered geometry in registration order.
func (p *Plant) Geometries() []*Geometry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Geometry(nil), p.geometries...)
}

// GeometriesOf returns the geometries of a body that have every role in roles.
func (p *Plant) GeometriesOf(instance urdf.ModelInstance, body string, roles urdf.Roles) []*Geometry {
	p.mu.Lock()
	defer p.mu.Unlock()
	k := p.bodyKey(instance, body)
	var out []*Geometry
	for _, g := range p.geometries {
		if g.Instance == k.instance && g.Body == k.name && g.Roles.Has(roles) {
			out = append(out, g)
		}
	}
	return out
}

// GeometryByName returns the geometry with the given full name ("model::name").
func (p *Plant) GeometryByName(name string) (*Geometry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, g := range p.geometries {
		if g.Name == name {
			return g, true
		}
	}
	return nil, false
}

func (p *Plant) exclude(a, b []urdf.GeometryID) {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				continue
			}
			p.filters[pairKey(x, y)] = struct{}{}
		}
	}
}

func (p *Plant) proximityOf(body key) []urdf.GeometryID {
	var ids []urdf.GeometryID
	for _, g := range p.geometries {
		if g.Instance == body.instance && g.Body == body.name && g.Roles.Has(urdf.RoleProximity) {
			ids = append(ids, g.ID)
		}
	}
	return ids
}

// uniqueGeometryName appends a counter when a body already has a geometry with the same
// name sharing one of the roles.
func (p *Plant) uniqueGeometryName(body key, roles urdf.Roles, name string) string {
	candidate := name
	for n := 1; ; n++ {
		clash := false
		for _, g := range p.geometries {
			if g.Instance == body.instance && g.Body == body.name && g.Name == candidate && g.Roles&roles != 0 {
				clash = true
				break
			}
		}
		if !clash {
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d", name, n)
	}
}

// parseShape builds a Shape from the first child of a <geometry> element.
func (p *Plant) parseShape(el *xmltree.Element) (Shape, error) {
	if el == nil {
		return Shape{}, fmt.Errorf("%w: empty <geometry>", ErrUnknownShape)
	}
	switch el.Name() {
	case "box":
		v, err := floatsAttr(el, "size", 3)
		return Shape{Kind: ShapeBox, Params: v}, err
	case "sphere":
		v, err := floatsAttr(el, "radius", 1)
		return Shape{Kind: ShapeSphere, Params: v}, err
	case "cylinder":
		v, err := floatsAttrs(el, "radius", "length")
		return Shape{Kind: ShapeCylinder, Params: v}, err
	case "capsule", "drake:capsule":
		v, err := floatsAttrs(el, "radius", "length")
		return Shape{Kind: ShapeCapsule, Params: v}, err
	case "drake:ellipsoid":
		v, err := floatsAttrs(el, "a", "b", "c")
		return Shape{Kind: ShapeEllipsoid, Params: v}, err
	case "mesh":
		return p.parseMesh(el)
	default:
		return Shape{}, fmt.Errorf("%w '%s'", ErrUnknownShape, el.Name())
	}
}

func (p *Plant) parseMesh(el *xmltree.Element) (Shape, error) {
	uri, ok := el.Attr("filename")
	if !ok || uri == "" {
		return Shape{}, errors.New("mesh element has no 'filename' attribute")
	}
	root := filepath.Dir(el.Location().File)
	file, err := p.packages.Resolve(uri, root)
	if err != nil {
		return Shape{}, fmt.Errorf("unable to resolve mesh '%s': %w", uri, err)
	}
	if _, err := os.Stat(file); err != nil {
		return Shape{}, fmt.Errorf("mesh file '%s' not found (from '%s')", file, uri)
	}
	scale := 1.0
	if s, ok := el.Attr("scale"); ok {
		v, err := urdf.ParseFloats(s)
		if err != nil || len(v) == 0 {
			return Shape{}, fmt.Errorf("mesh '%s' has an invalid scale '%s'", uri, s)
		}
		for _, x := range v[1:] {
			if x != v[0] {
				return Shape{}, fmt.Errorf("mesh '%s' must be scaled uniformly, got '%s'", uri, s)
			}
		}
		scale = v[0]
	}
	kind := ShapeMesh
	if el.FirstChild("drake:declare_convex") != nil {
		kind = ShapeConvex
	}
	return Shape{Kind: kind, Params: []float64{scale}, File: file}, nil
}

func floatsAttr(el *xmltree.Element, name string, n int) ([]float64, error) {
	s, ok := el.Attr(name)
	if !ok {
		return nil, fmt.Errorf("<%s> is missing the '%s' attribute", el.Name(), name)
	}
	v, err := urdf.ParseFloats(s)
	if err != nil {
		return nil, fmt.Errorf("<%s> attribute '%s': %w", el.Name(), name, err)
	}
	if len(v) != n {
		return nil, fmt.Errorf("<%s> attribute '%s' needs %d values, got %d", el.Name(), name, n, len(v))
	}
	return v, nil
}

func floatsAttrs(el *xmltree.Element, names ...string) ([]float64, error) {
	out := make([]float64, 0, len(names))
	for _, name := range names {
		v, err := floatsAttr(el, name, 1)
		if err != nil {
			return nil, err
		}
		out = append(out, v[0])
	}
	return out, nil
}

func pairKey(a, b urdf.GeometryID) [2]urdf.GeometryID {
	if b < a {
		a, b = b, a
	}
	return [2]urdf.GeometryID{a, b}
}

var (
	_ urdf.ModelBuilder   = (*Plant)(nil)
	_ urdf.GeometryEngine = (*Plant)(nil)
)
