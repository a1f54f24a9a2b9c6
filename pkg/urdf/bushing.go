// SPDX-License-Identifier: MPL-2.0

package urdf

import (
	"github.com/urdfkit/urdfkit/internal/xmltree"

	"gonum.org/v1/gonum/spatial/r3"
)

// Bushing sub-element tags, in the order they are read.
const (
	tagBushingFrameA          = "drake:bushing_frameA"
	tagBushingFrameC          = "drake:bushing_frameC"
	tagBushingTorqueStiffness = "drake:bushing_torque_stiffness"
	tagBushingTorqueDamping   = "drake:bushing_torque_damping"
	tagBushingForceStiffness  = "drake:bushing_force_stiffness"
	tagBushingForceDamping    = "drake:bushing_force_damping"
)

func (p *parser) parseBushing(el *xmltree.Element) {
	b := &Bushing{Location: el.Location()}

	var ok bool
	if b.FrameA, ok = p.bushingFrame(el, tagBushingFrameA); !ok {
		return
	}
	if b.FrameC, ok = p.bushingFrame(el, tagBushingFrameC); !ok {
		return
	}
	for _, c := range []struct {
		tag string
		dst *r3.Vec
	}{
		{tagBushingTorqueStiffness, &b.TorqueStiffness},
		{tagBushingTorqueDamping, &b.TorqueDamping},
		{tagBushingForceStiffness, &b.ForceStiffness},
		{tagBushingForceDamping, &b.ForceDamping},
	} {
		if *c.dst, ok = p.bushingVector(el, c.tag); !ok {
			return
		}
	}

	if err := p.ws.Builder.AddBushing(p.instance(), b); err != nil {
		p.fail(el, err)
		return
	}
	p.model.Bushings = append(p.model.Bushings, b)
}

// bushingFrame reads <tag name> and resolves the frame in the current scope.
func (p *parser) bushingFrame(el *xmltree.Element, tag string) (string, bool) {
	child := el.FirstChild(tag)
	if child == nil {
		p.errorf(el, "Unable to find the <%s> tag", tag)
		return "", false
	}
	name, ok := child.Attr("name")
	if !ok {
		p.errorf(child, "Unable to read the 'name' attribute for the <%s> tag", tag)
		return "", false
	}
	if _, err := p.res.Resolve(KindFrame, name); err != nil {
		p.errorf(child, "Frame: %s specified for <%s> does not exist in the model. (model instance ID %s)",
			name, tag, formatScope(p.instance()))
		return "", false
	}
	return name, true
}

// bushingVector reads <tag value="x y z">.
func (p *parser) bushingVector(el *xmltree.Element, tag string) (r3.Vec, bool) {
	child := el.FirstChild(tag)
	if child == nil {
		p.errorf(el, "Unable to find the <%s> tag", tag)
		return r3.Vec{}, false
	}
	s, ok := child.Attr("value")
	if !ok {
		p.errorf(child, "Unable to read the 'value' attribute for the <%s> tag", tag)
		return r3.Vec{}, false
	}
	v, err := ParseVec3(s)
	if err != nil {
		p.errorf(child, "Unable to read the 'value' attribute for the <%s> tag: %v", tag, err)
		return r3.Vec{}, false
	}
	return v, true
}
