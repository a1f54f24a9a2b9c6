// SPDX-License-Identifier: MPL-2.0

package urdf

import (
	"math"

	"github.com/urdfkit/urdfkit/internal/xmltree"

	"gonum.org/v1/gonum/spatial/r3"
)

// defaultAxis applies to revolute and prismatic joints without an <axis>.
var defaultAxis = r3.Vec{X: 1}

func (p *parser) parseJoint(el *xmltree.Element) {
	if isTrue(el, "drake_ignore") {
		return
	}
	name, ok := el.Attr("name")
	if !ok || name == "" {
		p.errorf(el, "joint tag is missing name attribute")
		return
	}
	typeName, ok := el.Attr("type")
	if !ok || typeName == "" {
		p.errorf(el, "joint '%s' is missing type attribute", name)
		return
	}
	jt := ParseJointType(typeName)
	if jt != JointUnknown {
		custom := el.Is("drake:joint")
		if jt.IsCustom() && !custom {
			p.errorf(el, "Joint %s of type %s is a custom joint type, and should be a <drake:joint>", name, typeName)
			return
		}
		if !jt.IsCustom() && custom {
			p.errorf(el, "Joint %s of type %s is a standard joint type, and should be a <joint>", name, typeName)
			return
		}
	}

	parent, ok := p.jointLinkAttr(el, name, "parent")
	if !ok {
		return
	}
	child, ok := p.jointLinkAttr(el, name, "child")
	if !ok {
		return
	}
	for _, link := range []string{parent, child} {
		if _, err := p.res.Resolve(KindLink, link); err != nil {
			p.errorf(el, "Could not find link named '%s' with model instance ID %s for element '%s'.",
				link, formatScope(p.instance()), name)
			return
		}
	}

	origin, err := originOf(el)
	if err != nil {
		p.errorf(el, "joint '%s': %v", name, err)
		return
	}

	// JointUnknown must stay on the error path; every other variant is handled below.
	switch jt {
	case JointUnknown:
		p.errorf(el, "Joint '%s' has unrecognized type: '%s'", name, typeName)
		return
	case JointFloating:
		p.warnf(el, "Joint '%s' specified as type floating which is not supported.  Leaving '%s' as a free body.",
			name, child)
		p.model.FreeLinks = append(p.model.FreeLinks, child)
		return
	case JointRevolute, JointPrismatic, JointFixed, JointPlanar, JointBall, JointUniversal:
	}

	joint := &Joint{
		Name:           name,
		Type:           jt,
		Parent:         parent,
		Child:          child,
		ParentInstance: p.res.ScopeOf(parent),
		ChildInstance:  p.res.ScopeOf(child),
		Origin:         origin,
		Limits:         UnboundedLimits(jt.NumDOF()),
		EffortLimit:    math.Inf(1),
		Location:       el.Location(),
	}

	if jt.HasAxis() {
		axis, ok := p.jointAxis(el, name)
		if !ok {
			return
		}
		joint.Axis = axis
	}
	if !p.jointDynamics(el, joint) {
		return
	}
	if !p.jointLimits(el, joint, typeName == "continuous") {
		return
	}

	if err := p.res.Declare(KindJoint, name, joint); err != nil {
		p.errorf(el, "%v", err)
		return
	}
	if err := p.ws.Builder.AddJoint(p.instance(), joint); err != nil {
		p.fail(el, err)
		return
	}
	p.model.Joints = append(p.model.Joints, joint)
}

// jointLinkAttr reads <parent link> or <child link>.
func (p *parser) jointLinkAttr(el *xmltree.Element, joint, tag string) (string, bool) {
	node := el.FirstChild(tag)
	if node == nil {
		p.errorf(el, "joint '%s' doesn't have a %s node!", joint, tag)
		return "", false
	}
	link, ok := node.Attr("link")
	if !ok || link == "" {
		p.errorf(node, "joint %s's %s does not have a link attribute!", joint, tag)
		return "", false
	}
	return link, true
}

// jointAxis returns the normalized axis. Only an exact zero vector is rejected.
func (p *parser) jointAxis(el *xmltree.Element, joint string) (r3.Vec, bool) {
	axisEl := el.FirstChild("axis")
	if axisEl == nil {
		return defaultAxis, true
	}
	axis, err := vec3Attr(axisEl, "xyz", defaultAxis)
	if err != nil {
		p.errorf(axisEl, "joint '%s': %v", joint, err)
		return r3.Vec{}, false
	}
	if axis == (r3.Vec{}) {
		p.errorf(axisEl, "Joint '%s' axis is zero.  Don't do that.", joint)
		return r3.Vec{}, false
	}
	return r3.Unit(axis), true
}

// jointDynamics reads <dynamics damping>, broadcast to every degree of freedom.
func (p *parser) jointDynamics(el *xmltree.Element, joint *Joint) bool {
	damping := 0.0
	if dyn := el.FirstChild("dynamics"); dyn != nil {
		v, err := scalarAttr(dyn, "damping", 0)
		if err != nil {
			p.errorf(dyn, "joint '%s': %v", joint.Name, err)
			return false
		}
		damping = v
		if _, ok := dyn.Attr("friction"); ok {
			p.warnf(dyn, "Joint '%s': joint friction is not supported; the 'friction' attribute is ignored.", joint.Name)
		}
		if _, ok := dyn.Attr("coulomb_window"); ok {
			p.warnf(dyn, "Joint '%s': the 'coulomb_window' attribute is not supported and will be ignored.", joint.Name)
		}
	}
	joint.Damping = make([]float64, joint.NumDOF())
	for i := range joint.Damping {
		joint.Damping[i] = damping
	}
	return true
}

// jointLimits reads <limit>. Continuous joints keep unbounded positions; fixed joints
// ignore the element.
func (p *parser) jointLimits(el *xmltree.Element, joint *Joint, continuous bool) bool {
	lim := el.FirstChild("limit")
	if lim == nil || joint.NumDOF() == 0 {
		return true
	}
	if joint.NumDOF() != 1 {
		p.warnf(lim, "Joint '%s' of type %s does not support a <limit> element; it is ignored.", joint.Name, joint.Type)
		return true
	}

	var vals [5]float64
	for i, a := range []struct {
		name string
		def  float64
	}{
		{"lower", math.Inf(-1)},
		{"upper", math.Inf(1)},
		{"velocity", math.Inf(1)},
		{"drake:acceleration", math.Inf(1)},
		{"effort", math.Inf(1)},
	} {
		v, err := scalarAttr(lim, a.name, a.def)
		if err != nil {
			p.errorf(lim, "joint '%s': %v", joint.Name, err)
			return false
		}
		vals[i] = v
	}

	if !continuous {
		joint.Limits.Position = Bounds{Lower: []float64{vals[0]}, Upper: []float64{vals[1]}}
	}
	joint.Limits.Velocity = Symmetric(1, math.Abs(vals[2]))
	joint.Limits.Acceleration = Symmetric(1, math.Abs(vals[3]))
	joint.EffortLimit = vals[4]
	return true
}
