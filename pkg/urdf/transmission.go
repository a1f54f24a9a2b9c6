// SPDX-License-Identifier: MPL-2.0

package urdf

import (
	"strings"

	"github.com/urdfkit/urdfkit/internal/xmltree"
)

// SimpleTransmission is the only transmission type that creates actuators.
const SimpleTransmission = "SimpleTransmission"

// IsSupportedTransmissionType reports whether t names a SimpleTransmission, with or
// without a namespace such as "transmission_interface/". The match is case-sensitive.
func IsSupportedTransmissionType(t string) bool {
	if i := strings.LastIndexByte(t, '/'); i >= 0 {
		t = t[i+1:]
	}
	return t == SimpleTransmission
}

func (p *parser) parseTransmission(el *xmltree.Element) {
	typeName, ok := el.Attr("type")
	if !ok {
		if typeEl := el.FirstChild("type"); typeEl != nil {
			typeName, ok = typeEl.Text(), true
		}
	}
	if !ok || typeName == "" {
		p.errorf(el, "Transmission element is missing a type.")
		return
	}
	if !IsSupportedTransmissionType(typeName) {
		p.warnf(el, "A <transmission> has a type that isn't 'SimpleTransmission'. "+
			"Only 'SimpleTransmission' is supported; all other transmission types will be ignored.")
		return
	}

	actuatorEl := el.FirstChild("actuator")
	if actuatorEl == nil {
		p.errorf(el, "Transmission is missing an actuator element.")
		return
	}
	actuatorName, ok := actuatorEl.Attr("name")
	if !ok || actuatorName == "" {
		p.errorf(actuatorEl, "Transmission is missing an actuator name.")
		return
	}

	jointEl := el.FirstChild("joint")
	if jointEl == nil {
		p.errorf(el, "Transmission is missing a joint element.")
		return
	}
	jointName, ok := jointEl.Attr("name")
	if !ok || jointName == "" {
		p.errorf(jointEl, "Transmission is missing a joint name.")
		return
	}
	found, err := p.res.Resolve(KindJoint, jointName)
	if err != nil {
		p.errorf(jointEl, "Transmission specifies joint '%s' which does not exist.", jointName)
		return
	}
	joint := found.(*Joint)

	if joint.NumDOF() == 0 {
		p.warnf(el, "Skipping transmission since it's attached to a fixed joint \"%s\".", jointName)
		return
	}
	switch {
	case joint.EffortLimit < 0:
		p.errorf(jointEl, "Transmission specifies joint '%s' which has a negative effort limit.", jointName)
		return
	case joint.EffortLimit == 0:
		p.warnf(el, "Skipping transmission since it's attached to joint \"%s\" which has a zero effort limit %g.",
			jointName, joint.EffortLimit)
		return
	}

	rotorInertia, ok := p.actuatorParam(actuatorEl, actuatorName, "drake:rotor_inertia", DefaultRotorInertia)
	if !ok {
		return
	}
	gearRatio, ok := p.actuatorParam(actuatorEl, actuatorName, "drake:gear_ratio", DefaultGearRatio)
	if !ok {
		return
	}

	name, _ := el.Attr("name")
	actuator := &Actuator{
		Name:         actuatorName,
		Joint:        jointName,
		Transmission: name,
		EffortLimit:  joint.EffortLimit,
		RotorInertia: rotorInertia,
		GearRatio:    gearRatio,
		Location:     actuatorEl.Location(),
	}
	if err := p.res.Declare(KindActuator, actuatorName, actuator); err != nil {
		p.errorf(actuatorEl, "%v", err)
		return
	}
	if err := p.ws.Builder.AddActuator(p.instance(), actuator); err != nil {
		p.fail(el, err)
		return
	}
	p.model.Actuators = append(p.model.Actuators, actuator)
}

// actuatorParam reads an optional <tag value> child of an actuator.
func (p *parser) actuatorParam(actuatorEl *xmltree.Element, actuator, tag string, def float64) (float64, bool) {
	el := actuatorEl.FirstChild(tag)
	if el == nil {
		return def, true
	}
	s, ok := el.Attr("value")
	if !ok {
		p.errorf(el, "joint actuator %s's %s does not have a \"value\" attribute!", actuator, tag)
		return 0, false
	}
	v, err := ParseScalar(s)
	if err != nil {
		p.errorf(el, "joint actuator %s's %s: %v", actuator, tag, err)
		return 0, false
	}
	return v, true
}
