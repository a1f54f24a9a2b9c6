// SPDX-License-Identifier: MPL-2.0

package urdf

import (
	"github.com/urdfkit/urdfkit/internal/xmltree"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// GeometryVisual is a <visual> element.
	GeometryVisual GeometryKind = iota
	// GeometryCollision is a <collision> element.
	GeometryCollision
)

const (
	// DefaultRotorInertia applies when an actuator has no drake:rotor_inertia.
	DefaultRotorInertia = 0.0
	// DefaultGearRatio applies when an actuator has no drake:gear_ratio.
	DefaultGearRatio = 1.0
)

type (
	// GeometryKind tells whether a geometry came from <visual> or <collision>.
	GeometryKind int

	// GeometryID identifies a geometry registered with a GeometryEngine.
	GeometryID int

	// Model is the validated result of parsing one document.
	Model struct {
		Name     string
		Instance ModelInstance
		File     string

		Links                 []*Link
		Joints                []*Joint
		Frames                []*Frame
		Actuators             []*Actuator
		Bushings              []*Bushing
		CollisionFilterGroups []*CollisionFilterGroup
		Materials             map[string]Material

		// FilteredLinkPairs lists the distinct link pairs whose proximity geometry was
		// excluded from collision by the collision filter groups.
		FilteredLinkPairs []LinkPair

		// FreeLinks names child links left unconstrained by unsupported floating joints.
		FreeLinks []string

		// Diagnostics holds every warning and error reported for the document, in
		// document order.
		Diagnostics Diagnostics
	}

	// Link is a named rigid body.
	Link struct {
		Name     string
		Instance ModelInstance
		// Inertial is nil when the element had no <inertial>, or for the world link.
		Inertial   *Inertial
		Geometries []*Geometry
		Location   xmltree.Location
	}

	// Inertial holds the mass properties of a link.
	Inertial struct {
		Mass    float64
		Origin  Pose
		Inertia *mat.SymDense
	}

	// Geometry is a visual or collision record. The shape itself is built by the
	// GeometryEngine from Shape.
	Geometry struct {
		Name     string
		Link     string
		Kind     GeometryKind
		Roles    Roles
		Origin   Pose
		Shape    *xmltree.Element
		Material *Material
		Location xmltree.Location

		// IDs are the engine ids returned at registration.
		IDs []GeometryID
	}

	// Material is a named or inline visual material.
	Material struct {
		Name    string
		Color   *Color
		Texture string
	}

	// Frame is a named pose fixed to a link.
	Frame struct {
		Name     string
		Link     string
		Pose     Pose
		Instance ModelInstance
		Location xmltree.Location
	}

	// Joint is a kinematic constraint between two links.
	Joint struct {
		Name           string
		Type           JointType
		Parent         string
		Child          string
		ParentInstance ModelInstance
		ChildInstance  ModelInstance
		Origin         Pose
		// Axis is a unit vector for revolute and prismatic joints and zero otherwise.
		Axis        r3.Vec
		Damping     []float64
		Limits      JointLimits
		EffortLimit float64
		Location    xmltree.Location
	}

	// Actuator is the result of a SimpleTransmission bound to a joint.
	Actuator struct {
		Name         string
		Joint        string
		Transmission string
		EffortLimit  float64
		RotorInertia float64
		GearRatio    float64
		Location     xmltree.Location
	}

	// Bushing is a linear roll-pitch-yaw bushing between two frames.
	Bushing struct {
		FrameA          string
		FrameC          string
		TorqueStiffness r3.Vec
		TorqueDamping   r3.Vec
		ForceStiffness  r3.Vec
		ForceDamping    r3.Vec
		Location        xmltree.Location
	}

	// CollisionFilterGroup is a named set of links.
	CollisionFilterGroup struct {
		Name     string
		Members  []string
		Ignores  []string
		Location xmltree.Location
	}

	// LinkPair is an unordered pair of distinct links, stored with A < B.
	LinkPair struct {
		A, B string
	}
)

// String returns "visual" or "collision".
func (k GeometryKind) String() string {
	if k == GeometryCollision {
		return "collision"
	}
	return "visual"
}

// NumDOF returns the number of degrees of freedom of the joint.
func (j *Joint) NumDOF() int {
	return j.Type.NumDOF()
}

// Link returns the link with the given name, or nil.
func (m *Model) Link(name string) *Link {
	for _, l := range m.Links {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// Joint returns the joint with the given name, or nil.
func (m *Model) Joint(name string) *Joint {
	for _, j := range m.Joints {
		if j.Name == name {
			return j
		}
	}
	return nil
}

// Actuator returns the actuator with the given name, or nil.
func (m *Model) Actuator(name string) *Actuator {
	for _, a := range m.Actuators {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// IsFiltered reports whether the collision filter groups excluded the pair (a, b).
func (m *Model) IsFiltered(a, b string) bool {
	p := newLinkPair(a, b)
	for _, q := range m.FilteredLinkPairs {
		if q == p {
			return true
		}
	}
	return false
}

// ProximityIDs returns the engine ids of the link's proximity geometries.
func (l *Link) ProximityIDs() []GeometryID {
	var ids []GeometryID
	for _, g := range l.Geometries {
		if g.Roles.Has(RoleProximity) {
			ids = append(ids, g.IDs...)
		}
	}
	return ids
}

// IsWorld reports whether the link is the static anchor.
func (l *Link) IsWorld() bool {
	return l.Name == WorldLinkName
}

func newLinkPair(a, b string) LinkPair {
	if b < a {
		a, b = b, a
	}
	return LinkPair{A: a, B: b}
}
