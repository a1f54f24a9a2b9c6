// SPDX-License-Identifier: MPL-2.0

package urdf

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// WorldModelInstance is the scope of the world anchor.
	WorldModelInstance ModelInstance = 0
	// DefaultModelInstance is the scope for entities not tied to a document.
	DefaultModelInstance ModelInstance = 1

	// WorldLinkName is the reserved name of the static anchor link.
	WorldLinkName = "world"
)

// Joint types. JointUnknown is a real variant: it always routes to the
// "unrecognized type" error path.
const (
	JointUnknown JointType = iota
	JointRevolute
	JointPrismatic
	JointFixed
	JointFloating
	JointPlanar
	JointBall
	JointUniversal
)

const (
	// RoleProximity marks geometry that participates in contact queries.
	RoleProximity Roles = 1 << iota
	// RoleIllustration marks geometry drawn by visualizers.
	RoleIllustration
	// RolePerception marks geometry seen by rendering sensors.
	RolePerception
)

var (
	// ErrInvalidJointType is returned when a JointType value is not a known type.
	ErrInvalidJointType = errors.New("invalid joint type")

	jointTypeNames = map[string]JointType{
		"revolute":   JointRevolute,
		"continuous": JointRevolute,
		"prismatic":  JointPrismatic,
		"fixed":      JointFixed,
		"floating":   JointFloating,
		"planar":     JointPlanar,
		"ball":       JointBall,
		"universal":  JointUniversal,
	}
)

type (
	// ModelInstance is the namespace disambiguator assigned by the model builder.
	ModelInstance int

	// JointType is the closed set of joint kinds the dispatcher understands.
	JointType int

	// InvalidJointTypeError is returned when a joint type is unknown.
	// It wraps ErrInvalidJointType for errors.Is() compatibility.
	InvalidJointTypeError struct {
		Value string
	}

	// Roles is a bit set of geometry roles.
	Roles int

	// Pose is a transform expressed as a translation and roll-pitch-yaw angles (radians).
	Pose struct {
		XYZ r3.Vec
		RPY r3.Vec
	}

	// Bounds holds per-degree-of-freedom lower and upper limits.
	Bounds struct {
		Lower []float64
		Upper []float64
	}

	// JointLimits groups the position, velocity and acceleration bounds of a joint.
	JointLimits struct {
		Position     Bounds
		Velocity     Bounds
		Acceleration Bounds
	}

	// Color is an RGBA colour with components in [0, 1].
	Color struct {
		R, G, B, A float64
	}
)

// ParseJointType maps a type attribute to its variant. Unknown strings yield JointUnknown.
func ParseJointType(s string) JointType {
	if t, ok := jointTypeNames[s]; ok {
		return t
	}
	return JointUnknown
}

// Error implements the error interface for InvalidJointTypeError.
func (e *InvalidJointTypeError) Error() string {
	return fmt.Sprintf("invalid joint type %q", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidJointTypeError) Unwrap() error {
	return ErrInvalidJointType
}

// IsValid returns whether the JointType is a known variant.
func (t JointType) IsValid() (bool, []error) {
	if t <= JointUnknown || t > JointUniversal {
		return false, []error{&InvalidJointTypeError{Value: t.String()}}
	}
	return true, nil
}

// String returns the canonical type name.
func (t JointType) String() string {
	switch t {
	case JointRevolute:
		return "revolute"
	case JointPrismatic:
		return "prismatic"
	case JointFixed:
		return "fixed"
	case JointFloating:
		return "floating"
	case JointPlanar:
		return "planar"
	case JointBall:
		return "ball"
	case JointUniversal:
		return "universal"
	default:
		return "unknown"
	}
}

// IsCustom reports whether the type must be declared with <drake:joint>.
func (t JointType) IsCustom() bool {
	return t == JointBall || t == JointUniversal
}

// HasAxis reports whether the type is parameterized by a single axis.
func (t JointType) HasAxis() bool {
	return t == JointRevolute || t == JointPrismatic
}

// NumDOF returns the number of degrees of freedom of the type.
func (t JointType) NumDOF() int {
	switch t {
	case JointRevolute, JointPrismatic:
		return 1
	case JointUniversal:
		return 2
	case JointPlanar, JointBall:
		return 3
	case JointFloating:
		return 6
	default:
		return 0
	}
}

// Has reports whether r contains every role in other.
func (r Roles) Has(other Roles) bool {
	return r&other == other
}

// String lists the contained roles, e.g. "illustration|perception".
func (r Roles) String() string {
	var names []string
	if r.Has(RoleProximity) {
		names = append(names, "proximity")
	}
	if r.Has(RoleIllustration) {
		names = append(names, "illustration")
	}
	if r.Has(RolePerception) {
		names = append(names, "perception")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Unbounded returns n degrees of freedom limited to (-inf, +inf).
func Unbounded(n int) Bounds {
	b := Bounds{Lower: make([]float64, n), Upper: make([]float64, n)}
	for i := range n {
		b.Lower[i] = math.Inf(-1)
		b.Upper[i] = math.Inf(1)
	}
	return b
}

// Symmetric returns n degrees of freedom limited to (-magnitude, +magnitude).
func Symmetric(n int, magnitude float64) Bounds {
	b := Bounds{Lower: make([]float64, n), Upper: make([]float64, n)}
	for i := range n {
		b.Lower[i] = -magnitude
		b.Upper[i] = magnitude
	}
	return b
}

// IsUnbounded reports whether every degree of freedom is (-inf, +inf).
func (b Bounds) IsUnbounded() bool {
	for i := range b.Lower {
		if !math.IsInf(b.Lower[i], -1) || !math.IsInf(b.Upper[i], 1) {
			return false
		}
	}
	return true
}

// UnboundedLimits returns position, velocity and acceleration limits of (-inf, +inf)
// for n degrees of freedom.
func UnboundedLimits(n int) JointLimits {
	return JointLimits{
		Position:     Unbounded(n),
		Velocity:     Unbounded(n),
		Acceleration: Unbounded(n),
	}
}
