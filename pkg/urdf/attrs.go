// SPDX-License-Identifier: MPL-2.0

package urdf

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/urdfkit/urdfkit/internal/xmltree"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNonFinite is returned for a NaN, or an infinity where only finite values make sense.
var ErrNonFinite = errors.New("non-finite number")

// ParseFloats splits a whitespace separated list of numbers. Every value must be
// finite: the lists are vectors, poses, colors and shape sizes.
func ParseFloats(s string) ([]float64, error) {
	fields := strings.Fields(s)
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", f, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w %q", ErrNonFinite, f)
		}
		out[i] = v
	}
	return out, nil
}

// ParseVec3 parses exactly three whitespace separated numbers.
func ParseVec3(s string) (r3.Vec, error) {
	vals, err := ParseFloats(s)
	if err != nil {
		return r3.Vec{}, err
	}
	if len(vals) != 3 {
		return r3.Vec{}, fmt.Errorf("expected 3 values, got %d in %q", len(vals), s)
	}
	return r3.Vec{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

// ParseScalar parses a single number. NaN is rejected; infinities are kept so limits
// can be written as unbounded.
func ParseScalar(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	if math.IsNaN(v) {
		return 0, fmt.Errorf("%w %q", ErrNonFinite, strings.TrimSpace(s))
	}
	return v, nil
}

// ParseColor parses an "r g b a" attribute.
func ParseColor(s string) (Color, error) {
	vals, err := ParseFloats(s)
	if err != nil {
		return Color{}, err
	}
	if len(vals) != 4 {
		return Color{}, fmt.Errorf("expected 4 values, got %d in %q", len(vals), s)
	}
	return Color{R: vals[0], G: vals[1], B: vals[2], A: vals[3]}, nil
}

// vec3Attr reads an optional vector attribute, falling back to def when absent.
func vec3Attr(el *xmltree.Element, name string, def r3.Vec) (r3.Vec, error) {
	s, ok := el.Attr(name)
	if !ok {
		return def, nil
	}
	v, err := ParseVec3(s)
	if err != nil {
		return r3.Vec{}, fmt.Errorf("attribute '%s' of <%s>: %w", name, el.Name(), err)
	}
	return v, nil
}

// scalarAttr reads an optional scalar attribute, falling back to def when absent.
func scalarAttr(el *xmltree.Element, name string, def float64) (float64, error) {
	s, ok := el.Attr(name)
	if !ok {
		return def, nil
	}
	v, err := ParseScalar(s)
	if err != nil {
		return 0, fmt.Errorf("attribute '%s' of <%s>: %w", name, el.Name(), err)
	}
	return v, nil
}

// poseAttrs reads xyz and rpy attributes of el. A nil element is the identity pose.
func poseAttrs(el *xmltree.Element) (Pose, error) {
	if el == nil {
		return Pose{}, nil
	}
	xyz, err := vec3Attr(el, "xyz", r3.Vec{})
	if err != nil {
		return Pose{}, err
	}
	rpy, err := vec3Attr(el, "rpy", r3.Vec{})
	if err != nil {
		return Pose{}, err
	}
	return Pose{XYZ: xyz, RPY: rpy}, nil
}

// originOf reads the pose of el's <origin> child.
func originOf(el *xmltree.Element) (Pose, error) {
	return poseAttrs(el.FirstChild("origin"))
}

func isTrue(el *xmltree.Element, name string) bool {
	v, ok := el.Attr(name)
	return ok && v == "true"
}
