// SPDX-License-Identifier: MPL-2.0

package urdf

import (
	"errors"
	"fmt"
)

const (
	// KindLink names rigid bodies.
	KindLink EntityKind = "link"
	// KindJoint names joints.
	KindJoint EntityKind = "joint"
	// KindFrame names frames. Link body frames are visible through this kind as well.
	KindFrame EntityKind = "frame"
	// KindActuator names actuators created from transmissions.
	KindActuator EntityKind = "actuator"
	// KindCollisionFilterGroup names collision filter groups.
	KindCollisionFilterGroup EntityKind = "collision_filter_group"
)

var (
	// ErrInvalidEntityKind is returned when an EntityKind value is not one of the defined kinds.
	ErrInvalidEntityKind = errors.New("invalid entity kind")
	// ErrDuplicateName is returned when a name is declared twice for the same kind.
	ErrDuplicateName = errors.New("duplicate name")
	// ErrNotFound is returned when a name does not resolve within a model instance.
	ErrNotFound = errors.New("name not found")
)

type (
	// EntityKind selects one of the resolver's namespaces.
	EntityKind string

	// InvalidEntityKindError is returned when an EntityKind value is not recognized.
	// It wraps ErrInvalidEntityKind for errors.Is() compatibility.
	InvalidEntityKindError struct {
		Value EntityKind
	}

	// DuplicateNameError is returned by Declare when the name is already taken.
	// It wraps ErrDuplicateName for errors.Is() compatibility.
	DuplicateNameError struct {
		Kind     EntityKind
		Name     string
		Instance ModelInstance
	}

	// NotFoundError is returned by Resolve when the name is unknown in the instance.
	// It wraps ErrNotFound for errors.Is() compatibility.
	NotFoundError struct {
		Kind     EntityKind
		Name     string
		Instance ModelInstance
	}

	// Resolver holds the per-document namespaces. A Resolver is owned by a single parse
	// and is not safe for concurrent use.
	Resolver struct {
		instance ModelInstance
		names    map[EntityKind]map[string]any
	}
)

// Error implements the error interface for InvalidEntityKindError.
func (e *InvalidEntityKindError) Error() string {
	return fmt.Sprintf("invalid entity kind %q (valid: link, joint, frame, actuator, collision_filter_group)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidEntityKindError) Unwrap() error {
	return ErrInvalidEntityKind
}

// IsValid returns whether the EntityKind is one of the defined kinds,
// and a list of validation errors if it is not.
func (k EntityKind) IsValid() (bool, []error) {
	switch k {
	case KindLink, KindJoint, KindFrame, KindActuator, KindCollisionFilterGroup:
		return true, nil
	default:
		return false, []error{&InvalidEntityKindError{Value: k}}
	}
}

// String returns the string representation of the EntityKind.
func (k EntityKind) String() string {
	return string(k)
}

// Error implements the error interface.
func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s name '%s' is already used in model instance %d", e.Kind, e.Name, e.Instance)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *DuplicateNameError) Unwrap() error {
	return ErrDuplicateName
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("could not find %s named '%s' with model instance ID %s", e.Kind, e.Name, formatScope(e.Instance))
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewResolver creates an empty resolver for one model instance.
func NewResolver(instance ModelInstance) *Resolver {
	return &Resolver{
		instance: instance,
		names:    make(map[EntityKind]map[string]any),
	}
}

// Instance returns the model instance the resolver serves.
func (r *Resolver) Instance() ModelInstance {
	return r.instance
}

// Declare registers entity under name. The first declaration wins: a second one with the
// same kind and name returns a *DuplicateNameError and leaves the namespace unchanged.
// Declaring a link also makes its body frame resolvable as KindFrame.
func (r *Resolver) Declare(kind EntityKind, name string, entity any) error {
	if ok, errs := kind.IsValid(); !ok {
		return errs[0]
	}
	if r.has(kind, name) || (kind == KindFrame && r.has(KindLink, name)) || (kind == KindLink && r.has(KindFrame, name)) {
		return &DuplicateNameError{Kind: kind, Name: name, Instance: r.instance}
	}
	ns := r.names[kind]
	if ns == nil {
		ns = make(map[string]any)
		r.names[kind] = ns
	}
	ns[name] = entity
	return nil
}

// Resolve looks up name. A KindFrame lookup falls back to links. The world link always
// resolves; when the document did not declare one it resolves to nil in the world scope.
func (r *Resolver) Resolve(kind EntityKind, name string) (any, error) {
	if ok, errs := kind.IsValid(); !ok {
		return nil, errs[0]
	}
	if e, ok := r.names[kind][name]; ok {
		return e, nil
	}
	if kind == KindFrame {
		if e, ok := r.names[KindLink][name]; ok {
			return e, nil
		}
	}
	if name == WorldLinkName && (kind == KindLink || kind == KindFrame) {
		return nil, nil
	}
	return nil, &NotFoundError{Kind: kind, Name: name, Instance: r.instance}
}

// ScopeOf returns the model instance a link name belongs to. The world link always
// belongs to the world scope.
func (r *Resolver) ScopeOf(link string) ModelInstance {
	if link == WorldLinkName {
		return WorldModelInstance
	}
	return r.instance
}

func (r *Resolver) has(kind EntityKind, name string) bool {
	_, ok := r.names[kind][name]
	return ok
}
