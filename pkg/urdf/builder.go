// SPDX-License-Identifier: MPL-2.0

package urdf

import "context"

type (
	// ModelBuilder receives fully resolved entities. It owns the dynamics structures and
	// their preconditions: an error from any method is fatal to the document being parsed.
	//
	// Implementations used by concurrent parses must be safe for concurrent use.
	ModelBuilder interface {
		// AddModelInstance reserves a new scope for a document. Names must be unique.
		AddModelInstance(name string) (ModelInstance, error)
		// AddLink creates the rigid body for link. The world link is never passed here.
		AddLink(instance ModelInstance, link *Link) error
		// AddFrame attaches a fixed frame to an existing body.
		AddFrame(instance ModelInstance, frame *Frame) error
		// AddJoint connects two existing bodies.
		AddJoint(instance ModelInstance, joint *Joint) error
		// AddActuator drives an existing joint.
		AddActuator(instance ModelInstance, actuator *Actuator) error
		// AddBushing couples two existing frames.
		AddBushing(instance ModelInstance, bushing *Bushing) error
		// RemoveModelInstance drops a scope and everything added to it, including its
		// geometry and collision filters. It is called when a document fails after
		// AddModelInstance, so a fatal document leaves nothing behind.
		RemoveModelInstance(instance ModelInstance) error
	}

	// GeometryEngine builds shapes for visual and collision records and keeps the
	// collision filter set.
	GeometryEngine interface {
		// RegisterGeometry builds the shape of g on its link's body frame. instance is the
		// scope of the document being parsed, even for the world link, whose geometry
		// goes on the world frame. The returned ids are recorded on g.
		RegisterGeometry(ctx context.Context, instance ModelInstance, g *Geometry) ([]GeometryID, error)
		// ExcludeCollisionsBetween filters every pair drawn from a × b. It is idempotent.
		ExcludeCollisionsBetween(a, b []GeometryID) error
	}
)
