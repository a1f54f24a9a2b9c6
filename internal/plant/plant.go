// SPDX-License-Identifier: MPL-2.0

// Package plant is the reference model builder and geometry engine for imported URDF
// models. It keeps bodies, frames, joints, actuators, bushings and collision geometry
// per model instance, checks the builder preconditions and, on Finalize, validates the
// kinematic tree and filters collisions between bodies connected by a joint.
package plant

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/urdfkit/urdfkit/internal/graph"
	"github.com/urdfkit/urdfkit/internal/packagemap"
	"github.com/urdfkit/urdfkit/pkg/urdf"

	"gonum.org/v1/gonum/mat"
)

const (
	worldInstanceName   = "WorldModelInstance"
	defaultInstanceName = "DefaultModelInstance"
)

var (
	// ErrPrecondition is returned when an entity violates a builder precondition.
	ErrPrecondition = errors.New("precondition failed")
	// ErrFinalized is returned when the plant is modified after Finalize.
	ErrFinalized = errors.New("plant is finalized")
	// ErrDuplicateInstance is returned when a model instance name is reused.
	ErrDuplicateInstance = errors.New("duplicate model instance name")
	// ErrUnknownEntity is returned when an entity refers to something the plant does not have.
	ErrUnknownEntity = errors.New("unknown entity")
	// ErrKinematicLoop is returned by Finalize when the joints do not form a forest.
	ErrKinematicLoop = errors.New("kinematic loop")
)

type (
	// PreconditionError reports a failed builder condition, e.g. "mass > 0".
	// It wraps ErrPrecondition for errors.Is() compatibility.
	PreconditionError struct {
		Condition string
		Entity    string
	}

	// UnknownEntityError reports a reference to a missing body, frame or joint.
	// It wraps ErrUnknownEntity for errors.Is() compatibility.
	UnknownEntityError struct {
		Kind     string
		Name     string
		Instance urdf.ModelInstance
	}

	// Body is a rigid body created from a link.
	Body struct {
		Name     string
		Instance urdf.ModelInstance
		Mass     float64
		Inertia  *mat.SymDense
		Link     *urdf.Link
	}

	// Option configures a Plant.
	Option func(*Plant)

	// Plant implements urdf.ModelBuilder and urdf.GeometryEngine. It is safe for
	// concurrent use.
	Plant struct {
		mu sync.Mutex

		instances      []string
		instanceByName map[string]urdf.ModelInstance

		bodies    map[key]*Body
		bodyOrder []key
		frames    map[key]*urdf.Frame
		joints    map[key]*urdf.Joint
		jointKeys []key
		actuators map[key]*urdf.Actuator
		actOrder  []key
		bushings  []ownedBushing

		geometries   []*Geometry
		geometryByID map[urdf.GeometryID]*Geometry
		nextGeometry urdf.GeometryID
		filters      map[[2]urdf.GeometryID]struct{}

		packages  *packagemap.Map
		logger    *slog.Logger
		finalized bool
	}

	key struct {
		instance urdf.ModelInstance
		name     string
	}

	ownedBushing struct {
		instance urdf.ModelInstance
		bushing  *urdf.Bushing
	}
)

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: condition '%s' failed.", e.Entity, e.Condition)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *PreconditionError) Unwrap() error {
	return ErrPrecondition
}

// Error implements the error interface.
func (e *UnknownEntityError) Error() string {
	return fmt.Sprintf("no %s named '%s' in model instance %d", e.Kind, e.Name, e.Instance)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *UnknownEntityError) Unwrap() error {
	return ErrUnknownEntity
}

// WithPackageMap sets the package map used to resolve mesh URIs.
func WithPackageMap(m *packagemap.Map) Option {
	return func(p *Plant) {
		p.packages = m
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Plant) {
		p.logger = logger
	}
}

// New creates a plant holding only the world and default model instances and the
// world body.
func New(opts ...Option) *Plant {
	p := &Plant{
		instances: []string{worldInstanceName, defaultInstanceName},
		instanceByName: map[string]urdf.ModelInstance{
			worldInstanceName:   urdf.WorldModelInstance,
			defaultInstanceName: urdf.DefaultModelInstance,
		},
		bodies:       make(map[key]*Body),
		frames:       make(map[key]*urdf.Frame),
		joints:       make(map[key]*urdf.Joint),
		actuators:    make(map[key]*urdf.Actuator),
		geometryByID: make(map[urdf.GeometryID]*Geometry),
		filters:      make(map[[2]urdf.GeometryID]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.packages == nil {
		p.packages = packagemap.New()
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	world := key{urdf.WorldModelInstance, urdf.WorldLinkName}
	p.bodies[world] = &Body{Name: urdf.WorldLinkName, Instance: urdf.WorldModelInstance, Inertia: mat.NewSymDense(3, nil)}
	p.bodyOrder = append(p.bodyOrder, world)
	return p
}

// AddModelInstance implements urdf.ModelBuilder.
func (p *Plant) AddModelInstance(name string) (urdf.ModelInstance, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finalized {
		return 0, ErrFinalized
	}
	if _, ok := p.instanceByName[name]; ok {
		return 0, fmt.Errorf("%w: '%s'", ErrDuplicateInstance, name)
	}
	id := urdf.ModelInstance(len(p.instances))
	p.instances = append(p.instances, name)
	p.instanceByName[name] = id
	return id, nil
}

// AddLink implements urdf.ModelBuilder. A massless link must have zero inertia.
func (p *Plant) AddLink(instance urdf.ModelInstance, link *urdf.Link) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkInstance(instance); err != nil {
		return err
	}
	body := &Body{Name: link.Name, Instance: instance, Inertia: mat.NewSymDense(3, nil), Link: link}
	if in := link.Inertial; in != nil {
		if in.Mass < 0 {
			return &PreconditionError{Condition: "mass >= 0", Entity: link.Name}
		}
		if in.Mass == 0 && !isZero(in.Inertia) {
			return &PreconditionError{Condition: "mass > 0", Entity: link.Name}
		}
		body.Mass = in.Mass
		if in.Inertia != nil {
			body.Inertia.CopySym(in.Inertia)
		}
	}
	k := key{instance, link.Name}
	if _, ok := p.bodies[k]; ok {
		return fmt.Errorf("body '%s' already exists in model instance %d", link.Name, instance)
	}
	p.bodies[k] = body
	p.bodyOrder = append(p.bodyOrder, k)
	return nil
}

// AddFrame implements urdf.ModelBuilder.
func (p *Plant) AddFrame(instance urdf.ModelInstance, frame *urdf.Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkInstance(instance); err != nil {
		return err
	}
	if _, ok := p.bodies[p.bodyKey(instance, frame.Link)]; !ok {
		return &UnknownEntityError{Kind: "body", Name: frame.Link, Instance: instance}
	}
	p.frames[key{instance, frame.Name}] = frame
	return nil
}

// AddJoint implements urdf.ModelBuilder.
func (p *Plant) AddJoint(instance urdf.ModelInstance, joint *urdf.Joint) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkInstance(instance); err != nil {
		return err
	}
	for _, end := range []key{{joint.ParentInstance, joint.Parent}, {joint.ChildInstance, joint.Child}} {
		if _, ok := p.bodies[end]; !ok {
			return &UnknownEntityError{Kind: "body", Name: end.name, Instance: end.instance}
		}
	}
	k := key{instance, joint.Name}
	if _, ok := p.joints[k]; ok {
		return fmt.Errorf("joint '%s' already exists in model instance %d", joint.Name, instance)
	}
	p.joints[k] = joint
	p.jointKeys = append(p.jointKeys, k)
	return nil
}

// AddActuator implements urdf.ModelBuilder.
func (p *Plant) AddActuator(instance urdf.ModelInstance, actuator *urdf.Actuator) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkInstance(instance); err != nil {
		return err
	}
	if _, ok := p.joints[key{instance, actuator.Joint}]; !ok {
		return &UnknownEntityError{Kind: "joint", Name: actuator.Joint, Instance: instance}
	}
	k := key{instance, actuator.Name}
	p.actuators[k] = actuator
	p.actOrder = append(p.actOrder, k)
	return nil
}

// AddBushing implements urdf.ModelBuilder.
func (p *Plant) AddBushing(instance urdf.ModelInstance, bushing *urdf.Bushing) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkInstance(instance); err != nil {
		return err
	}
	for _, f := range []string{bushing.FrameA, bushing.FrameC} {
		if !p.hasFrame(instance, f) {
			return &UnknownEntityError{Kind: "frame", Name: f, Instance: instance}
		}
	}
	p.bushings = append(p.bushings, ownedBushing{instance, bushing})
	return nil
}

// RemoveModelInstance implements urdf.ModelBuilder. Everything the instance added is
// dropped, including geometry registered on the world body and the collision filters
// that involve it. Instance ids are not reused.
func (p *Plant) RemoveModelInstance(instance urdf.ModelInstance) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkInstance(instance); err != nil {
		return err
	}
	if instance == urdf.WorldModelInstance || instance == urdf.DefaultModelInstance {
		return fmt.Errorf("%w: model instance %d cannot be removed", ErrPrecondition, instance)
	}

	name := p.instances[instance]
	delete(p.instanceByName, name)
	p.instances[instance] = ""

	owned := func(k key) bool { return k.instance == instance }
	p.bodyOrder = slices.DeleteFunc(p.bodyOrder, owned)
	p.jointKeys = slices.DeleteFunc(p.jointKeys, owned)
	p.actOrder = slices.DeleteFunc(p.actOrder, owned)
	maps.DeleteFunc(p.bodies, func(k key, _ *Body) bool { return owned(k) })
	maps.DeleteFunc(p.frames, func(k key, _ *urdf.Frame) bool { return owned(k) })
	maps.DeleteFunc(p.joints, func(k key, _ *urdf.Joint) bool { return owned(k) })
	maps.DeleteFunc(p.actuators, func(k key, _ *urdf.Actuator) bool { return owned(k) })
	p.bushings = slices.DeleteFunc(p.bushings, func(b ownedBushing) bool { return b.instance == instance })

	p.geometries = slices.DeleteFunc(p.geometries, func(g *Geometry) bool {
		if g.owner != instance {
			return false
		}
		delete(p.geometryByID, g.ID)
		return true
	})
	maps.DeleteFunc(p.filters, func(pair [2]urdf.GeometryID, _ struct{}) bool {
		_, a := p.geometryByID[pair[0]]
		_, b := p.geometryByID[pair[1]]
		return !a || !b
	})

	p.logger.Debug("model instance removed", "instance", int(instance), "name", name)
	return nil
}

// Finalize checks that the joints form a forest rooted at the world and filters
// collisions between every pair of bodies connected by a joint. The plant cannot be
// modified afterwards.
func (p *Plant) Finalize() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finalized {
		return ErrFinalized
	}

	tree := graph.NewDirected()
	for _, k := range p.bodyOrder {
		tree.AddNode(k.String())
	}
	for _, jk := range p.jointKeys {
		j := p.joints[jk]
		child := key{j.ChildInstance, j.Child}.String()
		tree.AddEdge(key{j.ParentInstance, j.Parent}.String(), child)
		if tree.InDegree(child) > 1 {
			return fmt.Errorf("%w: body '%s' is the child of more than one joint", ErrKinematicLoop, child)
		}
	}
	if _, err := tree.TopologicalSort(); err != nil {
		return fmt.Errorf("%w: %w", ErrKinematicLoop, err)
	}

	for _, jk := range p.jointKeys {
		j := p.joints[jk]
		a := p.proximityOf(key{j.ParentInstance, j.Parent})
		b := p.proximityOf(key{j.ChildInstance, j.Child})
		p.exclude(a, b)
	}
	p.finalized = true
	p.logger.Debug("plant finalized",
		"bodies", len(p.bodies),
		"joints", len(p.joints),
		"geometries", len(p.geometries),
		"filtered_pairs", len(p.filters))
	return nil
}

// IsFinalized reports whether Finalize succeeded.
func (p *Plant) IsFinalized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finalized
}

// NumModelInstances returns the number of live instances, including world and default.
func (p *Plant) NumModelInstances() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.instanceByName)
}

// ModelInstanceByName returns the id of a named instance.
func (p *Plant) ModelInstanceByName(name string) (urdf.ModelInstance, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id, ok := p.instanceByName[name]
	return id, ok
}

// NumBodies returns the number of bodies, including the world body.
func (p *Plant) NumBodies() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.bodies)
}

// Body returns a body by instance and name.
func (p *Plant) Body(instance urdf.ModelInstance, name string) (*Body, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.bodies[p.bodyKey(instance, name)]
	return b, ok
}

// Joint returns a joint by instance and name.
func (p *Plant) Joint(instance urdf.ModelInstance, name string) (*urdf.Joint, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	j, ok := p.joints[key{instance, name}]
	return j, ok
}

// NumJoints returns the number of joints.
func (p *Plant) NumJoints() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.joints)
}

// Actuator returns an actuator by instance and name.
func (p *Plant) Actuator(instance urdf.ModelInstance, name string) (*urdf.Actuator, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, ok := p.actuators[key{instance, name}]
	return a, ok
}

// NumActuators returns the number of actuators.
func (p *Plant) NumActuators() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.actuators)
}

// Bushings returns the bushings in the order they were added.
func (p *Plant) Bushings() []*urdf.Bushing {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*urdf.Bushing, 0, len(p.bushings))
	for _, b := range p.bushings {
		out = append(out, b.bushing)
	}
	return out
}

// HasFrame reports whether name is a frame or body frame of the instance.
func (p *Plant) HasFrame(instance urdf.ModelInstance, name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasFrame(instance, name)
}

func (p *Plant) hasFrame(instance urdf.ModelInstance, name string) bool {
	if _, ok := p.frames[key{instance, name}]; ok {
		return true
	}
	_, ok := p.bodies[p.bodyKey(instance, name)]
	return ok
}

func (p *Plant) checkInstance(instance urdf.ModelInstance) error {
	if p.finalized {
		return ErrFinalized
	}
	if int(instance) < 0 || int(instance) >= len(p.instances) || p.instances[instance] == "" {
		return &UnknownEntityError{Kind: "model instance", Name: fmt.Sprint(int(instance)), Instance: instance}
	}
	return nil
}

// bodyKey maps the world link of any instance onto the world body.
func (p *Plant) bodyKey(instance urdf.ModelInstance, name string) key {
	if name == urdf.WorldLinkName {
		return key{urdf.WorldModelInstance, name}
	}
	return key{instance, name}
}

func (k key) String() string {
	return fmt.Sprintf("%d::%s", k.instance, k.name)
}

func isZero(m *mat.SymDense) bool {
	if m == nil {
		return true
	}
	n := m.SymmetricDim()
	for i := range n {
		for j := i; j < n; j++ {
			if m.At(i, j) != 0 {
				return false
			}
		}
	}
	return true
}
