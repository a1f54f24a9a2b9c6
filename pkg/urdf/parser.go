// SPDX-License-Identifier: MPL-2.0

package urdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/urdfkit/urdfkit/internal/xmltree"
)

var errMissingBuilder = errors.New("workspace has no model builder")

type (
	// Workspace bundles the collaborators a parse reports to. Builder is required;
	// Geometry and Diagnostics are optional.
	Workspace struct {
		Builder     ModelBuilder
		Geometry    GeometryEngine
		Diagnostics DiagnosticSink
	}

	// parser holds the state of one document parse.
	parser struct {
		ctx    context.Context
		ws     *Workspace
		doc    *xmltree.Document
		model  *Model
		res    *Resolver
		buf    diagnosticBuffer
		logger *slog.Logger
		fatal  *FatalError
	}

	// stage handles the root children with one of the given tags. done, when set, runs
	// once after the last matching child.
	stage struct {
		tags   []string
		handle func(p *parser, el *xmltree.Element)
		done   func(p *parser)
	}
)

// stages lists the document passes in order. Links and frames are declared before any
// reference is resolved so forward references work. Collision filter groups run last
// because they need every link's geometry to be registered.
var stages = []stage{
	{tags: []string{"material"}, handle: (*parser).parseMaterial},
	{tags: []string{"link"}, handle: (*parser).parseLink},
	{tags: []string{"frame"}, handle: (*parser).parseFrame},
	{tags: []string{"joint", "drake:joint"}, handle: (*parser).parseJoint},
	{tags: []string{"loop_joint"}, handle: (*parser).parseLoopJoint},
	{tags: []string{"transmission"}, handle: (*parser).parseTransmission},
	{tags: []string{"drake:linear_bushing_rpy"}, handle: (*parser).parseBushing},
	{
		tags:   []string{"drake:collision_filter_group"},
		handle: (*parser).parseCollisionFilterGroup,
		done:   (*parser).applyCollisionFilterGroups,
	},
}

// AddModelFromFile parses the URDF file at path into the workspace.
func (w *Workspace) AddModelFromFile(ctx context.Context, path string, opts ...ParseOption) (*Model, error) {
	doc, err := xmltree.ParseFile(path)
	if err != nil {
		return nil, w.reportFatal(xmlFailure(path, "file", err))
	}
	return w.ParseDocument(ctx, doc, opts...)
}

// AddModelFromString parses an in-memory URDF document into the workspace.
// Diagnostics name the source "<literal-string>.urdf".
func (w *Workspace) AddModelFromString(ctx context.Context, contents string, opts ...ParseOption) (*Model, error) {
	doc, err := xmltree.ParseString(contents)
	if err != nil {
		return nil, w.reportFatal(xmlFailure(xmltree.StringSourceName, "string", err))
	}
	return w.ParseDocument(ctx, doc, opts...)
}

// ParseDocument translates an already parsed XML document into a Model, declaring every
// entity with the workspace's builder and geometry engine.
//
// Scoped problems are reported as diagnostics and the offending entity is skipped.
// Document-level problems return a *FatalError and no model.
func (w *Workspace) ParseDocument(ctx context.Context, doc *xmltree.Document, opts ...ParseOption) (*Model, error) {
	if w.Builder == nil {
		return nil, errMissingBuilder
	}
	o := defaultParseOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	root := doc.Root
	if !root.Is("robot") {
		return nil, w.reportFatal(newFatal(root.Location(), "URDF does not contain a robot tag.", nil))
	}
	name := o.modelName
	if name == "" {
		name, _ = root.Attr("name")
	}
	if name == "" {
		return nil, w.reportFatal(newFatal(root.Location(),
			"Your robot must have a name attribute or a model name must be specified.", nil))
	}
	instance, err := w.Builder.AddModelInstance(name)
	if err != nil {
		return nil, w.reportFatal(newFatal(root.Location(), err.Error(), err))
	}

	p := &parser{
		ctx: ctx,
		ws:  w,
		doc: doc,
		model: &Model{
			Name:      name,
			Instance:  instance,
			File:      doc.File,
			Materials: make(map[string]Material),
		},
		res:    NewResolver(instance),
		logger: logger.With("model", name, "instance", int(instance)),
	}

	for _, st := range stages {
		for _, el := range root.Children {
			if !matchesAny(el, st.tags) {
				continue
			}
			st.handle(p, el)
			if p.fatal != nil {
				p.flush()
				p.discard()
				return nil, w.reportFatal(p.fatal)
			}
		}
		if st.done != nil {
			st.done(p)
		}
	}

	p.model.Diagnostics = p.flush()
	p.logger.Debug("parsed model",
		"links", len(p.model.Links),
		"joints", len(p.model.Joints),
		"actuators", len(p.model.Actuators),
		"diagnostics", len(p.model.Diagnostics))
	return p.model, nil
}

func (w *Workspace) reportFatal(f *FatalError) *FatalError {
	if w.Diagnostics != nil {
		w.Diagnostics.Report(f.Diagnostic)
	}
	return f
}

func (p *parser) flush() Diagnostics {
	return p.buf.flush(p.ws.Diagnostics)
}

func (p *parser) errorf(el *xmltree.Element, format string, args ...any) {
	p.report(el, SeverityError, fmt.Sprintf(format, args...))
}

func (p *parser) warnf(el *xmltree.Element, format string, args ...any) {
	p.report(el, SeverityWarning, fmt.Sprintf(format, args...))
}

func (p *parser) report(el *xmltree.Element, severity Severity, msg string) {
	p.buf.add(el.Order(), Diagnostic{Severity: severity, Location: el.Location(), Message: msg})
}

// fail aborts the document. Only builder precondition failures take this path.
func (p *parser) fail(el *xmltree.Element, err error) {
	p.fatal = newFatal(el.Location(), err.Error(), err)
}

// discard removes the partially built instance from the builder.
func (p *parser) discard() {
	if err := p.ws.Builder.RemoveModelInstance(p.instance()); err != nil {
		p.logger.Warn("failed to discard model instance", "error", err)
	}
}

func (p *parser) instance() ModelInstance {
	return p.res.Instance()
}

func (p *parser) parseLoopJoint(el *xmltree.Element) {
	p.errorf(el, "loop joints are not supported")
}

func newFatal(loc xmltree.Location, msg string, cause error) *FatalError {
	return &FatalError{
		Diagnostic: Diagnostic{Severity: SeverityError, Location: loc, Message: msg},
		Cause:      cause,
	}
}

// xmlFailure converts a read or syntax error into the fatal diagnostic for a source.
// Unreadable files are reported at line 0.
func xmlFailure(file, source string, err error) *FatalError {
	loc := xmltree.Location{File: file}
	detail := err.Error()
	var se *xmltree.SyntaxError
	if errors.As(err, &se) {
		loc.Line = se.Line
		detail = se.Cause().Error()
	}
	return newFatal(loc, fmt.Sprintf("Failed to parse XML %s: %s", source, detail), err)
}

func matchesAny(el *xmltree.Element, tags []string) bool {
	for _, t := range tags {
		if el.Is(t) {
			return true
		}
	}
	return false
}
