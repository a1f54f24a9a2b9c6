// SPDX-License-Identifier: MPL-2.0

// Package urdf translates URDF documents, including the drake: extension tags, into a
// validated and cross-referenced Model.
//
// A Workspace ties a parse to its collaborators: a ModelBuilder that creates bodies,
// frames, joints, actuators and bushings, an optional GeometryEngine for visual and
// collision shapes, and an optional DiagnosticSink.
//
//	ws := &urdf.Workspace{Builder: p, Geometry: p, Diagnostics: &policy}
//	model, err := ws.AddModelFromFile(ctx, "robot.urdf")
//
// Problems with a single element are reported as warnings or errors and only that
// element is skipped. Problems with the whole document (unparsable XML, a missing
// <robot> tag or model name, builder precondition failures) return a *FatalError and
// no Model.
//
// Names are resolved in two passes so joints, transmissions and bushings may refer to
// links and frames declared later in the document. Collision filter groups are applied
// after every link and geometry is registered.
package urdf
