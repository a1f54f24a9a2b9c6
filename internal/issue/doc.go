// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// suggestions. Errors can be linked to a catalog Issue, a Markdown help page
// rendered with glamour by 'urdfkit explain <slug>'.
package issue
