// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates urdfkit's CUE configuration files against an
// embedded schema and decodes them into Go values.
//
//	//go:embed config_schema.cue
//	var configSchema []byte
//
//	cfg, err := cueutil.ParseFile[map[string]any](configSchema, path, "#Config")
//
// Fields of the schema are expected to be optional: validation does not require
// concrete values, so a file may set any subset of keys.
//
// Failures are reported as *Error, one Problem per offending value, each with the
// value's line and column and its path in CUE notation (e.g. package_paths[1]).
package cueutil
