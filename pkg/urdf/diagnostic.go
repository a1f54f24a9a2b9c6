// SPDX-License-Identifier: MPL-2.0

package urdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/urdfkit/urdfkit/internal/xmltree"

	"golang.org/x/exp/slices"
)

const (
	// SeverityWarning marks a recoverable issue; parsing continues with a default or ignored value.
	SeverityWarning Severity = iota
	// SeverityError marks an issue that discards the smallest enclosing entity.
	SeverityError
)

var (
	// ErrInvalidSeverity is returned when a Severity value is not one of the defined severities.
	ErrInvalidSeverity = errors.New("invalid diagnostic severity")
	// ErrFatal is the sentinel wrapped by FatalError.
	ErrFatal = errors.New("fatal parse error")
)

type (
	// Severity indicates how serious a diagnostic is.
	Severity int

	// InvalidSeverityError is returned when a Severity value is not recognized.
	// It wraps ErrInvalidSeverity for errors.Is() compatibility.
	InvalidSeverityError struct {
		Value Severity
	}

	// Diagnostic is a single warning or error produced while parsing a document.
	Diagnostic struct {
		Severity Severity
		Location xmltree.Location
		Message  string
	}

	// Diagnostics is an ordered collection of diagnostics.
	Diagnostics []Diagnostic

	// DiagnosticSink receives diagnostics as they are produced.
	DiagnosticSink interface {
		Report(d Diagnostic)
	}

	// DiagnosticPolicy is a DiagnosticSink that keeps every diagnostic it receives.
	// The zero value is ready to use.
	DiagnosticPolicy struct {
		items Diagnostics
	}

	// LogSink forwards diagnostics to a slog.Logger.
	LogSink struct {
		logger *slog.Logger
	}

	// FatalError aborts a whole document; no model is produced. It wraps ErrFatal.
	FatalError struct {
		Diagnostic Diagnostic
		Cause      error
	}

	// diagnosticBuffer collects the diagnostics of one parse so they can be delivered in
	// document order even though the document is walked in two passes.
	diagnosticBuffer struct {
		entries []bufferedDiagnostic
	}

	bufferedDiagnostic struct {
		order int
		diag  Diagnostic
	}
)

// Error implements the error interface for InvalidSeverityError.
func (e *InvalidSeverityError) Error() string {
	return fmt.Sprintf("invalid diagnostic severity %d (valid: 0=warning, 1=error)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidSeverityError) Unwrap() error {
	return ErrInvalidSeverity
}

// IsValid returns whether the Severity is one of the defined levels,
// and a list of validation errors if it is not.
func (s Severity) IsValid() (bool, []error) {
	switch s {
	case SeverityWarning, SeverityError:
		return true, nil
	default:
		return false, []error{&InvalidSeverityError{Value: s}}
	}
}

// String returns "warning" or "error".
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText lets reports encode the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	if ok, errs := s.IsValid(); !ok {
		return nil, errs[0]
	}
	return []byte(s.String()), nil
}

// String renders the diagnostic as "<file>:<line>: <severity>: <message>".
func (d Diagnostic) String() string {
	return d.Location.String() + ": " + d.Severity.String() + ": " + d.Message
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	return d.String()
}

// IsError returns true for error-level diagnostics.
func (d Diagnostic) IsError() bool {
	return d.Severity == SeverityError
}

// IsWarning returns true for warning-level diagnostics.
func (d Diagnostic) IsWarning() bool {
	return d.Severity == SeverityWarning
}

// Errors returns only the error-level diagnostics.
func (ds Diagnostics) Errors() Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.IsError() {
			out = append(out, d)
		}
	}
	return out
}

// Warnings returns only the warning-level diagnostics.
func (ds Diagnostics) Warnings() Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.IsWarning() {
			out = append(out, d)
		}
	}
	return out
}

// ErrorCount returns the number of error-level diagnostics.
func (ds Diagnostics) ErrorCount() int {
	return len(ds.Errors())
}

// WarningCount returns the number of warning-level diagnostics.
func (ds Diagnostics) WarningCount() int {
	return len(ds.Warnings())
}

// HasErrors returns true if any diagnostic is an error.
func (ds Diagnostics) HasErrors() bool {
	return slices.ContainsFunc(ds, Diagnostic.IsError)
}

// Error joins all diagnostics, one per line.
func (ds Diagnostics) Error() string {
	lines := make([]string, len(ds))
	for i, d := range ds {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}

// Report implements DiagnosticSink.
func (p *DiagnosticPolicy) Report(d Diagnostic) {
	p.items = append(p.items, d)
}

// All returns every diagnostic received so far.
func (p *DiagnosticPolicy) All() Diagnostics {
	return slices.Clone(p.items)
}

// TakeError removes and returns the oldest error. ok is false when there is none.
func (p *DiagnosticPolicy) TakeError() (Diagnostic, bool) {
	return p.take(SeverityError)
}

// TakeWarning removes and returns the oldest warning. ok is false when there is none.
func (p *DiagnosticPolicy) TakeWarning() (Diagnostic, bool) {
	return p.take(SeverityWarning)
}

// Reset drops every collected diagnostic.
func (p *DiagnosticPolicy) Reset() {
	p.items = nil
}

func (p *DiagnosticPolicy) take(s Severity) (Diagnostic, bool) {
	for i, d := range p.items {
		if d.Severity == s {
			p.items = slices.Delete(p.items, i, i+1)
			return d, true
		}
	}
	return Diagnostic{}, false
}

// NewLogSink creates a sink that logs warnings at Warn and errors at Error level.
// A nil logger means slog.Default().
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Report implements DiagnosticSink.
func (s *LogSink) Report(d Diagnostic) {
	level := slog.LevelWarn
	if d.IsError() {
		level = slog.LevelError
	}
	s.logger.Log(context.Background(), level, d.Message,
		"file", d.Location.File,
		"line", d.Location.Line)
}

// Error implements the error interface.
func (e *FatalError) Error() string {
	return e.Diagnostic.String()
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *FatalError) Unwrap() error {
	return ErrFatal
}

func (b *diagnosticBuffer) add(order int, d Diagnostic) {
	b.entries = append(b.entries, bufferedDiagnostic{order: order, diag: d})
}

// flush delivers the buffered diagnostics sorted by element order; diagnostics of the
// same element keep the order they were produced in.
func (b *diagnosticBuffer) flush(sink DiagnosticSink) Diagnostics {
	slices.SortStableFunc(b.entries, func(x, y bufferedDiagnostic) int {
		return x.order - y.order
	})
	out := make(Diagnostics, 0, len(b.entries))
	for _, e := range b.entries {
		if sink != nil {
			sink.Report(e.diag)
		}
		out = append(out, e.diag)
	}
	b.entries = nil
	return out
}

func formatScope(instance ModelInstance) string {
	return strconv.Itoa(int(instance))
}
