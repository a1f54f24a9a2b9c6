// SPDX-License-Identifier: MPL-2.0

package urdf

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/urdfkit/urdfkit/internal/xmltree"
)

func TestSeverity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sev   Severity
		want  string
		valid bool
	}{
		{SeverityWarning, "warning", true},
		{SeverityError, "error", true},
		{Severity(7), "unknown", false},
	}
	for _, tt := range tests {
		if got := tt.sev.String(); got != tt.want {
			t.Errorf("Severity(%d).String() = %q, want %q", tt.sev, got, tt.want)
		}
		ok, errs := tt.sev.IsValid()
		if ok != tt.valid {
			t.Errorf("Severity(%d).IsValid() = %v, want %v", tt.sev, ok, tt.valid)
		}
		if !ok && !errors.Is(errs[0], ErrInvalidSeverity) {
			t.Errorf("expected ErrInvalidSeverity, got %v", errs[0])
		}
		text, err := tt.sev.MarshalText()
		if tt.valid && (err != nil || string(text) != tt.want) {
			t.Errorf("MarshalText() = %q, %v", text, err)
		}
		if !tt.valid && err == nil {
			t.Error("MarshalText() should fail for an invalid severity")
		}
	}
}

func TestDiagnostics_Collection(t *testing.T) {
	t.Parallel()

	loc := xmltree.Location{File: "robot.urdf", Line: 3}
	ds := Diagnostics{
		{Severity: SeverityWarning, Location: loc, Message: "w1"},
		{Severity: SeverityError, Location: loc, Message: "e1"},
		{Severity: SeverityWarning, Location: loc, Message: "w2"},
	}
	if ds.ErrorCount() != 1 || ds.WarningCount() != 2 || !ds.HasErrors() {
		t.Errorf("unexpected counts: %d errors, %d warnings", ds.ErrorCount(), ds.WarningCount())
	}
	if ds.Warnings()[1].Message != "w2" || ds.Errors()[0].Message != "e1" {
		t.Error("filters should keep order")
	}
	want := "robot.urdf:3: warning: w1\nrobot.urdf:3: error: e1\nrobot.urdf:3: warning: w2"
	if got := ds.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if (Diagnostics{}).HasErrors() {
		t.Error("an empty collection has no errors")
	}
}

func TestDiagnosticPolicy_Take(t *testing.T) {
	t.Parallel()

	var p DiagnosticPolicy
	p.Report(Diagnostic{Severity: SeverityWarning, Message: "w"})
	p.Report(Diagnostic{Severity: SeverityError, Message: "e1"})
	p.Report(Diagnostic{Severity: SeverityError, Message: "e2"})

	if d, ok := p.TakeError(); !ok || d.Message != "e1" {
		t.Errorf("expected e1, got %v", d)
	}
	if d, ok := p.TakeWarning(); !ok || d.Message != "w" {
		t.Errorf("expected w, got %v", d)
	}
	if _, ok := p.TakeWarning(); ok {
		t.Error("no warnings should be left")
	}
	if all := p.All(); len(all) != 1 || all[0].Message != "e2" {
		t.Errorf("expected only e2 left, got %v", all)
	}
	p.Reset()
	if len(p.All()) != 0 {
		t.Error("Reset should drop everything")
	}
}

func TestDiagnosticBuffer_FlushOrder(t *testing.T) {
	t.Parallel()

	var buf diagnosticBuffer
	buf.add(5, Diagnostic{Message: "late"})
	buf.add(1, Diagnostic{Message: "early-a"})
	buf.add(1, Diagnostic{Message: "early-b"})
	buf.add(3, Diagnostic{Message: "middle"})

	var sink DiagnosticPolicy
	out := buf.flush(&sink)
	var got []string
	for _, d := range out {
		got = append(got, d.Message)
	}
	if strings.Join(got, ",") != "early-a,early-b,middle,late" {
		t.Errorf("unexpected order %v", got)
	}
	if len(sink.All()) != 4 {
		t.Errorf("the sink should receive every diagnostic, got %d", len(sink.All()))
	}
	if len(buf.flush(nil)) != 0 {
		t.Error("a flushed buffer should be empty")
	}
}

func TestLogSink(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	sink := NewLogSink(slog.New(slog.NewTextHandler(&out, nil)))
	sink.Report(Diagnostic{Severity: SeverityError, Location: xmltree.Location{File: "r.urdf", Line: 9}, Message: "boom"})
	sink.Report(Diagnostic{Severity: SeverityWarning, Message: "hmm"})

	logged := out.String()
	for _, want := range []string{"level=ERROR", "msg=boom", "file=r.urdf", "line=9", "level=WARN", "msg=hmm"} {
		if !strings.Contains(logged, want) {
			t.Errorf("log output missing %q:\n%s", want, logged)
		}
	}
}

func TestFatalError(t *testing.T) {
	t.Parallel()

	cause := errors.New("cause")
	fe := newFatal(xmltree.Location{File: "r.urdf", Line: 1}, "URDF does not contain a robot tag.", cause)
	if !errors.Is(fe, ErrFatal) {
		t.Error("expected errors.Is(fe, ErrFatal)")
	}
	if fe.Error() != "r.urdf:1: error: URDF does not contain a robot tag." {
		t.Errorf("unexpected message %q", fe.Error())
	}
	if fe.Cause != cause {
		t.Error("the cause should be kept")
	}
}
