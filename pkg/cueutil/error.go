// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	cueerrors "cuelang.org/go/cue/errors"
)

// ErrTooLarge is returned for configuration files over MaxFileSize.
var ErrTooLarge = errors.New("configuration file too large")

type (
	// Problem is a single schema or syntax violation.
	Problem struct {
		// Path locates the value in CUE notation, e.g. "package_paths[1]".
		// Empty for syntax errors.
		Path string
		// Line and Column are 1-based; zero when CUE reports no position.
		Line   int
		Column int
		// Message is CUE's description without the path or position.
		Message string
	}

	// Error lists every problem found in one configuration file.
	Error struct {
		File     string
		Problems []Problem
	}
)

func (p Problem) String() string {
	var b strings.Builder
	if p.Line > 0 {
		fmt.Fprintf(&b, "%d:%d: ", p.Line, p.Column)
	}
	if p.Path != "" {
		b.WriteString(p.Path)
		b.WriteString(": ")
	}
	b.WriteString(p.Message)
	return b.String()
}

// Error prints a single problem on one line and several as an indented list.
func (e *Error) Error() string {
	switch len(e.Problems) {
	case 0:
		return e.File + ": invalid configuration"
	case 1:
		if e.Problems[0].Line > 0 {
			return e.File + ":" + e.Problems[0].String()
		}
		return e.File + ": " + e.Problems[0].String()
	}
	lines := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		lines[i] = p.String()
	}
	return fmt.Sprintf("%s: %d problems:\n  %s", e.File, len(e.Problems), strings.Join(lines, "\n  "))
}

// newError converts a CUE error for file. Errors that CUE did not produce are
// wrapped with the file name.
func newError(err error, file string) error {
	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return fmt.Errorf("%s: %w", file, err)
	}
	out := &Error{File: file, Problems: make([]Problem, 0, len(list))}
	for _, e := range list {
		format, args := e.Msg()
		p := Problem{Path: cuePath(e.Path()), Message: fmt.Sprintf(format, args...)}
		if pos := e.Position(); pos.IsValid() {
			p.Line, p.Column = pos.Line(), pos.Column()
		}
		out.Problems = append(out.Problems, p)
	}
	return out
}

// cuePath renders an error path the way CUE prints references: list indices in
// brackets, definitions and plain labels dotted, other labels quoted.
func cuePath(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	sels := make([]cue.Selector, len(labels))
	for i, l := range labels {
		switch n, err := strconv.Atoi(l); {
		case err == nil && n >= 0 && i > 0:
			sels[i] = cue.Index(n)
		case strings.HasPrefix(l, "#"):
			sels[i] = cue.Def(l)
		default:
			sels[i] = cue.Str(l)
		}
	}
	return cue.MakePath(sels...).String()
}
