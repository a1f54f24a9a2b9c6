// SPDX-License-Identifier: MPL-2.0

// Package xmltree provides the read-only XML element tree consumed by the URDF parser.
//
// Elements keep their namespace prefix as written (e.g. "drake" for <drake:joint>), their
// attributes in document order, their child elements, their direct text and the source
// line where they start. Every element also carries its document-order index so callers
// can restore document order after processing elements in several passes.
package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// StringSourceName is the file name reported for documents parsed from memory.
const StringSourceName = "<literal-string>.urdf"

var (
	// ErrNoRoot is returned when the input contains no element at all.
	ErrNoRoot = errors.New("document has no root element")
	// ErrSyntax is the sentinel wrapped by SyntaxError.
	ErrSyntax = errors.New("xml syntax error")
)

type (
	// Location identifies a position in a source document.
	Location struct {
		File string
		Line int
	}

	// Attr is a single attribute as written in the source.
	Attr struct {
		Prefix string
		Name   string
		Value  string
	}

	// Element is a node of the tree. Element values are never mutated after Parse returns.
	Element struct {
		Prefix   string
		Tag      string
		Attrs    []Attr
		Children []*Element
		Parent   *Element

		text  strings.Builder
		line  int
		order int
		doc   *Document
	}

	// Document is a parsed XML file.
	Document struct {
		File string
		Root *Element

		count int
	}

	// SyntaxError reports malformed XML input. It wraps ErrSyntax.
	SyntaxError struct {
		File string
		Line int
		Err  error
	}
)

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// Cause returns the underlying decoder error.
func (e *SyntaxError) Cause() error {
	return e.Err
}

// String renders the location as "file:line".
func (l Location) String() string {
	return l.File + ":" + strconv.Itoa(l.Line)
}

// ParseFile reads and parses the XML file at path.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(bytes.NewReader(data), path)
}

// ParseString parses an in-memory XML document. Locations use StringSourceName.
func ParseString(contents string) (*Document, error) {
	return Parse(strings.NewReader(contents), StringSourceName)
}

// Parse builds a Document from r. file is only used for locations and errors.
func Parse(r io.Reader, file string) (*Document, error) {
	doc := &Document{File: file}
	dec := xml.NewDecoder(r)

	// Undeclared prefixes (common in URDF files using drake: tags) are kept verbatim by the
	// decoder; declared ones come back as URIs and are mapped back to their prefix.
	var scopes []map[string]string
	var stack []*Element
	rootClosed := false

	for {
		line, _ := dec.InputPos()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &SyntaxError{File: file, Line: syntaxLine(err, line), Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if rootClosed {
				return nil, &SyntaxError{File: file, Line: line, Err: fmt.Errorf("unexpected element <%s> after document end", t.Name.Local)}
			}
			scope := map[string]string{}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" {
					scope[a.Value] = a.Name.Local
				} else if a.Name.Space == "" && a.Name.Local == "xmlns" {
					scope[a.Value] = ""
				}
			}
			scopes = append(scopes, scope)

			el := &Element{
				Prefix: prefixFor(scopes, t.Name.Space),
				Tag:    t.Name.Local,
				line:   line,
				order:  doc.count,
				doc:    doc,
			}
			doc.count++
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
					continue
				}
				el.Attrs = append(el.Attrs, Attr{
					Prefix: prefixFor(scopes, a.Name.Space),
					Name:   a.Name.Local,
					Value:  a.Value,
				})
			}
			if len(stack) == 0 {
				doc.Root = el
			} else {
				parent := stack[len(stack)-1]
				el.Parent = parent
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)

		case xml.EndElement:
			stack = stack[:len(stack)-1]
			scopes = scopes[:len(scopes)-1]
			if len(stack) == 0 {
				rootClosed = true
			}

		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) != 0 {
					return nil, &SyntaxError{File: file, Line: line, Err: errors.New("character data outside root element")}
				}
				continue
			}
			stack[len(stack)-1].text.Write(t)
		}
	}

	if doc.Root == nil {
		return nil, &SyntaxError{File: file, Line: 1, Err: ErrNoRoot}
	}
	return doc, nil
}

func prefixFor(scopes []map[string]string, space string) string {
	if space == "" {
		return ""
	}
	for i := len(scopes) - 1; i >= 0; i-- {
		if prefix, ok := scopes[i][space]; ok {
			return prefix
		}
	}
	return space
}

func syntaxLine(err error, fallback int) int {
	var se *xml.SyntaxError
	if errors.As(err, &se) && se.Line > 0 {
		return se.Line
	}
	if fallback == 0 {
		return 1
	}
	return fallback
}

// Count returns the number of elements in the document.
func (d *Document) Count() int {
	return d.count
}

// Name returns the qualified element name, e.g. "drake:joint".
func (e *Element) Name() string {
	if e.Prefix == "" {
		return e.Tag
	}
	return e.Prefix + ":" + e.Tag
}

// Is reports whether the element's qualified name equals name.
func (e *Element) Is(name string) bool {
	return e.Name() == name
}

// Attr looks up an attribute by qualified name ("type" or "drake:acceleration").
func (e *Element) Attr(name string) (string, bool) {
	prefix, local := splitName(name)
	for _, a := range e.Attrs {
		if a.Name == local && a.Prefix == prefix {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value or def when the attribute is absent.
func (e *Element) AttrOr(name, def string) string {
	if v, ok := e.Attr(name); ok {
		return v
	}
	return def
}

// FirstChild returns the first child element with the given qualified name, or nil.
func (e *Element) FirstChild(name string) *Element {
	for _, c := range e.Children {
		if c.Is(name) {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns all child elements with the given qualified name in document order.
func (e *Element) ChildrenNamed(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Is(name) {
			out = append(out, c)
		}
	}
	return out
}

// Text returns the element's direct character data with surrounding whitespace removed.
func (e *Element) Text() string {
	return strings.TrimSpace(e.text.String())
}

// Line returns the line where the element's start tag begins.
func (e *Element) Line() int {
	return e.line
}

// Order returns the element's index in document (pre-)order.
func (e *Element) Order() int {
	return e.order
}

// Location returns the element's source location.
func (e *Element) Location() Location {
	file := ""
	if e.doc != nil {
		file = e.doc.File
	}
	return Location{File: file, Line: e.line}
}

func splitName(name string) (prefix, local string) {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}
