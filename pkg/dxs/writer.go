package dxs

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Writer errors.
var (
	ErrSinkWrite  = errors.New("writing scene document")
	ErrUnbalanced = errors.New("unbalanced element")
)

// Attr is a single element attribute. Attributes are written in the order given.
type Attr struct {
	Name  string
	Value string
}

// A builds an attribute.
func A(name, value string) Attr {
	return Attr{Name: name, Value: value}
}

// ElementWriter streams indented elements to a sink. It tracks open elements
// so every Open is matched by exactly one Close, and nesting depth drives the
// indentation. Each call writes straight through to the sink.
//
// The first error is sticky: later calls are no-ops and Err returns it.
type ElementWriter struct {
	w     io.Writer
	stack []string
	n     int64
	err   error
	buf   strings.Builder
}

// NewElementWriter returns a writer over w.
func NewElementWriter(w io.Writer) *ElementWriter {
	return &ElementWriter{w: w}
}

// Open writes a start tag and pushes the element.
func (ew *ElementWriter) Open(name string, attrs ...Attr) {
	ew.tag(name, attrs, false)
	if ew.err == nil {
		ew.stack = append(ew.stack, name)
	}
}

// Empty writes a self-closing element.
func (ew *ElementWriter) Empty(name string, attrs ...Attr) {
	ew.tag(name, attrs, true)
}

// Close writes the end tag of the innermost open element.
func (ew *ElementWriter) Close() {
	if ew.err != nil {
		return
	}
	if len(ew.stack) == 0 {
		ew.err = fmt.Errorf("%w: close without open element", ErrUnbalanced)
		return
	}
	name := ew.stack[len(ew.stack)-1]
	ew.stack = ew.stack[:len(ew.stack)-1]
	ew.write(Line(len(ew.stack), "</"+name+">"))
}

// Depth returns the number of currently open elements.
func (ew *ElementWriter) Depth() int {
	return len(ew.stack)
}

// Written returns the number of bytes written to the sink.
func (ew *ElementWriter) Written() int64 {
	return ew.n
}

// Err returns the first error encountered.
func (ew *ElementWriter) Err() error {
	return ew.err
}

// Finish reports the sticky error, or ErrUnbalanced if elements are left open.
func (ew *ElementWriter) Finish() error {
	if ew.err != nil {
		return ew.err
	}
	if len(ew.stack) > 0 {
		return fmt.Errorf("%w: %d element(s) left open, innermost <%s>",
			ErrUnbalanced, len(ew.stack), ew.stack[len(ew.stack)-1])
	}
	return nil
}

func (ew *ElementWriter) tag(name string, attrs []Attr, empty bool) {
	if ew.err != nil {
		return
	}

	b := &ew.buf
	b.Reset()
	b.WriteString(Indent(len(ew.stack)))
	b.WriteByte('<')
	b.WriteString(name)
	for _, a := range attrs {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		// strings.Builder never fails, so the escape error is always nil.
		_ = xml.EscapeText(b, []byte(a.Value))
		b.WriteByte('"')
	}
	if empty {
		b.WriteString(" />")
	} else {
		b.WriteByte('>')
	}
	b.WriteByte('\n')

	ew.write(b.String())
}

func (ew *ElementWriter) write(s string) {
	n, err := io.WriteString(ew.w, s)
	ew.n += int64(n)
	if err != nil {
		ew.err = fmt.Errorf("%w: %w", ErrSinkWrite, err)
	}
}
