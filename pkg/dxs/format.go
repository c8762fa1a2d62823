// Package dxs writes DeleD scene documents (.dxs, version 1.6), the XML
// dialect consumed by the Artemis engine asset pipeline.
package dxs

import (
	"strconv"
	"strings"
)

// Version is the scene format version written to the root element.
const Version = "1.6"

// Extension is the file extension of scene documents.
const Extension = ".dxs"

// IndentUnit is the whitespace written once per nesting level.
const IndentUnit = "    "

// Indent returns the line prefix for the given nesting level.
func Indent(level int) string {
	if level <= 0 {
		return ""
	}
	return strings.Repeat(IndentUnit, level)
}

// Line formats one output line: indentation, content and a single newline.
func Line(level int, content string) string {
	return Indent(level) + content + "\n"
}

// Float formats a coordinate. Every float in a document goes through here:
// shortest decimal that round-trips the float32, never in exponent form.
func Float(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}

// Int formats an integer attribute.
func Int(v int) string {
	return strconv.Itoa(v)
}

// Bool formats a boolean attribute as "true" or "false".
func Bool(v bool) string {
	return strconv.FormatBool(v)
}
