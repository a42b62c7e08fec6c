// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/confrun/confrun/pkg/cfgfile"
	"github.com/confrun/confrun/pkg/status"
)

type (
	// ActionableError is a user-facing failure: what confrun was doing, the
	// file and run-file position involved, the status it maps to and hints
	// for fixing it.
	//
	// Use the ErrorContext builder for convenient construction:
	//
	//	err := issue.NewErrorContext().
	//		WithOperation("load configuration").
	//		WithResource(path).
	//		WithSuggestion("Run 'confrun config init' to create one").
	//		Wrap(originalErr).
	//		Build()
	ActionableError struct {
		// Operation is a verb phrase such as "parse run file".
		Operation string
		// Resource is the file involved, if any.
		Resource string
		// Section is the run-file section the failure belongs to, if known.
		Section string
		// Line is the 1-based run-file line, or 0 when unknown.
		Line int
		// Status is the status code reported for the failure. The zero value
		// (Success) means none.
		Status status.Code
		// Suggestions are hints for fixing the failure.
		Suggestions []string
		// Cause is the underlying error.
		Cause error
	}

	// ErrorContext is a builder for constructing ActionableError instances.
	ErrorContext struct {
		err ActionableError
	}
)

// parseHints are the suggestions attached to run-file syntax errors.
var parseHints = map[status.Code]string{
	status.DuplicateSection:      "Rename or merge the repeated section; every [name] may appear once",
	status.CommandOutsideSection: "Add a section header such as [Default] above the first command",
	status.MalformedLine:         "Write commands as Command=value, or start the line with # to comment it out",
	status.ReadFailed:            "Check that the run file exists and is readable",
}

// NewErrorContext creates a new ErrorContext builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// RunFileError describes a failure to load the run file at path. Syntax
// errors contribute their line and a fix for their kind. A nil err yields nil.
func RunFileError(path string, err error) *ActionableError {
	if err == nil {
		return nil
	}

	c := NewErrorContext().
		WithOperation("parse run file").
		WithResource(path).
		WithStatus(status.FromError(err)).
		Wrap(err)

	var pe *cfgfile.ParseError
	if errors.As(err, &pe) {
		c.WithLocation("", pe.Line)
	}
	if hint, ok := parseHints[c.err.Status]; ok {
		c.WithSuggestion(hint)
	}
	return c.Build()
}

// Error returns the concise one-line message.
func (e *ActionableError) Error() string {
	var msg strings.Builder

	msg.WriteString("failed to ")
	msg.WriteString(e.Operation)
	if e.Resource != "" {
		msg.WriteString(": ")
		msg.WriteString(e.Resource)
	}
	if e.Cause != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Cause.Error())
	}
	return msg.String()
}

// Unwrap returns the underlying cause error for use with errors.Is/As.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Location renders the run-file position as "file:line [section]", omitting
// the parts that are unknown.
func (e *ActionableError) Location() string {
	var parts []string
	where := e.Resource
	if e.Line > 0 {
		if where == "" {
			where = "line " + strconv.Itoa(e.Line)
		} else {
			where += ":" + strconv.Itoa(e.Line)
		}
	}
	if where != "" {
		parts = append(parts, where)
	}
	if e.Section != "" {
		parts = append(parts, "["+e.Section+"]")
	}
	return strings.Join(parts, " ")
}

// Format returns the message for display:
//
//	failed to <operation>: <resource>: <cause>
//	  at <file>:<line> [<section>]
//	  status <Facility/Name> (0x........)
//
//	  • <suggestion>
//
// The location line appears only when a line or section is known. When
// verbose is true the full error chain follows.
func (e *ActionableError) Format(verbose bool) string {
	var msg strings.Builder

	msg.WriteString(e.Error())
	if e.Line > 0 || e.Section != "" {
		msg.WriteString("\n  at ")
		msg.WriteString(e.Location())
	}
	if e.Status.Failed() {
		fmt.Fprintf(&msg, "\n  status %s (0x%08X)", e.Status, e.Status.Uint32())
	}

	if len(e.Suggestions) > 0 {
		msg.WriteString("\n")
		for _, suggestion := range e.Suggestions {
			msg.WriteString("\n  • ")
			msg.WriteString(suggestion)
		}
	}

	if verbose && e.Cause != nil {
		msg.WriteString("\n\nError chain:")
		depth := 1
		for err := e.Cause; err != nil; err = errors.Unwrap(err) {
			fmt.Fprintf(&msg, "\n  %d. %s", depth, err.Error())
			depth++
		}
	}

	return msg.String()
}

// HasSuggestions returns true if the error has any suggestions.
func (e *ActionableError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

// WithOperation sets the operation being performed.
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.err.Operation = op
	return c
}

// WithResource sets the file involved.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.err.Resource = res
	return c
}

// WithLocation sets the run-file section and line. Empty or zero values
// leave the current ones in place.
func (c *ErrorContext) WithLocation(section string, line int) *ErrorContext {
	if section != "" {
		c.err.Section = section
	}
	if line > 0 {
		c.err.Line = line
	}
	return c
}

// WithStatus sets the status code reported for the failure.
func (c *ErrorContext) WithStatus(code status.Code) *ErrorContext {
	c.err.Status = code
	return c
}

// WithSuggestion adds a suggestion for how to fix the issue.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	c.err.Suggestions = append(c.err.Suggestions, sug)
	return c
}

// WithSuggestions adds multiple suggestions at once.
func (c *ErrorContext) WithSuggestions(sugs ...string) *ErrorContext {
	c.err.Suggestions = append(c.err.Suggestions, sugs...)
	return c
}

// Wrap sets the underlying cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.err.Cause = err
	return c
}

// Build creates an ActionableError, or nil when no operation is set.
func (c *ErrorContext) Build() *ActionableError {
	if c.err.Operation == "" {
		return nil
	}
	ae := c.err
	ae.Suggestions = append([]string(nil), c.err.Suggestions...)
	return &ae
}

// BuildError is Build returning the error interface, with a true nil when no
// operation is set.
func (c *ErrorContext) BuildError() error {
	ae := c.Build()
	if ae == nil {
		return nil
	}
	return ae
}
