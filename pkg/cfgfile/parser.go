// SPDX-License-Identifier: MPL-2.0

package cfgfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/confrun/confrun/pkg/status"
)

const (
	// ErrKindDuplicateSection is a section header declared twice.
	ErrKindDuplicateSection ErrKind = iota + 1
	// ErrKindCommandOutsideSection is a command line before any section header.
	ErrKindCommandOutsideSection
	// ErrKindMalformedLine is a line matching no grammar rule.
	ErrKindMalformedLine
)

// ErrParse is the sentinel wrapped by every ParseError.
var ErrParse = errors.New("config parse error")

const utf8BOM = "\uFEFF"

type (
	// ErrKind classifies a ParseError.
	ErrKind int

	// ParseError reports the first syntax or duplication error of a file.
	ParseError struct {
		Kind ErrKind
		// Line is the 1-based line number of the offending line.
		Line int
		// Text is the trimmed offending line.
		Text string
	}
)

// Error implements the error interface.
func (e *ParseError) Error() string {
	switch e.Kind {
	case ErrKindDuplicateSection:
		return fmt.Sprintf("line %d: duplicate section %q: section names must be unique", e.Line, e.Text)
	case ErrKindCommandOutsideSection:
		return fmt.Sprintf("line %d: command %q appears before any section", e.Line, e.Text)
	default:
		return fmt.Sprintf("line %d: %q is not a valid configuration line", e.Line, e.Text)
	}
}

// Unwrap returns ErrParse so callers can use errors.Is.
func (e *ParseError) Unwrap() error { return ErrParse }

// Status maps the error onto the Parse facility.
func (e *ParseError) Status() status.Code {
	switch e.Kind {
	case ErrKindDuplicateSection:
		return status.DuplicateSection
	case ErrKindCommandOutsideSection:
		return status.CommandOutsideSection
	default:
		return status.MalformedLine
	}
}

// ParseFile reads and parses the file at path. Read failures carry
// status.ReadFailed.
func ParseFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", status.ReadFailed.Err(), err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse reads the whole of r and builds a Config.
func Parse(r io.Reader) (*Config, error) {
	cfg := &Config{sections: make(map[string]*Section)}

	var current *Section
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		if lineNo == 1 {
			raw = strings.TrimPrefix(raw, utf8BOM)
		}
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if name, ok := sectionHeader(line); ok {
			if _, dup := cfg.sections[name]; dup {
				return nil, &ParseError{Kind: ErrKindDuplicateSection, Line: lineNo, Text: name}
			}
			current = &Section{Name: name}
			cfg.sections[name] = current
			cfg.order = append(cfg.order, name)
			continue
		}

		command, args, ok := commandLine(line)
		if !ok {
			return nil, &ParseError{Kind: ErrKindMalformedLine, Line: lineNo, Text: line}
		}
		if current == nil {
			return nil, &ParseError{Kind: ErrKindCommandOutsideSection, Line: lineNo, Text: line}
		}
		current.Entries = append(current.Entries, Entry{Command: command, Args: args, Line: lineNo})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read config: %w: %w", err, status.ReadFailed.Err())
	}

	return cfg, nil
}

// sectionHeader matches "[name]". The name may be empty or contain any characters.
func sectionHeader(line string) (string, bool) {
	if len(line) < 2 || line[0] != '[' || line[len(line)-1] != ']' {
		return "", false
	}
	return line[1 : len(line)-1], true
}

// commandLine splits at the first '=' that follows at least one command
// character, so "==x" is command "=" with value "x".
func commandLine(line string) (command, args string, ok bool) {
	if len(line) < 2 {
		return "", "", false
	}
	idx := strings.IndexByte(line[1:], '=')
	if idx < 0 {
		return "", "", false
	}
	idx++
	return line[:idx], line[idx+1:], true
}
