// SPDX-License-Identifier: MPL-2.0

// Package logging builds the log sink shared by the dispatcher and every
// module of a run. Messages go to the console and, when a log directory is
// configured, to a per-run log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultPrefix is printed before every console message.
const DefaultPrefix = "confrun"

type (
	// Options configures New.
	Options struct {
		// Level is the minimum level name (debug, info, warn, error). Empty means info.
		Level string
		// Dir, when set, receives a log file for the run.
		Dir string
		// Console receives the console output. Nil means os.Stderr.
		Console io.Writer
		// Prefix overrides DefaultPrefix.
		Prefix string
		// Now overrides the clock used for the log file name.
		Now func() time.Time
	}

	// Sink is a configured logger and the file backing it, if any.
	Sink struct {
		Logger *log.Logger
		// Path is the log file path, or "" when logging only to the console.
		Path string

		file *os.File
	}
)

// New creates a Sink. Always-visible messages are written with Logger.Print,
// which ignores the level.
func New(opts Options) (*Sink, error) {
	level := log.InfoLevel
	if opts.Level != "" {
		l, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = l
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}

	s := &Sink{}
	w := console
	if opts.Dir != "" {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		s.Path = filepath.Join(opts.Dir, FileName(now(), os.Getpid()))
		f, err := os.OpenFile(s.Path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		s.file = f
		w = io.MultiWriter(console, f)
	}

	s.Logger = log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          prefix,
		ReportTimestamp: s.file != nil,
		TimeFormat:      time.DateTime,
	})
	return s, nil
}

// FileName returns the log file name for a run started at t by process pid.
func FileName(t time.Time, pid int) string {
	return fmt.Sprintf("confrun_%s_pid%x.log", t.Format("20060102-150405"), pid)
}

// Close flushes and closes the log file.
func (s *Sink) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
