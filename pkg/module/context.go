// SPDX-License-Identifier: MPL-2.0

package module

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

var (
	// ErrNotDirectory is returned when a directory change targets a non-directory.
	ErrNotDirectory = errors.New("not a directory")
	// ErrEmptyVariableName is returned by Setenv for an empty name.
	ErrEmptyVariableName = errors.New("empty environment variable name")
)

// ExecutionContext is the mutable per-run state threaded through every
// handler call.
type ExecutionContext struct {
	workDir string
	dirs    []string
	env     map[string]string
	base    map[string]string // nil means the process environment
}

// ContextOption configures a new ExecutionContext.
type ContextOption func(*ExecutionContext)

// WithWorkDir sets the initial working directory. Relative paths are made
// absolute against the process working directory.
func WithWorkDir(dir string) ContextOption {
	return func(ec *ExecutionContext) {
		if abs, err := filepath.Abs(dir); err == nil {
			ec.workDir = abs
		}
	}
}

// WithBaseEnv replaces the process environment as the lookup source beneath
// the overlay. A nil map means an empty base environment.
func WithBaseEnv(base map[string]string) ContextOption {
	return func(ec *ExecutionContext) {
		ec.base = maps.Clone(base)
		if ec.base == nil {
			ec.base = map[string]string{}
		}
	}
}

// NewExecutionContext creates a context rooted at the process working directory
// with the process environment as its base.
func NewExecutionContext(opts ...ContextOption) *ExecutionContext {
	ec := &ExecutionContext{
		env: make(map[string]string),
	}
	if wd, err := os.Getwd(); err == nil {
		ec.workDir = wd
	}
	for _, opt := range opts {
		opt(ec)
	}
	return ec
}

// WorkDir returns the current working directory of the run.
func (ec *ExecutionContext) WorkDir() string {
	return ec.workDir
}

// Path resolves p against the working directory. Absolute paths are cleaned
// and returned unchanged otherwise.
func (ec *ExecutionContext) Path(p string) string {
	if p == "" {
		return ec.workDir
	}
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(ec.workDir, p)
}

// Chdir changes the working directory. The target must be an existing directory.
func (ec *ExecutionContext) Chdir(dir string) error {
	target := ec.Path(dir)
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("change directory to %s: %w", target, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("change directory to %s: %w", target, ErrNotDirectory)
	}
	ec.workDir = target
	return nil
}

// PushDir saves the working directory on the stack and changes to dir. When
// the change fails the saved entry is removed again, leaving the stack depth
// unchanged.
func (ec *ExecutionContext) PushDir(dir string) error {
	ec.dirs = append(ec.dirs, ec.workDir)
	if err := ec.Chdir(dir); err != nil {
		ec.dirs = ec.dirs[:len(ec.dirs)-1]
		return err
	}
	return nil
}

// PopDir restores the most recently pushed directory. An empty stack is a
// no-op and reports false.
func (ec *ExecutionContext) PopDir() (bool, error) {
	if len(ec.dirs) == 0 {
		return false, nil
	}
	dir := ec.dirs[len(ec.dirs)-1]
	ec.dirs = ec.dirs[:len(ec.dirs)-1]
	if err := ec.Chdir(dir); err != nil {
		return true, err
	}
	return true, nil
}

// Depth returns the number of entries on the directory stack.
func (ec *ExecutionContext) Depth() int {
	return len(ec.dirs)
}

// Setenv sets a variable in the overlay for the remainder of the run.
func (ec *ExecutionContext) Setenv(name, value string) error {
	if name == "" {
		return ErrEmptyVariableName
	}
	ec.env[name] = value
	return nil
}

// LookupEnv returns the overlay value, falling back to the base environment.
func (ec *ExecutionContext) LookupEnv(name string) (string, bool) {
	if v, ok := ec.env[name]; ok {
		return v, true
	}
	if ec.base == nil {
		return os.LookupEnv(name)
	}
	v, ok := ec.base[name]
	return v, ok
}

// Getenv returns the value of name, or "" when unset.
func (ec *ExecutionContext) Getenv(name string) string {
	v, _ := ec.LookupEnv(name)
	return v
}

// Overlay returns a copy of the variables set during the run.
func (ec *ExecutionContext) Overlay() map[string]string {
	return maps.Clone(ec.env)
}

// Environ returns the base environment with the overlay applied, in
// "KEY=value" form, sorted by key. It is meant for child processes.
func (ec *ExecutionContext) Environ() []string {
	merged := ec.base
	if merged == nil {
		merged = make(map[string]string)
		for _, kv := range os.Environ() {
			if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
				merged[k] = v
			}
		}
	} else {
		merged = maps.Clone(merged)
	}
	maps.Copy(merged, ec.env)

	keys := slices.Sorted(maps.Keys(merged))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+merged[k])
	}
	return out
}
