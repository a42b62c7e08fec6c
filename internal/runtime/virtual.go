// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// VirtualRuntime interprets POSIX shell scripts with the embedded mvdan/sh
// interpreter, so .sh files run the same way on every host.
type VirtualRuntime struct{}

// NewVirtualRuntime creates a new virtual runtime.
func NewVirtualRuntime() *VirtualRuntime {
	return &VirtualRuntime{}
}

// Name returns the runtime name.
func (r *VirtualRuntime) Name() string { return "virtual" }

// ParseFile reads and parses the script at path.
func (r *VirtualRuntime) ParseFile(path string) (*syntax.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return r.Parse(f, filepath.Base(path))
}

// Parse parses a script read from src.
func (r *VirtualRuntime) Parse(src io.Reader, name string) (*syntax.File, error) {
	prog, err := syntax.NewParser().Parse(src, name)
	if err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	return prog, nil
}

// Run executes a parsed script. A non-zero exit is reported through
// Result.ExitCode with a nil Result.Error.
func (r *VirtualRuntime) Run(req *Request, prog *syntax.File) *Result {
	buf, out := req.outputSink()

	opts := []interp.RunnerOption{
		interp.Dir(req.WorkDir),
		interp.Env(expand.ListEnviron(req.Env...)),
		interp.StdIO(nil, out, out),
	}
	// "--" keeps arguments such as "-v" from being taken as shell options.
	if len(req.Args) > 0 {
		opts = append(opts, interp.Params(append([]string{"--"}, req.Args...)...))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return NewErrorResult(1, fmt.Errorf("failed to create interpreter: %w", err))
	}

	if err := runner.Run(req.context(), prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return NewExitCodeResult(ExitCode(exitStatus), buf.Bytes())
		}
		return &Result{ExitCode: 1, Output: buf.Bytes(), Error: fmt.Errorf("script execution failed: %w", err)}
	}
	return NewExitCodeResult(0, buf.Bytes())
}

// RunFile parses and executes the script at path.
func (r *VirtualRuntime) RunFile(req *Request, path string) *Result {
	prog, err := r.ParseFile(path)
	if err != nil {
		return NewErrorResult(1, err)
	}
	return r.Run(req, prog)
}
