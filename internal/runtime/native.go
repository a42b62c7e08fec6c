// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"os/exec"
)

// NativeRuntime starts host executables.
type NativeRuntime struct{}

// NewNativeRuntime creates a new native runtime.
func NewNativeRuntime() *NativeRuntime {
	return &NativeRuntime{}
}

// Name returns the runtime name.
func (r *NativeRuntime) Name() string { return "native" }

// Run starts program with req.Args and waits for it to exit. The program is
// looked up on the PATH when it contains no path separator.
func (r *NativeRuntime) Run(req *Request, program string) *Result {
	if program == "" {
		return NewErrorResult(1, errors.New("no program given"))
	}

	buf, out := req.outputSink()
	cmd := exec.CommandContext(req.context(), program, req.Args...)
	cmd.Dir = req.WorkDir
	cmd.Env = req.Env
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return NewExitCodeResult(ExitCode(exitErr.ExitCode()), buf.Bytes())
		}
		return &Result{ExitCode: 1, Output: buf.Bytes(), Error: fmt.Errorf("failed to run %s: %w", program, err)}
	}
	return NewExitCodeResult(0, buf.Bytes())
}
