// SPDX-License-Identifier: MPL-2.0

package runtime

// NewErrorResult creates a Result with the given exit code and error.
func NewErrorResult(code ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// NewExitCodeResult creates a Result with the given exit code, output and no
// error. Use this for exits that represent normal process termination.
func NewExitCodeResult(code ExitCode, output []byte) *Result {
	return &Result{ExitCode: code, Output: output}
}
