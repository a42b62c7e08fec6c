// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"io"
)

type (
	// Request describes a single program or script invocation.
	Request struct {
		// Context bounds the invocation. A nil Context means context.Background.
		Context context.Context
		// WorkDir is the directory the program starts in.
		WorkDir string
		// Env is the complete environment in KEY=value form.
		Env []string
		// Args are passed to the program after its name, or as $1.. to scripts.
		Args []string
		// Output, when set, receives a copy of the combined output.
		Output io.Writer
	}

	// Result is the outcome of an invocation.
	Result struct {
		// ExitCode is the exit status reported by the program or script.
		ExitCode ExitCode
		// Output is the combined standard output and standard error.
		Output []byte
		// Error is set when the invocation could not be carried out at all.
		Error error
	}
)

// Success reports whether the invocation ran and exited with status 0.
func (r *Result) Success() bool {
	return r.Error == nil && r.ExitCode.IsSuccess()
}

func (req *Request) context() context.Context {
	if req.Context == nil {
		return context.Background()
	}
	return req.Context
}

// outputSink returns the buffer capturing combined output and the writer
// handed to the program.
func (req *Request) outputSink() (*bytes.Buffer, io.Writer) {
	var buf bytes.Buffer
	if req.Output == nil {
		return &buf, &buf
	}
	return &buf, io.MultiWriter(&buf, req.Output)
}
