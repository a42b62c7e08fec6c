// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"bytes"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/syntax"

	"github.com/confrun/confrun/internal/runtime"
	"github.com/confrun/confrun/pkg/module"
	"github.com/confrun/confrun/pkg/status"
)

// shellHandler runs a shell plugin through the virtual runtime. Exit status
// 127 means the script does not know the command, which is then forwarded to
// the General module.
type shellHandler struct {
	module string
	path   string
	prog   *syntax.File
	rt     *runtime.VirtualRuntime
}

func loadShell(moduleName, path string) (module.Handler, error) {
	rt := runtime.NewVirtualRuntime()
	prog, err := rt.ParseFile(path)
	if err != nil {
		return nil, &LoadError{Module: moduleName, Path: path, Err: err}
	}
	return &shellHandler{module: moduleName, path: path, prog: prog, rt: rt}, nil
}

func (h *shellHandler) Handle(ec *module.ExecutionContext, command, args string, esc module.Escalator, logger *log.Logger) status.Code {
	res := h.rt.Run(&runtime.Request{
		WorkDir: ec.WorkDir(),
		Env:     ec.Environ(),
		Args:    []string{command, args},
	}, h.prog)

	if out := bytes.TrimRight(res.Output, "\r\n"); len(out) > 0 {
		logger.Info("plugin output", "module", h.module, "command", command, "output", string(out))
	}

	switch {
	case res.Error != nil:
		logger.Error("shell plugin failed", "module", h.module, "command", command, "err", res.Error)
		return status.ChildProcessFailed
	case res.ExitCode.IsSuccess():
		return status.Success
	case res.ExitCode.IsCommandNotFound():
		return module.Fallback(esc, command, args)
	default:
		logger.Error("shell plugin exited with failure",
			"module", h.module, "command", command, "exit_code", res.ExitCode)
		return status.ChildProcessFailed
	}
}
