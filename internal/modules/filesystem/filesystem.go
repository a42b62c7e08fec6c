// SPDX-License-Identifier: MPL-2.0

package filesystem

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/confrun/confrun/pkg/module"
	"github.com/confrun/confrun/pkg/status"
)

// Name is the module name sections use to address this module.
const Name = "FileSystem"

// Directory operation flags.
const (
	FlagOverwrite = 1 << iota
	FlagMerge
)

type (
	// Module is the FileSystem command handler.
	Module struct {
		commands map[string]command
	}

	command struct {
		arity    int
		maxFlag  int
		hasFlag  bool
		run      func(ec *module.ExecutionContext, logger *log.Logger, paths []string, flag int) status.Code
		argUsage string
	}
)

// New creates the FileSystem module.
func New() *Module {
	return &Module{commands: map[string]command{
		"CopyFile": {arity: 3, hasFlag: true, maxFlag: 1, argUsage: "source,target,overwrite",
			run: func(ec *module.ExecutionContext, l *log.Logger, p []string, f int) status.Code {
				return copyFile(l, ec.Path(p[0]), ec.Path(p[1]), f == 1)
			}},
		"RemoveFile": {arity: 1, argUsage: "path",
			run: func(ec *module.ExecutionContext, l *log.Logger, p []string, _ int) status.Code {
				return removeFile(l, ec.Path(p[0]))
			}},
		"MoveFile": {arity: 3, hasFlag: true, maxFlag: 1, argUsage: "source,target,overwrite",
			run: func(ec *module.ExecutionContext, l *log.Logger, p []string, f int) status.Code {
				return moveFile(l, ec.Path(p[0]), ec.Path(p[1]), f == 1)
			}},
		"MakeDir": {arity: 1, argUsage: "path",
			run: func(ec *module.ExecutionContext, l *log.Logger, p []string, _ int) status.Code {
				return makeDir(l, ec.Path(p[0]))
			}},
		"RemoveDir": {arity: 2, hasFlag: true, maxFlag: 1, argUsage: "path,recursive",
			run: func(ec *module.ExecutionContext, l *log.Logger, p []string, f int) status.Code {
				return removeDir(l, ec.Path(p[0]), f == 1)
			}},
		"CopyDir": {arity: 3, hasFlag: true, maxFlag: 3, argUsage: "source,target,flags",
			run: func(ec *module.ExecutionContext, l *log.Logger, p []string, f int) status.Code {
				return copyDir(l, ec.Path(p[0]), ec.Path(p[1]), f&FlagMerge != 0, f&FlagOverwrite != 0)
			}},
		"MoveDir": {arity: 3, hasFlag: true, maxFlag: 3, argUsage: "source,target,flags",
			run: func(ec *module.ExecutionContext, l *log.Logger, p []string, f int) status.Code {
				return moveDir(l, ec.Path(p[0]), ec.Path(p[1]), f&FlagMerge != 0, f&FlagOverwrite != 0)
			}},
		"ExtractZip": {arity: 3, hasFlag: true, maxFlag: 3, argUsage: "archive,target,flags",
			run: func(ec *module.ExecutionContext, l *log.Logger, p []string, f int) status.Code {
				return extractZip(l, ec.Path(p[0]), ec.Path(p[1]), f&FlagMerge != 0, f&FlagOverwrite != 0)
			}},
	}}
}

// Handle implements module.Handler. Unknown commands are forwarded to General.
func (m *Module) Handle(ec *module.ExecutionContext, name, args string, esc module.Escalator, logger *log.Logger) status.Code {
	cmd, ok := m.commands[name]
	if !ok {
		return module.Fallback(esc, name, args)
	}

	fields := []string{args}
	if cmd.arity > 1 {
		fields = strings.Split(args, ",")
	}
	if len(fields) != cmd.arity || fields[0] == "" {
		logger.Error("wrong number of arguments", "command", name, "args", args, "usage", cmd.argUsage)
		return status.InvalidFileSystemArguments
	}

	flag := 0
	if cmd.hasFlag {
		raw := strings.TrimSpace(fields[len(fields)-1])
		f, err := strconv.Atoi(raw)
		if err != nil || f < 0 || f > cmd.maxFlag {
			logger.Error("incorrect flag value", "command", name, "flag", raw, "max", cmd.maxFlag)
			return status.InvalidFileSystemArguments
		}
		flag = f
		fields = fields[:len(fields)-1]
	}

	code := cmd.run(ec, logger, fields, flag)
	if code.Failed() {
		logger.Error("could not perform filesystem operation", "command", name, "args", args, "status", code)
	}
	return code
}
