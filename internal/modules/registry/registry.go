// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"errors"
	"fmt"
	goruntime "runtime"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/confrun/confrun/internal/runtime"
	"github.com/confrun/confrun/pkg/module"
	"github.com/confrun/confrun/pkg/status"
)

// Name is the module name sections use to address this module.
const Name = "Registry"

// Registry commands.
const (
	CmdSetValue     = "SetValue"
	CmdDeleteKey    = "DeleteKey"
	CmdDeleteValue  = "DeleteValue"
	CmdApplyRegFile = "ApplyRegFile"
	CmdCreateBackup = "CreateBackup"
)

// ErrKeyNotFound is returned by a backend when the key does not exist.
var ErrKeyNotFound = errors.New("registry key not found")

type (
	// Module is the Registry command handler.
	Module struct {
		store  backend
		native *runtime.NativeRuntime
	}

	// backend performs registry edits. It is nil on platforms without a
	// registry.
	backend interface {
		SetValue(k Key, name string, v Value) error
		DeleteKey(k Key, recursive bool) error
		DeleteValue(k Key, name string) error
	}
)

// New creates the Registry module for the host platform.
func New() *Module {
	return &Module{store: newBackend(), native: runtime.NewNativeRuntime()}
}

// Handle implements module.Handler. Unknown commands are forwarded to General.
func (m *Module) Handle(ec *module.ExecutionContext, command, args string, esc module.Escalator, logger *log.Logger) status.Code {
	var code status.Code
	switch command {
	case CmdSetValue, CmdDeleteKey, CmdDeleteValue, CmdApplyRegFile, CmdCreateBackup:
		if m.store == nil {
			logger.Error("registry is not available on this platform", "command", command, "os", goruntime.GOOS)
			return status.PlatformUnsupported
		}
	default:
		return module.Fallback(esc, command, args)
	}

	switch command {
	case CmdSetValue:
		code = m.setValue(logger, args)
	case CmdDeleteKey:
		code = m.deleteKey(logger, args)
	case CmdDeleteValue:
		code = m.deleteValue(logger, args)
	case CmdApplyRegFile:
		code = m.runReg(ec, logger, "import", ec.Path(args))
	case CmdCreateBackup:
		key, file, ok := strings.Cut(args, ",")
		if !ok || key == "" || file == "" {
			logger.Error("CreateBackup expects key,file", "args", args)
			return status.InvalidCommandArguments
		}
		k, c := ParseKey(key)
		if c.Failed() {
			code = c
			break
		}
		code = m.runReg(ec, logger, "save", k.String(), ec.Path(file), "/y")
	}

	if code.Failed() {
		logger.Error("could not perform registry operation", "command", command, "args", args, "status", code)
	}
	return code
}

func (m *Module) setValue(logger *log.Logger, args string) status.Code {
	fields := strings.SplitN(args, ",", 4)
	if len(fields) != 4 {
		logger.Error("SetValue expects key,name,type,value", "args", args)
		return status.InvalidCommandArguments
	}
	k, code := ParseKey(fields[0])
	if code.Failed() {
		return code
	}
	v, code := ParseValue(fields[2], fields[3])
	if code.Failed() {
		logger.Error("invalid registry value", "type", fields[2], "value", fields[3], "status", code)
		return code
	}
	logger.Debug("setting registry value", "key", k, "name", fields[1], "type", v.Type)
	return storeResult(logger, k, m.store.SetValue(k, fields[1], v))
}

func (m *Module) deleteKey(logger *log.Logger, args string) status.Code {
	key, flag, ok := strings.Cut(args, ",")
	flag = strings.TrimSpace(flag)
	if !ok || (flag != "0" && flag != "1") {
		logger.Error("DeleteKey expects key,recursive(0|1)", "args", args)
		return status.InvalidCommandArguments
	}
	k, code := ParseKey(key)
	if code.Failed() {
		return code
	}
	if k.Path == "" {
		logger.Error("refusing to delete a hive", "key", k)
		return status.KeyInvalid
	}
	return storeResult(logger, k, m.store.DeleteKey(k, flag == "1"))
}

func (m *Module) deleteValue(logger *log.Logger, args string) status.Code {
	key, name, ok := strings.Cut(args, ",")
	if !ok {
		logger.Error("DeleteValue expects key,name", "args", args)
		return status.InvalidCommandArguments
	}
	k, code := ParseKey(key)
	if code.Failed() {
		return code
	}
	return storeResult(logger, k, m.store.DeleteValue(k, name))
}

func (m *Module) runReg(ec *module.ExecutionContext, logger *log.Logger, args ...string) status.Code {
	res := m.native.Run(&runtime.Request{WorkDir: ec.WorkDir(), Env: ec.Environ(), Args: args}, "reg.exe")
	out := strings.TrimSpace(string(res.Output))
	switch {
	case res.Error != nil:
		logger.Error("cannot launch reg.exe", "err", res.Error)
		return status.Failure
	case !res.ExitCode.IsSuccess():
		logger.Error("reg.exe failed", "args", args, "exit_code", res.ExitCode, "output", out)
		return status.ChildProcessFailed
	}
	return status.Success
}

func storeResult(logger *log.Logger, k Key, err error) status.Code {
	if err == nil {
		return status.Success
	}
	logger.Error("registry operation failed", "key", k, "err", err)
	if errors.Is(err, ErrKeyNotFound) {
		return status.KeyInvalid
	}
	return status.Failure
}

func keyNotFound(k Key) error {
	return fmt.Errorf("%w: %s", ErrKeyNotFound, k)
}
