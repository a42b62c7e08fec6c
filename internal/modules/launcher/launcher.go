// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"bytes"
	"path/filepath"
	goruntime "runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/confrun/confrun/internal/runtime"
	"github.com/confrun/confrun/pkg/module"
	"github.com/confrun/confrun/pkg/status"
)

// Name is the module name sections use to address this module.
const Name = "Launcher"

// Launcher commands.
const (
	CmdLaunchProgram = "LaunchProgram"
	CmdLaunchScript  = "LaunchScript"
	CmdInstallInf    = "InstallInf"
)

// infFlags are the reboot-mode values accepted by LaunchINFSection.
var infFlags = []int{0, 1, 2, 3, 4, 128, 129, 130, 131, 132}

// Module is the Launcher command handler.
type Module struct {
	native  *runtime.NativeRuntime
	virtual *runtime.VirtualRuntime
	goos    string
}

// New creates the Launcher module.
func New() *Module {
	return &Module{
		native:  runtime.NewNativeRuntime(),
		virtual: runtime.NewVirtualRuntime(),
		goos:    goruntime.GOOS,
	}
}

// Handle implements module.Handler. Unknown commands are forwarded to General.
func (m *Module) Handle(ec *module.ExecutionContext, command, args string, esc module.Escalator, logger *log.Logger) status.Code {
	var code status.Code
	switch command {
	case CmdLaunchProgram:
		code = m.launchProgram(ec, logger, args)
	case CmdLaunchScript:
		code = m.launchScript(ec, logger, args)
	case CmdInstallInf:
		code = m.installInf(ec, logger, args)
	default:
		return module.Fallback(esc, command, args)
	}

	if code.Failed() {
		logger.Error("could not perform launcher operation", "command", command, "args", args, "status", code)
	}
	return code
}

func (m *Module) launchProgram(ec *module.ExecutionContext, logger *log.Logger, args string) status.Code {
	exe, rest, _ := strings.Cut(args, ",")
	if exe == "" {
		logger.Error("no program given", "args", args)
		return status.InvalidCommandArguments
	}
	argv, err := splitArgs(rest)
	if err != nil {
		logger.Error("cannot split program arguments", "args", rest, "err", err)
		return status.InvalidCommandArguments
	}
	return m.runNative(ec, logger, programPath(ec, exe), argv)
}

func (m *Module) launchScript(ec *module.ExecutionContext, logger *log.Logger, args string) status.Code {
	path := ec.Path(args)
	logger.Debug("launching script", "path", path)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".sh":
		res := m.virtual.RunFile(m.request(ec, nil), path)
		return report(logger, path, res)
	case ".cmd", ".bat":
		return m.runNative(ec, logger, "cmd.exe", []string{"/c", path})
	case ".ps1":
		return m.runNative(ec, logger, m.powershell(), []string{"-File", path})
	case ".js", ".wsh", ".vbs":
		return m.runNative(ec, logger, "cscript.exe", []string{"//B", path})
	default:
		logger.Error("unknown script extension", "path", path, "extension", ext)
		return status.UnknownExtension
	}
}

func (m *Module) installInf(ec *module.ExecutionContext, logger *log.Logger, args string) status.Code {
	fields := strings.Split(args, ",")
	if len(fields) != 2 || fields[0] == "" {
		logger.Error("InstallInf expects path,flags", "args", args)
		return status.InvalidCommandArguments
	}
	flag, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil || !slices.Contains(infFlags, flag) {
		logger.Error("incorrect flag value", "flag", fields[1])
		return status.InvalidCommandArguments
	}
	if m.goos != "windows" {
		logger.Error("InstallInf requires Windows", "os", m.goos)
		return status.PlatformUnsupported
	}

	section := ec.Path(fields[0]) + ",DefaultInstall," + strconv.Itoa(flag)
	return m.runNative(ec, logger, "rundll32.exe", []string{"advpack.dll,LaunchINFSection", section})
}

func (m *Module) powershell() string {
	if m.goos == "windows" {
		return "powershell.exe"
	}
	return "pwsh"
}

func (m *Module) request(ec *module.ExecutionContext, argv []string) *runtime.Request {
	return &runtime.Request{WorkDir: ec.WorkDir(), Env: ec.Environ(), Args: argv}
}

func (m *Module) runNative(ec *module.ExecutionContext, logger *log.Logger, program string, argv []string) status.Code {
	logger.Debug("launching program", "program", program, "args", argv)
	return report(logger, program, m.native.Run(m.request(ec, argv), program))
}

// programPath resolves relative program paths against the working directory
// and leaves bare names for a PATH lookup.
func programPath(ec *module.ExecutionContext, exe string) string {
	if strings.ContainsAny(exe, `/\`) {
		return ec.Path(exe)
	}
	return exe
}

func report(logger *log.Logger, program string, res *runtime.Result) status.Code {
	out := string(bytes.TrimRight(res.Output, "\r\n"))
	switch {
	case res.Error != nil:
		logger.Error("cannot launch program", "program", program, "err", res.Error)
		return status.Failure
	case !res.ExitCode.IsSuccess():
		logger.Error("child process failed", "program", program, "exit_code", res.ExitCode, "output", out)
		return status.ChildProcessFailed
	}
	if out != "" {
		logger.Info("child process output", "program", program, "output", out)
	}
	return status.Success
}
