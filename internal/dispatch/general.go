// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/confrun/confrun/pkg/module"
	"github.com/confrun/confrun/pkg/status"
)

// General module commands.
const (
	CmdSetEnv         = "SetEnv"
	CmdSetPwd         = "SetPwd"
	CmdPushDir        = "PushDir"
	CmdPopDir         = "PopDir"
	CmdLaunchSections = "LaunchSections"
	CmdEcho           = "Echo"
)

// EchoPrefix precedes every Echo message on the always-visible channel.
const EchoPrefix = "ECHO: "

func (d *Dispatcher) general(ec *module.ExecutionContext, command, args string, _ module.Escalator, logger *log.Logger) status.Code {
	switch command {
	case CmdSetEnv:
		name, value, _ := strings.Cut(args, ",")
		if err := ec.Setenv(name, value); err != nil {
			// An empty name cannot be stored but SetEnv never fails.
			logger.Warn("ignoring SetEnv", "args", args, "err", err)
		}
		return status.Success

	case CmdSetPwd:
		if err := ec.Chdir(args); err != nil {
			logger.Error("SetPwd failed", "path", args, "err", err)
			return status.Failure
		}
		return status.Success

	case CmdPushDir:
		if err := ec.PushDir(args); err != nil {
			logger.Error("PushDir failed", "path", args, "err", err)
			return status.Failure
		}
		return status.Success

	case CmdPopDir:
		popped, err := ec.PopDir()
		if err != nil {
			logger.Error("PopDir failed", "err", err)
			return status.Failure
		}
		if !popped {
			logger.Debug("PopDir on empty directory stack")
		}
		return status.Success

	case CmdLaunchSections:
		for _, name := range strings.Split(args, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if code := d.ExecuteSection(name); code.Failed() {
				logger.Error("cannot execute one of sections", "sections", args, "section", name, "status", code)
				return code
			}
		}
		return status.Success

	case CmdEcho:
		logger.Print(EchoPrefix + args)
		return status.Success
	}

	return status.CommandNotFound
}
