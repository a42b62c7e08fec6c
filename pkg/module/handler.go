// SPDX-License-Identifier: MPL-2.0

package module

import (
	"github.com/charmbracelet/log"

	"github.com/confrun/confrun/pkg/status"
)

// General is the module that owns the shared command vocabulary
// (SetEnv, SetPwd, PushDir, PopDir, LaunchSections, Echo).
const General = "General"

type (
	// Handler executes commands for one module.
	Handler interface {
		Handle(ec *ExecutionContext, command, args string, esc Escalator, logger *log.Logger) status.Code
	}

	// HandlerFunc adapts an ordinary function to the Handler interface.
	HandlerFunc func(ec *ExecutionContext, command, args string, esc Escalator, logger *log.Logger) status.Code

	// Escalator forwards a command to another module by name. Arguments are
	// passed through as-is, without a second environment expansion.
	Escalator interface {
		Invoke(module, command, args string) status.Code
	}

	// EscalatorFunc adapts an ordinary function to the Escalator interface.
	EscalatorFunc func(module, command, args string) status.Code
)

// Handle calls f.
func (f HandlerFunc) Handle(ec *ExecutionContext, command, args string, esc Escalator, logger *log.Logger) status.Code {
	return f(ec, command, args, esc, logger)
}

// Invoke calls f.
func (f EscalatorFunc) Invoke(module, command, args string) status.Code {
	return f(module, command, args)
}

// Fallback forwards an unrecognized command to the General module.
func Fallback(esc Escalator, command, args string) status.Code {
	return esc.Invoke(General, command, args)
}
