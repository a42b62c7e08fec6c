// SPDX-License-Identifier: MPL-2.0

// Package module defines the contract between the dispatcher and every module
// that executes commands, whether built in or loaded as a plugin.
//
// A Handler receives the command name, its already-expanded arguments, an
// Escalator for forwarding work to other modules, and the run's log sink. It
// reports the outcome as a status.Code. Handlers that do not recognize a
// command are expected to forward it to the General module with Fallback.
//
// ExecutionContext carries the mutable state of one run: the working
// directory, the directory stack and the environment overlay. It never touches
// the process-wide working directory or environment, and it is not safe for
// concurrent use. Exactly one dispatch run may use a given context.
package module
