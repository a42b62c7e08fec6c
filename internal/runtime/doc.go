// SPDX-License-Identifier: MPL-2.0

// Package runtime runs external programs and shell scripts on behalf of the
// Launcher module and shell plugins.
//
// Two runtime implementations are available:
//   - native: starts a host executable with os/exec
//   - virtual: interprets a POSIX shell script in process using mvdan/sh
//
// Both take a Request describing the working directory, environment and
// arguments, and return a Result with the exit code and the combined output.
package runtime
