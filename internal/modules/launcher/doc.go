// SPDX-License-Identifier: MPL-2.0

// Package launcher implements the built-in Launcher module, which starts
// programs and scripts in the run's working directory and environment.
//
// Shell scripts (.sh) run in process through the virtual runtime. Batch,
// PowerShell and Windows Script Host files are handed to their host
// interpreters. A non-zero exit status fails the command with
// System/ChildProcessFailed and logs the combined output.
package launcher
