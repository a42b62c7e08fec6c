// SPDX-License-Identifier: MPL-2.0

// Package dispatch walks a parsed configuration and routes every command to
// the module that owns its section.
//
// A Dispatcher is created per run. It owns the handler cache, seeded with the
// built-in General, FileSystem, Launcher and Registry modules and grown lazily
// through a plugin.Loader, and the module.ExecutionContext shared by every
// command of the run. A Dispatcher is not safe for concurrent use, and because
// launched child processes inherit the run's environment and working
// directory, only one run per process is supported.
package dispatch
