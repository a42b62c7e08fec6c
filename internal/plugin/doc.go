// SPDX-License-Identifier: MPL-2.0

// Package plugin discovers modules that are not built into confrun.
//
// A Discoverer looks for a file named after the module in its directory and
// loads the first one found, in this order:
//
//	<Module>.so   Go plugin exporting CommandHandler
//	<Module>.lua  Lua script defining a global CommandHandler(command, args)
//	<Module>.sh   POSIX shell script receiving the command as $1 and args as $2
//
// Go plugins are only available on platforms and builds supported by the
// standard library plugin package.
package plugin
