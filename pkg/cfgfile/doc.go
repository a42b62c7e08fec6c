// SPDX-License-Identifier: MPL-2.0

// Package cfgfile parses confrun configuration files into an immutable model.
//
// The grammar is line oriented. After trimming, blank lines are dropped and
// lines starting with '#' are comments. "[name]" opens a section and
// "command=value" appends an entry to the current section; the command ends at
// the first '=' and the value may contain further '=' characters.
//
//	[Meta]
//	Version=1
//
//	[Default]
//	LaunchSections=FileSystem.Setup
//
//	[FileSystem.Setup]
//	MakeDir=C:\out
//	Echo=done
//
// Parsing is purely syntactic and all-or-nothing: the first error aborts and no
// partial Config is returned.
package cfgfile
