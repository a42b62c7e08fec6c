// SPDX-License-Identifier: MPL-2.0

// Package filesystem implements the built-in FileSystem module: copying,
// moving and removing files and directories, and extracting zip archives.
//
// Arguments are comma separated. Relative paths are resolved against the
// run's working directory. Directory operations take a flag value from 0 to 3
// where bit 1 allows merging into a non-empty target and bit 0 allows
// overwriting existing files.
package filesystem
