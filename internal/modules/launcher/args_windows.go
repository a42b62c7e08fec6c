// SPDX-License-Identifier: MPL-2.0

//go:build windows

package launcher

import (
	"strings"

	"golang.org/x/sys/windows"
)

// splitArgs splits a command line with the Windows CommandLineToArgv rules so
// backslashes in paths survive.
func splitArgs(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	return windows.DecomposeCommandLine(s)
}
