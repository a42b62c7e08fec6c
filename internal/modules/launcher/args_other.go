// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package launcher

import (
	"strings"

	"mvdan.cc/sh/v3/shell"
)

const shellOperators = "();|&<>"

// splitArgs splits a command line the way a POSIX shell would. Arguments were
// already expanded by the dispatcher and no shell runs the program, so
// expansions and operators are kept literally.
func splitArgs(s string) ([]string, error) {
	return shell.Fields(literalWords(s), func(string) string { return "" })
}

// literalWords escapes $ and ` outside single quotes, and shell operators
// outside any quotes, so that shell.Fields only applies quoting and word
// splitting.
func literalWords(s string) string {
	if !strings.ContainsAny(s, "$`"+shellOperators) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	inSingle, inDouble := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inSingle:
			if c == '\'' {
				inSingle = false
			}
		case c == '\\':
			b.WriteByte(c)
			if i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			}
			continue
		case c == '\'' && !inDouble:
			inSingle = true
		case c == '"':
			inDouble = !inDouble
		case c == '$' || c == '`':
			b.WriteByte('\\')
		case !inDouble && strings.IndexByte(shellOperators, c) >= 0:
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}
