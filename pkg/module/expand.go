// SPDX-License-Identifier: MPL-2.0

package module

import "strings"

// Expand replaces %NAME% and ${NAME} references with values from the
// context's environment. References to unset variables are left verbatim and
// "%%" produces a single literal percent sign. Windows'
// ExpandEnvironmentStrings leaves "%%" unchanged; here it is the only way to
// write a literal "%NAME%".
func (ec *ExecutionContext) Expand(raw string) string {
	return expand(raw, ec.LookupEnv)
}

func expand(raw string, lookup func(string) (string, bool)) string {
	if !strings.ContainsAny(raw, "%$") {
		return raw
	}

	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); {
		switch c := raw[i]; {
		case c == '%':
			if i+1 < len(raw) && raw[i+1] == '%' {
				b.WriteByte('%')
				i += 2
				continue
			}
			if end := strings.IndexByte(raw[i+1:], '%'); end > 0 {
				if v, ok := lookupName(raw[i+1:i+1+end], lookup); ok {
					b.WriteString(v)
					i += end + 2
					continue
				}
			}
		case c == '$' && i+1 < len(raw) && raw[i+1] == '{':
			if end := strings.IndexByte(raw[i+2:], '}'); end > 0 {
				if v, ok := lookupName(raw[i+2:i+2+end], lookup); ok {
					b.WriteString(v)
					i += end + 3
					continue
				}
			}
		}
		b.WriteByte(raw[i])
		i++
	}
	return b.String()
}

func lookupName(name string, lookup func(string) (string, bool)) (string, bool) {
	if strings.ContainsAny(name, " \t=") {
		return "", false
	}
	return lookup(name)
}
