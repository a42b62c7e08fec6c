// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"strconv"
	"strings"

	"github.com/confrun/confrun/pkg/status"
)

// Registry hives.
const (
	HiveCurrentUser Hive = iota + 1
	HiveLocalMachine
	HiveClassesRoot
	HiveUsers
	HiveCurrentConfig
	HivePerformanceData
)

// Value types accepted by SetValue.
const (
	TypeDWord  ValueType = "DWORD"
	TypeQWord  ValueType = "QWORD"
	TypeString ValueType = "SZ"
)

type (
	// Hive identifies a predefined registry root key.
	Hive int

	// Key is a parsed registry key path.
	Key struct {
		Hive Hive
		// Path is the backslash-separated subkey path below the hive. It is
		// empty for the hive itself.
		Path string
	}

	// ValueType names a registry value kind.
	ValueType string

	// Value is a typed registry value.
	Value struct {
		Type   ValueType
		DWord  uint32
		QWord  uint64
		String string
	}
)

var hiveNames = map[string]Hive{
	"HKCU":                  HiveCurrentUser,
	"HKEY_CURRENT_USER":     HiveCurrentUser,
	"HKLM":                  HiveLocalMachine,
	"HKEY_LOCAL_MACHINE":    HiveLocalMachine,
	"HKCR":                  HiveClassesRoot,
	"HKEY_CLASSES_ROOT":     HiveClassesRoot,
	"HKU":                   HiveUsers,
	"HKEY_USERS":            HiveUsers,
	"HKCC":                  HiveCurrentConfig,
	"HKEY_CURRENT_CONFIG":   HiveCurrentConfig,
	"HKPD":                  HivePerformanceData,
	"HKEY_PERFORMANCE_DATA": HivePerformanceData,
}

// String returns the full hive name.
func (h Hive) String() string {
	switch h {
	case HiveCurrentUser:
		return "HKEY_CURRENT_USER"
	case HiveLocalMachine:
		return "HKEY_LOCAL_MACHINE"
	case HiveClassesRoot:
		return "HKEY_CLASSES_ROOT"
	case HiveUsers:
		return "HKEY_USERS"
	case HiveCurrentConfig:
		return "HKEY_CURRENT_CONFIG"
	case HivePerformanceData:
		return "HKEY_PERFORMANCE_DATA"
	default:
		return "Hive(" + strconv.Itoa(int(h)) + ")"
	}
}

// String returns the key in full-hive form.
func (k Key) String() string {
	if k.Path == "" {
		return k.Hive.String()
	}
	return k.Hive.String() + `\` + k.Path
}

// ParseKey parses a key path such as `HKCU\Software\Vendor`.
func ParseKey(s string) (Key, status.Code) {
	s = strings.Trim(strings.TrimSpace(s), `\`)
	if s == "" {
		return Key{}, status.KeyInvalid
	}
	hiveName, rest, _ := strings.Cut(s, `\`)
	hive, ok := hiveNames[strings.ToUpper(hiveName)]
	if !ok {
		return Key{}, status.HiveUnknown
	}

	var parts []string
	for _, p := range strings.Split(rest, `\`) {
		if p == "" {
			continue
		}
		if p == "." || p == ".." {
			return Key{}, status.KeyInvalid
		}
		parts = append(parts, p)
	}
	return Key{Hive: hive, Path: strings.Join(parts, `\`)}, status.Success
}

// ParseValue converts the textual SetValue arguments into a Value.
func ParseValue(typ, raw string) (Value, status.Code) {
	switch ValueType(strings.ToUpper(strings.TrimSpace(typ))) {
	case TypeDWord:
		n, err := parseInteger(raw, 32)
		if err != nil {
			return Value{}, status.InvalidCommandArguments
		}
		return Value{Type: TypeDWord, DWord: uint32(n)}, status.Success
	case TypeQWord:
		n, err := parseInteger(raw, 64)
		if err != nil {
			return Value{}, status.InvalidCommandArguments
		}
		return Value{Type: TypeQWord, QWord: n}, status.Success
	case TypeString:
		return Value{Type: TypeString, String: raw}, status.Success
	default:
		return Value{}, status.UnknownValueType
	}
}

// parseInteger accepts signed and unsigned decimal or 0x-prefixed values that
// fit in bits, returning their two's complement bit pattern.
func parseInteger(raw string, bits int) (uint64, error) {
	raw = strings.TrimSpace(raw)
	if u, err := strconv.ParseUint(raw, 0, bits); err == nil {
		return u, nil
	}
	n, err := strconv.ParseInt(raw, 0, bits)
	if err != nil {
		return 0, err
	}
	if bits == 32 {
		return uint64(uint32(int32(n))), nil
	}
	return uint64(n), nil
}
