// SPDX-License-Identifier: MPL-2.0

package status

import (
	"errors"
	"fmt"
)

const (
	failureBit   uint32 = 0x80000000
	facilityMask uint32 = 0x7FFF0000
	valueMask    uint32 = 0x0000FFFF
	facilityBits        = 16
)

// Facility identifiers. Values are part of the wire form and must not change.
const (
	FacilityGeneric Facility = iota
	FacilityFileSystem
	FacilitySystem
	FacilityRegistry
	FacilityCommand
	FacilityDispatch
	FacilityParse
)

var (
	// Success is the only successful Code.
	Success = Code{}

	// Failure is the unclassified failure (wire form 0x80000000).
	Failure = newFailure(FacilityGeneric, 0)

	// DirectoryNotEmpty reports a non-empty copy target when merging was not requested.
	DirectoryNotEmpty = newFailure(FacilityFileSystem, 1)
	// InvalidFileSystemArguments reports malformed FileSystem command arguments.
	InvalidFileSystemArguments = newFailure(FacilityFileSystem, 2)

	// ChildProcessFailed reports a launched process that exited non-zero.
	ChildProcessFailed = newFailure(FacilitySystem, 1)
	// PluginNotFound reports any failure to discover or load a plugin module.
	PluginNotFound = newFailure(FacilitySystem, 2)
	// UnknownExtension reports a script whose extension has no known interpreter.
	UnknownExtension = newFailure(FacilitySystem, 3)
	// PlatformUnsupported reports an operation not available on the host OS.
	PlatformUnsupported = newFailure(FacilitySystem, 4)

	// KeyInvalid reports a malformed registry key path.
	KeyInvalid = newFailure(FacilityRegistry, 1)
	// HiveUnknown reports a registry key path with an unrecognized root hive.
	HiveUnknown = newFailure(FacilityRegistry, 2)
	// UnknownValueType reports a registry value type other than DWORD, QWORD or SZ.
	UnknownValueType = newFailure(FacilityRegistry, 3)

	// CommandNotFound reports a command that no module recognized, General included.
	CommandNotFound = newFailure(FacilityCommand, 1)
	// InvalidCommandArguments reports malformed arguments for a General command.
	InvalidCommandArguments = newFailure(FacilityCommand, 2)

	// MetaSectionMissing reports a config without a [Meta] section.
	MetaSectionMissing = newFailure(FacilityDispatch, 1)
	// UnsupportedVersion reports a missing, unparseable or out of range Meta.Version.
	UnsupportedVersion = newFailure(FacilityDispatch, 2)
	// SectionNotFound reports a reference to an undeclared section.
	SectionNotFound = newFailure(FacilityDispatch, 3)
	// InvalidSectionName reports a section name that does not map to a module.
	InvalidSectionName = newFailure(FacilityDispatch, 4)
	// CyclicSection reports a section that re-enters itself through LaunchSections.
	CyclicSection = newFailure(FacilityDispatch, 5)
	// Interrupted reports a run stopped between commands by cancellation.
	Interrupted = newFailure(FacilityDispatch, 6)

	// DuplicateSection reports a section header declared more than once.
	DuplicateSection = newFailure(FacilityParse, 1)
	// CommandOutsideSection reports a command line before the first section header.
	CommandOutsideSection = newFailure(FacilityParse, 2)
	// MalformedLine reports a line that is neither a comment, a header nor a command.
	MalformedLine = newFailure(FacilityParse, 3)
	// ReadFailed reports an unreadable config file.
	ReadFailed = newFailure(FacilityParse, 4)
)

type (
	// Facility is a category of failure codes.
	Facility uint16

	// Code is a tagged result: Success, or a failure carrying a facility and a
	// facility-relative value. The zero value is Success.
	Code struct {
		failed   bool
		facility Facility
		value    uint16
	}

	// Error adapts a failed Code to the error interface.
	Error struct {
		Code Code
	}
)

var facilityNames = map[Facility]string{
	FacilityGeneric:    "Generic",
	FacilityFileSystem: "FileSystem",
	FacilitySystem:     "System",
	FacilityRegistry:   "Registry",
	FacilityCommand:    "Command",
	FacilityDispatch:   "Dispatch",
	FacilityParse:      "Parse",
}

var codeNames = map[Code]string{
	Success:                    "Success",
	Failure:                    "Failure",
	DirectoryNotEmpty:          "DirectoryNotEmpty",
	InvalidFileSystemArguments: "InvalidArguments",
	ChildProcessFailed:         "ChildProcessFailed",
	PluginNotFound:             "PluginNotFound",
	UnknownExtension:           "UnknownExtension",
	PlatformUnsupported:        "PlatformUnsupported",
	KeyInvalid:                 "KeyInvalid",
	HiveUnknown:                "HiveUnknown",
	UnknownValueType:           "UnknownValueType",
	CommandNotFound:            "NotFound",
	InvalidCommandArguments:    "InvalidArguments",
	MetaSectionMissing:         "MetaSectionMissing",
	UnsupportedVersion:         "UnsupportedVersion",
	SectionNotFound:            "SectionNotFound",
	InvalidSectionName:         "InvalidSectionName",
	CyclicSection:              "CyclicSection",
	Interrupted:                "Interrupted",
	DuplicateSection:           "DuplicateSection",
	CommandOutsideSection:      "CommandOutsideSection",
	MalformedLine:              "MalformedLine",
	ReadFailed:                 "ReadFailed",
}

func newFailure(f Facility, v uint16) Code {
	return Code{failed: true, facility: f, value: v}
}

// New returns a failure Code for the given facility and value. Facility values
// above the 15-bit wire range are truncated.
func New(f Facility, v uint16) Code {
	return newFailure(Facility(uint32(f)&(facilityMask>>facilityBits)), v)
}

// FromUint32 decodes the packed wire form. Any value without the failure bit is Success.
func FromUint32(u uint32) Code {
	if u&failureBit == 0 {
		return Success
	}
	return newFailure(Facility((u&facilityMask)>>facilityBits), uint16(u&valueMask))
}

// Uint32 returns the packed wire form of the code.
func (c Code) Uint32() uint32 {
	if !c.failed {
		return 0
	}
	return failureBit | uint32(c.facility)<<facilityBits | uint32(c.value)
}

// Succeeded reports whether c is Success.
func (c Code) Succeeded() bool { return !c.failed }

// Failed reports whether c is a failure.
func (c Code) Failed() bool { return c.failed }

// Facility returns the failure facility. It is FacilityGeneric for Success.
func (c Code) Facility() Facility { return c.facility }

// Value returns the facility-relative failure value. It is 0 for Success.
func (c Code) Value() uint16 { return c.value }

// String renders the code as "Facility/Name", e.g. "Dispatch/SectionNotFound".
func (c Code) String() string {
	if !c.failed {
		return "Success"
	}
	if c == Failure {
		return "Failure"
	}
	if name, ok := codeNames[c]; ok {
		return c.facility.String() + "/" + name
	}
	return fmt.Sprintf("%s/0x%04X", c.facility, c.value)
}

// Err returns nil for Success and an *Error for any failure.
func (c Code) Err() error {
	if !c.failed {
		return nil
	}
	return &Error{Code: c}
}

// String returns the facility name.
func (f Facility) String() string {
	if name, ok := facilityNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Facility(%d)", uint16(f))
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s (0x%08X)", e.Code, e.Code.Uint32())
}

// Is reports whether target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// FromError extracts a Code from err. A nil error is Success; an error that
// carries no Code is the generic Failure.
func FromError(err error) Code {
	if err == nil {
		return Success
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	var coder interface{ Status() Code }
	if errors.As(err, &coder) {
		return coder.Status()
	}
	return Failure
}

// Is reports whether err carries the given failure Code.
func Is(err error, c Code) bool {
	return err != nil && FromError(err) == c
}
