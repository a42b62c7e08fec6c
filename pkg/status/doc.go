// SPDX-License-Identifier: MPL-2.0

// Package status defines the result domain shared by the parser, the dispatcher
// and every module handler.
//
// A Code is either Success or a failure scoped to a Facility with a
// facility-relative value. In-process code compares Code values directly; the
// packed 32-bit wire form (high bit = failure, 15-bit facility, 16-bit value) is
// only used when a code crosses a process or plugin boundary or is logged.
package status
