// SPDX-License-Identifier: MPL-2.0

// Package registry implements the built-in Registry module for editing the
// Windows registry. On every other platform each registry command fails with
// System/PlatformUnsupported.
//
// Keys are written as backslash-separated paths starting with a hive, either
// abbreviated (HKCU, HKLM, HKCR, HKU, HKCC, HKPD) or in full
// (HKEY_CURRENT_USER, ...).
package registry
