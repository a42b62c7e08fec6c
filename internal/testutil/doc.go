// SPDX-License-Identifier: MPL-2.0

// Package testutil provides test helpers that fail the test on error and
// register their own cleanup.
package testutil
