// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"testing"
)

func TestExitCodeValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     ExitCode
		wantValid bool
	}{
		{name: "zero is valid", value: 0, wantValid: true},
		{name: "one is valid", value: 1, wantValid: true},
		{name: "127 is valid", value: 127, wantValid: true},
		{name: "255 is valid", value: 255, wantValid: true},
		{name: "negative is invalid", value: -1, wantValid: false},
		{name: "256 is invalid", value: 256, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.value.Validate()
			if tt.wantValid && err != nil {
				t.Errorf("ExitCode(%d).Validate() = %v, want nil", tt.value, err)
			}
			if !tt.wantValid && !errors.Is(err, ErrInvalidExitCode) {
				t.Errorf("ExitCode(%d).Validate() = %v, want ErrInvalidExitCode", tt.value, err)
			}
		})
	}
}

func TestExitCodePredicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code        ExitCode
		success     bool
		notFound    bool
		stringValue string
	}{
		{0, true, false, "0"},
		{1, false, false, "1"},
		{127, false, true, "127"},
		{255, false, false, "255"},
	}

	for _, tt := range tests {
		if got := tt.code.IsSuccess(); got != tt.success {
			t.Errorf("ExitCode(%d).IsSuccess() = %v, want %v", tt.code, got, tt.success)
		}
		if got := tt.code.IsCommandNotFound(); got != tt.notFound {
			t.Errorf("ExitCode(%d).IsCommandNotFound() = %v, want %v", tt.code, got, tt.notFound)
		}
		if got := tt.code.String(); got != tt.stringValue {
			t.Errorf("ExitCode(%d).String() = %q, want %q", tt.code, got, tt.stringValue)
		}
	}
}
