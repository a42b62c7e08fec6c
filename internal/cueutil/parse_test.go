// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Settings: {
	name:     string & !=""
	level?:   "low" | "high"
	retries?: int & >=0
}
`

type settings struct {
	Name    string `json:"name"`
	Level   string `json:"level,omitempty"`
	Retries int    `json:"retries,omitempty"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		opts    []Option
		want    settings
		wantErr string
	}{
		{
			name: "all fields",
			data: "name: \"a\"\nlevel: \"high\"\nretries: 2\n",
			want: settings{Name: "a", Level: "high", Retries: 2},
		},
		{
			name: "optional fields omitted",
			data: "name: \"a\"\n",
			want: settings{Name: "a"},
		},
		{
			name:    "closed definition rejects unknown field",
			data:    "name: \"a\"\ncolor: \"red\"\n",
			opts:    []Option{WithFilename("s.cue")},
			wantErr: "s.cue",
		},
		{
			name:    "disjunction violation names the field",
			data:    "name: \"a\"\nlevel: \"medium\"\n",
			opts:    []Option{WithFilename("s.cue")},
			wantErr: "level",
		},
		{
			name:    "syntax error",
			data:    "name: \n\"",
			wantErr: "<input>",
		},
		{
			name:    "size limit",
			data:    "name: \"" + strings.Repeat("x", 64) + "\"\n",
			opts:    []Option{WithMaxFileSize(16)},
			wantErr: "exceeds maximum",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := ParseAndDecode[settings]([]byte(testSchema), []byte(tt.data), "#Settings", tt.opts...)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error %q should contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAndDecode: %v", err)
			}
			if *res.Value != tt.want {
				t.Errorf("got %+v, want %+v", *res.Value, tt.want)
			}
		})
	}
}

func TestParseAndDecode_NonConcreteMap(t *testing.T) {
	t.Parallel()

	res, err := ParseAndDecode[map[string]any]([]byte(testSchema), []byte("name: \"a\"\n"), "#Settings", WithConcrete(false))
	if err != nil {
		t.Fatalf("ParseAndDecode: %v", err)
	}
	if (*res.Value)["name"] != "a" {
		t.Errorf("name = %v", (*res.Value)["name"])
	}
	if _, ok := (*res.Value)["level"]; ok {
		t.Error("unset optional field should not be decoded")
	}
}

func TestParseAndDecode_MissingDefinition(t *testing.T) {
	t.Parallel()

	_, err := ParseAndDecode[settings]([]byte(testSchema), []byte("name: \"a\"\n"), "#Nope")
	if err == nil || !strings.Contains(err.Error(), "internal error") {
		t.Errorf("expected internal error, got %v", err)
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := map[string][]string{
		"":               nil,
		"ui":             {"ui"},
		"ui.verbose":     {"ui", "verbose"},
		"plugins[0].dir": {"plugins", "0", "dir"},
	}
	for want, in := range tests {
		if got := formatPath(in); got != want {
			t.Errorf("formatPath(%v) = %q, want %q", in, got, want)
		}
	}
}
