// SPDX-License-Identifier: MPL-2.0

package cfgfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/confrun/confrun/pkg/status"
)

const sampleConfig = `
# sample
[Meta]
Version=1

[Default]
LaunchSections=FileSystem.Setup

[FileSystem.Setup]
MakeDir=C:\out
Echo=done
`

func TestParse_Sample(t *testing.T) {
	t.Parallel()

	cfg, err := Parse(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	wantNames := []string{"Meta", "Default", "FileSystem.Setup"}
	if got := cfg.Names(); strings.Join(got, ",") != strings.Join(wantNames, ",") {
		t.Errorf("Names() = %v, want %v", got, wantNames)
	}

	setup, ok := cfg.Section("FileSystem.Setup")
	if !ok {
		t.Fatal("FileSystem.Setup section missing")
	}
	if setup.Len() != 2 {
		t.Fatalf("FileSystem.Setup has %d entries, want 2", setup.Len())
	}
	if e := setup.Entries[0]; e.Command != "MakeDir" || e.Args != `C:\out` {
		t.Errorf("entry 0 = %+v, want MakeDir=C:\\out", e)
	}
	if e := setup.Entries[1]; e.Command != "Echo" || e.Args != "done" || e.Line != 11 {
		t.Errorf("entry 1 = %+v, want Echo=done on line 11", e)
	}

	meta, _ := cfg.Section(MetaSection)
	if v, ok := meta.Lookup(VersionKey); !ok || v != "1" {
		t.Errorf("Meta.Version = %q, %v; want \"1\", true", v, ok)
	}
}

func TestParse_PreservesEntryOrder(t *testing.T) {
	t.Parallel()

	input := "[S.a]\nc=3\na=1\nb=2\nc=4\n"
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	sec, _ := cfg.Section("S.a")
	var got []string
	for _, e := range sec.Entries {
		got = append(got, e.Command+"="+e.Args)
	}
	if want := "c=3,a=1,b=2,c=4"; strings.Join(got, ",") != want {
		t.Errorf("entries = %v, want %s", got, want)
	}
}

func TestParse_RetainsEmptySections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		empty []string
	}{
		{"trailing header at EOF", "[Meta]\nVersion=1\n[Last]", []string{"Last"}},
		{"adjacent headers", "[A.x]\n[B.y]\ncmd=1\n", []string{"A.x"}},
		{"only headers", "[One]\n[Two]\n\n[Three]\n", []string{"One", "Two", "Three"}},
		{"header followed by comments", "[Meta]\nVersion=1\n[Tail]\n# nothing here\n", []string{"Tail"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := Parse(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			for _, name := range tt.empty {
				sec, ok := cfg.Section(name)
				if !ok {
					t.Errorf("section %q missing", name)
					continue
				}
				if sec.Len() != 0 {
					t.Errorf("section %q has %d entries, want 0", name, sec.Len())
				}
			}
		})
	}
}

func TestParse_CommandValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line    string
		command string
		args    string
	}{
		{"Echo=", "Echo", ""},
		{"SetEnv=A,b=c=d", "SetEnv", "A,b=c=d"},
		{"  Spaced = value  ", "Spaced ", " value"},
		{"==x", "=", "x"},
		{"Path=C:\\Program Files\\x", "Path", "C:\\Program Files\\x"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()
			cfg, err := Parse(strings.NewReader("[S.x]\n" + tt.line + "\n"))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			sec, _ := cfg.Section("S.x")
			if sec.Len() != 1 {
				t.Fatalf("got %d entries, want 1", sec.Len())
			}
			e := sec.Entries[0]
			if e.Command != tt.command || e.Args != tt.args {
				t.Errorf("entry = (%q, %q), want (%q, %q)", e.Command, e.Args, tt.command, tt.args)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantKind ErrKind
		wantCode status.Code
		wantLine int
		wantText string
	}{
		{
			name:     "duplicate section with content",
			input:    "[Meta]\nVersion=1\n[A.b]\nx=1\n[Meta]\n",
			wantKind: ErrKindDuplicateSection,
			wantCode: status.DuplicateSection,
			wantLine: 5,
			wantText: "Meta",
		},
		{
			name:     "duplicate empty section",
			input:    "[A.b]\n[A.b]\n",
			wantKind: ErrKindDuplicateSection,
			wantCode: status.DuplicateSection,
			wantLine: 2,
			wantText: "A.b",
		},
		{
			name:     "command before section",
			input:    "# header comment\nVersion=1\n[Meta]\n",
			wantKind: ErrKindCommandOutsideSection,
			wantCode: status.CommandOutsideSection,
			wantLine: 2,
			wantText: "Version=1",
		},
		{
			name:     "malformed line",
			input:    "[Meta]\nVersion=1\njust some text\n",
			wantKind: ErrKindMalformedLine,
			wantCode: status.MalformedLine,
			wantLine: 3,
			wantText: "just some text",
		},
		{
			name:     "empty command name",
			input:    "[Meta]\n=value\n",
			wantKind: ErrKindMalformedLine,
			wantCode: status.MalformedLine,
			wantLine: 2,
			wantText: "=value",
		},
		{
			name:     "unterminated header",
			input:    "[Meta\n",
			wantKind: ErrKindMalformedLine,
			wantCode: status.MalformedLine,
			wantLine: 1,
			wantText: "[Meta",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := Parse(strings.NewReader(tt.input))
			if cfg != nil {
				t.Errorf("Parse() returned a partial config with %d sections", cfg.Len())
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Parse() error = %v, want *ParseError", err)
			}
			if !errors.Is(err, ErrParse) {
				t.Error("error does not wrap ErrParse")
			}
			if pe.Kind != tt.wantKind || pe.Line != tt.wantLine || pe.Text != tt.wantText {
				t.Errorf("ParseError = %+v, want kind %d line %d text %q", pe, tt.wantKind, tt.wantLine, tt.wantText)
			}
			if got := status.FromError(err); got != tt.wantCode {
				t.Errorf("status = %v, want %v", got, tt.wantCode)
			}
			if !strings.Contains(pe.Error(), tt.wantText) {
				t.Errorf("Error() = %q does not mention %q", pe.Error(), tt.wantText)
			}
		})
	}
}

func TestParse_CRLFAndBOM(t *testing.T) {
	t.Parallel()

	input := "\uFEFF[Meta]\r\nVersion=1\r\n[Default]\r\nEcho=hi\r\n"
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, ok := cfg.Section("Meta"); !ok {
		t.Error("Meta section missing after BOM strip")
	}
	def, _ := cfg.Section("Default")
	if def.Entries[0].Args != "hi" {
		t.Errorf("Echo args = %q, want %q", def.Entries[0].Args, "hi")
	}
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "setup.cfg")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if cfg.Len() != 3 {
		t.Errorf("Len() = %d, want 3", cfg.Len())
	}

	_, err = ParseFile(filepath.Join(dir, "missing.cfg"))
	if !status.Is(err, status.ReadFailed) {
		t.Errorf("ParseFile(missing) error = %v, want ReadFailed", err)
	}
}
