// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/confrun/confrun/internal/config"
	"github.com/confrun/confrun/internal/plugin"
	"github.com/confrun/confrun/internal/testutil"
	"github.com/confrun/confrun/pkg/module"
	"github.com/confrun/confrun/pkg/status"
)

type (
	fakeLoader struct {
		plugin.Loader
		closed bool
	}

	cliResult struct {
		stdout string
		stderr string
		err    error
	}
)

func (f *fakeLoader) Close() { f.closed = true }

func newTestApp(cfg *config.Config, loader *fakeLoader) (*App, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	app := NewApp(Dependencies{
		Config: config.StaticProvider{Config: cfg},
		NewLoader: func(string) PluginLoader {
			if loader == nil {
				return plugin.NewDiscoverer(filepath.Join(os.TempDir(), "confrun-no-plugins"))
			}
			return loader
		},
		Stdout: &stdout,
		Stderr: &stderr,
	})
	return app, &stdout, &stderr
}

func runCLI(t *testing.T, app *App, stdout, stderr *bytes.Buffer, args ...string) cliResult {
	t.Helper()
	root := NewRootCommand(app)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return -1
}

func TestRun_Success(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	path := testutil.MustWriteFile(t, dir, "setup.ini", `[Meta]
Version=1

[Default]
Echo=hello
LaunchSections=FileSystem.Build

[FileSystem.Build]
MakeDir=`+out+`
`)

	app, stdout, stderr := newTestApp(nil, nil)
	res := runCLI(t, app, stdout, stderr, "run", path)
	if res.err != nil {
		t.Fatalf("run failed: %v\nstderr:\n%s", res.err, res.stderr)
	}
	if !strings.Contains(res.stdout, "completed") {
		t.Errorf("stdout should report completion:\n%s", res.stdout)
	}
	if !strings.Contains(res.stderr, "ECHO: hello") {
		t.Errorf("stderr should carry Echo output:\n%s", res.stderr)
	}
	if info, err := os.Stat(out); err != nil || !info.IsDir() {
		t.Errorf("MakeDir did not create %s: %v", out, err)
	}
}

func TestRun_FailureReportsStatus(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := testutil.MustWriteFile(t, dir, "loop.ini", `[Meta]
Version=1

[Default]
LaunchSections=General.A

[General.A]
LaunchSections=General.A
`)

	app, stdout, stderr := newTestApp(nil, nil)
	res := runCLI(t, app, stdout, stderr, "run", path)
	if got := exitCode(res.err); got != ExitRunFailed {
		t.Fatalf("exit code = %d, want %d (err %v)", got, ExitRunFailed, res.err)
	}
	if !strings.Contains(res.stderr, "Dispatch/CyclicSection (0x80050005)") {
		t.Errorf("stderr should carry the packed status:\n%s", res.stderr)
	}
}

func TestRun_StartSectionFromArgsAndConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := testutil.MustWriteFile(t, dir, "multi.ini", `[Meta]
Version=1

[Default]
Echo=default

[General.Other]
Echo=other
`)

	app, stdout, stderr := newTestApp(nil, nil)
	res := runCLI(t, app, stdout, stderr, "run", path, "General.Other")
	if res.err != nil {
		t.Fatalf("run failed: %v", res.err)
	}
	if !strings.Contains(res.stderr, "ECHO: other") || strings.Contains(res.stderr, "ECHO: default") {
		t.Errorf("only General.Other should run:\n%s", res.stderr)
	}

	cfg := config.DefaultConfig()
	cfg.StartSection = "General.Other"
	app, stdout, stderr = newTestApp(cfg, nil)
	res = runCLI(t, app, stdout, stderr, "run", path)
	if res.err != nil {
		t.Fatalf("run failed: %v", res.err)
	}
	if !strings.Contains(res.stderr, "ECHO: other") {
		t.Errorf("configured start section should run:\n%s", res.stderr)
	}
}

func TestRun_ParseErrorAndMissingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bad := testutil.MustWriteFile(t, dir, "bad.ini", "Echo=before any section\n")

	tests := []struct {
		name   string
		path   string
		status string
		hint   string
	}{
		{"parse error", bad, "Parse/CommandOutsideSection", "at " + bad + ":1"},
		{"missing file", filepath.Join(dir, "missing.ini"), "Parse/ReadFailed", "exists and is readable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			app, stdout, stderr := newTestApp(nil, nil)
			res := runCLI(t, app, stdout, stderr, "run", tt.path)
			if got := exitCode(res.err); got != ExitRunFailed {
				t.Fatalf("exit code = %d, want %d", got, ExitRunFailed)
			}
			if !strings.Contains(res.stderr, tt.status) {
				t.Errorf("stderr should mention %s:\n%s", tt.status, res.stderr)
			}
			if !strings.Contains(res.stderr, tt.hint) {
				t.Errorf("stderr should contain %q:\n%s", tt.hint, res.stderr)
			}
		})
	}
}

func TestRun_UsesPluginLoader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := testutil.MustWriteFile(t, dir, "plugin.ini", `[Meta]
Version=1

[Default]
LaunchSections=Custom.Step

[Custom.Step]
Greet=world
`)

	var got string
	loader := &fakeLoader{Loader: plugin.LoaderFunc(func(name string) (module.Handler, error) {
		if name != "Custom" {
			return nil, plugin.ErrNotFound
		}
		return module.HandlerFunc(func(_ *module.ExecutionContext, command, args string, esc module.Escalator, _ *log.Logger) status.Code {
			got = command + "=" + args
			return status.Success
		}), nil
	})}

	app, stdout, stderr := newTestApp(nil, loader)
	res := runCLI(t, app, stdout, stderr, "run", path)
	if res.err != nil {
		t.Fatalf("run failed: %v\n%s", res.err, res.stderr)
	}
	if got != "Greet=world" {
		t.Errorf("plugin received %q", got)
	}
	if !loader.closed {
		t.Error("loader should be closed after the run")
	}
}

func TestRun_InvalidLogLevelFlag(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := testutil.MustWriteFile(t, dir, "x.ini", "[Meta]\nVersion=1\n[Default]\n")

	app, stdout, stderr := newTestApp(nil, nil)
	res := runCLI(t, app, stdout, stderr, "--log-level", "loud", "run", path)
	if got := exitCode(res.err); got != ExitUsage {
		t.Errorf("exit code = %d, want %d", got, ExitUsage)
	}
}

func TestRun_LogFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logDir := filepath.Join(dir, "logs")
	testutil.MustMkdirAll(t, logDir)
	path := testutil.MustWriteFile(t, dir, "x.ini", "[Meta]\nVersion=1\n[Default]\nEcho=to the file\n")

	app, stdout, stderr := newTestApp(nil, nil)
	res := runCLI(t, app, stdout, stderr, "--log-dir", logDir, "run", path)
	if res.err != nil {
		t.Fatalf("run failed: %v", res.err)
	}
	entries, err := os.ReadDir(logDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one log file, got %v (%v)", entries, err)
	}
	content := testutil.MustReadFile(t, filepath.Join(logDir, entries[0].Name()))
	if !strings.Contains(content, "ECHO: to the file") {
		t.Errorf("log file should contain Echo output:\n%s", content)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name     string
		content  string
		wantCode int
		contains []string
	}{
		{
			name:     "valid",
			content:  "[Meta]\nVersion=1\n\n[Default]\nLaunchSections=FileSystem.A\n\n[FileSystem.A]\n",
			wantCode: ExitOK,
			contains: []string{"3 section(s) valid"},
		},
		{
			name:     "unsupported version",
			content:  "[Meta]\nVersion=2\n\n[Default]\n",
			wantCode: ExitRunFailed,
			contains: []string{"Dispatch/UnsupportedVersion"},
		},
		{
			name:     "invalid section name and missing target",
			content:  "[Meta]\nVersion=1\n\n[Default]\nLaunchSections=General.Nope\n\n[Orphan]\n",
			wantCode: ExitRunFailed,
			contains: []string{"[Orphan]", "Dispatch/InvalidSectionName", `launches missing section "General.Nope"`, "line 5"},
		},
		{
			name:     "unknown plugin is only a warning",
			content:  "[Meta]\nVersion=1\n\n[Default]\n\n[Custom.Step]\nDo=it\n",
			wantCode: ExitOK,
			contains: []string{"module Custom is not built in"},
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := testutil.MustWriteFile(t, dir, filepath.Join(string(rune('a'+i)), "run.ini"), tt.content)
			app, stdout, stderr := newTestApp(nil, nil)
			res := runCLI(t, app, stdout, stderr, "validate", path)
			if got := exitCode(res.err); got != tt.wantCode {
				t.Errorf("exit code = %d, want %d\n%s", got, tt.wantCode, res.stdout)
			}
			for _, s := range tt.contains {
				if !strings.Contains(res.stdout, s) {
					t.Errorf("stdout missing %q:\n%s", s, res.stdout)
				}
			}
		})
	}
}

func TestSections(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := testutil.MustWriteFile(t, dir, "run.ini", "[Meta]\nVersion=1\n[Default]\nEcho=x\n[X.Registry.Keys]\n[Custom.Step]\n[Bad]\n")

	app, stdout, stderr := newTestApp(nil, nil)
	res := runCLI(t, app, stdout, stderr, "sections", path)
	if res.err != nil {
		t.Fatalf("sections failed: %v", res.err)
	}
	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected a title and 5 sections, got:\n%s", res.stdout)
	}
	for i, want := range []string{"(metadata)", "General", "Registry", "(plugin)", "(invalid name)"} {
		if !strings.Contains(lines[i+1], want) {
			t.Errorf("line %d = %q, want it to contain %q", i+1, lines[i+1], want)
		}
	}
	if !strings.Contains(lines[2], "1 command(s)") {
		t.Errorf("Default should list one command: %q", lines[2])
	}
}

func TestConfigDump(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.PluginDir = "/opt/plugins"

	tests := []struct {
		format   string
		contains string
		wantCode int
	}{
		{"cue", `plugin_dir: "/opt/plugins"`, ExitOK},
		{"toml", "plugin_dir = ", ExitOK},
		{"yaml", "", ExitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()
			app, stdout, stderr := newTestApp(cfg, nil)
			res := runCLI(t, app, stdout, stderr, "config", "dump", "--format", tt.format)
			if got := exitCode(res.err); got != tt.wantCode {
				t.Fatalf("exit code = %d, want %d", got, tt.wantCode)
			}
			if !strings.Contains(res.stdout, tt.contains) {
				t.Errorf("stdout missing %q:\n%s", tt.contains, res.stdout)
			}
		})
	}
}

func TestConfigShow(t *testing.T) {
	t.Parallel()

	app, stdout, stderr := newTestApp(nil, nil)
	res := runCLI(t, app, stdout, stderr, "config", "show")
	if res.err != nil {
		t.Fatalf("config show failed: %v", res.err)
	}
	for _, s := range []string{"log_level", "info", "start_section", "Default", "(plugins next to the run file)"} {
		if !strings.Contains(res.stdout, s) {
			t.Errorf("stdout missing %q:\n%s", s, res.stdout)
		}
	}
}

func TestExecute_ExitCodes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ok := testutil.MustWriteFile(t, dir, "ok.ini", "[Meta]\nVersion=1\n[Default]\n")
	missingMeta := testutil.MustWriteFile(t, dir, "nometa.ini", "[Default]\n")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"success", []string{"run", ok}, ExitOK},
		{"run failure", []string{"run", missingMeta}, ExitRunFailed},
		{"usage", []string{"run"}, ExitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			app, _, _ := newTestApp(nil, nil)
			if got := execute(context.Background(), app, tt.args); got != tt.want {
				t.Errorf("execute(%v) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}

func TestPluginDir(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	if got := pluginDir(cfg, filepath.Join("a", "b", "run.ini")); got != filepath.Join("a", "b", "plugins") {
		t.Errorf("pluginDir default = %q", got)
	}
	cfg.PluginDir = "/opt/p"
	if got := pluginDir(cfg, "run.ini"); got != "/opt/p" {
		t.Errorf("pluginDir override = %q", got)
	}
}

func TestGetVersionString(t *testing.T) {
	// Not parallel: mutates package-level Version/Commit/BuildDate vars.
	origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
	t.Cleanup(func() {
		Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
	})

	Version, Commit, BuildDate = "v1.2.3", "abc1234", "2026-01-02T03:04:05Z"
	if got, want := getVersionString(), "v1.2.3 (commit: abc1234, built: 2026-01-02T03:04:05Z)"; got != want {
		t.Errorf("getVersionString() = %q, want %q", got, want)
	}

	Version = "dev"
	if got, want := getVersionString(), "dev (built from source)"; got != want {
		t.Errorf("getVersionString() = %q, want %q", got, want)
	}
}
