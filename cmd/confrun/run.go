// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/confrun/confrun/internal/config"
	"github.com/confrun/confrun/internal/dispatch"
	"github.com/confrun/confrun/internal/issue"
	"github.com/confrun/confrun/internal/logging"
	"github.com/confrun/confrun/pkg/status"
)

func newRunCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run <file> [section]",
		Short: "Execute a run file",
		Long: `Execute a run file, starting at the named section or at the configured
start section (Default unless changed).

The exit code is 0 on success and 1 when the run fails; the packed status
code is printed with the failure.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := ""
			if len(args) == 2 {
				start = args[1]
			}
			return runFile(cmd, app, args[0], start)
		},
	}
}

func runFile(cmd *cobra.Command, app *App, path, start string) error {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	cfg, err := app.loadConfig(cmd.Context())
	if err != nil {
		return err
	}
	if start == "" {
		start = cfg.StartSection
	}

	sink, err := logging.New(logging.Options{
		Level:   cfg.LogLevel.String(),
		Dir:     cfg.LogDir,
		Console: stderr,
	})
	if err != nil {
		return &ExitError{Code: ExitUsage, Err: err}
	}
	defer sink.Close()

	loader := app.NewLoader(pluginDir(cfg, path))
	defer loader.Close()

	sink.Logger.Debug("run started", "file", path, "section", start, "plugins", pluginDir(cfg, path))

	code, parseErr := dispatch.Run(cmd.Context(), path, start,
		dispatch.WithLogger(sink.Logger),
		dispatch.WithLoader(loader),
	)
	if parseErr != nil {
		sink.Logger.Error("could not load run file", "file", path, "err", parseErr)
	}

	if code.Succeeded() {
		fmt.Fprintf(stdout, "%s %s [%s] completed\n", successIcon, path, CmdStyle.Render(start))
		if sink.Path != "" {
			fmt.Fprintf(stdout, "%s\n", SubtitleStyle.Render("log: "+sink.Path))
		}
		return nil
	}

	reportFailure(cmd, cfg, path, code, parseErr)
	if sink.Path != "" {
		fmt.Fprintf(stderr, "%s\n", SubtitleStyle.Render("log: "+sink.Path))
	}
	return &ExitError{Code: ExitRunFailed}
}

// pluginDir returns the configured plugin directory, or "plugins" next to
// the run file.
func pluginDir(cfg *config.Config, runFile string) string {
	if cfg.PluginDir != "" {
		return cfg.PluginDir
	}
	return filepath.Join(filepath.Dir(runFile), "plugins")
}

// reportFailure prints the failed status, the run-file error when parsing
// failed and, when verbose, the rendered issue for the status.
func reportFailure(cmd *cobra.Command, cfg *config.Config, path string, code status.Code, cause error) {
	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "%s %s %s\n", errorIcon, ErrorStyle.Render("run failed:"),
		fmt.Sprintf("%s (0x%08X)", code, code.Uint32()))
	if cause != nil {
		fmt.Fprintf(stderr, "%s\n", formatErrorForDisplay(issue.RunFileError(path, cause), cfg.UI.Verbose))
	}
	if !cfg.UI.Verbose {
		return
	}
	if i := issue.ForStatus(code); i != nil {
		if rendered, err := i.Render(""); err == nil {
			fmt.Fprint(stderr, rendered)
		}
	}
}
