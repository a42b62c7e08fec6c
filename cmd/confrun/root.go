// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the confrun CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "confrun",
		Short: "Run sectioned configuration files through pluggable modules",
		Long: TitleStyle.Render("confrun") + SubtitleStyle.Render(" - run sectioned configuration files") + `

A run file is a list of [sections]. Each section belongs to a module,
named by the section name up to the first dot, and holds Command=value
lines executed in order. The built-in modules are General, FileSystem,
Launcher and Registry; other modules are loaded from the plugin directory.

` + SubtitleStyle.Render("Examples:") + `
  confrun run setup.ini             Run the Default section
  confrun run setup.ini Install     Run the Install section
  confrun validate setup.ini        Check a file without running it
  confrun sections setup.ini        List sections and their modules
  confrun config show               Show the current configuration`,
		SilenceUsage: true,
	}
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&app.flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/confrun/config.cue)")
	pf.StringVar(&app.flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&app.flags.logDir, "log-dir", "", "write a log file for the run into this directory")
	pf.StringVar(&app.flags.pluginDir, "plugin-dir", "", "directory searched for plugin modules")
	pf.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newRunCommand(app))
	rootCmd.AddCommand(newValidateCommand(app))
	rootCmd.AddCommand(newSectionsCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process with the resulting code.
func Execute() {
	app := NewApp(Dependencies{})
	os.Exit(execute(context.Background(), app, os.Args[1:]))
}

// execute runs the command tree with args and returns the process exit code.
func execute(ctx context.Context, app *App, args []string) int {
	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)

	// fang.Execute adds styled help and errors; the version is passed
	// explicitly because fang overrides rootCmd.Version.
	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(errorHandler),
	)
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUsage
}

// errorHandler skips ExitErrors that were already reported by the command.
func errorHandler(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}
