// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/confrun/confrun/internal/config"
	"github.com/confrun/confrun/internal/issue"
	"github.com/confrun/confrun/internal/plugin"
)

type (
	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// PluginLoader is a plugin.Loader owning resources released by Close.
	PluginLoader interface {
		plugin.Loader
		Close()
	}

	// App wires CLI services and the global flag values. Every command
	// handler receives the App and reads configuration through it.
	App struct {
		Config ConfigProvider
		// NewLoader builds the plugin loader for a directory.
		NewLoader func(dir string) PluginLoader

		stdout io.Writer
		stderr io.Writer

		flags rootFlags
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config    ConfigProvider
		NewLoader func(dir string) PluginLoader
		Stdout    io.Writer
		Stderr    io.Writer
	}

	// rootFlags holds persistent flag values. Empty strings mean "not set".
	rootFlags struct {
		configPath string
		logLevel   string
		logDir     string
		pluginDir  string
		verbose    bool
	}
)

// NewApp creates an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:    deps.Config,
		NewLoader: deps.NewLoader,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.NewLoader == nil {
		app.NewLoader = func(dir string) PluginLoader { return plugin.NewDiscoverer(dir) }
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// loadConfig loads the application configuration and lays the global flags
// over it. Failures are wrapped as usage errors.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.flags.configPath})
	if err != nil {
		return nil, &ExitError{Code: ExitUsage, Err: err}
	}

	if a.flags.logLevel != "" {
		cfg.LogLevel = config.LogLevel(a.flags.logLevel)
		if valid, errs := cfg.LogLevel.IsValid(); !valid {
			return nil, &ExitError{Code: ExitUsage, Err: errors.Join(errs...)}
		}
	}
	if a.flags.logDir != "" {
		cfg.LogDir = a.flags.logDir
	}
	if a.flags.pluginDir != "" {
		cfg.PluginDir = a.flags.pluginDir
	}
	if a.flags.verbose {
		cfg.UI.Verbose = true
	}
	return cfg, nil
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// list their suggestions and, when verbose, the full chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
