// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/confrun/confrun/internal/config"
	"github.com/confrun/confrun/internal/issue"
)

// newConfigCommand creates the `confrun config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage confrun configuration",
		Long: `Manage confrun configuration.

Configuration is stored in:
  - Linux: ~/.config/confrun/config.cue
  - macOS: ~/Library/Application Support/confrun/config.cue
  - Windows: %APPDATA%\confrun\config.cue

Every key can be overridden with a CONFRUN_<KEY> environment variable,
for example CONFRUN_LOG_LEVEL=debug or CONFRUN_UI_VERBOSE=true.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd, app)
		},
	})

	var format string
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE or TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpConfig(cmd, app, format)
		},
	}
	dumpCmd.Flags().StringVar(&format, "format", "cue", "output format: cue or toml")
	cfgCmd.AddCommand(dumpCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(cmd, app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
	})

	return cfgCmd
}

func showConfig(cmd *cobra.Command, app *App) error {
	stdout := cmd.OutOrStdout()

	cfg, err := app.loadConfig(cmd.Context())
	if err != nil {
		if rendered, renderErr := issue.Get(issue.AppConfigLoadFailedId).Render(""); renderErr == nil {
			fmt.Fprint(cmd.ErrOrStderr(), rendered)
		}
		return err
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	orDefault := func(v, unset string) string {
		if v == "" {
			return SubtitleStyle.Render(unset)
		}
		return valueStyle.Render(v)
	}

	fmt.Fprintln(stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(stdout)

	path, err := config.ResolvePath(config.LoadOptions{ConfigFilePath: app.flags.configPath})
	if err != nil || path == "" {
		fmt.Fprintf(stdout, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	} else {
		fmt.Fprintf(stdout, "%s: %s\n", keyStyle.Render("Config file"), path)
	}
	fmt.Fprintln(stdout)

	fmt.Fprintf(stdout, "%s: %s\n", keyStyle.Render("log_level"), valueStyle.Render(cfg.LogLevel.String()))
	fmt.Fprintf(stdout, "%s: %s\n", keyStyle.Render("log_dir"), orDefault(cfg.LogDir, "(no log file)"))
	fmt.Fprintf(stdout, "%s: %s\n", keyStyle.Render("plugin_dir"), orDefault(cfg.PluginDir, "(plugins next to the run file)"))
	fmt.Fprintf(stdout, "%s: %s\n", keyStyle.Render("start_section"), valueStyle.Render(cfg.StartSection))
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(stdout, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	return nil
}

func dumpConfig(cmd *cobra.Command, app *App, format string) error {
	cfg, err := app.loadConfig(cmd.Context())
	if err != nil {
		return err
	}

	switch format {
	case "cue":
		fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(cfg))
	case "toml":
		out, err := config.GenerateTOML(cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
	default:
		return &ExitError{Code: ExitUsage, Err: fmt.Errorf("unknown format %q (valid: cue, toml)", format)}
	}
	return nil
}

func showConfigPath(cmd *cobra.Command, app *App) error {
	stdout := cmd.OutOrStdout()

	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Config directory: %s\n", cfgDir)

	path, err := config.ResolvePath(config.LoadOptions{ConfigFilePath: app.flags.configPath})
	if err != nil {
		return err
	}
	if path == "" {
		path, err = config.DefaultFilePath("")
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Config file: %s %s\n", path, SubtitleStyle.Render("(not created)"))
		return nil
	}
	fmt.Fprintf(stdout, "Config file: %s\n", path)
	return nil
}

func initConfig(cmd *cobra.Command) error {
	path, created, err := config.CreateDefaultConfig("")
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	if created {
		fmt.Fprintf(cmd.OutOrStdout(), "%s Created default configuration at %s\n", successIcon, path)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s Configuration already exists at %s\n", warningIcon, path)
	}
	return nil
}
