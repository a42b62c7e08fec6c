// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/confrun/confrun/internal/dispatch"
	"github.com/confrun/confrun/internal/issue"
	"github.com/confrun/confrun/pkg/cfgfile"
	"github.com/confrun/confrun/pkg/module"
	"github.com/confrun/confrun/pkg/status"
)

type (
	// finding is one validation result. Errors fail validation, warnings do not.
	finding struct {
		section string
		line    int
		message string
		code    status.Code
		warning bool
	}
)

func newValidateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a run file without executing it",
		Long: `Parse a run file and check it without running any command:

  - the Meta section exists and declares a supported Version
  - every section name maps to a module
  - every LaunchSections target exists
  - modules that are not built in can be found in the plugin directory (warning)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateFile(cmd, app, args[0])
		},
	}
}

func validateFile(cmd *cobra.Command, app *App, path string) error {
	stdout := cmd.OutOrStdout()

	cfg, err := app.loadConfig(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, TitleStyle.Render("Run File Validation"))
	fmt.Fprintf(stdout, "Path: %s\n\n", path)

	file, err := cfgfile.ParseFile(path)
	if err != nil {
		fmt.Fprintf(stdout, "%s %s\n", errorIcon, formatErrorForDisplay(issue.RunFileError(path, err), cfg.UI.Verbose))
		return &ExitError{Code: ExitRunFailed}
	}

	loader := app.NewLoader(pluginDir(cfg, path))
	defer loader.Close()

	findings := checkFile(file, func(name string) bool {
		if dispatch.IsBuiltin(name) {
			return true
		}
		_, err := loader.Load(name)
		return err == nil
	})

	failed := false
	for _, f := range findings {
		icon := errorIcon
		if f.warning {
			icon = warningIcon
		} else {
			failed = true
		}
		where := CmdStyle.Render("[" + f.section + "]")
		if f.line > 0 {
			where += fmt.Sprintf(" line %d", f.line)
		}
		if f.code.Failed() {
			fmt.Fprintf(stdout, "%s %s: %s (%s)\n", icon, where, f.message, f.code)
		} else {
			fmt.Fprintf(stdout, "%s %s: %s\n", icon, where, f.message)
		}
	}

	if failed {
		fmt.Fprintf(stdout, "\n%s %s\n", errorIcon, ErrorStyle.Render("validation failed"))
		return &ExitError{Code: ExitRunFailed}
	}
	fmt.Fprintf(stdout, "%s %d section(s) valid\n", successIcon, file.Len())
	return nil
}

// checkFile collects findings for file. resolvable reports whether a module
// can be loaded.
func checkFile(file *cfgfile.Config, resolvable func(string) bool) []finding {
	var findings []finding

	if code := dispatch.ValidateMeta(file); code.Failed() {
		findings = append(findings, finding{section: cfgfile.MetaSection, message: "invalid Meta section", code: code})
	}

	checked := make(map[string]bool)
	for _, name := range file.Names() {
		if name == cfgfile.MetaSection {
			continue
		}
		moduleName, ok := dispatch.ModuleName(name)
		if !ok {
			findings = append(findings, finding{section: name, message: "section name does not name a module", code: status.InvalidSectionName})
			continue
		}
		if _, seen := checked[moduleName]; !seen {
			checked[moduleName] = resolvable(moduleName)
		}
		if !checked[moduleName] {
			findings = append(findings, finding{
				section: name,
				message: fmt.Sprintf("module %s is not built in and was not found in the plugin directory", moduleName),
				warning: true,
			})
		}
		if moduleName != module.General {
			continue
		}

		section, _ := file.Section(name)
		for _, e := range section.Entries {
			if e.Command != dispatch.CmdLaunchSections {
				continue
			}
			for _, target := range strings.Split(e.Args, ",") {
				target = strings.TrimSpace(target)
				if target == "" {
					continue
				}
				if _, ok := file.Section(target); !ok {
					findings = append(findings, finding{
						section: name,
						line:    e.Line,
						message: fmt.Sprintf("launches missing section %q", target),
						code:    status.SectionNotFound,
					})
				}
			}
		}
	}

	return findings
}
