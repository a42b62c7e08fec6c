// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/confrun/confrun/internal/dispatch"
	"github.com/confrun/confrun/internal/issue"
	"github.com/confrun/confrun/pkg/cfgfile"
)

func newSectionsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sections <file>",
		Short: "List the sections of a run file and their modules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listSections(cmd, app, args[0])
		},
	}
}

func listSections(cmd *cobra.Command, app *App, path string) error {
	stdout := cmd.OutOrStdout()

	file, err := cfgfile.ParseFile(path)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", errorIcon, formatErrorForDisplay(issue.RunFileError(path, err), app.flags.verbose))
		return &ExitError{Code: ExitRunFailed}
	}

	fmt.Fprintln(stdout, TitleStyle.Render("Sections"))
	for _, name := range file.Names() {
		section, _ := file.Section(name)
		var owner string
		switch moduleName, ok := dispatch.ModuleName(name); {
		case name == cfgfile.MetaSection:
			owner = SubtitleStyle.Render("(metadata)")
		case !ok:
			owner = ErrorStyle.Render("(invalid name)")
		case dispatch.IsBuiltin(moduleName):
			owner = moduleName
		default:
			owner = moduleName + " " + SubtitleStyle.Render("(plugin)")
		}
		fmt.Fprintf(stdout, "  %s  %s  %s\n",
			CmdStyle.Render(name), owner, SubtitleStyle.Render(fmt.Sprintf("%d command(s)", section.Len())))
	}
	return nil
}
