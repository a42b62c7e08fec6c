// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"

	"github.com/confrun/confrun/pkg/status"
)

const (
	FileNotFoundId Id = iota + 1
	ConfigParseErrorId
	MetaSectionInvalidId
	SectionNotFoundId
	CyclicSectionId
	PluginNotFoundId
	CommandNotFoundId
	ChildProcessFailedId
	PlatformUnsupportedId
	FileSystemOperationFailedId
	RegistryOperationFailedId
	AppConfigLoadFailedId
	InterruptedId
	RunFailedId
)

const docBase = "https://github.com/confrun/confrun/blob/main/docs/"

type (
	Id int

	MarkdownMsg string

	HttpLink string

	// Issue is a catalog entry describing a class of failure and what to try next.
	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue markdown with glamour. An empty stylePath uses
// glamour's "notty" style.
func (i *Issue) Render(stylePath string) (string, error) {
	if stylePath == "" {
		stylePath = "notty"
	}
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
		for _, link := range i.extLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	fileNotFoundIssue = &Issue{
		id: FileNotFoundId,
		mdMsg: `
# Configuration file could not be read!

The run file passed to confrun does not exist or is not readable.

## Things you can try:
- Check the path you passed to ` + "`confrun run`" + `
- Make sure the file is readable by the current user`,
		docLinks: []HttpLink{docBase + "run-file.md"},
	}

	configParseErrorIssue = &Issue{
		id: ConfigParseErrorId,
		mdMsg: `
# The run file has a syntax error!

Nothing was executed. A run file is made of section headers and command lines:

~~~ini
[Meta]
Version=1

[Default]
LaunchSections=FileSystem.Build

[FileSystem.Build]
MakeDir=build
~~~

## Things you can try:
- Make sure every command line comes after a section header
- Make sure no section name is declared twice
- Make sure every command line has the form ` + "`Command=value`" + `
- Validate the file without running it:
~~~
$ confrun validate <file>
~~~`,
		docLinks: []HttpLink{docBase + "run-file.md"},
	}

	metaSectionInvalidIssue = &Issue{
		id: MetaSectionInvalidId,
		mdMsg: `
# The Meta section is missing or unsupported!

Every run file needs a ` + "`[Meta]`" + ` section declaring a supported ` + "`Version`" + `.

## Things you can try:
- Add the section at the top of the file:
~~~ini
[Meta]
Version=1
~~~`,
		docLinks: []HttpLink{docBase + "run-file.md"},
	}

	sectionNotFoundIssue = &Issue{
		id: SectionNotFoundId,
		mdMsg: `
# Section not found!

A section named on the command line, in ` + "`LaunchSections`" + `, or through an
escalation does not exist or has an invalid name.

## Things you can try:
- List the sections of the file:
~~~
$ confrun sections <file>
~~~
- Section names have the form ` + "`Module`" + ` or ` + "`Module.Suffix`" + `; the ` + "`X.`" + ` prefix is reserved`,
	}

	cyclicSectionIssue = &Issue{
		id: CyclicSectionId,
		mdMsg: `
# Sections launch each other in a cycle!

A section was launched while it was still running. Running the same section
again after it completed is allowed; nesting it inside itself is not.

## Things you can try:
- Follow the ` + "`LaunchSections`" + ` entries and remove the one that closes the loop`,
	}

	pluginNotFoundIssue = &Issue{
		id: PluginNotFoundId,
		mdMsg: `
# Module not found!

A section names a module that is neither built in nor present in the plugin directory.

## Things you can try:
- Check the spelling of the section name
- Place ` + "`<Module>.so`" + `, ` + "`<Module>.lua`" + ` or ` + "`<Module>.sh`" + ` in the plugin directory
- Point ` + "`plugin_dir`" + ` in your confrun config at the right directory`,
		docLinks: []HttpLink{docBase + "plugins.md"},
	}

	commandNotFoundIssue = &Issue{
		id: CommandNotFoundId,
		mdMsg: `
# Command not recognized!

No module, including General, recognized a command, or its arguments were invalid.

## Things you can try:
- Check the command name against the module documentation
- Run with ` + "`--log-level debug`" + ` to see which module handled the command`,
	}

	childProcessFailedIssue = &Issue{
		id: ChildProcessFailedId,
		mdMsg: `
# An external program failed!

A launched program or script exited with a non-zero code, or the script type is unknown.

## Things you can try:
- Check the log for the program output
- Run the program by hand from the same working directory`,
	}

	platformUnsupportedIssue = &Issue{
		id: PlatformUnsupportedId,
		mdMsg: `
# Operation not supported on this platform!

Registry operations and INF installation are only available on Windows.

## Things you can try:
- Move platform specific sections into a file that is only run on Windows`,
	}

	fileSystemOperationFailedIssue = &Issue{
		id: FileSystemOperationFailedId,
		mdMsg: `
# A file system operation failed!

## Things you can try:
- Check the arguments of the FileSystem command (paths are relative to the working directory)
- Use the merge flag when copying or moving into a non-empty directory`,
	}

	registryOperationFailedIssue = &Issue{
		id: RegistryOperationFailedId,
		mdMsg: `
# A registry operation failed!

## Things you can try:
- Keys start with a hive: HKCU, HKLM, HKCR, HKU, HKCC or HKPD
- Value types are DWORD, QWORD and SZ`,
	}

	appConfigLoadFailedIssue = &Issue{
		id: AppConfigLoadFailedId,
		mdMsg: `
# Failed to load the confrun configuration!

## Things you can try:
- Check the CUE syntax of your config file
- Show the configuration confrun would use:
~~~
$ confrun config show
~~~
- Write a fresh default file:
~~~
$ confrun config init
~~~`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	interruptedIssue = &Issue{
		id: InterruptedId,
		mdMsg: `
# The run was interrupted!

The remaining commands were not executed. The working directory may hold partial results.`,
	}

	runFailedIssue = &Issue{
		id: RunFailedId,
		mdMsg: `
# The run failed!

A module reported a failure without a more specific code.

## Things you can try:
- Check the log for the failing command`,
	}

	issues = map[Id]*Issue{
		fileNotFoundIssue.Id():              fileNotFoundIssue,
		configParseErrorIssue.Id():          configParseErrorIssue,
		metaSectionInvalidIssue.Id():        metaSectionInvalidIssue,
		sectionNotFoundIssue.Id():           sectionNotFoundIssue,
		cyclicSectionIssue.Id():             cyclicSectionIssue,
		pluginNotFoundIssue.Id():            pluginNotFoundIssue,
		commandNotFoundIssue.Id():           commandNotFoundIssue,
		childProcessFailedIssue.Id():        childProcessFailedIssue,
		platformUnsupportedIssue.Id():       platformUnsupportedIssue,
		fileSystemOperationFailedIssue.Id(): fileSystemOperationFailedIssue,
		registryOperationFailedIssue.Id():   registryOperationFailedIssue,
		appConfigLoadFailedIssue.Id():       appConfigLoadFailedIssue,
		interruptedIssue.Id():               interruptedIssue,
		runFailedIssue.Id():                 runFailedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}

// ForStatus picks the catalog entry for a failed code. It returns nil for success.
func ForStatus(code status.Code) *Issue {
	if code.Succeeded() {
		return nil
	}

	switch code {
	case status.ReadFailed:
		return fileNotFoundIssue
	case status.MetaSectionMissing, status.UnsupportedVersion:
		return metaSectionInvalidIssue
	case status.SectionNotFound, status.InvalidSectionName:
		return sectionNotFoundIssue
	case status.CyclicSection:
		return cyclicSectionIssue
	case status.Interrupted:
		return interruptedIssue
	case status.PluginNotFound:
		return pluginNotFoundIssue
	case status.PlatformUnsupported:
		return platformUnsupportedIssue
	case status.ChildProcessFailed, status.UnknownExtension:
		return childProcessFailedIssue
	}

	switch code.Facility() {
	case status.FacilityParse:
		return configParseErrorIssue
	case status.FacilityCommand:
		return commandNotFoundIssue
	case status.FacilityFileSystem:
		return fileSystemOperationFailedIssue
	case status.FacilityRegistry:
		return registryOperationFailedIssue
	default:
		return runFailedIssue
	}
}
