// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ProjectNotFoundId Id = iota + 1
	ArtifactNotFoundId
	NoBuildToolId
	BuildFailedId
	InvalidTargetVersionId
	ConfigLoadFailedId
	ManifestFailedId
	DestinationUnwritableId
	YarnNotFoundId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

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

// Markdown returns the message with a "See also" section for its links.
func (i *Issue) Markdown() string {
	var sb strings.Builder
	sb.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		sb.WriteString("\n\n## See also\n")
		for _, link := range append(i.DocLinks(), i.ExtLinks()...) {
			sb.WriteString("- <" + string(link) + ">\n")
		}
	}
	return sb.String()
}

// Render renders the issue for a terminal using a glamour style
// ("dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	return render(i.Markdown(), stylePath)
}

var (
	render = glamour.Render

	projectNotFoundIssue = &Issue{
		id: ProjectNotFoundId,
		mdMsg: `
# No C# project found!

rev looks for a ` + "`*.csproj`" + ` file in the starting directory and up to
` + "`search.max_depth`" + ` levels below it.

## Things you can try:
- Run rev from your add-in folder, or point it there:
~~~
$ rev -C path/to/MyAddin export
~~~

- Raise the search depth in your config file:
~~~cue
search: max_depth: 5
~~~`,
	}

	artifactNotFoundIssue = &Issue{
		id: ArtifactNotFoundId,
		mdMsg: `
# Built assembly not found

The project was found but its ` + "`.dll`" + ` could not be located under the project
directory after the build step.

## Things you can try:
- Check the build output above for compiler errors.
- Make sure the assembly name matches the project name.
- Build once from Visual Studio to confirm the output folder.`,
	}

	noBuildToolIssue = &Issue{
		id: NoBuildToolId,
		mdMsg: `
# No build tool available

None of the configured build backends could be started.

## Things you can try:
- Install the .NET SDK so that ` + "`dotnet`" + ` is on your PATH.
- Install Visual Studio 2022 (MSBuild), or point rev at it:
~~~cue
build: msbuild_path: "C:/Program Files/Microsoft Visual Studio/2022/Community/MSBuild/Current/Bin/MSBuild.exe"
~~~

- Check which backends rev can see:
~~~
$ rev backends
~~~`,
		extLinks: []HttpLink{"https://dotnet.microsoft.com/download"},
	}

	buildFailedIssue = &Issue{
		id: BuildFailedId,
		mdMsg: `
# Build failed

A build tool ran but reported an error. Only the last backend's message is shown.

## Things you can try:
- Re-run with ` + "`--verbose`" + ` to see every backend's diagnostic.
- Build the project in Visual Studio to inspect compiler errors.
- Prebuilt assemblies are still exported when present.`,
	}

	invalidTargetVersionIssue = &Issue{
		id: InvalidTargetVersionId,
		mdMsg: `
# Unsupported Revit version

Target versions are the Revit release years 2019 through 2025.

## Things you can try:
~~~
$ rev target-version set 2024
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Your configuration file has errors and could not be loaded.

## Common issues:
- Invalid CUE syntax
- Unknown configuration keys
- Invalid values for known keys

## Things you can try:
- Show where rev reads its configuration:
~~~
$ rev config path
~~~

- Reset to defaults:
~~~
$ rev config init --force
~~~

## Example valid config:
~~~cue
build: {
	backends: ["msbuild", "dotnet"]
	timeout: "10m"
}
export: copy_workers: 4
~~~`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	manifestFailedIssue = &Issue{
		id: ManifestFailedId,
		mdMsg: `
# Could not prepare the add-in manifest

rev regenerates ` + "`{Project}.addin`" + ` when it is missing or still contains template
placeholders, which requires answering a few prompts.

## Things you can try:
- Run the prompts directly:
~~~
$ rev manifest init
~~~

- Edit the manifest by hand and remove every placeholder value.`,
	}

	destinationUnwritableIssue = &Issue{
		id: DestinationUnwritableId,
		mdMsg: `
# Cannot write to the add-ins folder

The export destination could not be created.

## Things you can try:
- Close Revit, which may hold the add-in files open.
- Check permissions on the Revit add-ins folder.
- Export somewhere else:
~~~
$ rev export --dest ./dist
~~~`,
	}

	yarnNotFoundIssue = &Issue{
		id: YarnNotFoundId,
		mdMsg: `
# Yarn is not installed

The project contains a web app (a ` + "`node_modules`" + ` folder) but yarn could not be started.

## Things you can try:
~~~
$ npm install --global yarn
~~~

- Or disable the web app step:
~~~cue
export: web_app: false
~~~`,
		extLinks: []HttpLink{"https://yarnpkg.com/getting-started/install"},
	}

	issues = map[Id]*Issue{
		projectNotFoundIssue.Id():       projectNotFoundIssue,
		artifactNotFoundIssue.Id():      artifactNotFoundIssue,
		noBuildToolIssue.Id():           noBuildToolIssue,
		buildFailedIssue.Id():           buildFailedIssue,
		invalidTargetVersionIssue.Id():  invalidTargetVersionIssue,
		configLoadFailedIssue.Id():      configLoadFailedIssue,
		manifestFailedIssue.Id():        manifestFailedIssue,
		destinationUnwritableIssue.Id(): destinationUnwritableIssue,
		yarnNotFoundIssue.Id():          yarnNotFoundIssue,
	}
)

func Get(id Id) *Issue {
	return issues[id]
}

// Of returns the catalog entry linked to err, or nil.
func Of(err error) *Issue {
	var ae *ActionableError
	if errors.As(err, &ae) && ae.Issue != 0 {
		return Get(ae.Issue)
	}
	return nil
}
