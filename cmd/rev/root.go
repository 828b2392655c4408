// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/revkit/rev/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the rev command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	return newRootCommand(app, &rootFlagValues{})
}

func newRootCommand(app *App, flags *rootFlagValues) *cobra.Command {
	root := &cobra.Command{
		Use:   "rev",
		Short: "Build and install Revit add-ins",
		Long: TitleStyle.Render("rev") + SubtitleStyle.Render(" - Build and install Revit add-ins") + `

rev finds the C# add-in project below the current directory, builds it with
MSBuild or the dotnet CLI, makes sure its .addin manifest is filled in, and
copies everything into the Revit add-ins folder for your target version.

` + SubtitleStyle.Render("Examples:") + `
  rev build                   Build the project
  rev export                  Build and install into the add-ins folder
  rev export --dest ./out     Install somewhere else
  rev export --watch          Re-export whenever sources change
  rev target-version set 2024 Target Revit 2024`,
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is <config dir>/rev/config.cue)")
	root.PersistentFlags().StringVarP(&flags.dir, "dir", "C", ".", "directory to start the project search from")

	root.AddCommand(
		newBuildCommand(app, flags),
		newExportCommand(app, flags),
		newLocateCommand(app, flags),
		newManifestCommand(app, flags),
		newTargetVersionCommand(app, flags),
		newBackendsCommand(app, flags),
		newConfigCommand(app, flags),
	)
	return root
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs rev with the process arguments and exits with its status.
// This is called by main.main().
func Execute() {
	os.Exit(Run(context.Background(), os.Args[1:], Dependencies{}))
}

// Run executes the command tree with args and returns the exit code.
func Run(ctx context.Context, args []string, deps Dependencies) int {
	app := NewApp(deps)
	flags := &rootFlagValues{}
	root := newRootCommand(app, flags)
	root.SetArgs(args)
	root.SetIn(app.stdin)
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)

	if err := fang.Execute(
		ctx,
		root,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(errorHandler(flags)),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		return 1
	}
	return 0
}

// errorHandler prints actionable errors with their suggestions and catalog
// entry, and stays quiet for failures a handler already reported.
func errorHandler(flags *rootFlagValues) fang.ErrorHandler {
	return func(w io.Writer, styles fang.Styles, err error) {
		var exitErr *ExitError
		if errors.As(err, &exitErr) && exitErr.Err == nil {
			return
		}

		var ae *issue.ActionableError
		if !errors.As(err, &ae) {
			fang.DefaultErrorHandler(w, styles, err)
			return
		}
		fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, flags.verbose))
		if i := issue.Of(err); i != nil {
			if rendered, rerr := i.Render(glamourStyle(w)); rerr == nil {
				fmt.Fprint(w, rendered)
			}
		}
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
