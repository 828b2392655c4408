// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/revkit/rev/internal/backend"
	"github.com/revkit/rev/internal/issue"
)

func newBuildCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Build the add-in project",
		Long: `Build the project found below the starting directory.

Backends are tried in the order of build.backends (msbuild, then dotnet by
default). The first success wins; when every backend fails, the failure of
the last one is reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.newSession(cmd, flags)
			if err != nil {
				return err
			}
			desc, err := s.resolveProject()
			if err != nil {
				return err
			}
			chain, err := s.chain()
			if err != nil {
				return err
			}

			out := chain.Build(cmd.Context(), desc.Path())
			if !out.OK() {
				fmt.Fprintln(app.stdout, ErrorStyle.Render("Build Error: ")+out.Message)
				if out.Kind == backend.KindToolNotFound {
					s.renderIssue(issue.NoBuildToolId)
				}
				return silentFailure()
			}
			s.logger.Debug("build output", "backend", out.Backend, "output", out.Output)
			fmt.Fprintln(app.stdout, SuccessStyle.Render("Project successfully built"))
			return nil
		},
	}
}
