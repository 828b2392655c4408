// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/revkit/rev/internal/issue"
)

func newLocateCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var (
		relative bool
		name     string
		noBuild  bool
	)

	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Print the path of the built add-in",
		Long: `Build the project, then print the path of its primary artifact
({Name}.dll), or of the artifact given with --name.

A failed build is reported but does not stop the search, so a previously
built artifact is still found.`,
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

			if !noBuild {
				chain, err := s.chain()
				if err != nil {
					return err
				}
				if out := chain.Build(cmd.Context(), desc.Path()); !out.OK() {
					fmt.Fprintln(app.stderr, WarningStyle.Render("Could not build project: ")+out.Message)
				}
			}

			target := name
			if target == "" {
				target = desc.Name
			}
			path, err := desc.ArtifactPath(target, !relative)
			if err != nil {
				return issue.NewErrorContext().
					WithOperation("locate artifact").
					WithIssue(issue.ArtifactNotFoundId).
					WithResource(desc.Dir).
					WithSuggestion("Build the project with 'rev build' and check the output").
					Wrap(err).
					BuildError()
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&relative, "relative", false, "print the path relative to the project directory")
	cmd.Flags().StringVar(&name, "name", "", "artifact to locate instead of the project's own DLL")
	cmd.Flags().BoolVar(&noBuild, "no-build", false, "skip the build and only search")
	return cmd
}
