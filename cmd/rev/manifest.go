// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/revkit/rev/internal/issue"
	"github.com/revkit/rev/internal/manifest"
)

func newManifestCommand(app *App, flags *rootFlagValues) *cobra.Command {
	manifestCmd := &cobra.Command{
		Use:   "manifest",
		Short: "Inspect or create the .addin manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var jsonOut bool
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the project's manifest fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.newSession(cmd, flags)
			if err != nil {
				return err
			}
			desc, err := s.resolveProject()
			if err != nil {
				return err
			}

			path := desc.ManifestPath()
			info, err := manifest.Parse(path)
			if err != nil {
				ctx := issue.NewErrorContext().
					WithOperation("read manifest").
					WithIssue(issue.ManifestFailedId).
					WithResource(path)
				if errors.Is(err, manifest.ErrManifestNotFound) {
					ctx = ctx.WithSuggestion("Run 'rev manifest init' to create one")
				}
				return ctx.Wrap(err).BuildError()
			}

			if jsonOut {
				enc := json.NewEncoder(app.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			fmt.Fprintln(app.stdout, TitleStyle.Render(path))
			for _, f := range info.Fields() {
				fmt.Fprintf(app.stdout, "%s %s\n", CmdStyle.Render(fmt.Sprintf("%-18s", f[0]+":")), f[1])
			}
			if manifest.HasPlaceholder([]byte(info.String())) {
				fmt.Fprintln(app.stdout, WarningStyle.Render("Warning: ")+"manifest still holds template placeholders")
			}
			return nil
		},
	}
	showCmd.Flags().BoolVar(&jsonOut, "json", false, "print the fields as JSON")

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate the manifest when it is missing or still a template",
		Long: `Generate {Name}.addin next to the project file when it is missing or
still holds template placeholders. A customized manifest is left untouched.
Every generated manifest gets a fresh AddInId.`,
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
			path, err := s.certifier().Ensure(cmd.Context(), desc)
			if err != nil {
				return issue.NewErrorContext().
					WithOperation("prepare manifest").
					WithIssue(issue.ManifestFailedId).
					WithResource(desc.ManifestPath()).
					Wrap(err).
					BuildError()
			}
			fmt.Fprintf(app.stdout, "%s Manifest ready at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	}

	manifestCmd.AddCommand(showCmd, initCmd)
	return manifestCmd
}
