// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/revkit/rev/internal/prefs"
)

func newTargetVersionCommand(app *App, flags *rootFlagValues) *cobra.Command {
	tvCmd := &cobra.Command{
		Use:   "target-version",
		Short: "Show the Revit version add-ins are exported for",
		Long: `Show the Revit version (year) add-ins are exported for. The version
selects the default add-ins folder. When none is stored you are asked for one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.newSession(cmd, flags)
			if err != nil {
				return err
			}
			v, err := s.targetVersion(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "Current Revit version: %s. Use 'rev target-version set' to select a different one.\n",
				CmdStyle.Render(v.String()))
			return nil
		},
	}

	tvCmd.AddCommand(&cobra.Command{
		Use:   "set [YEAR]",
		Short: "Change the target Revit version",
		Long: fmt.Sprintf(`Change the target Revit version. Valid versions are %s through %s.
Without an argument you are asked to pick one.`, oldestVersion(), newestVersion()),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd, flags)
			if err != nil {
				return err
			}

			var v prefs.TargetVersion
			if len(args) == 1 {
				v = prefs.TargetVersion(args[0])
			} else if v, err = s.prompter.SelectTargetVersion(cmd.Context(), s.prefs.TargetVersion); err != nil {
				return err
			}
			if err := s.saveTargetVersion(v); err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "%s Target version set to %s\n", SuccessStyle.Render("✓"), v)
			return nil
		},
	})
	return tvCmd
}

func newestVersion() prefs.TargetVersion {
	return prefs.SupportedTargetVersions()[0]
}

func oldestVersion() prefs.TargetVersion {
	all := prefs.SupportedTargetVersions()
	return all[len(all)-1]
}
