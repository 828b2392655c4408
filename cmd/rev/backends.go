// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/revkit/rev/internal/backend"
)

func newBackendsCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "Show which build tools are installed",
		Long: `Probe every configured build backend, plus yarn for web apps, and print
whether it is available, its version and the executable that answered.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.newSession(cmd, flags)
			if err != nil {
				return err
			}
			settings, err := s.settings()
			if err != nil {
				return err
			}
			adapters, err := backend.Adapters(settings)
			if err != nil {
				return err
			}
			adapters = append(adapters, settings.Yarn())

			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(SubtitleStyle).
				Headers("BACKEND", "STATUS", "VERSION", "PATH")
			for _, r := range backend.ProbeAll(cmd.Context(), adapters) {
				status := ErrorStyle.Render("missing")
				if r.Available {
					status = SuccessStyle.Render("available")
				}
				version := "-"
				if r.Version != nil {
					version = r.Version.String()
				}
				path := r.Path
				if path == "" {
					path = "-"
				}
				t.Row(r.Backend, status, version, path)
			}
			fmt.Fprintln(app.stdout, t.String())
			return nil
		},
	}
}
