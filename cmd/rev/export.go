// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/revkit/rev/internal/backend"
	"github.com/revkit/rev/internal/config"
	"github.com/revkit/rev/internal/export"
	"github.com/revkit/rev/internal/ledger"
)

type (
	exportFlagValues struct {
		extras   []string
		dests    []string
		jsonOut  bool
		watch    bool
		noWebApp bool
	}

	// exportPlan is everything an export run needs, resolved once so that
	// watch mode never prompts again.
	exportPlan struct {
		exporter *export.Exporter
		req      export.Request
		roots    []string
	}
)

func newExportCommand(app *App, flags *rootFlagValues) *cobra.Command {
	ef := &exportFlagValues{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Build the add-in and install it into Revit",
		Long: `Build the project and install it into the Revit add-ins folder.

The primary DLL and any extra artifacts are copied to {root}/{Name}/ and the
manifest to {root}/{Name}.addin. The default root is the add-ins folder of
your target version. A manifest that is missing or still holds template
placeholders is regenerated after asking for its details.

Errors and warnings are collected and printed at the end; the command fails
when any error was recorded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.newSession(cmd, flags)
			if err != nil {
				return err
			}
			plan, err := s.planExport(cmd.Context(), ef)
			if err != nil {
				return err
			}
			if ef.watch {
				return s.watchExport(cmd.Context(), plan, ef)
			}

			l := plan.run(cmd.Context())
			if err := printLedger(app.stdout, l, ef.jsonOut); err != nil {
				return err
			}
			if l.HasErrors() {
				return silentFailure()
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&ef.extras, "extra", nil, "extra artifact to copy (repeatable, .dll optional)")
	cmd.Flags().StringArrayVar(&ef.dests, "dest", nil, "destination root (repeatable, default is the Revit add-ins folder)")
	cmd.Flags().BoolVar(&ef.jsonOut, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&ef.watch, "watch", false, "export again whenever sources change")
	cmd.Flags().BoolVar(&ef.noWebApp, "no-web-app", false, "skip the web app step")
	return cmd
}

func (s *session) planExport(ctx context.Context, ef *exportFlagValues) (*exportPlan, error) {
	roots, err := s.destinationRoots(ctx, ef.dests)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings()
	if err != nil {
		return nil, err
	}
	chain, err := backend.NewChainFromSettings(settings)
	if err != nil {
		return nil, err
	}

	e := &export.Exporter{
		Builder:     chain,
		Manifests:   s.certifier(),
		CopyWorkers: s.cfg.Export.CopyWorkers,
		Logger:      s.logger,
	}
	webApp := s.cfg.Export.WebApp && !ef.noWebApp
	if webApp {
		e.WebBuilder = settings.Yarn()
	}

	return &exportPlan{
		exporter: e,
		roots:    roots,
		req: export.Request{
			StartDir:        s.dir,
			MaxDepth:        s.searchDepth(),
			ExtraArtifacts:  slices.Concat(s.cfg.Export.ExtraArtifacts, ef.extras),
			DestinationRoot: roots[0],
			WebApp:          webApp,
		},
	}, nil
}

// destinationRoots returns the --dest values, the configured root, or the
// add-ins folder of the target version, in that order of preference.
func (s *session) destinationRoots(ctx context.Context, dests []string) ([]string, error) {
	if len(dests) > 0 {
		return dests, nil
	}
	if s.cfg.Export.DestinationRoot != "" {
		return []string{s.cfg.Export.DestinationRoot}, nil
	}
	v, err := s.targetVersion(ctx)
	if err != nil {
		return nil, err
	}
	root, err := config.AddinsRoot(v)
	if err != nil {
		return nil, err
	}
	return []string{root}, nil
}

func (p *exportPlan) run(ctx context.Context) *ledger.Ledger {
	if len(p.roots) == 1 {
		return p.exporter.Export(ctx, p.req)
	}
	return p.exporter.ExportMultiple(ctx, p.req, p.roots)
}

// printLedger writes every error, then every warning, in recorded order.
func printLedger(w io.Writer, l *ledger.Ledger, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(l)
	}

	for _, msg := range l.Errors() {
		fmt.Fprintln(w, ErrorStyle.Render("Error: ")+msg)
	}
	for _, msg := range l.Warnings() {
		fmt.Fprintln(w, WarningStyle.Render("Warning: ")+msg)
	}
	if !l.HasErrors() {
		fmt.Fprintln(w, SuccessStyle.Render("✓ Export complete"))
	}
	return nil
}
