// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/revkit/rev/internal/watch"
)

// watchExport exports once, then again after every batch of source
// changes until the context is cancelled (e.g., Ctrl+C).
func (s *session) watchExport(ctx context.Context, plan *exportPlan, ef *exportFlagValues) error {
	desc, err := s.resolveProject()
	if err != nil {
		return err
	}
	out := s.app.stdout

	runOnce := func(ctx context.Context) {
		if err := printLedger(out, plan.run(ctx), ef.jsonOut); err != nil {
			s.logger.Error("print export result", "error", err)
		}
	}

	w, err := watch.New(watch.Config{
		Dir:    desc.Dir,
		Logger: s.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(out, "%s Detected %d change(s). Exporting again...\n", CmdStyle.Render("→"), len(changed))
			runOnce(ctx)
			fmt.Fprintf(out, "\n%s Watching for changes...\n\n", CmdStyle.Render("→"))
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	fmt.Fprintf(out, "%s Watch mode: initial export of %s\n", CmdStyle.Render("→"), desc.Name)
	runOnce(ctx)
	fmt.Fprintf(out, "\n%s Watching %s for changes (Ctrl+C to stop)...\n\n", CmdStyle.Render("→"), w.Dir())
	return w.Run(ctx)
}
