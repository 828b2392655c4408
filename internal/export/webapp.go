// SPDX-License-Identifier: MPL-2.0

package export

import (
	"context"
	"os"
	"path/filepath"

	"github.com/revkit/rev/internal/backend"
	"github.com/revkit/rev/internal/ledger"
	"github.com/revkit/rev/internal/locate"
	"github.com/revkit/rev/internal/project"
)

const (
	nodeModulesDir = "node_modules"
	webOutDir      = "out"
	webDestDir     = "web"
)

// exportWebApp builds the web front end that sits next to node_modules
// below the project and copies its static output into {addinDir}/web.
// Problems here are recorded but do not undo the add-in export.
func (e *Exporter) exportWebApp(ctx context.Context, l *ledger.Ledger, desc project.Descriptor, addinDir string) {
	modules, ok := locate.Descending(desc.Dir, nodeModulesDir, project.DefaultSearchDepth)
	if !ok {
		e.logger().Debug("no web app found", "dir", desc.Dir)
		return
	}
	appDir := filepath.Dir(modules)

	out := e.WebBuilder.Build(ctx, appDir)
	switch out.Kind {
	case backend.KindSuccess:
	case backend.KindToolNotFound:
		l.AddError("Yarn is not installed on this system")
		return
	default:
		l.AddErrorf("Failed to run yarn build: %s", out.Message)
		return
	}

	static := filepath.Join(appDir, webOutDir)
	if info, err := os.Stat(static); err != nil || !info.IsDir() {
		l.AddWarningf("Web app was exported, and expected to find static files at %s, but they were not found", static)
		return
	}
	dest := filepath.Join(addinDir, webDestDir)
	if err := copyTree(static, dest); err != nil {
		l.AddErrorf("could not copy web app to %s: %v", dest, err)
		return
	}
	l.AddWarningf("copied web app to %s", dest)
}
