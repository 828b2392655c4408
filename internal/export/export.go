// SPDX-License-Identifier: MPL-2.0

// Package export builds an add-in and installs it into a Revit add-ins folder.
//
// An export never fails with a Go error. Every problem is recorded in the
// returned ledger as an error or a warning, and only a few conditions stop
// the run early: no project, no primary artifact, no manifest, and a
// destination that cannot be created.
package export

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/revkit/rev/internal/backend"
	"github.com/revkit/rev/internal/ledger"
	"github.com/revkit/rev/internal/project"
)

// DefaultCopyWorkers bounds concurrent artifact copies.
const DefaultCopyWorkers = 4

type (
	// Builder runs a build for a project file. *backend.Chain and every
	// backend.Adapter satisfy it.
	Builder interface {
		Build(ctx context.Context, projectPath string) backend.Outcome
	}

	// ManifestEnsurer returns the path of a customized manifest for desc,
	// generating one when needed.
	ManifestEnsurer interface {
		Ensure(ctx context.Context, desc project.Descriptor) (string, error)
	}

	// Request describes one export.
	Request struct {
		// StartDir is searched for the project file.
		StartDir string
		// MaxDepth bounds the project search. Zero or less uses the default.
		MaxDepth int
		// ExtraArtifacts are copied next to the primary artifact when found.
		ExtraArtifacts []string
		// DestinationRoot receives {Name}/ and {Name}.addin.
		DestinationRoot string
		// WebApp enables the yarn web app step.
		WebApp bool
	}

	// Exporter runs exports. Builder and Manifests are required.
	Exporter struct {
		Builder   Builder
		Manifests ManifestEnsurer
		// WebBuilder runs the web app build, usually the yarn adapter.
		// Nil disables the web app step.
		WebBuilder  Builder
		CopyWorkers int
		Logger      *slog.Logger
	}

	// artifact is one planned copy. Path is empty while the file is missing.
	artifact struct {
		File    string
		Path    string
		Primary bool
	}

	// job is a resolved project with its certified manifest, shared by every
	// destination of one export.
	job struct {
		desc      project.Descriptor
		artifacts []*artifact
		manifest  string
	}
)

// Export builds the project found from req.StartDir and installs it under
// req.DestinationRoot.
func (e *Exporter) Export(ctx context.Context, req Request) *ledger.Ledger {
	l := ledger.New()
	j, ok := e.prepare(ctx, l, req)
	if !ok {
		return l
	}
	if cancelled(ctx, l) {
		return l
	}
	if out := e.Builder.Build(ctx, j.desc.Path()); out.OK() {
		e.logger().Info("build succeeded", "backend", out.Backend)
	} else {
		l.AddError(out.Message)
	}
	j.locateExtras(l)
	e.install(ctx, l, j, req, req.DestinationRoot)
	return l
}

// ExportMultiple builds once and installs into every root in order. A
// failed build returns a ledger holding only that failure.
func (e *Exporter) ExportMultiple(ctx context.Context, req Request, roots []string) *ledger.Ledger {
	l := ledger.New()
	j, ok := e.prepare(ctx, l, req)
	if !ok {
		return l
	}
	if cancelled(ctx, l) {
		return l
	}
	if out := e.Builder.Build(ctx, j.desc.Path()); !out.OK() {
		return ledger.NewWithError(out.Message)
	}
	j.locateExtras(l)

	for _, root := range roots {
		if cancelled(ctx, l) {
			break
		}
		dest := ledger.New()
		e.install(ctx, dest, j, req, root)
		l.Extend(dest)
	}
	return l
}

// prepare resolves the project, plans its artifacts and certifies the
// manifest. A missing primary artifact ends the export before anything is
// prompted for or built.
func (e *Exporter) prepare(ctx context.Context, l *ledger.Ledger, req Request) (*job, bool) {
	if cancelled(ctx, l) {
		return nil, false
	}
	desc, err := project.Resolve(req.StartDir, req.depth())
	if err != nil {
		l.AddErrorf("could not resolve project: %v", err)
		return nil, false
	}
	e.logger().Debug("resolved project", "project", desc.Path())

	j := &job{desc: desc, artifacts: plan(desc, req.ExtraArtifacts)}
	if primary := j.artifacts[0]; primary.Path == "" {
		l.AddError((&project.ArtifactNotFoundError{File: primary.File, Dir: desc.Dir}).Error())
		return nil, false
	}

	if cancelled(ctx, l) {
		return nil, false
	}
	j.manifest, err = e.Manifests.Ensure(ctx, desc)
	if err != nil {
		l.AddErrorf("could not prepare manifest: %v", err)
		return nil, false
	}
	return j, true
}

// install copies the planned artifacts, the manifest and the optional web
// app into root.
func (e *Exporter) install(ctx context.Context, l *ledger.Ledger, j *job, req Request, root string) {
	if cancelled(ctx, l) {
		return
	}
	addinDir := filepath.Join(root, j.desc.Name)
	if err := mkdirAll(addinDir); err != nil {
		l.AddErrorf("could not create %s: %v", addinDir, err)
		return
	}

	e.copyArtifacts(ctx, l, j.artifacts, addinDir)
	if cancelled(ctx, l) {
		return
	}

	target := filepath.Join(root, j.desc.Name+project.ManifestExt)
	if err := copyFile(j.manifest, target); err != nil {
		l.AddErrorf("could not copy %s: %v", filepath.Base(j.manifest), err)
	} else {
		l.AddWarningf("copied %s to %s", filepath.Base(j.manifest), root)
	}

	if req.WebApp && e.WebBuilder != nil {
		e.exportWebApp(ctx, l, j.desc, addinDir)
	}
}

// plan lists the primary artifact first, then the extras, dropping names
// that resolve to the same file. File names compare case-insensitively.
func plan(desc project.Descriptor, extras []string) []*artifact {
	seen := map[string]bool{}
	var out []*artifact
	add := func(name string, primary bool) {
		file := project.ArtifactFile(name)
		key := strings.ToLower(file)
		if seen[key] {
			return
		}
		seen[key] = true
		a := &artifact{File: file, Primary: primary}
		a.Path, _ = desc.ArtifactPath(file, true)
		out = append(out, a)
	}
	add(desc.Name, true)
	for _, name := range extras {
		add(name, false)
	}
	return out
}

// locateExtras searches again for extras that were missing before the
// build and records a warning for each one still absent.
func (j *job) locateExtras(l *ledger.Ledger) {
	for _, a := range j.artifacts {
		if a.Path != "" || a.Primary {
			continue
		}
		if a.Path, _ = j.desc.ArtifactPath(a.File, true); a.Path == "" {
			l.AddWarningf("could not find %s for %s", a.File, j.desc.Name)
		}
	}
}

func (e *Exporter) copyArtifacts(ctx context.Context, l *ledger.Ledger, planned []*artifact, dir string) {
	workers := e.CopyWorkers
	if workers < 1 {
		workers = DefaultCopyWorkers
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for _, a := range planned {
		if a.Path == "" {
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if err := copyFile(a.Path, filepath.Join(dir, a.File)); err != nil {
				l.AddErrorf("could not copy %s: %v", a.File, err)
				return nil
			}
			l.AddWarningf("copied %s to %s", a.File, dir)
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Exporter) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

func (r Request) depth() int {
	if r.MaxDepth <= 0 {
		return project.DefaultSearchDepth
	}
	return r.MaxDepth
}

// cancelled records the cancellation cause and reports whether ctx is done.
func cancelled(ctx context.Context, l *ledger.Ledger) bool {
	if ctx.Err() == nil {
		return false
	}
	l.AddErrorf("export cancelled: %v", context.Cause(ctx))
	return true
}
