// SPDX-License-Identifier: MPL-2.0

package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultBuildTimeout bounds a single build invocation.
	DefaultBuildTimeout = 10 * time.Minute
	// DefaultProbeTimeout bounds a version probe.
	DefaultProbeTimeout = 10 * time.Second

	// waitDelay is how long Wait keeps I/O pipes open after the process is
	// killed on cancellation.
	waitDelay = 2 * time.Second
)

type (
	// Adapter wraps one build toolchain behind a uniform contract.
	Adapter interface {
		// Name identifies the toolchain in diagnostics.
		Name() string
		// Available probes the toolchain with a lightweight version invocation.
		Available(ctx context.Context) bool
		// Build runs the toolchain against projectPath.
		Build(ctx context.Context, projectPath string) Outcome
	}

	// Option configures an ExecAdapter.
	Option func(*ExecAdapter)

	// ExecAdapter runs an external executable. The executable is resolved
	// through PATH; fallback paths are absolute locations tried when it
	// cannot be launched, and are skipped when they do not exist.
	ExecAdapter struct {
		name          string
		executable    string
		fallbacks     []string
		fallbackFirst bool
		buildArgs     func(projectPath string) []string
		buildDir      func(projectPath string) string
		versionArgs   []string
		timeout       time.Duration
		probeTimeout  time.Duration
		env           []string
		logger        *slog.Logger
	}

	// run is the captured result of one process invocation.
	run struct {
		stdout   string
		stderr   string
		launched bool
		err      error
	}
)

// WithTimeout bounds each build invocation. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(a *ExecAdapter) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithProbeTimeout bounds each version probe. Non-positive values keep the default.
func WithProbeTimeout(d time.Duration) Option {
	return func(a *ExecAdapter) {
		if d > 0 {
			a.probeTimeout = d
		}
	}
}

// WithExecutable replaces the executable looked up on PATH.
func WithExecutable(exe string) Option {
	return func(a *ExecAdapter) {
		if exe != "" {
			a.executable = exe
		}
	}
}

// WithFallbackPaths replaces the well-known installation paths. Empty
// entries are ignored.
func WithFallbackPaths(paths ...string) Option {
	return func(a *ExecAdapter) {
		a.fallbacks = nil
		for _, p := range paths {
			if p != "" {
				a.fallbacks = append(a.fallbacks, p)
			}
		}
	}
}

// WithEnv appends KEY=VALUE entries to the inherited process environment.
func WithEnv(env ...string) Option {
	return func(a *ExecAdapter) {
		a.env = append(a.env, env...)
	}
}

// WithLogger sets the logger used for fallback diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(a *ExecAdapter) {
		if l != nil {
			a.logger = l
		}
	}
}

func newExecAdapter(name, executable string, opts ...Option) *ExecAdapter {
	a := &ExecAdapter{
		name:         name,
		executable:   executable,
		buildArgs:    func(p string) []string { return []string{p} },
		versionArgs:  []string{"--version"},
		timeout:      DefaultBuildTimeout,
		probeTimeout: DefaultProbeTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the adapter name.
func (a *ExecAdapter) Name() string { return a.name }

// Available reports whether any candidate executable answers the version probe.
func (a *ExecAdapter) Available(ctx context.Context) bool {
	return a.Probe(ctx).Available
}

// Build runs the toolchain against projectPath, capturing stdout and stderr.
func (a *ExecAdapter) Build(ctx context.Context, projectPath string) Outcome {
	if err := ctx.Err(); err != nil {
		return ToolReportedError(a.name, fmt.Sprintf("%s not started: %v", a.name, err))
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	dir := ""
	if a.buildDir != nil {
		dir = a.buildDir(projectPath)
	}
	args := a.buildArgs(projectPath)

	for i, exe := range a.candidates() {
		if i > 0 {
			a.logger.Debug("trying fallback installation", "backend", a.name, "path", exe)
		}
		r := a.exec(ctx, dir, exe, args)
		if !r.launched {
			a.logger.Debug("could not launch build tool", "backend", a.name, "path", exe, "error", r.err)
			if filepath.IsAbs(exe) && fileExists(exe) {
				return ToolReportedError(a.name, fmt.Sprintf("failed to run %s from %s: %v", a.name, exe, r.err))
			}
			continue
		}
		return a.classify(ctx, r)
	}
	return ToolNotFound(a.name, fmt.Sprintf("%s could not be launched", a.name))
}

// classify maps a launched run to an Outcome.
func (a *ExecAdapter) classify(ctx context.Context, r run) Outcome {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return ToolReportedError(a.name, fmt.Sprintf("%s timed out after %s", a.name, a.timeout))
		}
		return ToolReportedError(a.name, fmt.Sprintf("%s cancelled: %v", a.name, ctxErr))
	}
	if r.err != nil {
		msg := strings.TrimSpace(r.stderr)
		if msg == "" {
			msg = r.err.Error()
		}
		return ToolReportedError(a.name, msg)
	}
	return Success(a.name, r.stdout)
}

// candidates returns the executables to try, in order. Fallback paths that
// do not exist on disk are dropped.
func (a *ExecAdapter) candidates() []string {
	existing := make([]string, 0, len(a.fallbacks))
	for _, p := range a.fallbacks {
		if fileExists(p) {
			existing = append(existing, p)
		}
	}

	out := make([]string, 0, len(existing)+1)
	if a.fallbackFirst {
		out = append(out, existing...)
		return append(out, a.executable)
	}
	out = append(out, a.executable)
	return append(out, existing...)
}

func (a *ExecAdapter) exec(ctx context.Context, dir, exe string, args []string) run {
	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay
	if len(a.env) > 0 {
		cmd.Env = append(os.Environ(), a.env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return run{launched: false, err: err}
	}
	err := cmd.Wait()
	return run{
		stdout:   stdout.String(),
		stderr:   stderr.String(),
		launched: true,
		err:      err,
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
