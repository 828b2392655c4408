// SPDX-License-Identifier: MPL-2.0

package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ScriptAdapter runs a configured shell command line with the embedded
// mvdan/sh interpreter. The project path is available as $1 and the command
// runs in the project directory.
type ScriptAdapter struct {
	command string
	timeout time.Duration
	logger  *slog.Logger
}

// NewScript returns the custom command adapter. An empty command is never available.
func NewScript(command string, timeout time.Duration, logger *slog.Logger) *ScriptAdapter {
	if timeout <= 0 {
		timeout = DefaultBuildTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScriptAdapter{command: strings.TrimSpace(command), timeout: timeout, logger: logger}
}

// Name returns the adapter name.
func (s *ScriptAdapter) Name() string { return NameCustom }

// Available reports whether a command is configured and parses.
func (s *ScriptAdapter) Available(context.Context) bool {
	_, err := s.parse()
	return err == nil
}

// Probe reports availability. The custom command has no version.
func (s *ScriptAdapter) Probe(ctx context.Context) ProbeResult {
	return ProbeResult{Backend: NameCustom, Available: s.Available(ctx), Raw: s.command}
}

// Build interprets the command with projectPath as $1.
func (s *ScriptAdapter) Build(ctx context.Context, projectPath string) Outcome {
	prog, err := s.parse()
	if err != nil {
		return ToolNotFound(NameCustom, err.Error())
	}
	if err := ctx.Err(); err != nil {
		return ToolReportedError(NameCustom, fmt.Sprintf("custom command not started: %v", err))
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	runner, err := interp.New(
		interp.Dir(filepath.Dir(projectPath)),
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.StdIO(nil, &stdout, &stderr),
		// "--" keeps paths starting with a dash from being read as shell options.
		interp.Params("--", projectPath),
	)
	if err != nil {
		return ToolNotFound(NameCustom, fmt.Sprintf("failed to create interpreter: %v", err))
	}

	s.logger.Debug("running custom build command", "command", s.command, "project", projectPath)
	runErr := runner.Run(ctx, prog)

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return ToolReportedError(NameCustom, fmt.Sprintf("custom command timed out after %s", s.timeout))
		}
		return ToolReportedError(NameCustom, fmt.Sprintf("custom command cancelled: %v", ctxErr))
	}
	if runErr != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			var status interp.ExitStatus
			if errors.As(runErr, &status) {
				msg = fmt.Sprintf("exit status %d", status)
			} else {
				msg = runErr.Error()
			}
		}
		return ToolReportedError(NameCustom, msg)
	}
	return Success(NameCustom, stdout.String())
}

func (s *ScriptAdapter) parse() (*syntax.File, error) {
	if s.command == "" {
		return nil, errors.New("no custom build command configured")
	}
	prog, err := syntax.NewParser().Parse(strings.NewReader(s.command), "custom")
	if err != nil {
		return nil, fmt.Errorf("failed to parse custom build command: %w", err)
	}
	return prog, nil
}
