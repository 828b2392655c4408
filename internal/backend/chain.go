// SPDX-License-Identifier: MPL-2.0

package backend

import (
	"context"
	"fmt"
	"log/slog"
)

// Chain tries adapters in priority order until one succeeds.
//
// When every adapter fails, the returned failure carries the diagnostic of
// the last adapter tried. Earlier diagnostics are only logged.
type Chain struct {
	Adapters []Adapter
	Logger   *slog.Logger
}

// NewChain returns a chain over adapters in the given order.
func NewChain(logger *slog.Logger, adapters ...Adapter) *Chain {
	return &Chain{Adapters: adapters, Logger: logger}
}

// Build runs the chain against projectPath.
func (c *Chain) Build(ctx context.Context, projectPath string) Outcome {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if len(c.Adapters) == 0 {
		return ToolNotFound("", "no build backends configured")
	}

	var last Outcome
	for _, a := range c.Adapters {
		out := a.Build(ctx, projectPath)
		if out.OK() {
			logger.Debug("build succeeded", "backend", a.Name())
			return out
		}

		diag := Diagnostic(a.Name(), out)
		logger.Warn(diag, "backend", a.Name(), "kind", out.Kind.String())
		last = Outcome{Kind: out.Kind, Backend: a.Name(), Message: diag}
	}
	return last
}

// Diagnostic renders the human-readable message for a failed adapter outcome.
func Diagnostic(name string, out Outcome) string {
	switch out.Kind {
	case KindToolNotFound:
		return fmt.Sprintf("could not find %s installation on system", name)
	case KindToolReportedError:
		return fmt.Sprintf("error building with %s: %s", name, out.Message)
	default:
		return ""
	}
}
