// SPDX-License-Identifier: MPL-2.0

package backend

import (
	"context"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/sync/errgroup"
)

// versionPattern finds the first dotted version number in tool output, such
// as "17.9.8+b34f75857" from MSBuild or "8.0.204" from dotnet.
var versionPattern = regexp.MustCompile(`\d+(?:\.\d+){0,3}`)

type (
	// ProbeResult describes a toolchain found by a version probe.
	ProbeResult struct {
		Backend   string
		Available bool
		// Path is the executable that answered the probe.
		Path string
		// Version is nil when the output held no recognizable version.
		Version *semver.Version
		// Raw is the trimmed probe output.
		Raw string
	}

	// Prober is implemented by adapters that can report a toolchain version.
	Prober interface {
		Probe(ctx context.Context) ProbeResult
	}
)

// Probe runs the version invocation against each candidate executable in
// turn and reports the first that launches and exits cleanly.
func (a *ExecAdapter) Probe(ctx context.Context) ProbeResult {
	ctx, cancel := context.WithTimeout(ctx, a.probeTimeout)
	defer cancel()

	for _, exe := range a.candidates() {
		r := a.exec(ctx, "", exe, a.versionArgs)
		if !r.launched || r.err != nil {
			continue
		}
		raw := strings.TrimSpace(r.stdout)
		return ProbeResult{
			Backend:   a.name,
			Available: true,
			Path:      exe,
			Version:   ParseVersion(raw),
			Raw:       raw,
		}
	}
	return ProbeResult{Backend: a.name}
}

// ParseVersion extracts a semantic version from free-form tool output.
// Components beyond major.minor.patch are dropped.
func ParseVersion(output string) *semver.Version {
	// MSBuild prints a banner before the version on its last line.
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		m := versionPattern.FindString(lines[i])
		if m == "" {
			continue
		}
		parts := strings.Split(m, ".")
		if len(parts) > 3 {
			parts = parts[:3]
		}
		v, err := semver.NewVersion(strings.Join(parts, "."))
		if err != nil {
			continue
		}
		return v
	}
	return nil
}

// ProbeAll probes every adapter concurrently. Results keep the adapter order.
// Adapters that do not implement Prober are reported through Available.
func ProbeAll(ctx context.Context, adapters []Adapter) []ProbeResult {
	results := make([]ProbeResult, len(adapters))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, a := range adapters {
		g.Go(func() error {
			if p, ok := a.(Prober); ok {
				results[i] = p.Probe(gctx)
				return nil
			}
			results[i] = ProbeResult{Backend: a.Name(), Available: a.Available(gctx)}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
