// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"sync"

	"github.com/revkit/rev/internal/backend"
)

// FakeAdapter is a build backend returning a fixed outcome. OnBuild, when
// set, runs before the outcome is returned, for example to drop a freshly
// built artifact on disk.
type FakeAdapter struct {
	AdapterName string
	Outcome     backend.Outcome
	OnBuild     func(projectPath string)

	mu    sync.Mutex
	calls []string
}

// NewFakeAdapter returns a FakeAdapter.
func NewFakeAdapter(name string, outcome backend.Outcome) *FakeAdapter {
	return &FakeAdapter{AdapterName: name, Outcome: outcome}
}

// Name returns the adapter name.
func (f *FakeAdapter) Name() string { return f.AdapterName }

// Available reports whether the outcome is anything but KindToolNotFound.
func (f *FakeAdapter) Available(context.Context) bool {
	return f.Outcome.Kind != backend.KindToolNotFound
}

// Build records the call and returns the configured outcome.
func (f *FakeAdapter) Build(_ context.Context, projectPath string) backend.Outcome {
	f.mu.Lock()
	f.calls = append(f.calls, projectPath)
	f.mu.Unlock()
	if f.OnBuild != nil {
		f.OnBuild(projectPath)
	}
	out := f.Outcome
	out.Backend = f.AdapterName
	return out
}

// Calls returns the project paths passed to Build.
func (f *FakeAdapter) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}
