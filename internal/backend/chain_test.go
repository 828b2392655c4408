// SPDX-License-Identifier: MPL-2.0

package backend

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeAdapter struct {
	name    string
	outcome Outcome
	calls   *[]string
}

func (f fakeAdapter) Name() string                   { return f.name }
func (f fakeAdapter) Available(context.Context) bool { return f.outcome.Kind != KindToolNotFound }
func (f fakeAdapter) Build(_ context.Context, _ string) Outcome {
	if f.calls != nil {
		*f.calls = append(*f.calls, f.name)
	}
	o := f.outcome
	o.Backend = f.name
	return o
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChainSuccessMasksEarlierFailure(t *testing.T) {
	t.Parallel()

	var calls []string
	chain := NewChain(quietLogger(),
		fakeAdapter{name: "msbuild", outcome: ToolNotFound("", "missing"), calls: &calls},
		fakeAdapter{name: "dotnet", outcome: Success("", "Build succeeded."), calls: &calls},
		fakeAdapter{name: "never", outcome: Success("", ""), calls: &calls},
	)

	out := chain.Build(context.Background(), "App.csproj")
	if !out.OK() {
		t.Fatalf("Build() = %+v, want success", out)
	}
	if out.Output != "Build succeeded." || out.Message != "" {
		t.Errorf("Build() = %+v, want dotnet output and no failure trace", out)
	}
	if out.Err() != nil {
		t.Errorf("Err() = %v, want nil", out.Err())
	}
	if diff := cmp.Diff([]string{"msbuild", "dotnet"}, calls); diff != "" {
		t.Errorf("adapter calls mismatch (-want +got):\n%s", diff)
	}
}

func TestChainLastFailureWins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		first    Outcome
		second   Outcome
		wantKind Kind
		wantMsg  string
	}{
		{
			name:     "reported then not found",
			first:    ToolReportedError("", "CS1002: ; expected"),
			second:   ToolNotFound("", "not installed"),
			wantKind: KindToolNotFound,
			wantMsg:  "could not find dotnet installation on system",
		},
		{
			name:     "not found then reported",
			first:    ToolNotFound("", "not installed"),
			second:   ToolReportedError("", "restore failed"),
			wantKind: KindToolReportedError,
			wantMsg:  "error building with dotnet: restore failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			chain := NewChain(quietLogger(),
				fakeAdapter{name: "msbuild", outcome: tt.first},
				fakeAdapter{name: "dotnet", outcome: tt.second},
			)
			out := chain.Build(context.Background(), "App.csproj")
			if out.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", out.Kind, tt.wantKind)
			}
			if out.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", out.Message, tt.wantMsg)
			}
			if out.Backend != "dotnet" {
				t.Errorf("Backend = %q, want dotnet", out.Backend)
			}
		})
	}
}

func TestChainEmpty(t *testing.T) {
	t.Parallel()

	out := NewChain(quietLogger()).Build(context.Background(), "App.csproj")
	if out.Kind != KindToolNotFound {
		t.Fatalf("Kind = %v, want KindToolNotFound", out.Kind)
	}
	if out.Message != "no build backends configured" {
		t.Errorf("Message = %q", out.Message)
	}
}

func TestOutcomeErr(t *testing.T) {
	t.Parallel()

	if err := ToolNotFound("msbuild", "x").Err(); !errors.Is(err, ErrToolNotFound) {
		t.Errorf("ToolNotFound.Err() = %v, want ErrToolNotFound", err)
	}
	err := ToolReportedError("dotnet", "boom").Err()
	if !errors.Is(err, ErrToolReportedError) {
		t.Errorf("ToolReportedError.Err() = %v, want ErrToolReportedError", err)
	}
	var be *BuildError
	if !errors.As(err, &be) || be.Backend != "dotnet" || be.Error() != "boom" {
		t.Errorf("BuildError = %+v", be)
	}
}

func TestAdaptersFromSettings(t *testing.T) {
	t.Parallel()

	adapters, err := Adapters(Settings{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("Adapters() error: %v", err)
	}
	var names []string
	for _, a := range adapters {
		names = append(names, a.Name())
	}
	if diff := cmp.Diff([]string{"msbuild", "dotnet"}, names); diff != "" {
		t.Errorf("default adapters mismatch (-want +got):\n%s", diff)
	}

	adapters, err = Adapters(Settings{Backends: []string{"custom", "dotnet"}, CustomCommand: "true"})
	if err != nil {
		t.Fatalf("Adapters() error: %v", err)
	}
	if adapters[0].Name() != NameCustom {
		t.Errorf("first adapter = %q, want custom", adapters[0].Name())
	}

	if _, err := Adapters(Settings{Backends: []string{"msbuild", "make"}}); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Adapters() with unknown backend error = %v, want ErrInvalidID", err)
	}

	adapters, err = Adapters(Settings{Backends: []string{}})
	if err != nil || len(adapters) != 0 {
		t.Errorf("Adapters(empty) = %v, %v; want no adapters", adapters, err)
	}
}
