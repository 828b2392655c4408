// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startWatcher runs a watcher over dir and returns the channel of OnChange batches.
func startWatcher(t *testing.T, dir string) <-chan []string {
	t.Helper()

	batches := make(chan []string, 8)
	w, err := New(Config{
		Dir:      dir,
		Debounce: 100 * time.Millisecond,
		Logger:   quietLogger(),
		OnChange: func(_ context.Context, changed []string) error {
			batches <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-errCh; err != nil {
			t.Errorf("Run() error: %v", err)
		}
	})
	return batches
}

func write(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("// changed"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func receive(t *testing.T, batches <-chan []string) []string {
	t.Helper()
	select {
	case b := <-batches:
		return b
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for OnChange")
		return nil
	}
}

func expectQuiet(t *testing.T, batches <-chan []string) {
	t.Helper()
	select {
	case b := <-batches:
		t.Errorf("unexpected OnChange(%v)", b)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcherDebounce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	batches := startWatcher(t, dir)

	for _, name := range []string{"App.cs", "Command.cs", "App.csproj"} {
		write(t, filepath.Join(dir, name))
		time.Sleep(10 * time.Millisecond)
	}

	got := receive(t, batches)
	if diff := cmp.Diff([]string{"App.cs", "App.csproj", "Command.cs"}, got); diff != "" {
		t.Errorf("OnChange batch (-want +got):\n%s", diff)
	}
	expectQuiet(t, batches)
}

func TestWatcherIgnoresBuildOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, sub := range []string{"bin/Debug", "obj"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	batches := startWatcher(t, dir)

	write(t, filepath.Join(dir, "bin", "Debug", "Gen.cs"))
	write(t, filepath.Join(dir, "obj", "AssemblyInfo.cs"))
	write(t, filepath.Join(dir, "notes.txt"))
	expectQuiet(t, batches)

	write(t, filepath.Join(dir, "Sample.addin"))
	if got := receive(t, batches); !cmp.Equal(got, []string{"Sample.addin"}) {
		t.Errorf("OnChange(%v), want only the manifest", got)
	}
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	batches := startWatcher(t, dir)

	if err := os.Mkdir(filepath.Join(dir, "Commands"), 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	write(t, filepath.Join(dir, "Commands", "Export.cs"))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case b := <-batches:
			for _, p := range b {
				if p == "Commands/Export.cs" {
					return
				}
			}
		case <-deadline:
			t.Fatal("change in new directory never reported")
		}
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	noop := func(context.Context, []string) error { return nil }
	tests := []struct {
		name    string
		cfg     Config
		wantErr int
	}{
		{"defaults", Config{OnChange: noop}, 0},
		{"custom patterns", Config{Patterns: []string{"src/**/*.cs"}, Ignore: []string{"**/Generated/**"}, OnChange: noop}, 0},
		{"bad pattern", Config{Patterns: []string{"[unclosed"}, OnChange: noop}, 1},
		{"bad pattern and ignore", Config{Patterns: []string{"[a"}, Ignore: []string{"{b"}, OnChange: noop}, 2},
		{"no callback", Config{}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if tt.wantErr == 0 {
				if err != nil {
					t.Errorf("Validate() error: %v", err)
				}
				return
			}
			var cfgErr *InvalidWatchConfigError
			if !errors.As(err, &cfgErr) || len(cfgErr.FieldErrors) != tt.wantErr {
				t.Fatalf("Validate() = %v, want %d field errors", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidWatchConfig) {
				t.Error("error does not match ErrInvalidWatchConfig")
			}
		})
	}
}

func TestWatcherDoubleRun(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Dir: t.TempDir(), Logger: quietLogger(), OnChange: func(context.Context, []string) error { return nil }})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("first Run() error: %v", err)
	}
	if err := w.Run(ctx); err == nil {
		t.Error("second Run() error = nil")
	}
}

func TestDefaultsAreCopies(t *testing.T) {
	t.Parallel()

	p := DefaultPatterns()
	p[0] = "mutated"
	if DefaultPatterns()[0] == "mutated" {
		t.Error("DefaultPatterns() exposed internal state")
	}
	i := DefaultIgnores()
	i[0] = "mutated"
	if DefaultIgnores()[0] == "mutated" {
		t.Error("DefaultIgnores() exposed internal state")
	}
}

func TestIgnoredDir(t *testing.T) {
	t.Parallel()

	w := &Watcher{ignores: DefaultIgnores(), patterns: DefaultPatterns()}
	for _, rel := range []string{"bin", "obj", "src/bin", ".vs", "web/node_modules"} {
		if !w.ignoredDir(rel) {
			t.Errorf("ignoredDir(%q) = false", rel)
		}
	}
	for _, rel := range []string{"src", "Commands", "binary"} {
		if w.ignoredDir(rel) {
			t.Errorf("ignoredDir(%q) = true", rel)
		}
	}
	if !w.matches("Views/Main.xaml") || w.matches("README.md") {
		t.Error("matches() disagrees with the default patterns")
	}
}
