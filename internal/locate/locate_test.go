// SPDX-License-Identifier: MPL-2.0

package locate

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func mkdirs(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if err := os.MkdirAll(p, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", p, err)
		}
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDirectionIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dir  Direction
		want bool
	}{
		{Descend, true},
		{Ascend, true},
		{"", false},
		{"sideways", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.dir), func(t *testing.T) {
			t.Parallel()
			ok, errs := tt.dir.IsValid()
			if ok != tt.want {
				t.Fatalf("IsValid() = %v, want %v", ok, tt.want)
			}
			if !ok {
				if len(errs) != 1 || !errors.Is(errs[0], ErrInvalidDirection) {
					t.Errorf("IsValid() errors = %v, want ErrInvalidDirection", errs)
				}
			}
		})
	}
}

func TestSearchSpecValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		spec    SearchSpec
		wantErr error
	}{
		{"valid", SearchSpec{Pattern: "*.csproj", MaxDepth: 3, Direction: Descend}, nil},
		{"bad pattern", SearchSpec{Pattern: "[", MaxDepth: 1, Direction: Descend}, ErrInvalidPattern},
		{"empty pattern", SearchSpec{Pattern: "", MaxDepth: 1, Direction: Descend}, ErrInvalidPattern},
		{"negative depth", SearchSpec{Pattern: "*", MaxDepth: -1, Direction: Ascend}, ErrNegativeDepth},
		{"bad direction", SearchSpec{Pattern: "*", Direction: "up"}, ErrInvalidDirection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.spec.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDescendDepthBound(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	// root/a/b/c/target.dll is three levels below root.
	touch(t, filepath.Join(root, "a", "b", "c", "target.dll"))

	tests := []struct {
		depth int
		found bool
	}{
		{0, false},
		{1, false},
		{2, false},
		{3, true},
		{10, true},
	}

	for _, tt := range tests {
		got, ok := Descending(root, "target.dll", tt.depth)
		if ok != tt.found {
			t.Errorf("Descending(depth=%d) ok = %v, want %v", tt.depth, ok, tt.found)
		}
		if ok {
			want := filepath.Join(root, "a", "b", "c", "target.dll")
			if got != want {
				t.Errorf("Descending(depth=%d) = %q, want %q", tt.depth, got, want)
			}
		}
	}
}

func TestDescendDepthZeroOnlyStartDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, filepath.Join(root, "App.csproj"))

	got, ok := Descending(root, "*.csproj", 0)
	if !ok {
		t.Fatal("Descending() found nothing in start directory")
	}
	if filepath.Base(got) != "App.csproj" {
		t.Errorf("Descending() = %q, want App.csproj", got)
	}
}

func TestDescendPrefersShallowMatch(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, filepath.Join(root, "deep", "App.csproj"))
	touch(t, filepath.Join(root, "Top.csproj"))

	got, ok := Descending(root, "*.csproj", 3)
	if !ok {
		t.Fatal("Descending() found nothing")
	}
	if got != filepath.Join(root, "Top.csproj") {
		t.Errorf("Descending() = %q, want start directory match", got)
	}
}

func TestDescendMatchesDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mkdirs(t, filepath.Join(root, "web", "node_modules"))

	got, ok := Descending(root, "node_modules", 3)
	if !ok {
		t.Fatal("Descending() did not match directory entry")
	}
	if got != filepath.Join(root, "web", "node_modules") {
		t.Errorf("Descending() = %q", got)
	}
}

func TestAscendFindsAncestorMatch(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, filepath.Join(root, "App.csproj"))
	start := filepath.Join(root, "src", "nested")
	mkdirs(t, start)

	got, ok := Ascending(start, "*.csproj", 2)
	if !ok {
		t.Fatal("Ascending() found nothing")
	}
	if got != filepath.Join(root, "App.csproj") {
		t.Errorf("Ascending() = %q", got)
	}

	if _, ok := Ascending(start, "*.csproj", 1); ok {
		t.Error("Ascending(depth=1) reached two levels up")
	}
}

func TestAscendNeverEntersSiblings(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	start := filepath.Join(root, "left")
	mkdirs(t, start)
	touch(t, filepath.Join(root, "right", "App.csproj"))
	touch(t, filepath.Join(start, "child", "App.csproj"))

	if got, ok := Ascending(start, "App.csproj", 50); ok {
		t.Errorf("Ascending() = %q, want no match", got)
	}
}

func TestInvalidPatternYieldsEmpty(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, filepath.Join(root, "[.txt"))

	if got, ok := Descending(root, "[", 3); ok {
		t.Errorf("Descending() = %q, want empty", got)
	}
	if got, ok := Locate(root, SearchSpec{Pattern: "*", MaxDepth: 1, Direction: "bogus"}); ok {
		t.Errorf("Locate() with invalid direction = %q, want empty", got)
	}
}

func TestMissingStartDirYieldsEmpty(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope")
	if got, ok := Descending(missing, "*", 3); ok {
		t.Errorf("Descending() = %q, want empty", got)
	}
}

func TestUnreadableDirectoryIsSkipped(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on Windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	root := t.TempDir()
	locked := filepath.Join(root, "a-locked")
	touch(t, filepath.Join(locked, "App.dll"))
	touch(t, filepath.Join(root, "b-open", "App.dll"))

	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	got, ok := Descending(root, "App.dll", 2)
	if !ok {
		t.Fatal("Descending() did not skip the unreadable directory")
	}
	if got != filepath.Join(root, "b-open", "App.dll") {
		t.Errorf("Descending() = %q", got)
	}
}
