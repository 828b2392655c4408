// SPDX-License-Identifier: MPL-2.0

package manifest_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/revkit/rev/internal/manifest"
	"github.com/revkit/rev/internal/prefs"
	"github.com/revkit/rev/internal/project"
	"github.com/revkit/rev/internal/testutil"
)

type recordingStore struct {
	saved []prefs.Preferences
	err   error
}

func (r *recordingStore) Save(p prefs.Preferences) error {
	r.saved = append(r.saved, p)
	return r.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func descriptor(t *testing.T, p *testutil.Project) project.Descriptor {
	t.Helper()
	d, err := project.FromPath(p.ProjectPath())
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestEnsureLeavesCustomizedManifestUntouched(t *testing.T) {
	t.Parallel()

	p := testutil.NewProject(t, "Sample").WithManifest(testutil.CustomizedManifest)
	prompter := testutil.NewScriptedPrompter()
	c := &manifest.Certifier{Prompter: prompter, Logger: quietLogger()}

	path, err := c.Ensure(context.Background(), descriptor(t, p))
	if err != nil {
		t.Fatalf("Ensure() error: %v", err)
	}
	if path != p.ManifestPath() {
		t.Errorf("Ensure() = %q, want %q", path, p.ManifestPath())
	}
	if got := testutil.MustReadFile(t, path); got != testutil.CustomizedManifest {
		t.Error("Ensure() modified a customized manifest")
	}
	if len(prompter.Calls()) != 0 {
		t.Errorf("Ensure() prompted %d times, want 0", len(prompter.Calls()))
	}
}

func TestEnsureRegeneratesPlaceholderManifest(t *testing.T) {
	t.Parallel()

	p := testutil.NewProject(t, "Sample").WithManifest(testutil.TemplateManifest)
	prompter := testutil.NewScriptedPrompter("My Tool", "", "Does things", "me@studio.io")
	prefsRec := &prefs.Preferences{TargetVersion: "2024"}
	store := &recordingStore{}
	c := &manifest.Certifier{Prompter: prompter, Prefs: prefsRec, Store: store, Logger: quietLogger()}

	path, err := c.Ensure(context.Background(), descriptor(t, p))
	if err != nil {
		t.Fatalf("Ensure() error: %v", err)
	}

	info, err := manifest.Parse(path)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if info.Name != "My Tool" || info.VendorID != manifest.DefaultVendorID || info.VendorDescription != "Does things" {
		t.Errorf("prompted fields = %+v", info)
	}
	if info.Assembly != `Sample\Sample.dll` || info.FullClassName != "Sample.App" {
		t.Errorf("derived fields = %+v", info)
	}
	if info.AddInID == "5c1f3d5e-2a0b-4a55-9a3c-6f0d2f7e8b11" {
		t.Error("AddInId reused from the template")
	}
	if id, err := uuid.Parse(info.AddInID); err != nil || id.Version() != 4 {
		t.Errorf("AddInId = %q, want a UUIDv4", info.AddInID)
	}
	if info.VendorEmail != "me@studio.io" {
		t.Errorf("VendorEmail = %q", info.VendorEmail)
	}

	if prefsRec.VendorEmail != "me@studio.io" {
		t.Errorf("Prefs.VendorEmail = %q, want collected email", prefsRec.VendorEmail)
	}
	if len(store.saved) != 1 || store.saved[0].VendorEmail != "me@studio.io" || store.saved[0].TargetVersion != "2024" {
		t.Errorf("saved preferences = %+v", store.saved)
	}

	calls := prompter.Calls()
	if len(calls) != 4 {
		t.Fatalf("prompted %d times, want 4", len(calls))
	}
	if calls[3].HasDefault {
		t.Error("email prompt offered a default with nothing remembered")
	}
}

func TestEnsureUsesRememberedEmail(t *testing.T) {
	t.Parallel()

	p := testutil.NewProject(t, "Sample")
	prompter := testutil.NewScriptedPrompter("Name", "Acme", "Desc", "")
	c := &manifest.Certifier{
		Prompter: prompter,
		Prefs:    &prefs.Preferences{VendorEmail: "saved@acme.test"},
		Logger:   quietLogger(),
	}

	path, err := c.Ensure(context.Background(), descriptor(t, p))
	if err != nil {
		t.Fatalf("Ensure() error: %v", err)
	}
	info, err := manifest.Parse(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.VendorEmail != "saved@acme.test" || info.VendorID != "Acme" {
		t.Errorf("info = %+v", info)
	}
	calls := prompter.Calls()
	if !calls[3].HasDefault || calls[3].Default != "saved@acme.test" {
		t.Errorf("email prompt = %+v, want remembered default", calls[3])
	}
}

func TestEnsureFreshIDEachTime(t *testing.T) {
	t.Parallel()

	p := testutil.NewProject(t, "Sample")
	d := descriptor(t, p)

	var ids []string
	for range 2 {
		if err := os.Remove(p.ManifestPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
			t.Fatal(err)
		}
		c := &manifest.Certifier{Prompter: testutil.NewScriptedPrompter("N", "", "D", "e@x.y"), Logger: quietLogger()}
		path, err := c.Ensure(context.Background(), d)
		if err != nil {
			t.Fatal(err)
		}
		info, err := manifest.Parse(path)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, info.AddInID)
	}
	if ids[0] == ids[1] {
		t.Errorf("AddInId reused across regenerations: %s", ids[0])
	}
}

func TestEnsurePromptFailure(t *testing.T) {
	t.Parallel()

	p := testutil.NewProject(t, "Sample")
	c := &manifest.Certifier{Prompter: testutil.NewScriptedPrompter("only name"), Logger: quietLogger()}

	_, err := c.Ensure(context.Background(), descriptor(t, p))
	if !errors.Is(err, testutil.ErrScriptExhausted) {
		t.Fatalf("Ensure() error = %v, want prompt failure", err)
	}
	if testutil.Exists(p.ManifestPath()) {
		t.Error("manifest written despite prompt failure")
	}
}

func TestEnsureWithoutPrompter(t *testing.T) {
	t.Parallel()

	p := testutil.NewProject(t, "Sample")
	c := &manifest.Certifier{Logger: quietLogger()}
	if _, err := c.Ensure(context.Background(), descriptor(t, p)); err == nil {
		t.Error("Ensure() error = nil without a prompter")
	}
}

func TestEnsureSaveFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	p := testutil.NewProject(t, "Sample")
	c := &manifest.Certifier{
		Prompter: testutil.NewScriptedPrompter("N", "", "D", "e@x.y"),
		Prefs:    &prefs.Preferences{},
		Store:    &recordingStore{err: errors.New("disk full")},
		Logger:   quietLogger(),
	}
	if _, err := c.Ensure(context.Background(), descriptor(t, p)); err != nil {
		t.Fatalf("Ensure() error = %v, want nil", err)
	}
}
