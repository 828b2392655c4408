// SPDX-License-Identifier: MPL-2.0

// Package prefs persists the small record of values remembered between runs:
// the Revit version add-ins are exported for and the vendor email used when
// generating manifests.
//
// The record is loaded once per run and written back explicitly. A missing
// file is not an error; the zero Preferences apply.
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

const (
	// FileName is the preference file name inside the config directory.
	FileName = "state.toml"

	// MinTargetVersion is the oldest supported Revit release year.
	MinTargetVersion = 2019
	// MaxTargetVersion is the newest supported Revit release year.
	MaxTargetVersion = 2025
)

// ErrInvalidTargetVersion is the sentinel error wrapped by InvalidTargetVersionError.
var ErrInvalidTargetVersion = errors.New("invalid target version")

type (
	// TargetVersion is a Revit release year such as "2024".
	TargetVersion string

	// InvalidTargetVersionError is returned when a TargetVersion is outside the supported range.
	// It wraps ErrInvalidTargetVersion for errors.Is() compatibility.
	InvalidTargetVersionError struct {
		Value TargetVersion
	}

	// Preferences is the persisted record.
	Preferences struct {
		TargetVersion TargetVersion `toml:"target_version,omitempty"`
		VendorEmail   string        `toml:"vendor_email,omitempty"`
	}

	// Store reads and writes Preferences at a fixed path.
	Store struct {
		path string
	}
)

// Error implements the error interface.
func (e *InvalidTargetVersionError) Error() string {
	return fmt.Sprintf("invalid target version %q (valid: %d through %d)", e.Value, MinTargetVersion, MaxTargetVersion)
}

// Unwrap returns ErrInvalidTargetVersion so callers can use errors.Is for programmatic detection.
func (e *InvalidTargetVersionError) Unwrap() error { return ErrInvalidTargetVersion }

// String returns the string representation of the TargetVersion.
func (v TargetVersion) String() string { return string(v) }

// IsValid returns whether the TargetVersion is a supported release year,
// and a list of validation errors if it is not.
func (v TargetVersion) IsValid() (bool, []error) {
	year, err := strconv.Atoi(string(v))
	if err != nil || year < MinTargetVersion || year > MaxTargetVersion || strconv.Itoa(year) != string(v) {
		return false, []error{&InvalidTargetVersionError{Value: v}}
	}
	return true, nil
}

// IsSet reports whether a target version has been chosen.
func (v TargetVersion) IsSet() bool { return v != "" }

// SupportedTargetVersions lists every supported version, newest first.
func SupportedTargetVersions() []TargetVersion {
	out := make([]TargetVersion, 0, MaxTargetVersion-MinTargetVersion+1)
	for y := MaxTargetVersion; y >= MinTargetVersion; y-- {
		out = append(out, TargetVersion(strconv.Itoa(y)))
	}
	return out
}

// AddinsDir returns the Revit add-ins directory for v under the user data
// directory: {dataDir}/Autodesk/Revit/Addins/{v}.
func AddinsDir(dataDir string, v TargetVersion) string {
	return filepath.Join(dataDir, "Autodesk", "Revit", "Addins", string(v))
}

// NewStore returns a Store for the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the preference file path.
func (s *Store) Path() string { return s.path }

// Load reads the preference file. A missing file yields zero Preferences.
// A stored target version that is no longer supported is dropped.
func (s *Store) Load() (Preferences, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Preferences{}, nil
		}
		return Preferences{}, fmt.Errorf("read preferences: %w", err)
	}

	var p Preferences
	if err := toml.Unmarshal(data, &p); err != nil {
		return Preferences{}, fmt.Errorf("parse preferences %s: %w", s.path, err)
	}
	if p.TargetVersion.IsSet() {
		if ok, _ := p.TargetVersion.IsValid(); !ok {
			p.TargetVersion = ""
		}
	}
	return p, nil
}

// Save writes p, creating the parent directory when needed. The file is
// replaced atomically.
func (s *Store) Save(p Preferences) error {
	if p.TargetVersion.IsSet() {
		if ok, errs := p.TargetVersion.IsValid(); !ok {
			return errors.Join(errs...)
		}
	}

	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create preferences directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.toml")
	if err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}
