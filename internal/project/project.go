// SPDX-License-Identifier: MPL-2.0

// Package project resolves the add-in project on disk and the artifacts it builds.
package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/revkit/rev/internal/locate"
)

const (
	// ProjectPattern matches project files.
	ProjectPattern = "*.csproj"
	// ManifestExt is the extension of the add-in manifest.
	ManifestExt = ".addin"
	// ArtifactExt is the extension of build artifacts.
	ArtifactExt = ".dll"

	// DefaultSearchDepth bounds project and artifact searches.
	DefaultSearchDepth = 3
)

var (
	// ErrProjectNotFound is returned when no project file lies within the search bounds.
	ErrProjectNotFound = errors.New("no csproj file found")
	// ErrArtifactNotFound is the sentinel error wrapped by ArtifactNotFoundError.
	ErrArtifactNotFound = errors.New("artifact not found")
)

type (
	// Descriptor identifies the project of one run. It is immutable.
	Descriptor struct {
		// FileName is the project file base name, such as "App.csproj".
		FileName string
		// Name is FileName without its extension.
		Name string
		// Dir is the absolute directory holding the project file.
		Dir string
	}

	// ArtifactNotFoundError is returned when a built artifact cannot be located.
	// It wraps ErrArtifactNotFound for errors.Is() compatibility.
	ArtifactNotFoundError struct {
		// File is the artifact file name that was searched for.
		File string
		// Dir is the directory the search started from.
		Dir string
	}
)

// Error implements the error interface.
func (e *ArtifactNotFoundError) Error() string {
	return fmt.Sprintf("could not find %s under %s", e.File, e.Dir)
}

// Unwrap returns ErrArtifactNotFound so callers can use errors.Is for programmatic detection.
func (e *ArtifactNotFoundError) Unwrap() error { return ErrArtifactNotFound }

// Resolve searches downward from startDir for a project file.
func Resolve(startDir string, maxDepth int) (Descriptor, error) {
	path, ok := locate.Descending(startDir, ProjectPattern, maxDepth)
	if !ok {
		return Descriptor{}, ErrProjectNotFound
	}
	return FromPath(path)
}

// FromPath builds a Descriptor for an existing project file path.
func FromPath(path string) (Descriptor, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("resolve project path: %w", err)
	}
	base := filepath.Base(abs)
	return Descriptor{
		FileName: base,
		Name:     strings.TrimSuffix(base, filepath.Ext(base)),
		Dir:      filepath.Dir(abs),
	}, nil
}

// Path returns the project file path.
func (d Descriptor) Path() string {
	return filepath.Join(d.Dir, d.FileName)
}

// ManifestPath returns the expected manifest path, {Dir}/{Name}.addin.
func (d Descriptor) ManifestPath() string {
	return filepath.Join(d.Dir, d.Name+ManifestExt)
}

// ArtifactFile returns the artifact file name for name, adding the .dll
// extension when it is missing.
func ArtifactFile(name string) string {
	if strings.EqualFold(filepath.Ext(name), ArtifactExt) {
		return name
	}
	return name + ArtifactExt
}

// ArtifactPath searches below the project directory for the named artifact.
// With absolute false the result is relative to the project directory.
func (d Descriptor) ArtifactPath(name string, absolute bool) (string, error) {
	file := ArtifactFile(name)
	found, ok := locate.Descending(d.Dir, file, DefaultSearchDepth)
	if !ok {
		return "", &ArtifactNotFoundError{File: file, Dir: d.Dir}
	}
	if absolute {
		return found, nil
	}
	rel, err := filepath.Rel(d.Dir, found)
	if err != nil {
		return found, nil //nolint:nilerr // fall back to the absolute path
	}
	return rel, nil
}

// PrimaryArtifactPath returns the absolute path of {Name}.dll.
func (d Descriptor) PrimaryArtifactPath() (string, error) {
	return d.ArtifactPath(d.Name, true)
}
