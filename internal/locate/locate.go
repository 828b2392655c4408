// SPDX-License-Identifier: MPL-2.0

// Package locate implements a bounded, directional search for files and
// directories whose base name matches a glob pattern.
//
// Descend walks into subdirectories depth-first and returns the first match in
// enumeration order. Ascend only ever inspects the immediate entries of the
// start directory and its ancestors; it never enters siblings.
package locate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// Descend searches the start directory and then its subdirectories.
	Descend Direction = "descend"
	// Ascend searches the start directory and then each ancestor in turn.
	Ascend Direction = "ascend"
)

var (
	// ErrInvalidDirection is returned when a Direction value is not recognized.
	ErrInvalidDirection = errors.New("invalid search direction")
	// ErrInvalidPattern is returned when a SearchSpec pattern is not a valid glob.
	ErrInvalidPattern = errors.New("invalid search pattern")
	// ErrNegativeDepth is returned when a SearchSpec has a negative MaxDepth.
	ErrNegativeDepth = errors.New("max depth must not be negative")
)

type (
	// Direction selects which way a search travels from its start directory.
	Direction string

	// InvalidDirectionError is returned when a Direction value is not recognized.
	// It wraps ErrInvalidDirection for errors.Is() compatibility.
	InvalidDirectionError struct {
		Value Direction
	}

	// SearchSpec describes a single search. It is constructed per call.
	SearchSpec struct {
		// Pattern is matched against entry base names using doublestar syntax.
		Pattern string
		// MaxDepth bounds the number of levels explored below (Descend) or
		// above (Ascend) the start directory.
		MaxDepth int
		// Direction selects Descend or Ascend.
		Direction Direction
	}
)

// Error implements the error interface.
func (e *InvalidDirectionError) Error() string {
	return fmt.Sprintf("invalid search direction %q (valid: descend, ascend)", e.Value)
}

// Unwrap returns ErrInvalidDirection so callers can use errors.Is for programmatic detection.
func (e *InvalidDirectionError) Unwrap() error { return ErrInvalidDirection }

// String returns the string representation of the Direction.
func (d Direction) String() string { return string(d) }

// IsValid returns whether the Direction is one of the defined directions,
// and a list of validation errors if it is not.
func (d Direction) IsValid() (bool, []error) {
	switch d {
	case Descend, Ascend:
		return true, nil
	default:
		return false, []error{&InvalidDirectionError{Value: d}}
	}
}

// Validate checks every field of the spec and joins the problems found.
func (s SearchSpec) Validate() error {
	var errs []error
	if ok, dirErrs := s.Direction.IsValid(); !ok {
		errs = append(errs, dirErrs...)
	}
	if !doublestar.ValidatePattern(s.Pattern) || s.Pattern == "" {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidPattern, s.Pattern))
	}
	if s.MaxDepth < 0 {
		errs = append(errs, ErrNegativeDepth)
	}
	return errors.Join(errs...)
}

// Locate searches from startDir according to spec and returns the path of the
// first matching entry. An invalid spec yields no result rather than an error,
// and directories that cannot be read are skipped.
func Locate(startDir string, spec SearchSpec) (string, bool) {
	if spec.Validate() != nil {
		return "", false
	}

	switch spec.Direction {
	case Ascend:
		return ascend(startDir, spec.Pattern, spec.MaxDepth)
	default:
		return descend(startDir, spec.Pattern, spec.MaxDepth)
	}
}

// Descending is shorthand for Locate with Direction Descend.
func Descending(startDir, pattern string, maxDepth int) (string, bool) {
	return Locate(startDir, SearchSpec{Pattern: pattern, MaxDepth: maxDepth, Direction: Descend})
}

// Ascending is shorthand for Locate with Direction Ascend.
func Ascending(startDir, pattern string, maxDepth int) (string, bool) {
	return Locate(startDir, SearchSpec{Pattern: pattern, MaxDepth: maxDepth, Direction: Ascend})
}

func descend(dir, pattern string, depth int) (string, bool) {
	entries, ok := readDir(dir)
	if !ok {
		return "", false
	}

	for _, e := range entries {
		if matches(pattern, e.Name()) {
			return filepath.Join(dir, e.Name()), true
		}
	}

	if depth <= 0 {
		return "", false
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if found, ok := descend(filepath.Join(dir, e.Name()), pattern, depth-1); ok {
			return found, true
		}
	}
	return "", false
}

func ascend(dir, pattern string, depth int) (string, bool) {
	current, err := filepath.Abs(dir)
	if err != nil {
		current = filepath.Clean(dir)
	}

	for i := 0; i <= depth; i++ {
		if entries, ok := readDir(current); ok {
			for _, e := range entries {
				if matches(pattern, e.Name()) {
					return filepath.Join(current, e.Name()), true
				}
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return "", false
}

// readDir returns entries in the order the operating system reports them.
// os.ReadDir is avoided because it sorts by name.
func readDir(dir string) ([]os.DirEntry, bool) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, false
	}
	defer func() { _ = f.Close() }()

	entries, err := f.ReadDir(-1)
	if err != nil && len(entries) == 0 {
		return nil, false
	}
	return entries, true
}

func matches(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}
