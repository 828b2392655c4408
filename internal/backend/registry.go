// SPDX-License-Identifier: MPL-2.0

package backend

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrInvalidID is the sentinel error wrapped by InvalidIDError.
var ErrInvalidID = errors.New("invalid build backend")

type (
	// ID names a configurable build backend.
	ID string

	// InvalidIDError is returned when an ID is not one of the known backends.
	// It wraps ErrInvalidID for errors.Is() compatibility.
	InvalidIDError struct {
		Value ID
	}

	// Settings selects and configures the adapters of a build chain.
	Settings struct {
		// Backends lists backend IDs in priority order.
		Backends []string
		// Timeout bounds each build invocation.
		Timeout time.Duration
		// MSBuildPath overrides the Visual Studio fallback location.
		MSBuildPath string
		// CustomCommand is the shell line run by the custom backend.
		CustomCommand string
		Logger        *slog.Logger
	}
)

// Error implements the error interface.
func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid build backend %q (valid: %s, %s, %s)", e.Value, NameMSBuild, NameDotnet, NameCustom)
}

// Unwrap returns ErrInvalidID so callers can use errors.Is for programmatic detection.
func (e *InvalidIDError) Unwrap() error { return ErrInvalidID }

// String returns the string representation of the ID.
func (id ID) String() string { return string(id) }

// IsValid returns whether the ID names a chain backend,
// and a list of validation errors if it does not.
func (id ID) IsValid() (bool, []error) {
	switch id {
	case NameMSBuild, NameDotnet, NameCustom:
		return true, nil
	default:
		return false, []error{&InvalidIDError{Value: id}}
	}
}

// DefaultBackends is the chain used when none is configured.
func DefaultBackends() []string {
	return []string{NameMSBuild, NameDotnet}
}

// Adapters builds the configured adapters in priority order.
func Adapters(s Settings) ([]Adapter, error) {
	names := s.Backends
	if names == nil {
		names = DefaultBackends()
	}

	var errs []error
	adapters := make([]Adapter, 0, len(names))
	for _, n := range names {
		id := ID(n)
		if ok, idErrs := id.IsValid(); !ok {
			errs = append(errs, idErrs...)
			continue
		}
		adapters = append(adapters, s.adapter(id))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return adapters, nil
}

// NewChainFromSettings builds the configured adapters and wraps them in a Chain.
func NewChainFromSettings(s Settings) (*Chain, error) {
	adapters, err := Adapters(s)
	if err != nil {
		return nil, err
	}
	return NewChain(s.Logger, adapters...), nil
}

// Yarn builds the web app adapter with the same timeout and logger.
func (s Settings) Yarn() *ExecAdapter {
	return NewYarn(WithTimeout(s.Timeout), WithLogger(s.Logger))
}

func (s Settings) adapter(id ID) Adapter {
	switch id {
	case NameMSBuild:
		opts := []Option{WithTimeout(s.Timeout), WithLogger(s.Logger)}
		if s.MSBuildPath != "" {
			opts = append(opts, WithFallbackPaths(s.MSBuildPath))
		}
		return NewMSBuild(opts...)
	case NameDotnet:
		return NewDotnet(WithTimeout(s.Timeout), WithLogger(s.Logger))
	default:
		return NewScript(s.CustomCommand, s.Timeout, s.Logger)
	}
}
