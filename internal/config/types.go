// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/revkit/rev/internal/backend"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultTimeout bounds a single build invocation.
	DefaultTimeout = "10m"
	// DefaultCopyWorkers is the number of concurrent artifact copies.
	DefaultCopyWorkers = 4
	// DefaultMaxDepth is the project search depth.
	DefaultMaxDepth = 3
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidTimeout is returned when build.timeout is not a positive Go duration.
	ErrInvalidTimeout = errors.New("invalid build timeout")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sections.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		Build  BuildConfig  `json:"build" mapstructure:"build"`
		Export ExportConfig `json:"export" mapstructure:"export"`
		Search SearchConfig `json:"search" mapstructure:"search"`
		UI     UIConfig     `json:"ui" mapstructure:"ui"`
	}

	// BuildConfig selects the build backends and their options.
	BuildConfig struct {
		// Backends lists backend IDs in priority order.
		Backends []string `json:"backends" mapstructure:"backends"`
		// Timeout is a Go duration string bounding each build.
		Timeout string `json:"timeout" mapstructure:"timeout"`
		// MSBuildPath overrides the Visual Studio MSBuild location.
		MSBuildPath string `json:"msbuild_path" mapstructure:"msbuild_path"`
		// CustomCommand is the shell line run by the "custom" backend.
		CustomCommand string `json:"custom_command" mapstructure:"custom_command"`
	}

	// ExportConfig configures the export pipeline.
	ExportConfig struct {
		// ExtraArtifacts are additional assembly names copied next to the primary one.
		ExtraArtifacts []string `json:"extra_artifacts" mapstructure:"extra_artifacts"`
		// DestinationRoot replaces the Revit add-ins directory when set.
		DestinationRoot string `json:"destination_root" mapstructure:"destination_root"`
		// WebApp enables the yarn web app step.
		WebApp bool `json:"web_app" mapstructure:"web_app"`
		// CopyWorkers bounds concurrent artifact copies.
		CopyWorkers int `json:"copy_workers" mapstructure:"copy_workers"`
	}

	// SearchConfig bounds project discovery.
	SearchConfig struct {
		MaxDepth int `json:"max_depth" mapstructure:"max_depth"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables debug logging and full error chains.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
	}
)

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// TimeoutDuration parses Timeout. An empty value yields the default.
func (c BuildConfig) TimeoutDuration() (time.Duration, error) {
	raw := strings.TrimSpace(c.Timeout)
	if raw == "" {
		raw = DefaultTimeout
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", ErrInvalidTimeout, c.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w %q: must be positive", ErrInvalidTimeout, c.Timeout)
	}
	return d, nil
}

// IsValid returns whether every backend ID is known and the timeout parses.
func (c BuildConfig) IsValid() (bool, []error) {
	var errs []error
	for _, b := range c.Backends {
		if ok, idErrs := backend.ID(b).IsValid(); !ok {
			errs = append(errs, idErrs...)
		}
	}
	if _, err := c.TimeoutDuration(); err != nil {
		errs = append(errs, err)
	}
	return len(errs) == 0, errs
}

// Settings converts the build section into chain settings.
func (c BuildConfig) Settings(logger *slog.Logger) (backend.Settings, error) {
	timeout, err := c.TimeoutDuration()
	if err != nil {
		return backend.Settings{}, err
	}
	return backend.Settings{
		Backends:      c.Backends,
		Timeout:       timeout,
		MSBuildPath:   c.MSBuildPath,
		CustomCommand: c.CustomCommand,
		Logger:        logger,
	}, nil
}

// IsValid returns whether the export section has usable values.
func (c ExportConfig) IsValid() (bool, []error) {
	var errs []error
	if c.CopyWorkers < 1 {
		errs = append(errs, fmt.Errorf("export.copy_workers must be at least 1, got %d", c.CopyWorkers))
	}
	for i, name := range c.ExtraArtifacts {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Errorf("export.extra_artifacts[%d] is empty", i))
		}
	}
	return len(errs) == 0, errs
}

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if ok, fieldErrs := c.Build.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if ok, fieldErrs := c.Export.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if c.Search.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("search.max_depth must not be negative, got %d", c.Search.MaxDepth))
	}
	if ok, fieldErrs := c.UI.ColorScheme.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig followed by the field errors, so errors.Is
// matches both the sentinel and the cause of each field.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Build: BuildConfig{
			Backends: backend.DefaultBackends(),
			Timeout:  DefaultTimeout,
		},
		Export: ExportConfig{
			ExtraArtifacts: []string{},
			WebApp:         true,
			CopyWorkers:    DefaultCopyWorkers,
		},
		Search: SearchConfig{MaxDepth: DefaultMaxDepth},
		UI:     UIConfig{ColorScheme: ColorSchemeAuto},
	}
}
