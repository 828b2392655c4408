// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/revkit/rev/internal/cueutil"
	"github.com/revkit/rev/internal/issue"
	"github.com/revkit/rev/internal/prefs"
)

const (
	// AppName is the application name.
	AppName = "rev"
	// EnvPrefix prefixes environment overrides, e.g. REV_BUILD_TIMEOUT.
	EnvPrefix = "REV"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// LocalConfigFileName is read from the working directory when no user
	// config file exists.
	LocalConfigFileName = "rev.cue"
	// MaxFileSize caps configuration files at 64KB.
	MaxFileSize int64 = 64 << 10
)

//go:embed config_schema.cue
var configSchema []byte

// Schema returns the embedded CUE schema.
func Schema() string { return string(configSchema) }

// ConfigDir returns the rev configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string
	switch runtime.GOOS {
	case "windows":
		configDir = windowsAppData()
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// DataDir returns the per-user application data directory that hosts the
// Revit add-ins folders: %APPDATA% on Windows, ~/Library/Application Support
// on macOS, and $XDG_DATA_HOME (defaulting to ~/.local/share) elsewhere.
func DataDir() (string, error) {
	if dataDirOverride != "" {
		return dataDirOverride, nil
	}

	switch runtime.GOOS {
	case "windows":
		return windowsAppData(), nil
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support"), nil
	default:
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
			return dir, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, ".local", "share"), nil
	}
}

func windowsAppData() string {
	if dir := os.Getenv("APPDATA"); dir != "" {
		return dir
	}
	return filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
}

// StatePath returns the location of the persisted preferences file.
func StatePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, prefs.FileName), nil
}

// AddinsRoot returns the default export destination for version v.
func AddinsRoot(v prefs.TargetVersion) (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return prefs.AddinsDir(dir, v), nil
}

// FilePath returns the user config file location for opts, whether or not
// the file exists.
func FilePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		return opts.ConfigFilePath, nil
	}
	dir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state. It returns the file that was merged, or "" when only
// defaults and environment overrides apply.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper()

	resolvedPath, err := resolveFile(opts)
	if err != nil {
		return nil, "", err
	}
	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithIssue(issue.ConfigLoadFailedId).
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'rev config init' to write a fresh default file").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	// Environment overrides bypass the CUE schema, so check the merged result.
	if ok, errs := cfg.IsValid(); !ok {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithIssue(issue.ConfigLoadFailedId).
			WithResource(resolvedPath).
			WithSuggestion("Check " + EnvPrefix + "_* environment variables for typos").
			WithSuggestion("Valid build backends are msbuild, dotnet and custom").
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("build.backends", defaults.Build.Backends)
	v.SetDefault("build.timeout", defaults.Build.Timeout)
	v.SetDefault("build.msbuild_path", defaults.Build.MSBuildPath)
	v.SetDefault("build.custom_command", defaults.Build.CustomCommand)
	v.SetDefault("export.extra_artifacts", defaults.Export.ExtraArtifacts)
	v.SetDefault("export.destination_root", defaults.Export.DestinationRoot)
	v.SetDefault("export.web_app", defaults.Export.WebApp)
	v.SetDefault("export.copy_workers", defaults.Export.CopyWorkers)
	v.SetDefault("search.max_depth", defaults.Search.MaxDepth)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.color_scheme", string(defaults.UI.ColorScheme))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// resolveFile picks the config file to merge. An explicit path must exist;
// otherwise the user file is preferred over a local rev.cue, and neither
// existing is not an error.
func resolveFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithIssue(issue.ConfigLoadFailedId).
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'rev config show' to see the default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	userPath, err := FilePath(opts)
	if err != nil {
		return "", err
	}
	if fileExists(userPath) {
		return userPath, nil
	}

	workDir := opts.WorkDir
	if workDir == "" {
		workDir = "."
	}
	if local := filepath.Join(workDir, LocalConfigFileName); fileExists(local) {
		return local, nil
	}
	return "", nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// loadCUEIntoViper validates the file at path against #Config and merges
// its contents into v. Decoding targets a map because viper owns the
// defaults and the environment layer.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	result, err := cueutil.ParseFile[map[string]any](configSchema, path, "#Config",
		cueutil.WithConcrete(false),
		cueutil.WithMaxFileSize(MaxFileSize),
	)
	if err != nil {
		return err
	}
	if err := v.MergeConfigMap(*result.Value); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default config file at path unless one
// already exists. It reports whether a file was written.
func CreateDefaultConfig(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := Save(path, DefaultConfig()); err != nil {
		return false, err
	}
	return true, nil
}

// Save writes cfg to path as CUE.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// rev configuration file\n")
	sb.WriteString("// Environment variables prefixed with REV_ override these values.\n\n")

	sb.WriteString("build: {\n")
	fmt.Fprintf(&sb, "\tbackends: %s\n", cueStringList(cfg.Build.Backends))
	fmt.Fprintf(&sb, "\ttimeout: %q\n", cfg.Build.Timeout)
	if cfg.Build.MSBuildPath != "" {
		fmt.Fprintf(&sb, "\tmsbuild_path: %q\n", cfg.Build.MSBuildPath)
	}
	if cfg.Build.CustomCommand != "" {
		fmt.Fprintf(&sb, "\tcustom_command: %q\n", cfg.Build.CustomCommand)
	}
	sb.WriteString("}\n")

	sb.WriteString("\nexport: {\n")
	fmt.Fprintf(&sb, "\textra_artifacts: %s\n", cueStringList(cfg.Export.ExtraArtifacts))
	if cfg.Export.DestinationRoot != "" {
		fmt.Fprintf(&sb, "\tdestination_root: %q\n", cfg.Export.DestinationRoot)
	}
	fmt.Fprintf(&sb, "\tweb_app: %v\n", cfg.Export.WebApp)
	fmt.Fprintf(&sb, "\tcopy_workers: %d\n", cfg.Export.CopyWorkers)
	sb.WriteString("}\n")

	sb.WriteString("\nsearch: {\n")
	fmt.Fprintf(&sb, "\tmax_depth: %d\n", cfg.Search.MaxDepth)
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	sb.WriteString("}\n")

	return sb.String()
}

func cueStringList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
