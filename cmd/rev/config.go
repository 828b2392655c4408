// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/revkit/rev/internal/config"
	"github.com/revkit/rev/internal/issue"
)

// newConfigCommand creates the `rev config` command tree.
func newConfigCommand(app *App, flags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage rev configuration",
		Long: `Manage rev configuration.

Configuration is stored in:
  - Linux: ~/.config/rev/config.cue
  - macOS: ~/Library/Application Support/rev/config.cue
  - Windows: %APPDATA%\rev\config.cue

A rev.cue in the starting directory is used when no user file exists.
Environment variables prefixed with REV_ override file values, for example
REV_BUILD_BACKENDS=dotnet.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd, app, flags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfigPath(app, flags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.FilePath(config.LoadOptions{ConfigFilePath: flags.configPath})
			if err != nil {
				return err
			}
			created, err := config.CreateDefaultConfig(path)
			if err != nil {
				return issue.WrapWithContext(err, "create config", path)
			}
			if !created {
				fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd, app, flags, args[0], args[1])
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the merged configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(loaded.Config))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Print the CUE schema configuration files are checked against",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprint(app.stdout, config.Schema())
			return nil
		},
	})

	return cfgCmd
}

func loadConfig(cmd *cobra.Command, flags *rootFlagValues) (config.Loaded, error) {
	dir, err := filepath.Abs(flags.dir)
	if err != nil {
		return config.Loaded{}, err
	}
	return config.LoadResolved(cmd.Context(), config.LoadOptions{
		ConfigFilePath: flags.configPath,
		WorkDir:        dir,
	})
}

func showConfig(cmd *cobra.Command, app *App, flags *rootFlagValues) error {
	loaded, err := loadConfig(cmd, flags)
	if err != nil {
		if i := issue.Get(issue.ConfigLoadFailedId); i != nil {
			if rendered, rerr := i.Render(glamourStyle(app.stderr)); rerr == nil {
				fmt.Fprint(app.stderr, rendered)
			}
		}
		return err
	}
	cfg := loaded.Config
	w := app.stdout

	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if loaded.Path != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), loaded.Path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("build"))
	fmt.Fprintf(w, "  backends: %s\n", valueStyle.Render(strings.Join(cfg.Build.Backends, ", ")))
	fmt.Fprintf(w, "  timeout: %s\n", valueStyle.Render(cfg.Build.Timeout))
	fmt.Fprintf(w, "  msbuild_path: %s\n", orNone(cfg.Build.MSBuildPath))
	fmt.Fprintf(w, "  custom_command: %s\n", orNone(cfg.Build.CustomCommand))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("export"))
	fmt.Fprintf(w, "  extra_artifacts: %s\n", orNone(strings.Join(cfg.Export.ExtraArtifacts, ", ")))
	fmt.Fprintf(w, "  destination_root: %s\n", orNone(cfg.Export.DestinationRoot))
	fmt.Fprintf(w, "  web_app: %s\n", valueStyle.Render(strconv.FormatBool(cfg.Export.WebApp)))
	fmt.Fprintf(w, "  copy_workers: %s\n", valueStyle.Render(strconv.Itoa(cfg.Export.CopyWorkers)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("search"))
	fmt.Fprintf(w, "  max_depth: %s\n", valueStyle.Render(strconv.Itoa(cfg.Search.MaxDepth)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(strconv.FormatBool(cfg.UI.Verbose)))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	return nil
}

func orNone(v string) string {
	if v == "" {
		return SubtitleStyle.Render("(none)")
	}
	return SuccessStyle.Render(v)
}

func showConfigPath(app *App, flags *rootFlagValues) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	path, err := config.FilePath(config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return err
	}
	statePath, err := config.StatePath()
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(app.stdout, "Config file: %s\n", path)
	fmt.Fprintf(app.stdout, "Preferences file: %s\n", statePath)
	return nil
}

func setConfigValue(cmd *cobra.Command, app *App, flags *rootFlagValues, key, value string) error {
	path, err := config.FilePath(config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return err
	}
	loaded, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}
	cfg := loaded.Config

	switch key {
	case "build.backends":
		cfg.Build.Backends = splitList(value)
	case "build.timeout":
		cfg.Build.Timeout = value
	case "build.msbuild_path":
		cfg.Build.MSBuildPath = value
	case "build.custom_command":
		cfg.Build.CustomCommand = value
	case "export.extra_artifacts":
		cfg.Export.ExtraArtifacts = splitList(value)
	case "export.destination_root":
		cfg.Export.DestinationRoot = value
	case "export.web_app":
		cfg.Export.WebApp = value == "true" || value == "1"
	case "export.copy_workers":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid export.copy_workers: %w", err)
		}
		cfg.Export.CopyWorkers = n
	case "search.max_depth":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid search.max_depth: %w", err)
		}
		cfg.Search.MaxDepth = n
	case "ui.verbose":
		cfg.UI.Verbose = value == "true" || value == "1"
	case "ui.color_scheme":
		cfg.UI.ColorScheme = config.ColorScheme(value)
	default:
		return fmt.Errorf("unknown configuration key: %s\nValid keys: %s", key, strings.Join(settableKeys, ", "))
	}

	if ok, errs := cfg.IsValid(); !ok {
		return errors.Join(errs...)
	}
	if err := config.Save(path, cfg); err != nil {
		return issue.WrapWithContext(err, "save config", path)
	}

	fmt.Fprintf(app.stdout, "%s Set %s = %s\n", SuccessStyle.Render("✓"), key, value)
	return nil
}

var settableKeys = []string{
	"build.backends", "build.timeout", "build.msbuild_path", "build.custom_command",
	"export.extra_artifacts", "export.destination_root", "export.web_app", "export.copy_workers",
	"search.max_depth", "ui.verbose", "ui.color_scheme",
}

// splitList parses a comma-separated value, dropping empty items.
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
