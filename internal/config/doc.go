// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from config.cue in the platform config directory
// ($XDG_CONFIG_HOME/rev on Linux, ~/Library/Application Support/rev on macOS,
// %APPDATA%\rev on Windows) or from an explicit path. Files are validated
// against the embedded schema in config_schema.cue, merged over the built-in
// defaults, and finally overridden by REV_* environment variables.
package config
