// SPDX-License-Identifier: MPL-2.0

// Package config loads arcade configuration using Viper with CUE as the file format.
//
// The file is config.cue in the platform configuration directory
// ($XDG_CONFIG_HOME/arcade on Linux, ~/Library/Application Support/arcade on
// macOS, %APPDATA%\arcade on Windows), falling back to ./config.cue. It is
// validated against the embedded #Config schema (config_schema.cue) before
// being merged over the defaults. ARCADE_* environment variables override
// file values.
package config
