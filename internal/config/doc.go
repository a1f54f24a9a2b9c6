// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/urdfkit/config.cue (XDG_CONFIG_HOME on Linux,
// ~/Library/Application Support/urdfkit/config.cue on macOS, %APPDATA%\urdfkit\config.cue
// on Windows) or from an explicit --config path. Files are validated against the embedded
// config_schema.cue, merged over built-in defaults, and URDFKIT_* environment variables
// override both. Relative package paths are resolved against the config file's folder.
package config
