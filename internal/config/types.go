// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const (
	// LogLevelDebug enables debug notes from the parser and plant.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the default log level.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn hides informational messages.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError only shows errors.
	LogLevelError LogLevel = "error"

	// OutputFormatText prints diagnostics as "<file>:<line>: <severity>: <message>".
	OutputFormatText OutputFormat = "text"
	// OutputFormatYAML prints a YAML diagnostic report.
	OutputFormatYAML OutputFormat = "yaml"
	// OutputFormatJSON prints a JSON diagnostic report.
	OutputFormatJSON OutputFormat = "json"
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidOutputFormat is returned when an OutputFormat value is not recognized.
	ErrInvalidOutputFormat = errors.New("invalid output format")
	// ErrInvalidPackagePath is the sentinel error wrapped by InvalidPackagePathError.
	ErrInvalidPackagePath = errors.New("invalid package path")
	// ErrInvalidManifestPath is returned when a ManifestPath value is whitespace-only.
	ErrInvalidManifestPath = errors.New("invalid package manifest path")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is the minimum level of log messages written to stderr.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// OutputFormat selects how validation results are printed.
	OutputFormat string

	// InvalidOutputFormatError is returned when an OutputFormat value is not recognized.
	// It wraps ErrInvalidOutputFormat for errors.Is() compatibility.
	InvalidOutputFormatError struct {
		Value OutputFormat
	}

	// PackagePath is a folder scanned recursively for package.xml files.
	// A valid path must be non-empty and not whitespace-only.
	PackagePath string

	// InvalidPackagePathError is returned when a PackagePath value is
	// empty or whitespace-only. It wraps ErrInvalidPackagePath for errors.Is().
	InvalidPackagePathError struct {
		Value PackagePath
	}

	// ManifestPath is the path to a TOML package manifest.
	// The zero value ("") is valid and means "no manifest".
	ManifestPath string

	// InvalidManifestPathError is returned when a ManifestPath value is
	// non-empty but whitespace-only.
	InvalidManifestPathError struct {
		Value ManifestPath
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// LogLevel is the minimum level written to stderr
		LogLevel LogLevel `json:"log_level" mapstructure:"log_level"`
		// Strict makes warnings count as failures in validate
		Strict bool `json:"strict" mapstructure:"strict"`
		// OutputFormat selects the validate report format
		OutputFormat OutputFormat `json:"output_format" mapstructure:"output_format"`
		// PackagePaths are folders searched for package.xml files
		PackagePaths []PackagePath `json:"package_paths" mapstructure:"package_paths"`
		// PackageManifest is an optional TOML file mapping package names to folders
		PackageManifest ManifestPath `json:"package_manifest" mapstructure:"package_manifest"`
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:        LogLevelInfo,
		Strict:          false,
		OutputFormat:    OutputFormatText,
		PackagePaths:    []PackagePath{},
		PackageManifest: "",
	}
}

// IsValid returns whether the Config has valid fields.
// Strict is a bool and needs no validation.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.LogLevel.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.OutputFormat.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	for _, p := range c.PackagePaths {
		if valid, fieldErrs := p.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if valid, fieldErrs := c.PackageManifest.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// SlogLevel maps the LogLevel to a slog.Level. Unknown values map to info.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// String returns the string representation of the OutputFormat.
func (f OutputFormat) String() string { return string(f) }

// IsValid returns whether the OutputFormat is one of the defined formats.
func (f OutputFormat) IsValid() (bool, []error) {
	switch f {
	case OutputFormatText, OutputFormatYAML, OutputFormatJSON:
		return true, nil
	default:
		return false, []error{&InvalidOutputFormatError{Value: f}}
	}
}

// Error implements the error interface for InvalidOutputFormatError.
func (e *InvalidOutputFormatError) Error() string {
	return fmt.Sprintf("invalid output format %q (valid: text, yaml, json)", e.Value)
}

// Unwrap returns ErrInvalidOutputFormat for errors.Is() compatibility.
func (e *InvalidOutputFormatError) Unwrap() error { return ErrInvalidOutputFormat }

// String returns the string representation of the PackagePath.
func (p PackagePath) String() string { return string(p) }

// IsValid returns whether the PackagePath is valid.
func (p PackagePath) IsValid() (bool, []error) {
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidPackagePathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidPackagePathError.
func (e *InvalidPackagePathError) Error() string {
	return fmt.Sprintf("invalid package path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidPackagePath for errors.Is() compatibility.
func (e *InvalidPackagePathError) Unwrap() error { return ErrInvalidPackagePath }

// String returns the string representation of the ManifestPath.
func (p ManifestPath) String() string { return string(p) }

// IsValid returns whether the ManifestPath is valid.
// The zero value ("") is valid (means "no manifest").
func (p ManifestPath) IsValid() (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidManifestPathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidManifestPathError.
func (e *InvalidManifestPathError) Error() string {
	return fmt.Sprintf("invalid package manifest path %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidManifestPath for errors.Is() compatibility.
func (e *InvalidManifestPathError) Unwrap() error { return ErrInvalidManifestPath }
