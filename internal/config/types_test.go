// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLogLevel_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level   LogLevel
		want    bool
		wantErr bool
	}{
		{LogLevelDebug, true, false},
		{LogLevelInfo, true, false},
		{LogLevelWarn, true, false},
		{LogLevelError, true, false},
		{"", false, true},
		{"trace", false, true},
		{"INFO", false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			t.Parallel()
			isValid, errs := tt.level.IsValid()
			if isValid != tt.want {
				t.Errorf("LogLevel(%q).IsValid() = %v, want %v", tt.level, isValid, tt.want)
			}
			if tt.wantErr {
				if len(errs) == 0 {
					t.Fatalf("LogLevel(%q).IsValid() returned no errors, want error", tt.level)
				}
				if !errors.Is(errs[0], ErrInvalidLogLevel) {
					t.Errorf("error should wrap ErrInvalidLogLevel, got: %v", errs[0])
				}
			} else if len(errs) > 0 {
				t.Errorf("LogLevel(%q).IsValid() returned unexpected errors: %v", tt.level, errs)
			}
		})
	}
}

func TestLogLevel_SlogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level LogLevel
		want  slog.Level
	}{
		{LogLevelDebug, slog.LevelDebug},
		{LogLevelInfo, slog.LevelInfo},
		{LogLevelWarn, slog.LevelWarn},
		{LogLevelError, slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := tt.level.SlogLevel(); got != tt.want {
			t.Errorf("LogLevel(%q).SlogLevel() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestOutputFormat_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format  OutputFormat
		want    bool
		wantErr bool
	}{
		{OutputFormatText, true, false},
		{OutputFormatYAML, true, false},
		{OutputFormatJSON, true, false},
		{"", false, true},
		{"xml", false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			t.Parallel()
			isValid, errs := tt.format.IsValid()
			if isValid != tt.want {
				t.Errorf("OutputFormat(%q).IsValid() = %v, want %v", tt.format, isValid, tt.want)
			}
			if tt.wantErr {
				if len(errs) == 0 || !errors.Is(errs[0], ErrInvalidOutputFormat) {
					t.Errorf("expected ErrInvalidOutputFormat, got: %v", errs)
				}
			} else if len(errs) > 0 {
				t.Errorf("OutputFormat(%q).IsValid() returned unexpected errors: %v", tt.format, errs)
			}
		})
	}
}

func TestPackagePath_IsValid(t *testing.T) {
	t.Parallel()

	if valid, _ := PackagePath("/opt/ros/share").IsValid(); !valid {
		t.Error("expected an absolute path to be valid")
	}
	for _, p := range []PackagePath{"", "   ", "\t"} {
		valid, errs := p.IsValid()
		if valid || len(errs) == 0 || !errors.Is(errs[0], ErrInvalidPackagePath) {
			t.Errorf("PackagePath(%q) should be invalid, got %v %v", p, valid, errs)
		}
	}
}

func TestManifestPath_IsValid(t *testing.T) {
	t.Parallel()

	for _, p := range []ManifestPath{"", "packages.toml"} {
		if valid, errs := p.IsValid(); !valid {
			t.Errorf("ManifestPath(%q) should be valid, got %v", p, errs)
		}
	}
	valid, errs := ManifestPath("  ").IsValid()
	if valid || !errors.Is(errs[0], ErrInvalidManifestPath) {
		t.Errorf("whitespace-only manifest path should be invalid, got %v", errs)
	}
}

func TestConfig_IsValid(t *testing.T) {
	t.Parallel()

	if valid, errs := DefaultConfig().IsValid(); !valid {
		t.Fatalf("default config should be valid, got %v", errs)
	}

	cfg := DefaultConfig()
	cfg.LogLevel = "loud"
	cfg.OutputFormat = "xml"
	cfg.PackagePaths = []PackagePath{"ok", " "}
	valid, errs := cfg.IsValid()
	if valid || len(errs) != 1 {
		t.Fatalf("expected a single aggregated error, got %v", errs)
	}
	var cfgErr *InvalidConfigError
	if !errors.As(errs[0], &cfgErr) || !errors.Is(errs[0], ErrInvalidConfig) {
		t.Fatalf("expected *InvalidConfigError, got %T", errs[0])
	}
	if len(cfgErr.FieldErrors) != 3 {
		t.Errorf("expected 3 field errors, got %d: %v", len(cfgErr.FieldErrors), cfgErr.FieldErrors)
	}
	if !strings.Contains(cfgErr.Error(), `"loud"`) || !strings.Contains(cfgErr.Error(), `"xml"`) {
		t.Errorf("message should list the bad values, got %q", cfgErr.Error())
	}
}
