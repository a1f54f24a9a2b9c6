// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

const testSchema = `
#Config: close({
	log_level?: "debug" | "info" | "warn" | "error"
	strict?:    bool
	package_paths?: [...string & =~"\\S"]
})
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.cue")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "strict: true\npackage_paths: [\"models\"]\n")
	got, err := ParseFile[map[string]any]([]byte(testSchema), path, "#Config")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*got) != 2 || (*got)["strict"] != true {
		t.Errorf("expected only the keys set in the file, got %v", *got)
	}
}

func TestParseFile_Problems(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		path string
	}{
		{"unknown level", `log_level: "trace"`, "log_level"},
		{"wrong type", `strict: "yes"`, "strict"},
		{"unknown key", `colour: "red"`, "colour"},
		{"blank package path", "package_paths: [\"ok\", \" \"]", "package_paths[1]"},
		{"syntax", "log_level: \"debug\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeFile(t, tt.data)
			_, err := ParseFile[map[string]any]([]byte(testSchema), path, "#Config")
			var cerr *Error
			if !errors.As(err, &cerr) {
				t.Fatalf("expected *Error, got %T: %v", err, err)
			}
			if cerr.File != path || len(cerr.Problems) == 0 {
				t.Fatalf("unexpected error %+v", cerr)
			}
			if tt.path != "" && !slices.ContainsFunc(cerr.Problems, func(p Problem) bool { return p.Path == tt.path }) {
				t.Errorf("expected a problem at %q, got %+v", tt.path, cerr.Problems)
			}
			if !strings.HasPrefix(err.Error(), path) {
				t.Errorf("expected the file name first, got %q", err)
			}
		})
	}
}

func TestParseFile_TooLarge(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "// "+strings.Repeat("x", int(MaxFileSize)))
	_, err := ParseFile[map[string]any]([]byte(testSchema), path, "#Config")
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("expected the file name in %q", err)
	}
}

func TestParseFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := ParseFile[map[string]any]([]byte(testSchema), filepath.Join(t.TempDir(), "none.cue"), "#Config")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}

func TestParseFile_MissingDefinition(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "strict: true\n")
	_, err := ParseFile[map[string]any]([]byte(testSchema), path, "#Nope")
	if err == nil || !strings.Contains(err.Error(), "internal error") || !strings.Contains(err.Error(), "#Nope") {
		t.Errorf("expected an internal error naming the definition, got %v", err)
	}
}
