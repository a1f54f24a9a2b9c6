// SPDX-License-Identifier: MPL-2.0

// Package packagemap maps ROS-style package names to directories and resolves the
// package://, model:// and file:// URIs found in mesh and texture references.
package packagemap

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/beevik/etree"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"
)

// ManifestFileName is the conventional name of a package manifest.
const ManifestFileName = "packages.toml"

var (
	// ErrUnknownPackage is returned when a URI names a package that is not in the map.
	ErrUnknownPackage = errors.New("unknown package")
	// ErrPackageConflict is returned when a package is added twice with different paths.
	ErrPackageConflict = errors.New("package already registered with a different path")
	// ErrUnsupportedScheme is returned for URIs with a scheme other than package, model or file.
	ErrUnsupportedScheme = errors.New("unsupported URI scheme")
)

type (
	// Map is a concurrency-safe package name to directory map.
	Map struct {
		mu    sync.RWMutex
		paths map[string]string
	}

	// UnknownPackageError is returned when a package name is not registered.
	// It wraps ErrUnknownPackage for errors.Is() compatibility.
	UnknownPackageError struct {
		Name string
		URI  string
	}

	// PackageConflictError is returned by Add for a conflicting registration.
	// It wraps ErrPackageConflict for errors.Is() compatibility.
	PackageConflictError struct {
		Name     string
		Existing string
		New      string
	}

	// manifest is the TOML layout of a package manifest:
	//
	//	[packages]
	//	my_robot = "../my_robot"
	manifest struct {
		Packages map[string]string `toml:"packages"`
	}
)

// Error implements the error interface.
func (e *UnknownPackageError) Error() string {
	if e.URI != "" {
		return fmt.Sprintf("URI '%s' refers to unknown package '%s'", e.URI, e.Name)
	}
	return fmt.Sprintf("unknown package '%s'", e.Name)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *UnknownPackageError) Unwrap() error {
	return ErrUnknownPackage
}

// Error implements the error interface.
func (e *PackageConflictError) Error() string {
	return fmt.Sprintf("package '%s' is registered at '%s' and cannot be moved to '%s'", e.Name, e.Existing, e.New)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *PackageConflictError) Unwrap() error {
	return ErrPackageConflict
}

// New creates an empty package map.
func New() *Map {
	return &Map{paths: make(map[string]string)}
}

// Add registers a package directory. Re-adding the same name and path is a no-op.
func (m *Map) Add(name, dir string) error {
	if name == "" {
		return errors.New("package name must not be empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve path for package '%s': %w", name, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("package '%s': %w", name, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("package '%s': '%s' is not a directory", name, abs)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.paths[name]; ok {
		if existing == abs {
			return nil
		}
		return &PackageConflictError{Name: name, Existing: existing, New: abs}
	}
	m.paths[name] = abs
	return nil
}

// Contains reports whether name is registered.
func (m *Map) Contains(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.paths[name]
	return ok
}

// Path returns the directory of a registered package.
func (m *Map) Path(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.paths[name]
	if !ok {
		return "", &UnknownPackageError{Name: name}
	}
	return p, nil
}

// Names returns the registered package names, sorted.
func (m *Map) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.paths))
	for n := range m.paths {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered packages.
func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.paths)
}

// PopulateFromFolder registers every package below root that has a package.xml.
// When two package.xml files declare the same name, the first one found wins and the
// other is logged.
func (m *Map) PopulateFromFolder(root string) error {
	matches, err := doublestar.Glob(os.DirFS(root), "**/package.xml")
	if err != nil {
		return fmt.Errorf("failed to scan '%s' for packages: %w", root, err)
	}
	sort.Strings(matches)
	for _, rel := range matches {
		file := filepath.Join(root, filepath.FromSlash(rel))
		name, err := readPackageName(file)
		if err != nil {
			return err
		}
		dir := filepath.Dir(file)
		if err := m.Add(name, dir); err != nil {
			if errors.Is(err, ErrPackageConflict) {
				slog.Warn("duplicate package name, keeping the first one", "package", name, "ignored", dir)
				continue
			}
			return err
		}
		slog.Debug("registered package", "package", name, "path", dir)
	}
	return nil
}

// LoadManifest registers the packages listed in a TOML manifest. Relative paths are
// relative to the manifest's directory.
func (m *Map) LoadManifest(file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read package manifest: %w", err)
	}
	var mf manifest
	if err := toml.Unmarshal(data, &mf); err != nil {
		return fmt.Errorf("failed to parse package manifest '%s': %w", file, err)
	}
	base := filepath.Dir(file)
	names := make([]string, 0, len(mf.Packages))
	for n := range mf.Packages {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, name := range names {
		dir := mf.Packages[name]
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(base, dir)
		}
		if err := m.Add(name, dir); err != nil {
			return fmt.Errorf("package manifest '%s': %w", file, err)
		}
	}
	return nil
}

// Resolve maps a URI or path to a filesystem path. package:// and model:// URIs use the
// map; file:// URIs and absolute paths are used as is; other paths are relative to
// rootDir. The returned file is not required to exist.
func (m *Map) Resolve(uri, rootDir string) (string, error) {
	scheme, rest, hasScheme := strings.Cut(uri, "://")
	if !hasScheme {
		if filepath.IsAbs(uri) {
			return filepath.Clean(uri), nil
		}
		return filepath.Join(rootDir, filepath.FromSlash(uri)), nil
	}

	switch scheme {
	case "file":
		return filepath.Clean(filepath.FromSlash(rest)), nil
	case "package", "model":
		name, sub, _ := strings.Cut(rest, "/")
		dir, err := m.Path(name)
		if err != nil {
			return "", &UnknownPackageError{Name: name, URI: uri}
		}
		return filepath.Join(dir, filepath.FromSlash(path.Clean("/"+sub))), nil
	default:
		return "", fmt.Errorf("%w '%s' in '%s'", ErrUnsupportedScheme, scheme, uri)
	}
}

// readPackageName returns the <name> of a package.xml file.
func readPackageName(file string) (string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(file); err != nil {
		return "", fmt.Errorf("failed to read '%s': %w", file, err)
	}
	root := doc.SelectElement("package")
	if root == nil {
		return "", fmt.Errorf("'%s' has no <package> element", file)
	}
	nameEl := root.SelectElement("name")
	if nameEl == nil || strings.TrimSpace(nameEl.Text()) == "" {
		return "", fmt.Errorf("'%s' does not declare a package <name>", file)
	}
	return strings.TrimSpace(nameEl.Text()), nil
}
