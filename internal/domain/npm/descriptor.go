package npm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// lockPackagePrefix prefixes top-level entries of the lock file "packages" map.
const lockPackagePrefix = "node_modules/"

var (
	// ErrDependencyNotFound is returned when a dependency key is absent from the descriptor.
	ErrDependencyNotFound = errors.New("dependency not found")

	errMissingName    = errors.New("package name is missing")
	errMissingVersion = errors.New("package version is missing")
)

// Dependency is a single entry of the "dependencies" map.
// In package.json it is a version range string, in a lock file an object.
type Dependency struct {
	Version string `json:"version"`
}

// UnmarshalJSON accepts both the string and the object form.
func (d *Dependency) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &d.Version)
	}

	var entry struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &entry); err != nil {
		return err
	}

	d.Version = entry.Version

	return nil
}

// Descriptor is the immutable view of a manifest or lock file.
type Descriptor struct {
	Name         string
	Version      string
	Dependencies map[string]Dependency
}

// rawDescriptor is the on-disk shape shared by package.json and package-lock.json.
type rawDescriptor struct {
	Name         string                `json:"name"`
	Version      string                `json:"version"`
	Dependencies map[string]Dependency `json:"dependencies"`
	// Packages is only present in lock files of format v2 and later.
	Packages map[string]Dependency `json:"packages"`
}

// LoadDescriptor reads a package.json or package-lock.json file.
func LoadDescriptor(path string) (*Descriptor, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	desc, err := ParseDescriptor(contents)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return desc, nil
}

// ParseDescriptor decodes descriptor JSON.
// Lock files without a top-level "dependencies" map (format v3) are
// resolved through their "packages" entries.
func ParseDescriptor(contents []byte) (*Descriptor, error) {
	var raw rawDescriptor
	if err := json.Unmarshal(contents, &raw); err != nil {
		return nil, err
	}

	if raw.Name == "" {
		return nil, errMissingName
	}

	if raw.Version == "" {
		return nil, errMissingVersion
	}

	deps := make(map[string]Dependency, len(raw.Dependencies)+len(raw.Packages))
	for key, dep := range raw.Dependencies {
		deps[key] = dep
	}

	for path, dep := range raw.Packages {
		key, ok := strings.CutPrefix(path, lockPackagePrefix)
		if !ok || strings.Contains(key, "/"+lockPackagePrefix) {
			continue
		}

		if _, found := deps[key]; !found {
			deps[key] = dep
		}
	}

	return &Descriptor{
		Name:         raw.Name,
		Version:      raw.Version,
		Dependencies: deps,
	}, nil
}

// ResolveVersion returns the version recorded for the dependency key.
func (d *Descriptor) ResolveVersion(key string) (string, error) {
	dep, ok := d.Dependencies[key]
	if !ok || dep.Version == "" {
		return "", fmt.Errorf("%s: %w", key, ErrDependencyNotFound)
	}

	return dep.Version, nil
}

// PlaceholderName turns the package name into the "package" template value.
func (d *Descriptor) PlaceholderName() string {
	return strings.NewReplacer(" ", "_", "-", "_").Replace(d.Name)
}
