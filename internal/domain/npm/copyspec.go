package npm

import (
	"path/filepath"
	"slices"
	"strings"
)

const (
	minifiedExt = "min.js"
	plainExt    = "js"
)

// CopyEntry names one file to copy out of node_modules and, optionally,
// older versions of the same file to fetch from the CDN.
type CopyEntry struct {
	Scope     string   `yaml:"scope,omitempty"`
	Name      string   `yaml:"name"`
	Subfolder string   `yaml:"subfolder,omitempty"`
	Filename  string   `yaml:"filename"`
	Extras    []string `yaml:"extras,omitempty"`
}

// CopySpec is processed in order.
type CopySpec []CopyEntry

// Key is the dependency key used in the descriptor, "scope/name" or "name".
func (e CopyEntry) Key() string {
	if e.Scope == "" {
		return e.Name
	}

	return e.Scope + "/" + e.Name
}

// SourcePath locates the file inside the installed modules folder.
func (e CopyEntry) SourcePath(modulesDir string) string {
	parts := []string{modulesDir}
	for _, part := range []string{e.Scope, e.Name, e.Subfolder, e.Filename} {
		if part != "" {
			parts = append(parts, part)
		}
	}

	return filepath.Join(parts...)
}

// Ext is "min.js" when the filename has a "min" token, otherwise "js".
func (e CopyEntry) Ext() string {
	if slices.Contains(strings.Split(e.Filename, "."), "min") {
		return minifiedExt
	}

	return plainExt
}

// TargetName is the file name of the copy for the given version.
func (e CopyEntry) TargetName(version string) string {
	return e.Name + "@" + version + "." + e.Ext()
}

// SquashedName strips dashes and dots so the name can be a template placeholder.
func (e CopyEntry) SquashedName() string {
	return strings.NewReplacer("-", "", ".", "").Replace(e.Name)
}

// ExtrasPlaceholder is the template key listing the extra versions.
func (e CopyEntry) ExtrasPlaceholder() string {
	return "extra_" + e.SquashedName() + "_versions"
}

// ExtrasValue renders the extra versions as a quoted, comma separated list.
func (e CopyEntry) ExtrasValue() string {
	return `"` + strings.Join(e.Extras, `", "`) + `"`
}

// RendererCopySpec is the bundle set shipped with dash-renderer.
func RendererCopySpec() CopySpec {
	extras := []string{"18.2.0"}

	return CopySpec{
		{Scope: "@babel", Name: "polyfill", Subfolder: "dist", Filename: "polyfill.min.js"},
		{Name: "react", Subfolder: "umd", Filename: "react.production.min.js", Extras: extras},
		{Name: "react", Subfolder: "umd", Filename: "react.development.js", Extras: extras},
		{Name: "react-dom", Subfolder: "umd", Filename: "react-dom.production.min.js", Extras: extras},
		{Name: "react-dom", Subfolder: "umd", Filename: "react-dom.development.js", Extras: extras},
		{Name: "prop-types", Filename: "prop-types.min.js"},
		{Name: "prop-types", Filename: "prop-types.js"},
	}
}
