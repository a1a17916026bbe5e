// Package config defines the build settings: where the project, its bundles
// and its generated files live, which package manager and scripts to run,
// and which dependency bundles to copy. Settings are stored as YAML and
// every field has a default matching the dash-renderer layout.
package config
