// Package version exposes build metadata of the dash-build binary.
//
// Version, Commit and BuildTime are injected with -ldflags "-X ..." and keep
// their defaults for local builds.
package version
