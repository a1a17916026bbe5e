package version

import "fmt"

// Build metadata, overridable via ldflags.
var (
	Version   = "0.1.0"
	Commit    = "none"
	BuildTime = "unknown"
)

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns the version line printed by `dash-build version`.
func Full() string {
	return fmt.Sprintf("dash-build %s (commit %s, built at %s)", Version, Commit, BuildTime)
}
