// Package pipeline builds the renderer assets.
//
// A full build runs four stages in a fixed order: clean stale outputs,
// install dependencies with the package manager, copy dependency bundles and
// run the bundler, then hash every bundle into digest.json. Any failure stops
// the run; there are no retries and no rollback, so a failed build is
// recovered by running it again from the clean stage.
package pipeline
