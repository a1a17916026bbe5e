// Package run describes a single pipeline run: its stages and the marker
// that keeps two runs from writing to the same project at once.
package run
