// Package marker persists the run marker that guards a project against
// concurrent pipeline runs.
package marker
