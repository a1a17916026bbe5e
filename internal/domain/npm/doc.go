// Package npm models the parts of an npm project the build pipeline reads:
// the package descriptor (package.json or package-lock.json), the list of
// dependency bundles copied out of node_modules, and the digest payload
// written next to the bundles.
package npm
