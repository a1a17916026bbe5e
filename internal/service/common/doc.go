// Package common holds the adapters the pipeline uses to reach outside the
// process: a Runner for the package manager and a Fetcher for CDN downloads.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
