// Package version exposes build metadata.
package version

// Set at build time via -ldflags.
var (
	// Version is the semantic version.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)
