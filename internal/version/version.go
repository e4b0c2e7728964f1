// Package version provides build-time version information.
package version

// Set at build time via -ldflags "-X eeg-scope/internal/version.Version=...".
var (
	// Version is the semantic version.
	Version = "0.1.0"

	// BuildTime is the UTC time the binary was built.
	BuildTime = "unknown"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"
)
