// Package version holds build information, overridable with ldflags:
// go build -ldflags "-X mavosort/internal/version.Version=1.0.0 -X mavosort/internal/version.Commit=abc123"
package version

import "fmt"

var (
	// Version is the semantic version of mavosort
	Version = "0.4.0"

	// Commit is the git commit hash (set at build time)
	Commit = "unknown"

	// BuildDate is the build timestamp (set at build time)
	BuildDate = "unknown"
)

// ShortCommit returns the first 7 characters of Commit, or "" when unknown.
func ShortCommit() string {
	if Commit == "unknown" || len(Commit) < 7 {
		return ""
	}
	return Commit[:7]
}

// Info returns the version with the short commit when known.
func Info() string {
	if c := ShortCommit(); c != "" {
		return Version + " (" + c + ")"
	}
	return Version
}

// Full returns multi-line version information.
func Full() string {
	return fmt.Sprintf("mavosort version %s\nCommit: %s\nBuilt: %s", Version, Commit, BuildDate)
}
