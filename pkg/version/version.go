// Package version holds build metadata set through -ldflags.
package version

import "fmt"

// Set at build time with -ldflags "-X github.com/rshade/esgledger/pkg/version.version=...".
//
//nolint:gochecknoglobals // Populated by the linker.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersion returns the release version.
func GetVersion() string {
	return version
}

// GetFullVersion returns the version with commit and build date.
func GetFullVersion() string {
	return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
}
