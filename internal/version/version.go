// Package version reports build information for the dialogue tools.
package version

import "fmt"

// Set at build time with -ldflags "-X dialogue-ocr/internal/version.Version=...".
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// String formats the build information for -version output.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
