// Package version holds build metadata injected at link time:
//
//	go build -ldflags "-X git.home.luguber.info/inful/mdxsite/internal/version.Version=v1.0.0"
package version

import "fmt"

// Version is the release version.
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String formats the version line printed by --version.
func String() string {
	return fmt.Sprintf("mdxsite %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
