// Package version carries build information for the startup log.
//
// Values are injected at build time via -ldflags, for example:
//
//	go build -ldflags "-X github.com/keshon/hybridkit/internal/version.GitCommit=$(git rev-parse --short HEAD)"
package version

import "fmt"

// Set via -ldflags at build time.
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

// Info returns a version string suitable for logs and --version output.
func Info() string {
	return fmt.Sprintf("%s (%s)", Version, GitCommit)
}
