// Package version holds build metadata stamped in by the linker:
//
//	go build -ldflags "-X github.com/dkoosis/sarifview/internal/version.Version=v1.2.0"
package version

import "fmt"

// These variables are populated by the Go linker (LDFLAGS) at build time.
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// String renders the three values on one line.
func String() string {
	return fmt.Sprintf("sarifview %s (commit %s, built %s)", Version, CommitHash, BuildDate)
}
