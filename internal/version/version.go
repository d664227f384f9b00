// Package version holds the build version of deck-dashboard.
// Set it at build time with:
//
//	go build -ldflags "-X github.com/Sovbaka/Hearthstone-deck-analysis/internal/version.Version=v0.3.0" ./cmd/deck-dashboard
package version

import "runtime/debug"

// Version defaults to "dev" unless overridden by ldflags.
var Version = "dev"

// String returns Version, falling back to the module version recorded
// by `go install` when no ldflags were given.
func String() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}
