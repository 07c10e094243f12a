// Package version holds the build-time version string.
package version

// AppVersion is overridden at build time via -ldflags.
var AppVersion = "dev"

// String returns the reported version string.
func String() string { return AppVersion }
