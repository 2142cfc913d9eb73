// Package version carries the build version, overridden at link time via
// -ldflags "-X .../internal/version.Version=v1.2.3".
package version

// Version is the released version string.
var Version = "dev"
