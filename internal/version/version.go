// Package version holds the build version, set with
// -ldflags "-X readfix/internal/version.Version=...".
package version

var Version = "dev"
