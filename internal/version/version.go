// Package version provides version information for sshgate.
// The Version variable is set at build time via ldflags.
package version

// Version is the current version of sshgate.
// Set at build time via: -ldflags "-X github.com/xdg/sshgate/internal/version.Version=v1.0.0"
// Defaults to "dev" for development builds.
var Version = "dev"

// String returns the version for display, marking development builds.
func String() string {
	if Version == "" {
		return "dev"
	}
	return Version
}
