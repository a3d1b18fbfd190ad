package common

// version and gitHash are overridden at build time via
// -ldflags "-X github.com/vibraphone/pegtl-css/common.version=... -X github.com/vibraphone/pegtl-css/common.gitHash=...",
// grounded on the teacher's misc.GetVersion/misc.GetGitHash convention.
var (
	version = "dev"
	gitHash = "none"
)

// GetAppName returns this program's name, for use in logging and the
// CLI's own --version output.
func GetAppName() string { return "cssparse" }

// GetVersion returns the build-time version string.
func GetVersion() string { return version }

// GetGitHash returns the build-time commit hash.
func GetGitHash() string { return gitHash }
