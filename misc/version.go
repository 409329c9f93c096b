// Package misc keeps build-time identity of the program in a single place so
// it could be set by the linker and used everywhere else without cycles.
package misc

var (
	appName = "pbc"
	version = "development"
	gitHash = "unknown"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
