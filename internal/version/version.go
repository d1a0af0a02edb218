package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time:
//
//	go build -ldflags "-X bennypowers.dev/embedls/internal/version.Version=v0.1.0"
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// readBuildInfo is swapped out in tests
var readBuildInfo = debug.ReadBuildInfo

// GetVersion returns the ldflags version, then the module version recorded in
// the binary, then "dev"
func GetVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := readBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return "dev"
}

// GetFullVersion returns the version with the commit hash when it is known
func GetFullVersion() string {
	v := GetVersion()
	if GitCommit == "unknown" || GitCommit == "" {
		return v
	}
	commit := GitCommit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("%s (commit: %s)", v, commit)
}
