// Package buildinfo holds values stamped in at link time:
//
//	go build -ldflags "-X plasma/internal/buildinfo.Version=1.2.3 -X plasma/internal/buildinfo.Build=$(git rev-parse --short HEAD)"
package buildinfo

import "runtime/debug"

var (
	Version = "dev"
	Build   = "unknown"
)

// String renders the version with the build revision when known.
func String() string {
	version := Version
	if version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
	}
	if Build == "" || Build == "unknown" {
		return version
	}
	return version + " (" + Build + ")"
}
