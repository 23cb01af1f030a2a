// Package version reports the clipseq build version.
package version

import "runtime/debug"

// Version can be set at build time:
//
//	go build -ldflags "-X github.com/vsariola/clipseq/version.Version=$(git describe --dirty)"
var Version string

// Hash is the short vcs revision the binary was built from, suffixed with
// "-dirty" for modified trees, or "" when unknown.
var Hash = func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	return hashFrom(info.Settings)
}()

// VersionOrHash is Version if set, otherwise Hash.
var VersionOrHash = func() string {
	if Version != "" {
		return Version
	}
	return Hash
}()

const shortHashLen = 7

func hashFrom(settings []debug.BuildSetting) string {
	var rev string
	var modified bool
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if rev == "" {
		return ""
	}
	if len(rev) > shortHashLen {
		rev = rev[:shortHashLen]
	}
	if modified {
		rev += "-dirty"
	}
	return rev
}
