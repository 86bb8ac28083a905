package params

import (
	"fmt"
)

// version parts
const (
	VersionMajor = 0        // Major version component of the current release
	VersionMinor = 1        // Minor version component of the current release
	VersionPatch = 0        // Patch version component of the current release
	VersionMeta  = "stable" // Version metadata to append to the version string
)

// Version holds the textual version string.
var Version = fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)

// VersionWithMeta holds the textual version string including the metadata.
var VersionWithMeta = withMeta(Version, VersionMeta)

func withMeta(version, meta string) string {
	if meta == "" {
		return version
	}
	return version + "-" + meta
}

// VersionWithCommit append the short git commit to the version,
// and the commit date for unstable builds.
func VersionWithCommit(gitCommit, gitDate string) string {
	vsn := VersionWithMeta
	if len(gitCommit) >= 8 {
		vsn += "-" + gitCommit[:8]
	}
	if VersionMeta != "stable" && gitDate != "" {
		vsn += "-" + gitDate
	}
	return vsn
}
