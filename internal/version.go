package internal

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Build information, set with -ldflags when a release is built.
var (
	Branch     = "main"
	Version    = "0.1.0"
	Prerelease = ""
	Metadata   = "dev"
	Commit     = ""
	Date       = ""
)

// FullVersion returns the semver version of this build. Development builds
// report the next patch version so that they sort after the release they were
// built from.
func FullVersion() string {
	v, err := semver.NewVersion(Version)
	if err != nil {
		panic(fmt.Sprintf("invalid version %v: %v", Version, err))
	}

	if Metadata == "dev" {
		*v = v.IncPatch()
	}
	if Prerelease != "" {
		*v, _ = v.SetPrerelease(Prerelease)
	}
	if Metadata != "" {
		*v, _ = v.SetMetadata(Metadata)
	}

	return v.String()
}
