package version

import (
	"fmt"
	"runtime"
)

var (
	Version             = "0.1.0" // updated by hand at each release, follows SemVer (https://semver.org)
	GitCommit, GitState string    // overwritten by the build system
	BuildDate           string    // overwritten by the build system
)

func ToDetailVersion() string {
	return fmt.Sprintf("version=%s git=%s build=%s", Version, GitCommit, BuildDate)
}

func ToMap() map[string]string {
	return map[string]string{
		"version":    Version,
		"git-commit": GitCommit,
		"git-state":  GitState,
		"build-date": BuildDate,
		"go-version": runtime.Version(),
	}
}
