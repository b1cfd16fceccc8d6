package contracts

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// DataFormatVersion identifies the layout of the emitted tables
const DataFormatVersion = "v1"

// Release metadata, overridden at build time:
//
//	go build -ldflags "-X tribocli/pkg/contracts.Version=0.4.0 -X tribocli/pkg/contracts.GitCommit=$(git rev-parse --short HEAD)"
var (
	Version   = "0.3.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo is what `tribo version --json` prints
type VersionInfo struct {
	Version      string `json:"version"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	Dirty        bool   `json:"dirty,omitempty"`
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
	DataFormat   string `json:"data_format"`
}

// GetVersionInfo collects the release metadata. Without ldflags the commit and
// build time come from the VCS stamp of the binary, when present.
func GetVersionInfo() VersionInfo {
	info := VersionInfo{
		Version:      Version,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		DataFormat:   DataFormatVersion,
	}

	build, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range build.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "unknown" && s.Value != "" {
				info.GitCommit = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "unknown" && s.Value != "" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	return info
}

// GetVersionString returns the short banner, e.g. "tribo v0.3.0"
func GetVersionString() string {
	return "tribo v" + Version
}

// GetFullVersionString returns the banner with build details
func GetFullVersionString() string {
	info := GetVersionInfo()
	commit := info.GitCommit
	if info.Dirty {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s (commit %s, built %s, %s %s/%s, format %s)",
		GetVersionString(), commit, info.BuildTime, info.GoVersion, info.OS, info.Architecture, info.DataFormat)
}
