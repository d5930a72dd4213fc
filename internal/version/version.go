// Package version exposes build metadata for the CLI.
//
// The variables are set at build time using ldflags:
//
//	go build -ldflags "-X github.com/rgl/hp-drivers-scraper/internal/version.Version=1.0.0 ..."
package version

import (
	"fmt"
	"runtime"
	"strings"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info contains structured version information.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get returns the current version information.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// Full returns a multi-line description of the build.
func Full() string {
	info := Get()
	var sb strings.Builder
	fmt.Fprintf(&sb, "hp-drivers-scraper %s\n", info.Version)
	fmt.Fprintf(&sb, "  Commit:     %s\n", info.Commit)
	fmt.Fprintf(&sb, "  Built:      %s\n", info.BuildDate)
	fmt.Fprintf(&sb, "  Go version: %s\n", info.GoVersion)
	fmt.Fprintf(&sb, "  OS/Arch:    %s", info.Platform)
	return sb.String()
}
