// Package version reports build metadata for the firstframe binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

var (
	// Version is the application version, set via ldflags.
	Version string
	// BuildDate is when the binary was built, set via ldflags.
	BuildDate string

	// Revision is the VCS revision recorded by the Go toolchain.
	Revision = revision(debug.ReadBuildInfo)
)

// Info is a snapshot of build metadata.
type Info struct {
	Version   string
	Revision  string
	BuildDate string
	GoVersion string
	Platform  string
}

// Get returns the current build metadata. An unset [Version] falls back to
// the main module version, or "dev".
func Get() Info {
	v := Version
	if v == "" {
		v = moduleVersion(debug.ReadBuildInfo)
	}

	return Info{
		Version:   v,
		Revision:  Revision,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String formats i for `firstframe --version`.
func (i Info) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (revision %s", i.Version, i.Revision)

	if i.BuildDate != "" {
		fmt.Fprintf(&b, ", built %s", i.BuildDate)
	}

	fmt.Fprintf(&b, ", %s %s)", i.GoVersion, i.Platform)

	return b.String()
}

type buildInfoFunc func() (*debug.BuildInfo, bool)

func moduleVersion(read buildInfoFunc) string {
	bi, ok := read()
	if !ok || bi.Main.Version == "" || bi.Main.Version == "(devel)" {
		return "dev"
	}

	return bi.Main.Version
}

func revision(read buildInfoFunc) string {
	rev := "unknown"

	bi, ok := read()
	if !ok {
		return rev
	}

	modified := false

	for _, v := range bi.Settings {
		switch v.Key {
		case "vcs.revision":
			rev = v.Value
		case "vcs.modified":
			modified = v.Value == "true"
		}
	}

	if modified {
		return rev + "-dirty"
	}

	return rev
}
