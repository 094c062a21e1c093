// Package version identifies a standing build: the release set at link time
// or, for a source build, the VCS revision it came from.
package version

import (
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
)

// Name is reported alongside the version.
const Name = "standing"

var (
	// Version is the release, set with
	// -ldflags "-X github.com/macropower/standing/pkg/version.Version=v0.1.0".
	Version string
	// BuildDate is set the same way.
	BuildDate string

	Revision = readRevision()
)

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	Revision  string `json:"revision"`
	BuildDate string `json:"buildDate,omitempty"`
	Go        string `json:"go"`
	Platform  string `json:"platform"`
}

// Get returns the running build's [Info].
func Get() Info {
	return Info{
		Version:   GetVersion(),
		Revision:  Revision,
		BuildDate: BuildDate,
		Go:        runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String formats i as "standing v0.1.0 (abc1234, go1.25.0 linux/amd64)".
func (i Info) String() string {
	return fmt.Sprintf("%s %s (%s, %s %s)", Name, i.Version, i.Revision, i.Go, i.Platform)
}

// LogValue groups the build fields for structured logs.
func (i Info) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("version", i.Version),
		slog.String("revision", i.Revision),
		slog.String("go", i.Go),
		slog.String("platform", i.Platform),
	}
	if i.BuildDate != "" {
		attrs = append(attrs, slog.String("built", i.BuildDate))
	}

	return slog.GroupValue(attrs...)
}

// GetVersion returns [Version], or the revision for an unreleased build.
func GetVersion() string {
	if Version != "" {
		return Version
	}

	return Revision
}

// ParseRevision returns the short VCS revision recorded in info, suffixed
// "-dirty" when the tree was modified. It returns "unknown" when info is nil
// or carries no revision.
func ParseRevision(info *debug.BuildInfo) string {
	if info == nil {
		return "unknown"
	}

	var rev string

	dirty := false

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value[:min(len(s.Value), 7)]
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}

	switch {
	case rev == "":
		return "unknown"
	case dirty:
		return rev + "-dirty"
	}

	return rev
}

func readRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ParseRevision(nil)
	}

	return ParseRevision(info)
}
