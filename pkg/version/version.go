package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "0.0.0-dev"
	Revision  = "unknown"
	Branch    = "unknown"
	BuildUser = "unknown"
	BuildDate = "unknown"
	GoVersion = runtime.Version()
)

// Info returns a one-line summary of the build.
func Info() string {
	return fmt.Sprintf("%s (revision=%s, branch=%s, go=%s)", Version, Revision, Branch, GoVersion)
}

// BuildContext returns who built the binary and when.
func BuildContext() string {
	return fmt.Sprintf("(user=%s, date=%s)", BuildUser, BuildDate)
}
