package version

import "fmt"

// overridden at build time via -ldflags
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	FullVersion = fmt.Sprintf("%s (%s, %s)", Version, Commit, Date)
)
