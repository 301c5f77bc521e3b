package version

import "strings"

// Build-time variables injected via -ldflags -X.
// Defaults are for local dev and tests.
//
//nolint:gochecknoglobals // these are set at build time
var (
	BuildVersion = "dev"
	BuildCommit  = "none"
	BuildDate    = "unknown"
)

// maxShortLen is the room the splash screen has for a version string.
const maxShortLen = 11

// Short strips the commit suffix: "v1.2.3-abcdef" becomes "v1.2.3".
func Short(v string) string {
	if i := strings.IndexByte(v, '-'); i >= 0 {
		v = v[:i]
	}
	if len(v) > maxShortLen {
		v = v[:maxShortLen]
	}
	return v
}
