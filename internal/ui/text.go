package ui

import (
	"fmt"
	"unicode/utf8"
)

// clip bounds s to n bytes without splitting a rune.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// age renders elapsed seconds as "Ns", "Nm" or "Nh".
func age(now, then uint32) string {
	secs := int64(now) - int64(then)
	if secs < 0 {
		secs = 0
	}
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 60*60:
		return fmt.Sprintf("%dm", secs/60)
	default:
		return fmt.Sprintf("%dh", secs/(60*60))
	}
}
