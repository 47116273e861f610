package diagnose

import (
	"regexp"
	"strings"
)

// pathPattern captures the first absolute POSIX path or drive-letter path,
// optionally wrapped in single or double quotes. Whitespace ends a match, so
// quoted paths containing spaces are truncated at the first space.
var pathPattern = regexp.MustCompile(`['"]?([a-zA-Z]:[\\/][^'"\s]+|/[^\s'"]+)['"]?`)

// ExtractPath returns the first path-shaped substring of log.
func ExtractPath(log string) (string, bool) {
	m := pathPattern.FindStringSubmatch(log)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// parentDir returns the containing directory of p. Both separators are
// honoured so drive-letter paths from Windows hosts resolve the same way.
func parentDir(p string) string {
	trimmed := strings.TrimRight(p, `/\`)
	if trimmed == "" {
		return p[:1]
	}

	i := strings.LastIndexAny(trimmed, `/\`)
	switch {
	case i < 0:
		return "."
	case i == 0:
		return trimmed[:1]
	case i == 2 && trimmed[1] == ':':
		return trimmed[:3]
	}
	return trimmed[:i]
}
