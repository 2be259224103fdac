package httpmetrics

import (
	"regexp"
	"strings"
)

const otherPath = "/other"

var (
	uuidRegex = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)

	knownPaths = map[string]struct{}{
		"/":                  {},
		"/health":            {},
		"/metrics":           {},
		"/api/auth/register": {},
		"/api/auth/login":    {},
		"/api/auth/me":       {},
		"/api/auth/logout":   {},
	}
)

// NormalizePath maps a request path to a bounded metric label. Routes served
// by the auth service keep their path; anything else collapses to "/other"
// so scanners cannot grow the label set.
func NormalizePath(path string) string {
	if path == "" {
		return "/"
	}

	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return "/"
	}

	if _, ok := knownPaths[path]; ok {
		return path
	}

	normalized := uuidRegex.ReplaceAllString(path, "{id}")
	if _, ok := knownPaths[normalized]; ok {
		return normalized
	}

	return otherPath
}
