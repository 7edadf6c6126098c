package patcher

import (
	"regexp"
	"strings"
)

// catalogLine recognizes one catalog row in the patcher log: a marker token,
// then a colon-delimited name (word characters and hyphens) and a free-text
// description limited to letters, digits, space, period, comma, parentheses
// and quotes. The patcher's log format is not contractually stable, so the
// matching rule is deliberately the only place that knows it.
var catalogLine = regexp.MustCompile(`^\s*\w+:\s*([\w-]+):\s*([a-zA-Z0-9 .,()'"]+?)\s*$`)

// ParseCatalog extracts patch entries from discovery-mode patcher output.
// Lines that fail the pattern, or whose name or description trim to empty,
// are skipped silently. Entries keep log order; duplicates pass through.
func ParseCatalog(logText string) []Patch {
	var patches []Patch
	for _, line := range strings.Split(logText, "\n") {
		m := catalogLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		desc := strings.TrimSpace(m[2])
		if name == "" || desc == "" {
			continue
		}
		patches = append(patches, Patch{Name: name, Description: desc})
	}
	return patches
}
