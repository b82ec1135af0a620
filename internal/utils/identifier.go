// Package utils holds identifier and path helpers shared by the CLI and
// the stores.
package utils

import (
	"strings"
)

// NormalizeIdentifier normalizes an employee identifier by converting to
// lowercase and trimming whitespace.
// Returns empty string if input is empty after normalization.
func NormalizeIdentifier(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// ParseIdentifiers reads employee identifiers from command arguments. Each
// argument may hold a comma separated list ("ana, bob"). Identifiers are
// normalized, and blanks and repeats are dropped. Returns nil when nothing
// is left.
func ParseIdentifiers(args []string) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			id := NormalizeIdentifier(part)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(p string, home string) string {
	if home == "" {
		return p
	}
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		return home + p[1:]
	}
	return p
}
