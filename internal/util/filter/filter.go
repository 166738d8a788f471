// Package filter matches stored file names against include/exclude globs and search terms.
// The same rules apply to the files table and the dashboard's recent list.
package filter

import (
	"path"
	"strings"
)

// Config holds filter configuration.
type Config struct {
	// Include patterns (glob-style). Empty means include all.
	// Example: []string{"*.png", "*.zip"}
	Include []string

	// Exclude patterns (glob-style). Takes precedence over Include.
	Exclude []string

	// Search terms, case-insensitive substring match.
	// A name must contain ALL terms.
	Search []string

	// PathInclude patterns match the full slash path of files uploaded as part of a folder.
	// Supports ** for multi-directory matching: "**/report.pdf" matches "a/b/report.pdf".
	PathInclude []string
}

// IsZero reports whether the config filters nothing.
func (c Config) IsZero() bool {
	return len(c.Include) == 0 && len(c.Exclude) == 0 && len(c.Search) == 0 && len(c.PathInclude) == 0
}

// Match reports whether name passes the filter. name may be a slash path.
func (c Config) Match(name string) bool {
	if len(c.PathInclude) > 0 && !matchesPathFilter(name, c.PathInclude) {
		return false
	}
	return matchesFilter(name, c)
}

// Apply keeps the elements of items whose name passes c, in order.
func Apply[T any](items []T, name func(T) string, c Config) []T {
	if c.IsZero() {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if c.Match(name(it)) {
			out = append(out, it)
		}
	}
	return out
}

func matchesFilter(name string, c Config) bool {
	base := path.Base(name)

	// 1. Exclude wins
	for _, pattern := range c.Exclude {
		if globMatch(pattern, name) || globMatch(pattern, base) {
			return false
		}
	}

	// 2. Include
	if len(c.Include) > 0 {
		included := false
		for _, pattern := range c.Include {
			if globMatch(pattern, name) || globMatch(pattern, base) {
				included = true
				break
			}
		}
		if !included {
			return false
		}
	}

	// 3. Search terms
	lower := strings.ToLower(name)
	for _, term := range c.Search {
		if !strings.Contains(lower, strings.ToLower(term)) {
			return false
		}
	}

	return true
}

// globMatch is a case-insensitive path.Match. Malformed patterns never match.
func globMatch(pattern, name string) bool {
	matched, err := path.Match(strings.ToLower(pattern), strings.ToLower(name))
	return err == nil && matched
}

func matchesPathFilter(name string, patterns []string) bool {
	name = strings.ReplaceAll(name, "\\", "/")
	for _, pattern := range patterns {
		if matchPathPattern(name, strings.ReplaceAll(pattern, "\\", "/")) {
			return true
		}
	}
	return false
}

func matchPathPattern(p, pattern string) bool {
	if strings.Contains(pattern, "**") {
		return matchDoubleStar(p, pattern)
	}
	return globMatch(pattern, p)
}

// matchDoubleStar handles ** patterns:
//   - "**/foo.txt" matches "foo.txt" and "a/b/foo.txt"
//   - "photos/**" matches everything below photos
//   - "a/**/b.txt" matches "a/b.txt" and "a/x/y/b.txt"
func matchDoubleStar(p, pattern string) bool {
	if pattern == "**" {
		return true
	}

	parts := strings.Split(p, "/")

	if suffix, ok := strings.CutPrefix(pattern, "**/"); ok {
		for i := range parts {
			if matchPathPattern(strings.Join(parts[i:], "/"), suffix) {
				return true
			}
		}
		return false
	}

	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
		for i := 1; i < len(parts); i++ {
			if globMatch(prefix, strings.Join(parts[:i], "/")) {
				return true
			}
		}
		return false
	}

	if i := strings.Index(pattern, "/**/"); i != -1 {
		prefix, suffix := pattern[:i], pattern[i+4:]
		for j := 1; j < len(parts); j++ {
			if !globMatch(prefix, strings.Join(parts[:j], "/")) {
				continue
			}
			for k := j; k < len(parts); k++ {
				if matchPathPattern(strings.Join(parts[k:], "/"), suffix) {
					return true
				}
			}
		}
		return false
	}

	// A stray ** inside a segment behaves like *
	return globMatch(strings.ReplaceAll(pattern, "**", "*"), p)
}

// ParsePatternList splits a comma-separated flag value into patterns.
// Example: "*.png, *.jpg" -> []string{"*.png", "*.jpg"}
func ParsePatternList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	patterns := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			patterns = append(patterns, trimmed)
		}
	}
	return patterns
}
