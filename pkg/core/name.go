package core

import (
	"path/filepath"
	"strings"
)

// DefaultDelimiter separates segments of a hierarchical package name (org.app.billing).
const DefaultDelimiter = "."

// IsUnder reports whether name equals prefix or lies below it in the hierarchy.
// Matching happens on delimiter boundaries only, so "a.bc" is not under "a.b".
func IsUnder(name, prefix, delim string) bool {
	if prefix == "" {
		return false
	}
	if name == prefix {
		return true
	}
	if delim == "" {
		delim = DefaultDelimiter
	}
	return strings.HasPrefix(name, prefix) && strings.HasPrefix(name[len(prefix):], delim)
}

// IsUnderAny reports whether name is under at least one of the prefixes.
func IsUnderAny(name string, prefixes []string, delim string) bool {
	for _, p := range prefixes {
		if IsUnder(name, p, delim) {
			return true
		}
	}
	return false
}

// Segments splits a package name into its hierarchy segments.
func Segments(name, delim string) []string {
	if name == "" {
		return nil
	}
	if delim == "" {
		delim = DefaultDelimiter
	}
	return strings.Split(name, delim)
}

// Parent returns the enclosing package of name, or "" for a top-level name.
func Parent(name, delim string) string {
	if delim == "" {
		delim = DefaultDelimiter
	}
	idx := strings.LastIndex(name, delim)
	if idx <= 0 {
		return ""
	}
	return name[:idx]
}

// ToPath maps a package name onto nested directories below dir
// (org.app.billing -> dir/org/app/billing).
func ToPath(dir, name, delim string) string {
	parts := append([]string{dir}, Segments(name, delim)...)
	return filepath.Join(parts...)
}

// FromPath is the inverse of ToPath for a path relative to the artifact root.
func FromPath(rel, delim string) string {
	rel = filepath.ToSlash(filepath.Clean(rel))
	if rel == "." || rel == "" {
		return ""
	}
	if delim == "" {
		delim = DefaultDelimiter
	}
	return strings.ReplaceAll(rel, "/", delim)
}
