// Package topictree organizes items into a Subject/Area/Topic hierarchy
// keyed by slash-separated paths.
package topictree

import (
	"fmt"
	"strings"
)

// Separator joins path segments.
const Separator = "/"

// Split returns the segments of path. Surrounding whitespace is trimmed from
// each segment.
func Split(path string) []string {
	parts := strings.Split(path, Separator)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// Join builds a path from segments.
func Join(parts ...string) string {
	return strings.Join(parts, Separator)
}

// Clean normalizes path and rejects empty segments.
func Clean(path string) (string, error) {
	parts := Split(strings.Trim(strings.TrimSpace(path), Separator))
	for _, p := range parts {
		if p == "" {
			return "", fmt.Errorf("invalid topic path %q: empty segment", path)
		}
	}
	return Join(parts...), nil
}

// Parent returns the parent path. ok is false for a top-level path.
func Parent(path string) (string, bool) {
	i := strings.LastIndex(path, Separator)
	if i < 0 {
		return "", false
	}
	return path[:i], true
}

// Ancestors returns every proper ancestor of path, outermost first.
func Ancestors(path string) []string {
	parts := Split(path)
	out := make([]string, 0, len(parts)-1)
	for i := 1; i < len(parts); i++ {
		out = append(out, Join(parts[:i]...))
	}
	return out
}

// Name returns the last segment of path.
func Name(path string) string {
	if i := strings.LastIndex(path, Separator); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Depth returns the number of segments minus one.
func Depth(path string) int {
	return strings.Count(path, Separator)
}
