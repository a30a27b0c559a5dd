// Package pathutil implements the pure, stateless half of path handling:
// splitting and validating a `/`-delimited path. It has no knowledge of
// the tree; package tree walks the components this package produces.
package pathutil

import "strings"

// Split breaks an absolute path into its non-empty components, ignoring a
// trailing slash. It rejects malformed paths: empty, not
// absolute, containing a null byte, or containing a "." or ".."
// component. Each component is checked with ValidName, which also
// serves single entry names.
func Split(path string) ([]string, bool) {
	if path == "" || path[0] != '/' || strings.IndexByte(path, 0) >= 0 {
		return nil, false
	}
	if path == "/" {
		return nil, true
	}
	raw := strings.Split(strings.TrimSuffix(path, "/"), "/")
	components := make([]string, 0, len(raw))
	for _, c := range raw {
		if c == "" {
			continue
		}
		if !ValidName(c) {
			return nil, false
		}
		components = append(components, c)
	}
	return components, true
}

// ValidName reports whether name is usable as a single directory entry:
// non-empty, no "/" or NUL byte, and not "." or "..".
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return strings.IndexByte(name, '/') < 0 && strings.IndexByte(name, 0) < 0
}

// Join rebuilds an absolute path from components, the inverse of Split.
func Join(components []string) string {
	if len(components) == 0 {
		return "/"
	}
	return "/" + strings.Join(components, "/")
}
