package util

import (
	"path"
	"strings"
)

// NormalizePath converts a file path into its canonical comparable form:
// forward slashes, no "file://" or "./" prefix, no duplicate or trailing
// separators. Normalizing an already-normalized path is a no-op.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}

	p = strings.TrimPrefix(p, "file://")
	p = strings.ReplaceAll(p, "\\", "/")

	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}

	p = strings.TrimPrefix(p, "./")

	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}

	return p
}

// NormalizeName folds a symbol name for case-insensitive comparison.
func NormalizeName(name string) string {
	return strings.ToLower(name)
}

// DirOf returns the normalized directory portion of a path, or "" for
// paths with no directory component.
func DirOf(p string) string {
	p = NormalizePath(p)
	dir := path.Dir(p)
	if dir == "." {
		return ""
	}
	return dir
}
