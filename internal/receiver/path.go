package receiver

import "strings"

// safeRelativePath reports whether rel is safe to join onto a base
// directory: non-empty, not absolute, and with no ".." or "." path
// component once decomposed. Decomposing before checking matters — rejecting on the raw
// string would also reject legitimate names like "my..file.txt".
func safeRelativePath(rel string) bool {
	if rel == "" {
		return false
	}
	if strings.HasPrefix(rel, "/") || strings.HasPrefix(rel, "\\") {
		return false
	}
	if len(rel) >= 2 && rel[1] == ':' {
		// Windows drive-letter absolute path, e.g. "C:\foo".
		return false
	}
	for _, part := range strings.FieldsFunc(rel, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." || part == "." {
			return false
		}
	}
	return true
}
