package util

import "strings"

// NormalizeArchivePath normalizes a zip entry path: backslashes become
// slashes, duplicate slashes collapse, leading and trailing slashes are
// stripped.
// Example: "\\folder\\\\note.md" => "folder/note.md"
func NormalizeArchivePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	p = strings.TrimPrefix(p, "/")
	p = strings.TrimSuffix(p, "/")
	return p
}

// SplitArchivePath normalizes p and splits it into segments. A nil result
// means the entry is unusable: nothing left after normalization, or a ".",
// ".." or empty segment anywhere in the path. Such paths are dropped whole,
// never resolved.
func SplitArchivePath(p string) []string {
	p = NormalizeArchivePath(p)
	if p == "" {
		return nil
	}
	segments := strings.Split(p, "/")
	for _, seg := range segments {
		if seg == "" || seg == "." || seg == ".." {
			return nil
		}
	}
	return segments
}

// SkipArchiveEntry reports whether a zip entry is tooling noise rather than
// user content: macOS resource forks and dot-leading segments.
func SkipArchiveEntry(segments []string) bool {
	if len(segments) == 0 {
		return true
	}
	for _, seg := range segments {
		if seg == "__MACOSX" || strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}
