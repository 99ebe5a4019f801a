package docstore

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// RootPath anchors every materialized path so root-level documents are
// still addressable by a common prefix.
const RootPath = "root"

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// SanitizeSegment turns a display name into an ltree-compatible path
// segment: lower-cased, every run of non-alphanumeric characters
// collapsed to a single underscore, leading/trailing underscores
// trimmed, and a leading digit prefixed with 'n' (ltree segments must
// not start with a digit). Returns "" when nothing survives; callers
// substitute a placeholder.
func SanitizeSegment(name string) string {
	s := strings.ToLower(name)
	s = nonAlnumRun.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return ""
	}
	if s[0] >= '0' && s[0] <= '9' {
		s = "n" + s
	}
	return s
}

// PlaceholderSegment is the fallback for names that sanitize to "".
func PlaceholderSegment() string {
	return fmt.Sprintf("document_%d", time.Now().UnixMilli())
}

// ChildPath appends a sanitized segment to a parent path. parentPath is
// RootPath for root-level documents.
func ChildPath(parentPath, segment string) string {
	return parentPath + "." + segment
}

// ParentPrefix returns the path of a document's parent, i.e. everything
// before the last segment. For a root-level document this is RootPath.
func ParentPrefix(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[:i]
	}
	return path
}

// UniqueFileName deduplicates name against existing sibling names by
// appending " (n)" before the extension, incrementing n until unique.
func UniqueFileName(name string, existing []string) string {
	taken := make(map[string]bool, len(existing))
	for _, e := range existing {
		taken[e] = true
	}

	if !taken[name] {
		return name
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)
		if !taken[candidate] {
			return candidate
		}
	}
}

// ObjectKey mints the object-store key for a file document's binary at
// upload time. The result is persisted on the row; later operations use
// the stored key, since the name may be renamed away from it.
func ObjectKey(projectID, documentID, name string) string {
	return fmt.Sprintf("%s/%s/%s", projectID, documentID, name)
}
