package postgres

import (
	"strings"
	"testing"
)

func TestEscapeLikePrefix(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "plain segments pass through",
			path: "root.plans",
			want: `root.plans`,
		},
		{
			name: "underscores escaped",
			path: "root.a_b",
			want: `root.a\_b`,
		},
		{
			name: "multiple underscores",
			path: "root.ground_floor.fire_safety",
			want: `root.ground\_floor.fire\_safety`,
		},
		{
			name: "percent escaped",
			path: "root.100%",
			want: `root.100\%`,
		},
		{
			name: "backslash escaped first",
			path: `root.a\_b`,
			want: `root.a\\\_b`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := escapeLikePrefix(tt.path)
			if got != tt.want {
				t.Errorf("escapeLikePrefix(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

// likeMatch evaluates a LIKE pattern with backslash escaping the way
// Postgres does, so the subtree predicates can be checked without a
// live database.
func likeMatch(pattern, s string) bool {
	return likeMatchAt(pattern, s, 0, 0)
}

func likeMatchAt(pattern, s string, pi, si int) bool {
	for pi < len(pattern) {
		c := pattern[pi]
		switch c {
		case '%':
			for i := si; i <= len(s); i++ {
				if likeMatchAt(pattern, s, pi+1, i) {
					return true
				}
			}
			return false
		case '_':
			if si >= len(s) {
				return false
			}
			pi++
			si++
		case '\\':
			pi++
			if pi >= len(pattern) || si >= len(s) || s[si] != pattern[pi] {
				return false
			}
			pi++
			si++
		default:
			if si >= len(s) || s[si] != c {
				return false
			}
			pi++
			si++
		}
	}
	return si == len(s)
}

func TestSubtreePatternMatchesLiterally(t *testing.T) {
	// A folder named "a b" sanitizes to path "root.a_b". Its subtree
	// pattern must not capture the unrelated sibling subtree "root.aab".
	pattern := escapeLikePrefix("root.a_b") + ".%"

	tests := []struct {
		path string
		want bool
	}{
		{"root.a_b.child", true},
		{"root.a_b.deep.nested", true},
		{"root.a_b", false},
		{"root.aab.child", false},
		{"root.axb.child", false},
		{"root.a_bc.child", false},
	}

	for _, tt := range tests {
		if got := likeMatch(pattern, tt.path); got != tt.want {
			t.Errorf("pattern %q against %q = %v, want %v", pattern, tt.path, got, tt.want)
		}
	}

	if !strings.Contains(pattern, `\_`) {
		t.Errorf("pattern %q should carry escaped underscores", pattern)
	}
}
