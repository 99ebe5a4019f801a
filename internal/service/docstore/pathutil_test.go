package docstore

import (
	"strings"
	"testing"
)

func TestSanitizeSegment(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple lowercase name",
			input:    "plans",
			expected: "plans",
		},
		{
			name:     "mixed case with spaces",
			input:    "Site Plans",
			expected: "site_plans",
		},
		{
			name:     "file name with extension",
			input:    "a.dwg",
			expected: "a_dwg",
		},
		{
			name:     "run of special characters collapses to one underscore",
			input:    "floor - - plan",
			expected: "floor_plan",
		},
		{
			name:     "leading and trailing junk trimmed",
			input:    "  (drafts)  ",
			expected: "drafts",
		},
		{
			name:     "leading digit gets n prefix",
			input:    "2nd floor",
			expected: "n2nd_floor",
		},
		{
			name:     "only special characters sanitizes to empty",
			input:    "!!!",
			expected: "",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "unicode collapses to underscores",
			input:    "план этажа",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeSegment(tt.input)
			if got != tt.expected {
				t.Errorf("SanitizeSegment(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPlaceholderSegment(t *testing.T) {
	got := PlaceholderSegment()
	if !strings.HasPrefix(got, "document_") {
		t.Errorf("PlaceholderSegment() = %q, want document_ prefix", got)
	}
	if SanitizeSegment(got) != got {
		t.Errorf("placeholder %q is not a valid sanitized segment", got)
	}
}

func TestChildPathAndParentPrefix(t *testing.T) {
	path := ChildPath(RootPath, "plans")
	if path != "root.plans" {
		t.Fatalf("ChildPath(root, plans) = %q, want root.plans", path)
	}

	nested := ChildPath(path, "a_dwg")
	if nested != "root.plans.a_dwg" {
		t.Fatalf("nested path = %q, want root.plans.a_dwg", nested)
	}

	if got := ParentPrefix(nested); got != path {
		t.Errorf("ParentPrefix(%q) = %q, want %q", nested, got, path)
	}
	if got := ParentPrefix(RootPath); got != RootPath {
		t.Errorf("ParentPrefix(%q) = %q, want %q", RootPath, got, RootPath)
	}
}

func TestUniqueFileName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		existing []string
		expected string
	}{
		{
			name:     "no collision",
			input:    "x.pdf",
			existing: []string{"y.pdf"},
			expected: "x.pdf",
		},
		{
			name:     "first collision appends (1)",
			input:    "x.pdf",
			existing: []string{"x.pdf"},
			expected: "x (1).pdf",
		},
		{
			name:     "second collision appends (2)",
			input:    "x.pdf",
			existing: []string{"x.pdf", "x (1).pdf"},
			expected: "x (2).pdf",
		},
		{
			name:     "gap in suffixes is reused",
			input:    "x.pdf",
			existing: []string{"x.pdf", "x (2).pdf"},
			expected: "x (1).pdf",
		},
		{
			name:     "no extension",
			input:    "readme",
			existing: []string{"readme"},
			expected: "readme (1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UniqueFileName(tt.input, tt.existing)
			if got != tt.expected {
				t.Errorf("UniqueFileName(%q, %v) = %q, want %q", tt.input, tt.existing, got, tt.expected)
			}
		})
	}
}

func TestObjectKey(t *testing.T) {
	got := ObjectKey("proj-1", "doc-2", "a.dwg")
	if got != "proj-1/doc-2/a.dwg" {
		t.Errorf("ObjectKey = %q, want proj-1/doc-2/a.dwg", got)
	}
}
