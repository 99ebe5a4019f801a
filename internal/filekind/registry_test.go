package filekind

import (
	"strings"
	"testing"
)

func TestKindOf(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	tests := []struct {
		name     string
		expected Kind
	}{
		{"photo.jpg", KindImage},
		{"photo.JPG", KindImage},
		{"scan.png", KindImage},
		{"contract.pdf", KindPDF},
		{"budget.xlsx", KindOffice},
		{"notes.docx", KindOffice},
		{"floor.dwg", KindModel},
		{"building.rvt", KindModel},
		{"model.ifc", KindModel},
		{"archive.zip", KindUnsupported},
		{"noextension", KindUnsupported},
		{"", KindUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reg.KindOf(tt.name); got != tt.expected {
				t.Errorf("KindOf(%q) = %q, want %q", tt.name, got, tt.expected)
			}
		})
	}
}

func TestViewerURL(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	fileURL := "https://cdn.test/documents/p/d/contract.pdf"

	t.Run("image is viewed directly", func(t *testing.T) {
		url := "https://cdn.test/photo.jpg"
		if got := reg.ViewerURL("photo.jpg", url); got != url {
			t.Errorf("ViewerURL = %q, want the file URL itself", got)
		}
	})

	t.Run("pdf goes through google viewer", func(t *testing.T) {
		got := reg.ViewerURL("contract.pdf", fileURL)
		if !strings.HasPrefix(got, "https://docs.google.com/viewer?url=") {
			t.Errorf("ViewerURL = %q, want google viewer", got)
		}
		if !strings.Contains(got, "embedded=true") {
			t.Errorf("ViewerURL = %q missing embedded flag", got)
		}
		if strings.Contains(got, fileURL) {
			t.Errorf("file URL not escaped in %q", got)
		}
	})

	t.Run("office goes through office online", func(t *testing.T) {
		got := reg.ViewerURL("budget.xlsx", "https://cdn.test/budget.xlsx")
		if !strings.HasPrefix(got, "https://view.officeapps.live.com/op/embed.aspx?src=") {
			t.Errorf("ViewerURL = %q, want office online viewer", got)
		}
	})

	t.Run("model has no iframe viewer", func(t *testing.T) {
		if got := reg.ViewerURL("floor.dwg", "https://cdn.test/floor.dwg"); got != "" {
			t.Errorf("ViewerURL = %q, want empty for model kinds", got)
		}
	})

	t.Run("unsupported has no viewer", func(t *testing.T) {
		if got := reg.ViewerURL("archive.zip", "https://cdn.test/archive.zip"); got != "" {
			t.Errorf("ViewerURL = %q, want empty", got)
		}
	})
}
