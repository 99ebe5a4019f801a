package docstore

import (
	"testing"

	"sitedocs/internal/domain/models"
)

func strPtr(s string) *string { return &s }

func TestBuildForest(t *testing.T) {
	tests := []struct {
		name      string
		flat      []models.Document
		wantRoots []string // expected root IDs in order
		check     func(t *testing.T, forest []*models.Document)
	}{
		{
			name:      "empty input",
			flat:      nil,
			wantRoots: []string{},
		},
		{
			name: "single root folder with one file",
			flat: []models.Document{
				{ID: "f1", Name: "Plans", Type: models.TypeFolder, Path: "root.plans"},
				{ID: "d1", ParentID: strPtr("f1"), Name: "a.dwg", Type: models.TypeFile, Path: "root.plans.a_dwg"},
			},
			wantRoots: []string{"f1"},
			check: func(t *testing.T, forest []*models.Document) {
				plans := forest[0]
				if len(plans.Children) != 1 {
					t.Fatalf("expected 1 child under Plans, got %d", len(plans.Children))
				}
				if plans.Children[0].ID != "d1" {
					t.Errorf("child ID = %q, want d1", plans.Children[0].ID)
				}
			},
		},
		{
			name: "orphan becomes a root instead of being dropped",
			flat: []models.Document{
				{ID: "f1", Name: "Plans", Type: models.TypeFolder, Path: "root.plans"},
				{ID: "d1", ParentID: strPtr("missing"), Name: "stray.pdf", Type: models.TypeFile, Path: "root.gone.stray_pdf"},
			},
			wantRoots: []string{"f1", "d1"},
		},
		{
			name: "path order preserved within children",
			flat: []models.Document{
				{ID: "f1", Name: "Plans", Type: models.TypeFolder, Path: "root.plans"},
				{ID: "d1", ParentID: strPtr("f1"), Name: "a.dwg", Type: models.TypeFile, Path: "root.plans.a_dwg"},
				{ID: "d2", ParentID: strPtr("f1"), Name: "b.dwg", Type: models.TypeFile, Path: "root.plans.b_dwg"},
				{ID: "f2", ParentID: strPtr("f1"), Name: "Drafts", Type: models.TypeFolder, Path: "root.plans.drafts"},
				{ID: "d3", ParentID: strPtr("f2"), Name: "c.pdf", Type: models.TypeFile, Path: "root.plans.drafts.c_pdf"},
			},
			wantRoots: []string{"f1"},
			check: func(t *testing.T, forest []*models.Document) {
				children := forest[0].Children
				wantOrder := []string{"d1", "d2", "f2"}
				if len(children) != len(wantOrder) {
					t.Fatalf("expected %d children, got %d", len(wantOrder), len(children))
				}
				for i, want := range wantOrder {
					if children[i].ID != want {
						t.Errorf("children[%d].ID = %q, want %q", i, children[i].ID, want)
					}
				}
				drafts := children[2]
				if len(drafts.Children) != 1 || drafts.Children[0].ID != "d3" {
					t.Errorf("expected d3 nested under Drafts, got %+v", drafts.Children)
				}
			},
		},
		{
			name: "multiple roots keep input order",
			flat: []models.Document{
				{ID: "f1", Name: "A", Type: models.TypeFolder, Path: "root.a"},
				{ID: "f2", Name: "B", Type: models.TypeFolder, Path: "root.b"},
			},
			wantRoots: []string{"f1", "f2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forest := BuildForest(tt.flat)

			if len(forest) != len(tt.wantRoots) {
				t.Fatalf("expected %d roots, got %d", len(tt.wantRoots), len(forest))
			}
			for i, want := range tt.wantRoots {
				if forest[i].ID != want {
					t.Errorf("roots[%d].ID = %q, want %q", i, forest[i].ID, want)
				}
			}
			if tt.check != nil {
				tt.check(t, forest)
			}
		})
	}
}

func TestBuildForestDoesNotMutateInput(t *testing.T) {
	flat := []models.Document{
		{ID: "f1", Name: "Plans", Type: models.TypeFolder, Path: "root.plans"},
		{ID: "d1", ParentID: strPtr("f1"), Name: "a.dwg", Type: models.TypeFile, Path: "root.plans.a_dwg"},
	}

	_ = BuildForest(flat)

	if flat[0].Children != nil {
		t.Error("BuildForest mutated the input slice's Children")
	}
}
