package docstore

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"sitedocs/internal/domain"
	"sitedocs/internal/domain/models"
	"sitedocs/internal/domain/repositories"
)

// In-memory repository and blob store fakes shared by the service
// tests in this package.

type fakeProjectRepo struct {
	projects map[string]*models.Project
	nextID   int
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[string]*models.Project)}
}

func (r *fakeProjectRepo) Create(_ context.Context, project *models.Project) error {
	r.nextID++
	project.ID = fmt.Sprintf("proj-%d", r.nextID)
	project.CreatedAt = time.Now()
	project.UpdatedAt = time.Now()
	cp := *project
	r.projects[project.ID] = &cp
	return nil
}

func (r *fakeProjectRepo) GetByID(_ context.Context, id, userID string) (*models.Project, error) {
	p, ok := r.projects[id]
	if !ok || p.UserID != userID {
		return nil, fmt.Errorf("%w: project %s", domain.ErrNotFound, id)
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProjectRepo) List(_ context.Context, userID string) ([]models.Project, error) {
	out := make([]models.Project, 0)
	for _, p := range r.projects {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeProjectRepo) ListStatuses(_ context.Context, userID string) ([]models.ProjectStatus, error) {
	out := make([]models.ProjectStatus, 0)
	for _, p := range r.projects {
		if p.UserID == userID {
			out = append(out, p.Status)
		}
	}
	return out, nil
}

func (r *fakeProjectRepo) Update(_ context.Context, project *models.Project) error {
	p, ok := r.projects[project.ID]
	if !ok {
		return fmt.Errorf("%w: project %s", domain.ErrNotFound, project.ID)
	}
	project.UserID = p.UserID
	cp := *project
	r.projects[project.ID] = &cp
	return nil
}

func (r *fakeProjectRepo) Delete(_ context.Context, id, userID string) error {
	p, ok := r.projects[id]
	if !ok || p.UserID != userID {
		return fmt.Errorf("%w: project %s", domain.ErrNotFound, id)
	}
	delete(r.projects, id)
	return nil
}

type fakeDocumentRepo struct {
	docs   map[string]*models.Document
	order  []string
	nextID int

	createErr error
	updateErr error
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[string]*models.Document)}
}

func (r *fakeDocumentRepo) Create(_ context.Context, doc *models.Document) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	doc.ID = fmt.Sprintf("doc-%d", r.nextID)
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = time.Now()
	cp := *doc
	r.docs[doc.ID] = &cp
	r.order = append(r.order, doc.ID)
	return nil
}

func (r *fakeDocumentRepo) GetByID(_ context.Context, id string) (*models.Document, error) {
	d, ok := r.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDocumentRepo) ListByProject(_ context.Context, projectID string) ([]models.Document, error) {
	out := make([]models.Document, 0)
	for _, id := range r.order {
		if d, ok := r.docs[id]; ok && d.ProjectID == projectID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (r *fakeDocumentRepo) ListSiblingNames(_ context.Context, projectID string, parentID *string, docType models.DocumentType) ([]string, error) {
	out := make([]string, 0)
	for _, id := range r.order {
		d, ok := r.docs[id]
		if !ok || d.ProjectID != projectID || d.Type != docType {
			continue
		}
		if !samePtr(d.ParentID, parentID) {
			continue
		}
		out = append(out, d.Name)
	}
	return out, nil
}

func (r *fakeDocumentRepo) GetSibling(_ context.Context, projectID string, parentID *string, name string, docType models.DocumentType) (*models.Document, error) {
	for _, id := range r.order {
		d, ok := r.docs[id]
		if !ok || d.ProjectID != projectID || d.Type != docType || d.Name != name {
			continue
		}
		if samePtr(d.ParentID, parentID) {
			cp := *d
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, name)
}

func (r *fakeDocumentRepo) Update(_ context.Context, doc *models.Document) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.docs[doc.ID]; !ok {
		return fmt.Errorf("%w: document %s", domain.ErrNotFound, doc.ID)
	}
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeDocumentRepo) RewriteSubtreePaths(_ context.Context, projectID, oldPath, newPath string) error {
	prefix := oldPath + "."
	for _, d := range r.docs {
		if d.ProjectID == projectID && strings.HasPrefix(d.Path, prefix) {
			d.Path = newPath + strings.TrimPrefix(d.Path, oldPath)
		}
	}
	return nil
}

func (r *fakeDocumentRepo) ListSubtree(_ context.Context, projectID, pathPrefix string) ([]models.Document, error) {
	prefix := pathPrefix + "."
	out := make([]models.Document, 0)
	for _, id := range r.order {
		if d, ok := r.docs[id]; ok && d.ProjectID == projectID && strings.HasPrefix(d.Path, prefix) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) DeleteSubtree(_ context.Context, projectID, pathPrefix string) error {
	prefix := pathPrefix + "."
	for id, d := range r.docs {
		if d.ProjectID == projectID && strings.HasPrefix(d.Path, prefix) {
			delete(r.docs, id)
		}
	}
	return nil
}

func (r *fakeDocumentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.docs[id]; !ok {
		return fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}
	delete(r.docs, id)
	return nil
}

func (r *fakeDocumentRepo) ListFilesByProject(_ context.Context, projectID string) ([]models.Document, error) {
	out := make([]models.Document, 0)
	for _, id := range r.order {
		if d, ok := r.docs[id]; ok && d.ProjectID == projectID && d.Type == models.TypeFile {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) DeleteByProject(_ context.Context, projectID string) error {
	for id, d := range r.docs {
		if d.ProjectID == projectID {
			delete(r.docs, id)
		}
	}
	return nil
}

func samePtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type fakeTxManager struct{}

func (fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

type fakeBlobStore struct {
	objects map[string]bool
	removed []string

	uploadErr error
	verifyErr error
	removeErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string]bool)}
}

func (b *fakeBlobStore) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if b.uploadErr != nil {
		return b.uploadErr
	}
	if r != nil {
		io.Copy(io.Discard, r)
	}
	b.objects[key] = true
	return nil
}

func (b *fakeBlobStore) Remove(_ context.Context, key string) error {
	if b.removeErr != nil {
		return b.removeErr
	}
	delete(b.objects, key)
	b.removed = append(b.removed, key)
	return nil
}

func (b *fakeBlobStore) PublicURL(key string) string {
	return "https://cdn.test/documents/" + key
}

func (b *fakeBlobStore) VerifyReachable(_ context.Context, key string) error {
	if b.verifyErr != nil {
		return b.verifyErr
	}
	if !b.objects[key] {
		return fmt.Errorf("object %s missing", key)
	}
	return nil
}
