package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"sitedocs/internal/config"
	"sitedocs/internal/domain"
	"sitedocs/internal/domain/models"
	"sitedocs/internal/domain/repositories"
	"sitedocs/internal/domain/services"
)

// documentService implements the DocumentService interface
type documentService struct {
	docRepo   repositories.DocumentRepository
	blobStore services.BlobStore
	txManager repositories.TransactionManager
	validator *ResourceValidator
	logger    *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo repositories.DocumentRepository,
	blobStore services.BlobStore,
	txManager repositories.TransactionManager,
	validator *ResourceValidator,
	logger *slog.Logger,
) services.DocumentService {
	return &documentService{
		docRepo:   docRepo,
		blobStore: blobStore,
		txManager: txManager,
		validator: validator,
		logger:    logger,
	}
}

// CreateDocument creates a folder or a file row with its materialized
// path computed from the parent's stored path.
func (s *documentService) CreateDocument(ctx context.Context, req *services.CreateDocumentRequest) (*models.Document, error) {
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}

	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.validator.ValidateProject(ctx, req.ProjectID, req.CreatedBy); err != nil {
		return nil, err
	}

	parent, err := s.validator.ResolveParent(ctx, req.ParentID, req.ProjectID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrValidation)
	}
	segment := SanitizeSegment(name)
	if segment == "" {
		segment = PlaceholderSegment()
	}

	// Duplicate folder names under one parent are a conflict surfaced
	// with the existing row; duplicate file names get a " (n)" suffix in
	// UploadFile instead.
	if req.Type == models.TypeFolder {
		existing, err := s.docRepo.GetSibling(ctx, req.ProjectID, req.ParentID, name, models.TypeFolder)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, &domain.ConflictError{
				Message:      fmt.Sprintf("folder %q already exists here", name),
				ResourceType: "document",
				ResourceID:   existing.ID,
			}
		}
	}

	parentPath := RootPath
	if parent != nil {
		parentPath = parent.Path
	}

	doc := &models.Document{
		ProjectID: req.ProjectID,
		ParentID:  req.ParentID,
		Name:      name,
		Type:      req.Type,
		Path:      ChildPath(parentPath, segment),
		CreatedBy: req.CreatedBy,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"id", doc.ID,
		"name", doc.Name,
		"type", doc.Type,
		"project_id", doc.ProjectID,
		"path", doc.Path,
	)

	return doc, nil
}

// GetDocument retrieves a document, checking project ownership.
func (s *documentService) GetDocument(ctx context.Context, userID, id string) (*models.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateProject(ctx, doc.ProjectID, userID); err != nil {
		return nil, err
	}

	return doc, nil
}

// UpdateDocument renames and/or moves a document. The materialized path
// of the document and of its entire subtree is rewritten in the same
// transaction, so paths never drift from names.
func (s *documentService) UpdateDocument(ctx context.Context, userID, id string, req *services.UpdateDocumentRequest) (*models.Document, error) {
	if req.Name == nil && !req.ParentID.Present {
		return nil, fmt.Errorf("%w: at least one field must be provided", domain.ErrValidation)
	}

	doc, err := s.GetDocument(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrValidation)
		}
		if len(name) > config.MaxDocumentNameLength {
			return nil, fmt.Errorf("%w: name exceeds %d characters", domain.ErrValidation, config.MaxDocumentNameLength)
		}
		doc.Name = name
	}

	parentPath := ParentPrefix(doc.Path)

	// Tri-state: only move when the field was present in the request.
	if req.ParentID.Present {
		if req.ParentID.Value != nil && *req.ParentID.Value != "" {
			parent, err := s.validator.ResolveParent(ctx, req.ParentID.Value, doc.ProjectID)
			if err != nil {
				return nil, err
			}
			if parent.ID == doc.ID || strings.HasPrefix(parent.Path, doc.Path+".") {
				return nil, fmt.Errorf("%w: cannot move a folder into itself or its descendants", domain.ErrValidation)
			}
			doc.ParentID = &parent.ID
			parentPath = parent.Path
		} else {
			// null = move to root
			doc.ParentID = nil
			parentPath = RootPath
		}
	}

	segment := SanitizeSegment(doc.Name)
	if segment == "" {
		segment = PlaceholderSegment()
	}

	oldPath := doc.Path
	newPath := ChildPath(parentPath, segment)
	doc.Path = newPath
	doc.UpdatedAt = time.Now()

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.docRepo.Update(txCtx, doc); err != nil {
			return err
		}
		if newPath != oldPath {
			return s.docRepo.RewriteSubtreePaths(txCtx, doc.ProjectID, oldPath, newPath)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document updated",
		"id", doc.ID,
		"name", doc.Name,
		"old_path", oldPath,
		"path", doc.Path,
	)

	return doc, nil
}

// DeleteDocument removes a document and every descendant. Stored
// binaries are removed first; the rows go in one transaction, so a row
// failure after blob removal still surfaces as an error and the caller
// must not assume the document is gone.
func (s *documentService) DeleteDocument(ctx context.Context, userID, id string) error {
	doc, err := s.GetDocument(ctx, userID, id)
	if err != nil {
		return err
	}

	descendants, err := s.docRepo.ListSubtree(ctx, doc.ProjectID, doc.Path)
	if err != nil {
		return &domain.CascadeError{DocumentID: id, Err: err}
	}

	// Blobs first: target, then any descendant files with stored content.
	if err := s.removeBlob(ctx, doc); err != nil {
		return err
	}
	for i := range descendants {
		if err := s.removeBlob(ctx, &descendants[i]); err != nil {
			return err
		}
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.docRepo.DeleteSubtree(txCtx, doc.ProjectID, doc.Path); err != nil {
			return err
		}
		return s.docRepo.Delete(txCtx, doc.ID)
	})
	if err != nil {
		return &domain.CascadeError{DocumentID: id, Err: err}
	}

	s.logger.Info("document deleted",
		"id", id,
		"path", doc.Path,
		"descendant_count", len(descendants),
	)

	return nil
}

// removeBlob deletes a file's stored binary. The key comes from the
// row, never from the current name: renames rewrite name and path but
// the blob stays where the upload put it.
func (s *documentService) removeBlob(ctx context.Context, doc *models.Document) error {
	if doc.Type != models.TypeFile || doc.FileKey == nil {
		return nil
	}

	if err := s.blobStore.Remove(ctx, *doc.FileKey); err != nil {
		return fmt.Errorf("%w: remove blob %s: %v", domain.ErrStorage, *doc.FileKey, err)
	}
	return nil
}

// UploadFile creates a file document and stores its binary. The row is
// created first; if the binary cannot be stored or read back, the row
// is deleted again so no document ever references a missing blob.
func (s *documentService) UploadFile(ctx context.Context, req *services.UploadFileRequest) (*models.Document, error) {
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: file name is required", domain.ErrValidation)
	}

	if err := s.validator.ValidateProject(ctx, req.ProjectID, req.CreatedBy); err != nil {
		return nil, err
	}
	if _, err := s.validator.ResolveParent(ctx, req.ParentID, req.ProjectID); err != nil {
		return nil, err
	}

	// Sibling dedup is read-then-write: two concurrent uploads of the
	// same name can still collide. See the duplicate-name note in
	// DESIGN.md.
	siblings, err := s.docRepo.ListSiblingNames(ctx, req.ProjectID, req.ParentID, models.TypeFile)
	if err != nil {
		return nil, err
	}
	uniqueName := UniqueFileName(strings.TrimSpace(req.Name), siblings)

	doc, err := s.CreateDocument(ctx, &services.CreateDocumentRequest{
		ProjectID: req.ProjectID,
		ParentID:  req.ParentID,
		Name:      uniqueName,
		Type:      models.TypeFile,
		CreatedBy: req.CreatedBy,
	})
	if err != nil {
		return nil, err
	}

	key := ObjectKey(req.ProjectID, doc.ID, uniqueName)

	if err := s.blobStore.Upload(ctx, key, req.Content, req.Size, req.ContentType); err != nil {
		s.compensate(ctx, doc, "")
		return nil, fmt.Errorf("%w: upload %s: %v", domain.ErrStorage, key, err)
	}

	if err := s.blobStore.VerifyReachable(ctx, key); err != nil {
		s.compensate(ctx, doc, key)
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUnreachable, key, err)
	}

	url := s.blobStore.PublicURL(key)
	doc.FileURL = &url
	doc.FileKey = &key
	doc.UpdatedAt = time.Now()

	if err := s.docRepo.Update(ctx, doc); err != nil {
		s.compensate(ctx, doc, key)
		return nil, err
	}

	s.logger.Info("file uploaded",
		"id", doc.ID,
		"name", doc.Name,
		"project_id", doc.ProjectID,
		"size", req.Size,
	)

	return doc, nil
}

// compensate rolls back a partially uploaded file: delete the row and,
// when the binary made it to the store, the blob too. Failures here are
// logged, not returned - the original error is the one that matters.
func (s *documentService) compensate(ctx context.Context, doc *models.Document, blobKey string) {
	if err := s.docRepo.Delete(ctx, doc.ID); err != nil {
		s.logger.Error("compensating row delete failed", "id", doc.ID, "error", err)
	}
	if blobKey != "" {
		if err := s.blobStore.Remove(ctx, blobKey); err != nil {
			s.logger.Error("compensating blob delete failed", "key", blobKey, "error", err)
		}
	}
}

// SetDocumentURN records the viewer-ready derivative identifier after a
// successful conversion of a CAD file.
func (s *documentService) SetDocumentURN(ctx context.Context, userID, id, urn string) (*models.Document, error) {
	if urn == "" {
		return nil, fmt.Errorf("%w: urn is required", domain.ErrValidation)
	}

	doc, err := s.GetDocument(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if doc.Type != models.TypeFile {
		return nil, fmt.Errorf("%w: only files can carry a conversion urn", domain.ErrValidation)
	}

	doc.URN = &urn
	doc.UpdatedAt = time.Now()

	if err := s.docRepo.Update(ctx, doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// validateCreateRequest validates a document creation request
func (s *documentService) validateCreateRequest(req *services.CreateDocumentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxDocumentNameLength),
		),
		validation.Field(&req.Type,
			validation.Required,
			validation.In(models.TypeFolder, models.TypeFile),
		),
		validation.Field(&req.CreatedBy, validation.Required),
	)
}
