package services

import (
	"context"
	"io"

	"sitedocs/internal/domain/models"
	"sitedocs/internal/httputil"
)

// CreateDocumentRequest represents a folder or file-row creation request.
type CreateDocumentRequest struct {
	ProjectID string              `json:"project_id"`
	ParentID  *string             `json:"parent_id,omitempty"` // nil = root level
	Name      string              `json:"name"`
	Type      models.DocumentType `json:"type"`
	CreatedBy string              `json:"-"` // set by handler from auth context
}

// UpdateDocumentRequest represents a rename and/or move. ParentID uses
// tri-state semantics: absent = keep, null = move to root, value = move
// under that folder.
type UpdateDocumentRequest struct {
	Name     *string                 `json:"name,omitempty"`
	ParentID httputil.OptionalString `json:"parent_id,omitempty"`
}

// UploadFileRequest carries a binary upload into the document tree.
type UploadFileRequest struct {
	ProjectID   string
	ParentID    *string
	Name        string
	Content     io.Reader
	Size        int64
	ContentType string
	CreatedBy   string
}

// DocumentService handles document hierarchy business logic.
type DocumentService interface {
	// CreateDocument creates a folder or a file row (no binary), with
	// sanitized materialized-path computation.
	CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*models.Document, error)

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, userID, id string) (*models.Document, error)

	// UpdateDocument renames and/or moves a document, rewriting the
	// whole subtree's materialized paths transactionally.
	UpdateDocument(ctx context.Context, userID, id string, req *UpdateDocumentRequest) (*models.Document, error)

	// DeleteDocument deletes a document and every descendant, removing
	// stored binaries first.
	DeleteDocument(ctx context.Context, userID, id string) error

	// UploadFile creates a file document and stores its binary,
	// deduplicating sibling names with a " (n)" suffix and rolling the
	// row back if the binary cannot be stored or read back.
	UploadFile(ctx context.Context, req *UploadFileRequest) (*models.Document, error)

	// SetDocumentURN records the viewer-ready derivative identifier on a
	// file document after a successful conversion.
	SetDocumentURN(ctx context.Context, userID, id, urn string) (*models.Document, error)
}
