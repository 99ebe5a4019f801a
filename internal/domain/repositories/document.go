package repositories

import (
	"context"

	"sitedocs/internal/domain/models"
)

// DocumentRepository defines data access for the flat documents table
// backing the per-project folder/file tree.
type DocumentRepository interface {
	// Create inserts a document row and fills in its ID and timestamps.
	Create(ctx context.Context, doc *models.Document) error

	// GetByID retrieves a single document.
	GetByID(ctx context.Context, id string) (*models.Document, error)

	// ListByProject retrieves all documents of a project ordered by
	// materialized path, which yields parents before their children.
	ListByProject(ctx context.Context, projectID string) ([]models.Document, error)

	// ListSiblingNames returns the names of documents of the given type
	// directly under parentID (nil = root level).
	ListSiblingNames(ctx context.Context, projectID string, parentID *string, docType models.DocumentType) ([]string, error)

	// GetSibling returns the document of the given type with exactly this
	// name directly under parentID (nil = root level), or ErrNotFound.
	GetSibling(ctx context.Context, projectID string, parentID *string, name string, docType models.DocumentType) (*models.Document, error)

	// Update persists name, parent_id, path, file_url, file_key and urn.
	Update(ctx context.Context, doc *models.Document) error

	// RewriteSubtreePaths replaces the path prefix oldPath with newPath
	// for every strict descendant of the renamed/moved document.
	RewriteSubtreePaths(ctx context.Context, projectID, oldPath, newPath string) error

	// ListSubtree returns every strict descendant of the document whose
	// materialized path is pathPrefix, i.e. rows matching pathPrefix + ".%".
	ListSubtree(ctx context.Context, projectID, pathPrefix string) ([]models.Document, error)

	// DeleteSubtree removes every strict descendant of pathPrefix.
	DeleteSubtree(ctx context.Context, projectID, pathPrefix string) error

	// Delete removes a single document row.
	Delete(ctx context.Context, id string) error

	// ListFilesByProject returns all file documents of a project,
	// regardless of position in the tree. Used for blob cleanup when a
	// project is deleted.
	ListFilesByProject(ctx context.Context, projectID string) ([]models.Document, error)

	// DeleteByProject removes every document row of a project.
	DeleteByProject(ctx context.Context, projectID string) error
}
