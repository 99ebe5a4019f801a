package services

import (
	"context"

	"sitedocs/internal/domain/models"
)

// TreeService defines operations for building document trees.
type TreeService interface {
	// GetProjectTree rebuilds the full folder/file forest of a project
	// from a fresh flat read. Documents whose parent cannot be resolved
	// become roots rather than being dropped.
	GetProjectTree(ctx context.Context, userID, projectID string) ([]*models.Document, error)
}
