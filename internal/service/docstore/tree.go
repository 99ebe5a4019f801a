package docstore

import (
	"context"
	"log/slog"

	"sitedocs/internal/domain/models"
	"sitedocs/internal/domain/repositories"
	"sitedocs/internal/domain/services"
)

// treeService implements the TreeService interface
type treeService struct {
	docRepo   repositories.DocumentRepository
	validator *ResourceValidator
	logger    *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	docRepo repositories.DocumentRepository,
	validator *ResourceValidator,
	logger *slog.Logger,
) services.TreeService {
	return &treeService{
		docRepo:   docRepo,
		validator: validator,
		logger:    logger,
	}
}

// GetProjectTree rebuilds the folder/file forest of a project from a
// fresh flat read, never incrementally.
func (s *treeService) GetProjectTree(ctx context.Context, userID, projectID string) ([]*models.Document, error) {
	if err := s.validator.ValidateProject(ctx, projectID, userID); err != nil {
		return nil, err
	}

	flat, err := s.docRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	forest := BuildForest(flat)

	s.logger.Info("project tree built",
		"project_id", projectID,
		"document_count", len(flat),
		"root_count", len(forest),
	)

	return forest, nil
}

// BuildForest links a path-ordered flat document list into a forest.
// Two passes: first index every node by ID, then attach each node to
// its parent's children. A document whose parent cannot be resolved
// becomes a root rather than being dropped. Input order (by path) is
// preserved within each children slice.
func BuildForest(flat []models.Document) []*models.Document {
	byID := make(map[string]*models.Document, len(flat))
	nodes := make([]*models.Document, len(flat))

	for i := range flat {
		node := flat[i]
		node.Children = nil
		nodes[i] = &node
		byID[node.ID] = &node
	}

	roots := make([]*models.Document, 0)
	for _, node := range nodes {
		if node.ParentID != nil {
			if parent, ok := byID[*node.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	return roots
}
