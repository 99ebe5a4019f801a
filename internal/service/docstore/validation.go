package docstore

import (
	"context"
	"fmt"

	"sitedocs/internal/domain"
	"sitedocs/internal/domain/models"
	"sitedocs/internal/domain/repositories"
)

// ResourceValidator checks ownership and parent integrity before
// operations on child resources.
type ResourceValidator struct {
	projectRepo repositories.ProjectRepository
	docRepo     repositories.DocumentRepository
}

// NewResourceValidator creates a new resource validator
func NewResourceValidator(
	projectRepo repositories.ProjectRepository,
	docRepo repositories.DocumentRepository,
) *ResourceValidator {
	return &ResourceValidator{
		projectRepo: projectRepo,
		docRepo:     docRepo,
	}
}

// ValidateProject ensures a project exists and belongs to userID.
func (v *ResourceValidator) ValidateProject(ctx context.Context, projectID, userID string) error {
	_, err := v.projectRepo.GetByID(ctx, projectID, userID)
	if err != nil {
		return fmt.Errorf("invalid project: %w", err)
	}
	return nil
}

// ResolveParent loads and checks a prospective parent document: it must
// exist, be a folder, and live in the same project. A nil parentID is
// the root level and always valid.
func (v *ResourceValidator) ResolveParent(ctx context.Context, parentID *string, projectID string) (*models.Document, error) {
	if parentID == nil || *parentID == "" {
		return nil, nil
	}

	parent, err := v.docRepo.GetByID(ctx, *parentID)
	if err != nil {
		return nil, fmt.Errorf("parent folder: %w", err)
	}
	if parent.ProjectID != projectID {
		return nil, fmt.Errorf("parent folder %s: %w", *parentID, domain.ErrNotFound)
	}
	if !parent.IsFolder() {
		return nil, fmt.Errorf("%w: parent %s is a file, only folders may have children", domain.ErrValidation, *parentID)
	}

	return parent, nil
}
