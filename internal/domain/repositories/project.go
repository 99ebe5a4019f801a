package repositories

import (
	"context"

	"sitedocs/internal/domain/models"
)

// ProjectRepository defines data access for projects.
type ProjectRepository interface {
	// Create inserts a project and fills in its ID and timestamps.
	Create(ctx context.Context, project *models.Project) error

	// GetByID retrieves a project owned by userID.
	GetByID(ctx context.Context, id, userID string) (*models.Project, error)

	// List retrieves all projects owned by userID, newest first.
	List(ctx context.Context, userID string) ([]models.Project, error)

	// ListStatuses retrieves only the status column for all of a user's
	// projects. Used for aggregate stats.
	ListStatuses(ctx context.Context, userID string) ([]models.ProjectStatus, error)

	// Update persists title, description, address and status.
	Update(ctx context.Context, project *models.Project) error

	// Delete removes the project row.
	Delete(ctx context.Context, id, userID string) error
}
