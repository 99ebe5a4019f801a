package services

import (
	"context"

	"sitedocs/internal/domain/models"
)

// CreateProjectRequest represents a request to create a project
type CreateProjectRequest struct {
	UserID      string               `json:"-"` // set by handler from auth context
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Address     string               `json:"address"`
	Status      models.ProjectStatus `json:"status"`
}

// UpdateProjectRequest represents a partial project update. Nil fields
// are left unchanged; user_id is immutable and not accepted here.
type UpdateProjectRequest struct {
	Title       *string               `json:"title,omitempty"`
	Description *string               `json:"description,omitempty"`
	Address     *string               `json:"address,omitempty"`
	Status      *models.ProjectStatus `json:"status,omitempty"`
}

// ProjectService defines business logic operations for projects
type ProjectService interface {
	// CreateProject creates a new project
	CreateProject(ctx context.Context, req *CreateProjectRequest) (*models.Project, error)

	// GetProject retrieves a project by ID
	GetProject(ctx context.Context, id, userID string) (*models.Project, error)

	// ListProjects retrieves all projects for a user
	ListProjects(ctx context.Context, userID string) ([]models.Project, error)

	// GetStats computes aggregate status counts for a user's projects
	GetStats(ctx context.Context, userID string) (*models.ProjectStats, error)

	// UpdateProject applies a partial update
	UpdateProject(ctx context.Context, id, userID string, req *UpdateProjectRequest) (*models.Project, error)

	// DeleteProject deletes a project together with all of its
	// documents and their stored binaries
	DeleteProject(ctx context.Context, id, userID string) error
}
