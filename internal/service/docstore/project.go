package docstore

import (
	"context"
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

// projectService implements the ProjectService interface
type projectService struct {
	projectRepo repositories.ProjectRepository
	docRepo     repositories.DocumentRepository
	blobStore   services.BlobStore
	txManager   repositories.TransactionManager
	logger      *slog.Logger
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo repositories.ProjectRepository,
	docRepo repositories.DocumentRepository,
	blobStore services.BlobStore,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		docRepo:     docRepo,
		blobStore:   blobStore,
		txManager:   txManager,
		logger:      logger,
	}
}

// CreateProject creates a new project
func (s *projectService) CreateProject(ctx context.Context, req *services.CreateProjectRequest) (*models.Project, error) {
	if req.Status == "" {
		req.Status = models.StatusActive
	}

	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	project := &models.Project{
		UserID:      req.UserID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Address:     req.Address,
		Status:      req.Status,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project created",
		"id", project.ID,
		"title", project.Title,
		"user_id", project.UserID,
	)

	return project, nil
}

// GetProject retrieves a project by ID
func (s *projectService) GetProject(ctx context.Context, id, userID string) (*models.Project, error) {
	return s.projectRepo.GetByID(ctx, id, userID)
}

// ListProjects retrieves all projects for a user
func (s *projectService) ListProjects(ctx context.Context, userID string) ([]models.Project, error) {
	return s.projectRepo.List(ctx, userID)
}

// GetStats computes aggregate status counts. O(n) over the user's
// projects, recomputed on every call.
func (s *projectService) GetStats(ctx context.Context, userID string) (*models.ProjectStats, error) {
	statuses, err := s.projectRepo.ListStatuses(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &models.ProjectStats{Total: len(statuses)}
	for _, status := range statuses {
		switch status {
		case models.StatusCompleted:
			stats.Completed++
		case models.StatusInProgress:
			stats.InProgress++
		}
	}

	return stats, nil
}

// UpdateProject applies a partial update. user_id is immutable.
func (s *projectService) UpdateProject(ctx context.Context, id, userID string, req *services.UpdateProjectRequest) (*models.Project, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	project, err := s.projectRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		project.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Address != nil {
		project.Address = *req.Address
	}
	if req.Status != nil {
		project.Status = *req.Status
	}
	project.UpdatedAt = time.Now()

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project updated",
		"id", project.ID,
		"title", project.Title,
		"user_id", userID,
	)

	return project, nil
}

// DeleteProject deletes a project together with all of its documents.
// File binaries are removed from the object store first, then the
// document rows and the project row go in one transaction.
func (s *projectService) DeleteProject(ctx context.Context, id, userID string) error {
	project, err := s.projectRepo.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	files, err := s.docRepo.ListFilesByProject(ctx, id)
	if err != nil {
		return err
	}

	for i := range files {
		doc := &files[i]
		if doc.FileKey == nil {
			continue
		}
		// Stored key, not a recomputed one: the name may have changed
		// since the upload.
		if err := s.blobStore.Remove(ctx, *doc.FileKey); err != nil {
			return fmt.Errorf("%w: remove blob %s: %v", domain.ErrStorage, *doc.FileKey, err)
		}
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.docRepo.DeleteByProject(txCtx, id); err != nil {
			return err
		}
		return s.projectRepo.Delete(txCtx, id, userID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("project deleted",
		"id", id,
		"title", project.Title,
		"user_id", userID,
		"file_count", len(files),
	)

	return nil
}

// validateCreateRequest validates a create project request
func (s *projectService) validateCreateRequest(req *services.CreateProjectRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxProjectTitleLength),
			validation.By(validateNotBlank),
		),
		validation.Field(&req.Status,
			validation.In(models.StatusActive, models.StatusInProgress, models.StatusCompleted),
		),
	)
}

// validateUpdateRequest validates an update project request
func (s *projectService) validateUpdateRequest(req *services.UpdateProjectRequest) error {
	if req.Title == nil && req.Description == nil && req.Address == nil && req.Status == nil {
		return fmt.Errorf("at least one field must be provided")
	}

	if req.Title != nil {
		if err := validation.Validate(*req.Title,
			validation.Required,
			validation.Length(1, config.MaxProjectTitleLength),
			validation.By(validateNotBlank),
		); err != nil {
			return fmt.Errorf("title: %v", err)
		}
	}

	if req.Status != nil && !req.Status.Valid() {
		return fmt.Errorf("status must be one of active, in_progress, completed")
	}

	return nil
}

// validateNotBlank rejects strings that are empty after trimming
func validateNotBlank(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("must be a string")
	}
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("cannot be blank")
	}
	return nil
}
