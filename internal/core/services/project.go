package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driven"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driving"
	"github.com/custodia-labs/recall-cli/internal/logger"
)

// Ensure ProjectService implements the interface.
var _ driving.ProjectService = (*ProjectService)(nil)

// ProjectService manages projects and the well-known Unassigned project.
type ProjectService struct {
	projects   driven.ProjectStore
	documents  driven.DocumentStore
	activities driven.ActivityStore
	vectorizer driving.Vectorizer
	index      *IndexHandle
}

// NewProjectService creates a project service.
func NewProjectService(
	projects driven.ProjectStore,
	documents driven.DocumentStore,
	activities driven.ActivityStore,
	vectorizer driving.Vectorizer,
	index *IndexHandle,
) *ProjectService {
	return &ProjectService{
		projects:   projects,
		documents:  documents,
		activities: activities,
		vectorizer: vectorizer,
		index:      index,
	}
}

// EnsureUnassigned returns the Unassigned project, creating it on first use.
func (s *ProjectService) EnsureUnassigned(ctx context.Context) (*domain.Project, error) {
	return ensureUnassigned(ctx, s.projects)
}

// Create adds a project. Each activity is copied into a new document named
// after its window title, and the document is submitted for vectorization.
func (s *ProjectService) Create(ctx context.Context, name string, activityIDs []int64) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name is required", domain.ErrInvalidInput)
	}

	project := &domain.Project{Name: name, CreatedAt: time.Now().UTC()}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("creating project %q: %w", name, err)
	}

	for _, id := range activityIDs {
		activity, err := s.activities.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("activity %d: %w", id, err)
		}

		docName := activity.WindowTitle
		if docName == "" {
			docName = fmt.Sprintf("Document %d", activity.ID)
		}
		now := time.Now().UTC()
		doc := &domain.DocumentRecord{
			ProjectID: project.ID,
			Name:      docName,
			Text:      activity.Text,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.documents.Create(ctx, doc); err != nil {
			return nil, fmt.Errorf("copying activity %d: %w", id, err)
		}
		result := s.vectorizer.Vectorize(ctx, doc.Tag(), domain.VectorizeOptions{})
		logger.Debug("Project %q: document %d from activity %d: %s", name, doc.ID, id, result.Outcome)
	}

	return s.projects.Get(ctx, project.ID)
}

// Get retrieves a project by ID.
func (s *ProjectService) Get(ctx context.Context, id int64) (*domain.Project, error) {
	return s.projects.Get(ctx, id)
}

// List returns all projects, making sure Unassigned is among them.
func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	if _, err := ensureUnassigned(ctx, s.projects); err != nil {
		return nil, err
	}
	return s.projects.List(ctx)
}

// Rename changes a project's name. Unassigned cannot be renamed.
func (s *ProjectService) Rename(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: project name is required", domain.ErrInvalidInput)
	}
	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return err
	}
	if project.IsUnassigned() {
		return fmt.Errorf("%w: the %s project cannot be renamed", domain.ErrInvalidInput, domain.UnassignedProjectName)
	}
	return s.projects.Rename(ctx, id, name)
}

// Delete removes a project, its documents and their index entries.
// Unassigned cannot be deleted.
func (s *ProjectService) Delete(ctx context.Context, id int64) error {
	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return err
	}
	if project.IsUnassigned() {
		return fmt.Errorf("%w: the %s project cannot be deleted", domain.ErrInvalidInput, domain.UnassignedProjectName)
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}
	for _, docID := range project.DocumentIDs {
		purge(ctx, s.index, domain.DocumentTag(docID))
	}
	return nil
}

// ensureUnassigned looks up the Unassigned project and creates it if absent.
// A concurrent creator winning the race is treated as success.
func ensureUnassigned(ctx context.Context, projects driven.ProjectStore) (*domain.Project, error) {
	project, err := projects.GetByName(ctx, domain.UnassignedProjectName)
	if err == nil {
		return project, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("looking up %s project: %w", domain.UnassignedProjectName, err)
	}

	project = &domain.Project{Name: domain.UnassignedProjectName, CreatedAt: time.Now().UTC()}
	err = projects.Create(ctx, project)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return projects.GetByName(ctx, domain.UnassignedProjectName)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s project: %w", domain.UnassignedProjectName, err)
	}
	logger.Info("Created %s project (id %d)", domain.UnassignedProjectName, project.ID)
	return project, nil
}
