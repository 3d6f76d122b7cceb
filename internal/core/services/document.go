package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driven"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages project documents.
type DocumentService struct {
	documents  driven.DocumentStore
	projects   driven.ProjectStore
	vectorizer driving.Vectorizer
	index      *IndexHandle
	settings   settingsReader
}

// NewDocumentService creates a document service.
func NewDocumentService(
	documents driven.DocumentStore,
	projects driven.ProjectStore,
	vectorizer driving.Vectorizer,
	index *IndexHandle,
	settings settingsReader,
) *DocumentService {
	return &DocumentService{
		documents:  documents,
		projects:   projects,
		vectorizer: vectorizer,
		index:      index,
		settings:   settings,
	}
}

// Create adds a document to a project, or to Unassigned when projectID is zero.
func (s *DocumentService) Create(
	ctx context.Context,
	projectID int64,
	name, text string,
) (*domain.DocumentRecord, domain.VectorizationResult, error) {
	if projectID == 0 {
		unassigned, err := ensureUnassigned(ctx, s.projects)
		if err != nil {
			return nil, domain.VectorizationResult{}, err
		}
		projectID = unassigned.ID
	} else if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, domain.VectorizationResult{}, fmt.Errorf("project %d: %w", projectID, err)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = domain.DefaultDocumentName
	}
	if text == "" {
		text = domain.DefaultDocumentText
	}

	now := time.Now().UTC()
	doc := &domain.DocumentRecord{
		ProjectID: projectID,
		Name:      name,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, domain.VectorizationResult{}, fmt.Errorf("creating document: %w", err)
	}

	result := s.vectorizer.Vectorize(ctx, doc.Tag(), domain.VectorizeOptions{})
	doc.Vectorized = result.Outcome == domain.OutcomeIndexed
	return doc, result, nil
}

// UpdateText replaces a document's text. With reindex_on_edit enabled a
// changed text clears the vectorized flag so the new text is embedded.
func (s *DocumentService) UpdateText(
	ctx context.Context,
	id int64,
	text string,
	opts domain.VectorizeOptions,
) (domain.VectorizationResult, error) {
	doc, err := s.documents.Get(ctx, id)
	if err != nil {
		return domain.VectorizationResult{}, err
	}

	if !opts.Force && doc.Text != text && s.reindexOnEdit() {
		opts.Force = true
	}

	return s.vectorizer.Submit(ctx, doc.Tag(), text, opts)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id int64) (*domain.DocumentRecord, error) {
	return s.documents.Get(ctx, id)
}

// List returns the documents of a project, or of Unassigned when projectID is zero.
func (s *DocumentService) List(ctx context.Context, projectID int64) ([]domain.DocumentRecord, error) {
	if projectID == 0 {
		unassigned, err := ensureUnassigned(ctx, s.projects)
		if err != nil {
			return nil, err
		}
		projectID = unassigned.ID
	}
	return s.documents.List(ctx, projectID)
}

// Rename changes a document's display name.
func (s *DocumentService) Rename(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: document name is required", domain.ErrInvalidInput)
	}
	return s.documents.Rename(ctx, id, name)
}

// Move reassigns a document to another project.
func (s *DocumentService) Move(ctx context.Context, id, projectID int64) error {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return fmt.Errorf("project %d: %w", projectID, err)
	}
	return s.documents.Move(ctx, id, projectID)
}

// Delete removes a document and purges its index entry.
func (s *DocumentService) Delete(ctx context.Context, id int64) error {
	if err := s.documents.Delete(ctx, id); err != nil {
		return err
	}
	purge(ctx, s.index, domain.DocumentTag(id))
	return nil
}

func (s *DocumentService) reindexOnEdit() bool {
	if s.settings == nil {
		return false
	}
	settings, err := s.settings.Get()
	if err != nil {
		return false
	}
	return settings.Vectorization.ReindexOnEdit
}
