package mcp

import (
	"context"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	items []domain.RetrievedItem
	err   error

	gotQuery string
	gotK     int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, query string, k int) ([]domain.RetrievedItem, error) {
	m.gotQuery = query
	m.gotK = k
	return m.items, m.err
}

// mockActivityService is a mock implementation of driving.ActivityService.
type mockActivityService struct {
	record *domain.ActivityRecord
	result domain.VectorizationResult
	err    error

	captured domain.CaptureRequest
}

func (m *mockActivityService) Capture(
	_ context.Context,
	req domain.CaptureRequest,
) (*domain.ActivityRecord, domain.VectorizationResult, error) {
	m.captured = req
	return m.record, m.result, m.err
}

func (m *mockActivityService) History(_ context.Context, _, _ int) ([]domain.ActivityRecord, error) {
	return nil, m.err
}

func (m *mockActivityService) Get(_ context.Context, _ int64) (*domain.ActivityRecord, error) {
	return m.record, m.err
}

func (m *mockActivityService) Delete(_ context.Context, _ int64) error {
	return m.err
}

func (m *mockActivityService) Metadata(_ context.Context, _ int64) (map[string]string, error) {
	return nil, m.err
}

func (m *mockActivityService) SetMetadata(_ context.Context, _ int64, _, _ string) error {
	return m.err
}

// mockProjectService is a mock implementation of driving.ProjectService.
type mockProjectService struct {
	projects []domain.Project
	err      error
}

func (m *mockProjectService) EnsureUnassigned(_ context.Context) (*domain.Project, error) {
	return &domain.Project{ID: 1, Name: domain.UnassignedProjectName}, m.err
}

func (m *mockProjectService) Create(_ context.Context, name string, _ []int64) (*domain.Project, error) {
	return &domain.Project{Name: name}, m.err
}

func (m *mockProjectService) Get(_ context.Context, _ int64) (*domain.Project, error) {
	return nil, m.err
}

func (m *mockProjectService) List(_ context.Context) ([]domain.Project, error) {
	return m.projects, m.err
}

func (m *mockProjectService) Rename(_ context.Context, _ int64, _ string) error {
	return m.err
}

func (m *mockProjectService) Delete(_ context.Context, _ int64) error {
	return m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.DocumentRecord
	document  *domain.DocumentRecord
	err       error

	listedProject int64
}

func (m *mockDocumentService) Create(
	_ context.Context,
	_ int64,
	_, _ string,
) (*domain.DocumentRecord, domain.VectorizationResult, error) {
	return m.document, domain.VectorizationResult{}, m.err
}

func (m *mockDocumentService) UpdateText(
	_ context.Context,
	_ int64,
	_ string,
	_ domain.VectorizeOptions,
) (domain.VectorizationResult, error) {
	return domain.VectorizationResult{}, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ int64) (*domain.DocumentRecord, error) {
	return m.document, m.err
}

func (m *mockDocumentService) List(_ context.Context, projectID int64) ([]domain.DocumentRecord, error) {
	m.listedProject = projectID
	return m.documents, m.err
}

func (m *mockDocumentService) Rename(_ context.Context, _ int64, _ string) error {
	return m.err
}

func (m *mockDocumentService) Move(_ context.Context, _, _ int64) error {
	return m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ int64) error {
	return m.err
}
