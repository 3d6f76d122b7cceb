package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

var testTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// mockActivityService is a mock implementation of driving.ActivityService.
type mockActivityService struct {
	activities []domain.ActivityRecord
	metadata   map[string]string
	result     domain.VectorizationResult
	err        error

	captured  domain.CaptureRequest
	deleted   int64
	setKey    string
	setValue  string
	gotOffset int
	gotLimit  int
}

func (m *mockActivityService) Capture(
	_ context.Context,
	req domain.CaptureRequest,
) (*domain.ActivityRecord, domain.VectorizationResult, error) {
	m.captured = req
	if m.err != nil {
		return nil, domain.VectorizationResult{}, m.err
	}
	return &domain.ActivityRecord{ID: 42, UserID: req.UserID, Text: req.Text}, m.result, nil
}

func (m *mockActivityService) History(_ context.Context, offset, limit int) ([]domain.ActivityRecord, error) {
	m.gotOffset, m.gotLimit = offset, limit
	return m.activities, m.err
}

func (m *mockActivityService) Get(_ context.Context, id int64) (*domain.ActivityRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.activities {
		if m.activities[i].ID == id {
			return &m.activities[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockActivityService) Delete(_ context.Context, id int64) error {
	m.deleted = id
	return m.err
}

func (m *mockActivityService) Metadata(_ context.Context, _ int64) (map[string]string, error) {
	return m.metadata, m.err
}

func (m *mockActivityService) SetMetadata(_ context.Context, _ int64, key, value string) error {
	m.setKey, m.setValue = key, value
	return m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.DocumentRecord
	result    domain.VectorizationResult
	err       error

	createdProject int64
	createdName    string
	createdText    string
	updatedText    string
	updatedOpts    domain.VectorizeOptions
	listedProject  int64
	renamed        string
	movedTo        int64
	deleted        int64
}

func (m *mockDocumentService) Create(
	_ context.Context,
	projectID int64,
	name, text string,
) (*domain.DocumentRecord, domain.VectorizationResult, error) {
	m.createdProject, m.createdName, m.createdText = projectID, name, text
	if m.err != nil {
		return nil, domain.VectorizationResult{}, m.err
	}
	if name == "" {
		name = domain.DefaultDocumentName
	}
	if projectID == 0 {
		projectID = 1
	}
	return &domain.DocumentRecord{ID: 9, ProjectID: projectID, Name: name, Text: text}, m.result, nil
}

func (m *mockDocumentService) UpdateText(
	_ context.Context,
	_ int64,
	text string,
	opts domain.VectorizeOptions,
) (domain.VectorizationResult, error) {
	m.updatedText, m.updatedOpts = text, opts
	return m.result, m.err
}

func (m *mockDocumentService) Get(_ context.Context, id int64) (*domain.DocumentRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.documents {
		if m.documents[i].ID == id {
			return &m.documents[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) List(_ context.Context, projectID int64) ([]domain.DocumentRecord, error) {
	m.listedProject = projectID
	return m.documents, m.err
}

func (m *mockDocumentService) Rename(_ context.Context, _ int64, name string) error {
	m.renamed = name
	return m.err
}

func (m *mockDocumentService) Move(_ context.Context, _, projectID int64) error {
	m.movedTo = projectID
	return m.err
}

func (m *mockDocumentService) Delete(_ context.Context, id int64) error {
	m.deleted = id
	return m.err
}

// mockProjectService is a mock implementation of driving.ProjectService.
type mockProjectService struct {
	projects []domain.Project
	err      error

	createdName string
	createdFrom []int64
	renamed     string
	deleted     int64
}

func (m *mockProjectService) EnsureUnassigned(_ context.Context) (*domain.Project, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Project{ID: 1, Name: domain.UnassignedProjectName}, nil
}

func (m *mockProjectService) Create(_ context.Context, name string, activityIDs []int64) (*domain.Project, error) {
	m.createdName = name
	m.createdFrom = append([]int64(nil), activityIDs...)
	if m.err != nil {
		return nil, m.err
	}
	docIDs := make([]int64, len(activityIDs))
	for i := range activityIDs {
		docIDs[i] = int64(100 + i)
	}
	return &domain.Project{ID: 5, Name: name, DocumentIDs: docIDs}, nil
}

func (m *mockProjectService) Get(_ context.Context, id int64) (*domain.Project, error) {
	for i := range m.projects {
		if m.projects[i].ID == id {
			return &m.projects[i], m.err
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockProjectService) List(_ context.Context) ([]domain.Project, error) {
	return m.projects, m.err
}

func (m *mockProjectService) Rename(_ context.Context, _ int64, name string) error {
	m.renamed = name
	return m.err
}

func (m *mockProjectService) Delete(_ context.Context, id int64) error {
	m.deleted = id
	return m.err
}

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	items []domain.RetrievedItem
	err   error

	gotQuery string
	gotK     int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, query string, k int) ([]domain.RetrievedItem, error) {
	m.gotQuery, m.gotK = query, k
	return m.items, m.err
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings    domain.AppSettings
	err         error
	validateErr error

	setKey, setValue string
	provider         domain.AIProvider
	model, apiKey    string
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return m.err
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.provider, m.model, m.apiKey = provider, model, apiKey
	return m.err
}

func (m *mockSettingsService) SetVectorization(enabled bool, minTextLength int) error {
	m.settings.Vectorization.Enabled = enabled
	m.settings.Vectorization.MinTextLength = minTextLength
	return m.err
}

func (m *mockSettingsService) Set(key, value string) error {
	m.setKey, m.setValue = key, value
	return m.err
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error {
	return m.validateErr
}

// mockIndexAdmin is a mock implementation of driving.IndexAdmin.
type mockIndexAdmin struct {
	stats      domain.IndexStats
	reconciled int
	err        error
	flushed    bool
}

func (m *mockIndexAdmin) Stats(_ context.Context) domain.IndexStats {
	return m.stats
}

func (m *mockIndexAdmin) Flush(_ context.Context) error {
	m.flushed = true
	return m.err
}

func (m *mockIndexAdmin) Reconcile(_ context.Context) (int, error) {
	return m.reconciled, m.err
}

// mockScheduler is a mock implementation of driving.Scheduler.
type mockScheduler struct {
	mu      sync.Mutex
	started bool
	history []domain.TaskResult
	err     error
}

func (m *mockScheduler) Start(ctx context.Context) error {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockScheduler) Stop() error {
	return nil
}

func (m *mockScheduler) History(_ context.Context, _ string, _ int) ([]domain.TaskResult, error) {
	return m.history, m.err
}

func (m *mockScheduler) wasStarted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	activity  *mockActivityService
	document  *mockDocumentService
	project   *mockProjectService
	retrieval *mockRetrievalService
	settings  *mockSettingsService
	index     *mockIndexAdmin
	scheduler *mockScheduler
}

// setupTestServices installs fresh mocks and returns them with a cleanup func.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		activity: &mockActivityService{
			activities: []domain.ActivityRecord{
				{ID: 1, UserID: "alice", Text: "drafting the launch email", WindowTitle: "Mail",
					IntervalLength: 20, Vectorized: true, CreatedAt: testTime},
				{ID: 2, UserID: "alice", Text: "short", IntervalLength: 20, CreatedAt: testTime},
			},
			result: domain.VectorizationResult{Outcome: domain.OutcomeIndexed},
		},
		document: &mockDocumentService{
			documents: []domain.DocumentRecord{
				{ID: 3, ProjectID: 1, Name: "Launch plan", Text: "phase one", Vectorized: true,
					CreatedAt: testTime, UpdatedAt: testTime},
			},
			result: domain.VectorizationResult{Outcome: domain.OutcomeSkippedIneligible},
		},
		project: &mockProjectService{
			projects: []domain.Project{
				{ID: 1, Name: domain.UnassignedProjectName, DocumentIDs: []int64{3}},
				{ID: 2, Name: "Launch"},
			},
		},
		retrieval: &mockRetrievalService{},
		settings:  &mockSettingsService{settings: domain.DefaultAppSettings()},
		index:     &mockIndexAdmin{},
		scheduler: &mockScheduler{},
	}

	SetServices(&Services{
		Activity:  ts.activity,
		Document:  ts.document,
		Project:   ts.project,
		Retrieval: ts.retrieval,
		Settings:  ts.settings,
		Index:     ts.index,
		Scheduler: ts.scheduler,
	})
	return ts, func() { SetServices(nil) }
}

// resetFlags restores every package-level flag variable to its default.
func resetFlags() {
	verbose, dataDir = false, ""
	captureUser, captureTitle, captureInterval, captureFile = "", "", 0, ""
	activityOffset, activityLimit, activityJSON = 0, 20, false
	documentProject, documentName, documentFile, documentReindex, documentJSON = 0, "", "", false, false
	projectFromActivities, projectJSON = nil, false
	retrieveK, retrieveJSON = 5, false
	indexJSON = false
	serveMCPPort, serveNoInbox = 0, false
}

// execute runs the root command with args and returns combined output.
func execute(ctx context.Context, stdin string, args ...string) (string, error) {
	resetFlags()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}
