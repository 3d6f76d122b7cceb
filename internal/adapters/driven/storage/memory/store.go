// Package memory provides in-memory implementations of the driven store
// ports. They back unit tests where nothing should touch disk.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driven"
)

// Ensure Store implements the store interfaces.
var (
	_ driven.RecordStore   = (*Store)(nil)
	_ driven.ActivityStore = (*activityStore)(nil)
	_ driven.DocumentStore = (*documentStore)(nil)
	_ driven.ProjectStore  = (*projectStore)(nil)
)

// Store holds activities, documents and projects in maps guarded by one
// mutex. It implements driven.RecordStore directly and exposes the entity
// stores through accessors, mirroring the sqlite store.
type Store struct {
	mu         sync.RWMutex
	nextID     map[domain.RecordKind]int64
	nextProjID int64
	activities map[int64]domain.ActivityRecord
	metadata   map[int64]map[string]string
	documents  map[int64]domain.DocumentRecord
	projects   map[int64]domain.Project
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		nextID:     make(map[domain.RecordKind]int64),
		activities: make(map[int64]domain.ActivityRecord),
		metadata:   make(map[int64]map[string]string),
		documents:  make(map[int64]domain.DocumentRecord),
		projects:   make(map[int64]domain.Project),
	}
}

// RecordStore returns the store as a driven.RecordStore.
func (s *Store) RecordStore() driven.RecordStore {
	return s
}

// ActivityStore returns an ActivityStore backed by this store.
func (s *Store) ActivityStore() driven.ActivityStore {
	return &activityStore{s}
}

// DocumentStore returns a DocumentStore backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{s}
}

// ProjectStore returns a ProjectStore backed by this store.
func (s *Store) ProjectStore() driven.ProjectStore {
	return &projectStore{s}
}

// ==================== Record Store ====================

// WriteText stores document text and reports whether the record qualifies.
func (s *Store) WriteText(_ context.Context, tag domain.Tag, text string, minLength int) (bool, error) {
	if tag.Kind == domain.RecordKindActivity {
		return false, domain.ErrImmutable
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[tag.ID]
	if !ok {
		return false, domain.ErrNotFound
	}
	doc.Text = text
	s.documents[tag.ID] = doc
	return !doc.Vectorized && utf8.RuneCountInString(text) > minLength, nil
}

// GetFlag returns the vectorized flag.
func (s *Store) GetFlag(_ context.Context, tag domain.Tag) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch tag.Kind {
	case domain.RecordKindActivity:
		a, ok := s.activities[tag.ID]
		if !ok {
			return false, domain.ErrNotFound
		}
		return a.Vectorized, nil
	case domain.RecordKindDocument:
		d, ok := s.documents[tag.ID]
		if !ok {
			return false, domain.ErrNotFound
		}
		return d.Vectorized, nil
	}
	return false, fmt.Errorf("%w: record kind %q", domain.ErrInvalidInput, tag.Kind)
}

// SetFlag marks the record as vectorized.
func (s *Store) SetFlag(_ context.Context, tag domain.Tag) error {
	return s.setFlag(tag, true)
}

// ResetFlag clears the vectorized flag.
func (s *Store) ResetFlag(_ context.Context, tag domain.Tag) error {
	return s.setFlag(tag, false)
}

func (s *Store) setFlag(tag domain.Tag, v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch tag.Kind {
	case domain.RecordKindActivity:
		a, ok := s.activities[tag.ID]
		if !ok {
			return domain.ErrNotFound
		}
		a.Vectorized = v
		s.activities[tag.ID] = a
		return nil
	case domain.RecordKindDocument:
		d, ok := s.documents[tag.ID]
		if !ok {
			return domain.ErrNotFound
		}
		d.Vectorized = v
		s.documents[tag.ID] = d
		return nil
	}
	return fmt.Errorf("%w: record kind %q", domain.ErrInvalidInput, tag.Kind)
}

// GetText returns the current text of a record.
func (s *Store) GetText(_ context.Context, tag domain.Tag) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch tag.Kind {
	case domain.RecordKindActivity:
		if a, ok := s.activities[tag.ID]; ok {
			return a.Text, nil
		}
	case domain.RecordKindDocument:
		if d, ok := s.documents[tag.ID]; ok {
			return d.Text, nil
		}
	}
	return "", domain.ErrNotFound
}

// ListUnvectorized returns eligible records, activities first, each in ID order.
func (s *Store) ListUnvectorized(_ context.Context, minLength, limit int) ([]domain.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tags []domain.Tag
	for _, id := range sortedKeys(s.activities) {
		a := s.activities[id]
		if !a.Vectorized && utf8.RuneCountInString(a.Text) > minLength {
			tags = append(tags, a.Tag())
		}
	}
	for _, id := range sortedKeys(s.documents) {
		d := s.documents[id]
		if !d.Vectorized && utf8.RuneCountInString(d.Text) > minLength {
			tags = append(tags, d.Tag())
		}
	}
	if limit > 0 && len(tags) > limit {
		tags = tags[:limit]
	}
	return tags, nil
}

func (s *Store) allocate(kind domain.RecordKind) int64 {
	s.nextID[kind]++
	return s.nextID[kind]
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// ==================== Activity Store ====================

type activityStore struct{ s *Store }

func (a *activityStore) Save(_ context.Context, activity *domain.ActivityRecord) error {
	if activity == nil {
		return domain.ErrInvalidInput
	}
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	activity.ID = a.s.allocate(domain.RecordKindActivity)
	a.s.activities[activity.ID] = *activity
	return nil
}

func (a *activityStore) Get(_ context.Context, id int64) (*domain.ActivityRecord, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	record, ok := a.s.activities[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

func (a *activityStore) List(_ context.Context, offset, limit int) ([]domain.ActivityRecord, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	ids := sortedKeys(a.s.activities)
	var out []domain.ActivityRecord
	for i := len(ids) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, a.s.activities[ids[i]])
	}
	return out, nil
}

func (a *activityStore) Delete(_ context.Context, id int64) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if _, ok := a.s.activities[id]; !ok {
		return domain.ErrNotFound
	}
	delete(a.s.activities, id)
	delete(a.s.metadata, id)
	return nil
}

func (a *activityStore) GetMetadata(_ context.Context, id int64) (map[string]string, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	if _, ok := a.s.activities[id]; !ok {
		return nil, domain.ErrNotFound
	}
	out := make(map[string]string, len(a.s.metadata[id]))
	for k, v := range a.s.metadata[id] {
		out[k] = v
	}
	return out, nil
}

func (a *activityStore) SetMetadata(_ context.Context, id int64, key, value string) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if _, ok := a.s.activities[id]; !ok {
		return domain.ErrNotFound
	}
	if a.s.metadata[id] == nil {
		a.s.metadata[id] = make(map[string]string)
	}
	a.s.metadata[id][key] = value
	return nil
}

// ==================== Document Store ====================

type documentStore struct{ s *Store }

func (d *documentStore) Create(_ context.Context, doc *domain.DocumentRecord) error {
	if doc == nil {
		return domain.ErrInvalidInput
	}
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	project, ok := d.s.projects[doc.ProjectID]
	if !ok {
		return fmt.Errorf("project %d: %w", doc.ProjectID, domain.ErrNotFound)
	}
	doc.ID = d.s.allocate(domain.RecordKindDocument)
	d.s.documents[doc.ID] = *doc
	project.DocumentIDs = append(project.DocumentIDs, doc.ID)
	d.s.projects[project.ID] = project
	return nil
}

func (d *documentStore) Get(_ context.Context, id int64) (*domain.DocumentRecord, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()
	doc, ok := d.s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

func (d *documentStore) List(_ context.Context, projectID int64) ([]domain.DocumentRecord, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()
	project, ok := d.s.projects[projectID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]domain.DocumentRecord, 0, len(project.DocumentIDs))
	for _, id := range project.DocumentIDs {
		out = append(out, d.s.documents[id])
	}
	return out, nil
}

func (d *documentStore) Rename(_ context.Context, id int64, name string) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	doc, ok := d.s.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Name = name
	d.s.documents[id] = doc
	return nil
}

func (d *documentStore) Move(_ context.Context, id, projectID int64) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	doc, ok := d.s.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	target, ok := d.s.projects[projectID]
	if !ok {
		return domain.ErrNotFound
	}
	d.s.detach(doc.ProjectID, id)
	target = d.s.projects[projectID]
	target.DocumentIDs = append(target.DocumentIDs, id)
	d.s.projects[projectID] = target
	doc.ProjectID = projectID
	d.s.documents[id] = doc
	return nil
}

func (d *documentStore) Delete(_ context.Context, id int64) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	doc, ok := d.s.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	d.s.detach(doc.ProjectID, id)
	delete(d.s.documents, id)
	return nil
}

// detach removes a document ID from its project's ordering (caller holds lock).
func (s *Store) detach(projectID, docID int64) {
	project, ok := s.projects[projectID]
	if !ok {
		return
	}
	ids := project.DocumentIDs[:0:0]
	for _, id := range project.DocumentIDs {
		if id != docID {
			ids = append(ids, id)
		}
	}
	project.DocumentIDs = ids
	s.projects[projectID] = project
}

// ==================== Project Store ====================

type projectStore struct{ s *Store }

func (p *projectStore) Create(_ context.Context, project *domain.Project) error {
	if project == nil {
		return domain.ErrInvalidInput
	}
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	for _, existing := range p.s.projects {
		if existing.Name == project.Name {
			return domain.ErrAlreadyExists
		}
	}
	p.s.nextProjID++
	project.ID = p.s.nextProjID
	project.DocumentIDs = nil
	p.s.projects[project.ID] = *project
	return nil
}

func (p *projectStore) Get(_ context.Context, id int64) (*domain.Project, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	project, ok := p.s.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	project.DocumentIDs = append([]int64(nil), project.DocumentIDs...)
	return &project, nil
}

func (p *projectStore) GetByName(_ context.Context, name string) (*domain.Project, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	for _, project := range p.s.projects {
		if project.Name == name {
			project.DocumentIDs = append([]int64(nil), project.DocumentIDs...)
			return &project, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (p *projectStore) List(_ context.Context) ([]domain.Project, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	out := make([]domain.Project, 0, len(p.s.projects))
	for _, id := range sortedKeys(p.s.projects) {
		project := p.s.projects[id]
		project.DocumentIDs = append([]int64(nil), project.DocumentIDs...)
		out = append(out, project)
	}
	return out, nil
}

func (p *projectStore) Rename(_ context.Context, id int64, name string) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	project, ok := p.s.projects[id]
	if !ok {
		return domain.ErrNotFound
	}
	for _, existing := range p.s.projects {
		if existing.ID != id && existing.Name == name {
			return domain.ErrAlreadyExists
		}
	}
	project.Name = name
	p.s.projects[id] = project
	return nil
}

func (p *projectStore) Delete(_ context.Context, id int64) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	project, ok := p.s.projects[id]
	if !ok {
		return domain.ErrNotFound
	}
	for _, docID := range project.DocumentIDs {
		delete(p.s.documents, docID)
	}
	delete(p.s.projects, id)
	return nil
}
