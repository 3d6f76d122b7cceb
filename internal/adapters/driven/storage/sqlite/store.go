package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/recall-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/recall-cli/internal/core/domain"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all relational store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.RecordStore = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.recall/data/metadata.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".recall", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "metadata.db")

	// Pragmas in the DSN apply to every pooled connection.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// RecordStore returns the store as a driven.RecordStore.
func (s *Store) RecordStore() driven.RecordStore {
	return s
}

// ActivityStore returns an ActivityStore interface backed by this store.
func (s *Store) ActivityStore() driven.ActivityStore {
	return &activityStore{store: s}
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// ProjectStore returns a ProjectStore interface backed by this store.
func (s *Store) ProjectStore() driven.ProjectStore {
	return &projectStore{store: s}
}

// SchedulerStore returns a SchedulerStore interface backed by this store.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &schedulerStore{store: s}
}

// migrate runs all pending migrations and records each applied version.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Record Store ====================

// tableFor maps a record kind to its table. Table names never come from input.
func tableFor(kind domain.RecordKind) (string, error) {
	switch kind {
	case domain.RecordKindActivity:
		return "activities", nil
	case domain.RecordKindDocument:
		return "documents", nil
	}
	return "", fmt.Errorf("%w: record kind %q", domain.ErrInvalidInput, kind)
}

// WriteText replaces a document's text and reports, in the same
// transaction, whether the record now qualifies for vectorization.
func (s *Store) WriteText(ctx context.Context, tag domain.Tag, text string, minLength int) (bool, error) {
	if tag.Kind == domain.RecordKindActivity {
		return false, domain.ErrImmutable
	}
	if _, err := tableFor(tag.Kind); err != nil {
		return false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		"UPDATE documents SET text = ?, updated_at = ? WHERE id = ?",
		text, formatTime(time.Now()), tag.ID)
	if err != nil {
		return false, fmt.Errorf("writing text: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, domain.ErrNotFound
	}

	var vectorized int
	if err := tx.QueryRowContext(ctx,
		"SELECT vectorized FROM documents WHERE id = ?", tag.ID).Scan(&vectorized); err != nil {
		return false, fmt.Errorf("reading flag: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing transaction: %w", err)
	}
	return vectorized == 0 && utf8.RuneCountInString(text) > minLength, nil
}

// GetFlag returns the vectorized flag of a record.
func (s *Store) GetFlag(ctx context.Context, tag domain.Tag) (bool, error) {
	table, err := tableFor(tag.Kind)
	if err != nil {
		return false, err
	}
	var vectorized int
	err = s.db.QueryRowContext(ctx,
		"SELECT vectorized FROM "+table+" WHERE id = ?", tag.ID).Scan(&vectorized)
	if errors.Is(err, sql.ErrNoRows) {
		return false, domain.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("reading flag: %w", err)
	}
	return vectorized == 1, nil
}

// SetFlag marks a record as vectorized.
func (s *Store) SetFlag(ctx context.Context, tag domain.Tag) error {
	return s.writeFlag(ctx, tag, true)
}

// ResetFlag clears the vectorized flag of a record.
func (s *Store) ResetFlag(ctx context.Context, tag domain.Tag) error {
	return s.writeFlag(ctx, tag, false)
}

func (s *Store) writeFlag(ctx context.Context, tag domain.Tag, value bool) error {
	table, err := tableFor(tag.Kind)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE "+table+" SET vectorized = ? WHERE id = ?", boolToInt(value), tag.ID)
	if err != nil {
		return fmt.Errorf("writing flag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetText returns the current text of a record.
func (s *Store) GetText(ctx context.Context, tag domain.Tag) (string, error) {
	table, err := tableFor(tag.Kind)
	if err != nil {
		return "", err
	}
	var text string
	err = s.db.QueryRowContext(ctx,
		"SELECT text FROM "+table+" WHERE id = ?", tag.ID).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading text: %w", err)
	}
	return text, nil
}

// ListUnvectorized returns records that qualify for vectorization but are
// not flagged, activities first. SQLite length() counts characters, so the
// threshold matches the rune count used elsewhere.
func (s *Store) ListUnvectorized(ctx context.Context, minLength, limit int) ([]domain.Tag, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, id FROM (
			SELECT 0 AS ord, 'activity' AS kind, id FROM activities
			WHERE vectorized = 0 AND length(text) > ?
			UNION ALL
			SELECT 1 AS ord, 'document' AS kind, id FROM documents
			WHERE vectorized = 0 AND length(text) > ?
		)
		ORDER BY ord, id
		LIMIT ?
	`, minLength, minLength, limit)
	if err != nil {
		return nil, fmt.Errorf("querying unvectorized records: %w", err)
	}
	defer rows.Close()

	var tags []domain.Tag
	for rows.Next() {
		var kind string
		var id int64
		if err := rows.Scan(&kind, &id); err != nil {
			return nil, fmt.Errorf("scanning record tag: %w", err)
		}
		tags = append(tags, domain.Tag{Kind: domain.RecordKind(kind), ID: id})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating record tags: %w", err)
	}
	return tags, nil
}

// ==================== Activity Store ====================

// activityStore implements driven.ActivityStore.
type activityStore struct {
	store *Store
}

var _ driven.ActivityStore = (*activityStore)(nil)

// Save inserts a new activity and assigns its ID.
func (s *activityStore) Save(ctx context.Context, activity *domain.ActivityRecord) error {
	if activity == nil {
		return domain.ErrInvalidInput
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO activities (user_id, text, window_title, interval_length, vectorized, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, activity.UserID, activity.Text, activity.WindowTitle, activity.IntervalLength,
		boolToInt(activity.Vectorized), formatTime(activity.CreatedAt))
	if err != nil {
		return fmt.Errorf("saving activity: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading activity id: %w", err)
	}
	activity.ID = id
	return nil
}

const activityColumns = "id, user_id, text, window_title, interval_length, vectorized, created_at"

// Get retrieves an activity by ID.
func (s *activityStore) Get(ctx context.Context, id int64) (*domain.ActivityRecord, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+activityColumns+" FROM activities WHERE id = ?", id)
	return scanActivity(row)
}

// List returns activities newest first.
func (s *activityStore) List(ctx context.Context, offset, limit int) ([]domain.ActivityRecord, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+activityColumns+" FROM activities ORDER BY id DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying activities: %w", err)
	}
	defer rows.Close()

	var activities []domain.ActivityRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activities: %w", err)
	}
	return activities, nil
}

// Delete removes an activity and, by cascade, its metadata.
func (s *activityStore) Delete(ctx context.Context, id int64) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM activities WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting activity: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetMetadata returns all metadata entries for an activity.
func (s *activityStore) GetMetadata(ctx context.Context, id int64) (map[string]string, error) {
	if err := s.exists(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT key, value FROM activity_metadata WHERE activity_id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("querying metadata: %w", err)
	}
	defer rows.Close()

	md := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning metadata: %w", err)
		}
		md[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating metadata: %w", err)
	}
	return md, nil
}

// SetMetadata upserts a metadata entry.
func (s *activityStore) SetMetadata(ctx context.Context, id int64, key, value string) error {
	if err := s.exists(ctx, id); err != nil {
		return err
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO activity_metadata (activity_id, key, value) VALUES (?, ?, ?)
		ON CONFLICT(activity_id, key) DO UPDATE SET value = excluded.value
	`, id, key, value)
	if err != nil {
		return fmt.Errorf("saving metadata: %w", err)
	}
	return nil
}

func (s *activityStore) exists(ctx context.Context, id int64) error {
	var one int
	err := s.store.db.QueryRowContext(ctx, "SELECT 1 FROM activities WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking activity: %w", err)
	}
	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// Create inserts a document at the end of its project.
func (s *documentStore) Create(ctx context.Context, doc *domain.DocumentRecord) error {
	if doc == nil {
		return domain.ErrInvalidInput
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	position, err := nextPosition(ctx, tx, doc.ProjectID)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO documents (project_id, name, text, position, vectorized, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, doc.ProjectID, doc.Name, doc.Text, position, boolToInt(doc.Vectorized),
		formatTime(doc.CreatedAt), formatTime(doc.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading document id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	doc.ID = id
	return nil
}

const documentColumns = "id, project_id, name, text, vectorized, created_at, updated_at"

// Get retrieves a document by ID.
func (s *documentStore) Get(ctx context.Context, id int64) (*domain.DocumentRecord, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id = ?", id)
	return scanDocument(row)
}

// List returns a project's documents in project order.
func (s *documentStore) List(ctx context.Context, projectID int64) ([]domain.DocumentRecord, error) {
	if err := projectExists(ctx, s.store.db, projectID); err != nil {
		return nil, err
	}
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE project_id = ? ORDER BY position, id",
		projectID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.DocumentRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// Rename changes a document's display name.
func (s *documentStore) Rename(ctx context.Context, id int64, name string) error {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE documents SET name = ?, updated_at = ? WHERE id = ?",
		name, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("renaming document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Move appends a document to another project.
func (s *documentStore) Move(ctx context.Context, id, projectID int64) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	position, err := nextPosition(ctx, tx, projectID)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		"UPDATE documents SET project_id = ?, position = ? WHERE id = ?", projectID, position, id)
	if err != nil {
		return fmt.Errorf("moving document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Delete removes a document.
func (s *documentStore) Delete(ctx context.Context, id int64) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// nextPosition returns the slot after the last document in a project,
// failing with ErrNotFound when the project does not exist.
func nextPosition(ctx context.Context, q queryer, projectID int64) (int, error) {
	if err := projectExists(ctx, q, projectID); err != nil {
		return 0, err
	}
	var position int
	err := q.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position), 0) + 1 FROM documents WHERE project_id = ?",
		projectID).Scan(&position)
	if err != nil {
		return 0, fmt.Errorf("reading document position: %w", err)
	}
	return position, nil
}

// ==================== Project Store ====================

// projectStore implements driven.ProjectStore.
type projectStore struct {
	store *Store
}

var _ driven.ProjectStore = (*projectStore)(nil)

// Create inserts a project. Names are unique.
func (s *projectStore) Create(ctx context.Context, project *domain.Project) error {
	if project == nil {
		return domain.ErrInvalidInput
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now().UTC()
	}
	res, err := s.store.db.ExecContext(ctx,
		"INSERT INTO projects (name, created_at) VALUES (?, ?)",
		project.Name, formatTime(project.CreatedAt))
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("saving project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading project id: %w", err)
	}
	project.ID = id
	project.DocumentIDs = nil
	return nil
}

// Get retrieves a project with its ordered document IDs.
func (s *projectStore) Get(ctx context.Context, id int64) (*domain.Project, error) {
	return s.load(ctx, s.store.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM projects WHERE id = ?", id))
}

// GetByName retrieves a project by its unique name.
func (s *projectStore) GetByName(ctx context.Context, name string) (*domain.Project, error) {
	return s.load(ctx, s.store.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM projects WHERE name = ?", name))
}

// List returns all projects in creation order.
func (s *projectStore) List(ctx context.Context) ([]domain.Project, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT id, name, created_at FROM projects ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	var projects []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		projects = append(projects, *p)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}

	for i := range projects {
		if projects[i].DocumentIDs, err = s.documentIDs(ctx, projects[i].ID); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

// Rename changes a project's name.
func (s *projectStore) Rename(ctx context.Context, id int64, name string) error {
	res, err := s.store.db.ExecContext(ctx, "UPDATE projects SET name = ? WHERE id = ?", name, id)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("renaming project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a project and, by cascade, its documents.
func (s *projectStore) Delete(ctx context.Context, id int64) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *projectStore) load(ctx context.Context, row *sql.Row) (*domain.Project, error) {
	p, err := scanProject(row)
	if err != nil {
		return nil, err
	}
	if p.DocumentIDs, err = s.documentIDs(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *projectStore) documentIDs(ctx context.Context, projectID int64) ([]int64, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT id FROM documents WHERE project_id = ? ORDER BY position, id", projectID)
	if err != nil {
		return nil, fmt.Errorf("querying project documents: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning document id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ==================== Helper Functions ====================

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func projectExists(ctx context.Context, q queryer, id int64) error {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM projects WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("project %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking project: %w", err)
	}
	return nil
}

func scanActivity(row rowScanner) (*domain.ActivityRecord, error) {
	var a domain.ActivityRecord
	var vectorized int
	var createdAt string
	err := row.Scan(&a.ID, &a.UserID, &a.Text, &a.WindowTitle, &a.IntervalLength, &vectorized, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning activity: %w", err)
	}
	a.Vectorized = vectorized == 1
	a.CreatedAt = parseTime(createdAt)
	return &a, nil
}

func scanDocument(row rowScanner) (*domain.DocumentRecord, error) {
	var d domain.DocumentRecord
	var vectorized int
	var createdAt, updatedAt string
	err := row.Scan(&d.ID, &d.ProjectID, &d.Name, &d.Text, &vectorized, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	d.Vectorized = vectorized == 1
	d.CreatedAt = parseTime(createdAt)
	d.UpdatedAt = parseTime(updatedAt)
	return &d, nil
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	var createdAt string
	err := row.Scan(&p.ID, &p.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	p.CreatedAt = parseTime(createdAt)
	return &p, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime stores timestamps in UTC using timeLayout.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime returns zero time for empty or malformed values.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
