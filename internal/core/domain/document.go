package domain

import "time"

// Defaults applied to documents created without explicit values.
const (
	DefaultDocumentName = "New Document"
	DefaultDocumentText = "Start editing"
)

// DocumentRecord is an editable document that belongs to a project.
type DocumentRecord struct {
	// ID is assigned by the store on create.
	ID int64

	// ProjectID is the owning project. Documents without an explicit
	// project live in the Unassigned project.
	ProjectID int64

	// Name is the display name.
	Name string

	// Text is the current full text.
	Text string

	// Vectorized is the only field the vectorizer writes.
	Vectorized bool

	// CreatedAt is when the document was created.
	CreatedAt time.Time

	// UpdatedAt is when the text or name last changed.
	UpdatedAt time.Time
}

// Tag returns the index tag for this document.
func (d *DocumentRecord) Tag() Tag {
	return DocumentTag(d.ID)
}
