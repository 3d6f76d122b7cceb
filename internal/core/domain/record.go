package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// RecordKind identifies which relational table a record lives in.
type RecordKind string

// Available record kinds.
const (
	// RecordKindActivity is a captured activity-log entry.
	RecordKindActivity RecordKind = "activity"

	// RecordKindDocument is a project document.
	RecordKindDocument RecordKind = "document"
)

// IsValid returns true if the record kind is recognised.
func (k RecordKind) IsValid() bool {
	return k == RecordKindActivity || k == RecordKindDocument
}

// String returns the string representation.
func (k RecordKind) String() string {
	return string(k)
}

// Tag is the composite key of an index entry. Activity 7 and document 7
// are different tags and never collide in the shared index.
type Tag struct {
	Kind RecordKind
	ID   int64
}

// ActivityTag returns the tag for an activity record.
func ActivityTag(id int64) Tag {
	return Tag{Kind: RecordKindActivity, ID: id}
}

// DocumentTag returns the tag for a document record.
func DocumentTag(id int64) Tag {
	return Tag{Kind: RecordKindDocument, ID: id}
}

// String encodes the tag as "kind:id".
func (t Tag) String() string {
	return string(t.Kind) + ":" + strconv.FormatInt(t.ID, 10)
}

// IsValid returns true if the tag has a known kind and a positive id.
func (t Tag) IsValid() bool {
	return t.Kind.IsValid() && t.ID > 0
}

// ParseTag decodes a tag produced by Tag.String.
func ParseTag(s string) (Tag, error) {
	kind, rawID, ok := strings.Cut(s, ":")
	if !ok {
		return Tag{}, fmt.Errorf("%w: malformed tag %q", ErrInvalidInput, s)
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return Tag{}, fmt.Errorf("%w: malformed tag id %q", ErrInvalidInput, s)
	}
	tag := Tag{Kind: RecordKind(kind), ID: id}
	if !tag.IsValid() {
		return Tag{}, fmt.Errorf("%w: unknown tag %q", ErrInvalidInput, s)
	}
	return tag, nil
}
