package domain

import "time"

// ActivityRecord is one captured slice of on-screen activity.
// The text never changes after capture; the record can only be deleted.
type ActivityRecord struct {
	// ID is assigned by the store on save.
	ID int64

	// UserID identifies the owner of the capture.
	UserID string

	// Text is the full captured text.
	Text string

	// WindowTitle is the title of the focused window, if known.
	WindowTitle string

	// IntervalLength is the capture interval in seconds.
	IntervalLength int

	// Vectorized is true once the text has been inserted into the index.
	Vectorized bool

	// CreatedAt is when the activity was captured.
	CreatedAt time.Time
}

// Tag returns the index tag for this activity.
func (a *ActivityRecord) Tag() Tag {
	return ActivityTag(a.ID)
}

// CaptureRequest is what the external capture scheduler supplies.
type CaptureRequest struct {
	UserID         string `json:"user_id"`
	Text           string `json:"text"`
	WindowTitle    string `json:"window_title,omitempty"`
	IntervalLength int    `json:"interval_length,omitempty"`
}
