package domain

// IndexHit is a single nearest-neighbour match returned by the vector index.
type IndexHit struct {
	Tag Tag

	// Score is the cosine similarity, higher is closer.
	Score float64
}

// RetrievedItem is a piece of grounding context handed to the chat engine.
type RetrievedItem struct {
	Kind  RecordKind `json:"kind"`
	ID    int64      `json:"id"`
	Text  string     `json:"text"`
	Score float64    `json:"score"`
}

// IndexStats describes the current state of the vector index.
type IndexStats struct {
	Backend    string `json:"backend"`
	Entries    int    `json:"entries"`
	Dimensions int    `json:"dimensions"`
	Available  bool   `json:"available"`
}
