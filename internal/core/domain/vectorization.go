package domain

import "unicode/utf8"

// DefaultMinTextLength is the number of characters text must exceed
// before it carries enough signal to be worth embedding.
const DefaultMinTextLength = 200

// VectorizationPolicy holds the store-independent part of the trigger condition.
type VectorizationPolicy struct {
	// Enabled is the global feature flag.
	Enabled bool

	// MinTextLength is an exclusive lower bound, counted in characters.
	MinTextLength int
}

// LongEnough reports whether text strictly exceeds the minimum length.
func (p VectorizationPolicy) LongEnough(text string) bool {
	return utf8.RuneCountInString(text) > p.MinTextLength
}

// Qualifies reports whether a record with this text and flag is eligible.
// The feature flag and credential checks are made separately by the vectorizer.
func (p VectorizationPolicy) Qualifies(text string, vectorized bool) bool {
	return !vectorized && p.LongEnough(text)
}

// VectorizeOptions tunes a single vectorization attempt.
type VectorizeOptions struct {
	// Force clears the vectorized flag before evaluating the trigger, so a
	// record that was indexed once is embedded again with its current text.
	Force bool
}

// VectorizationOutcome describes what happened to a record after a write.
type VectorizationOutcome string

// Vectorization outcomes.
const (
	// OutcomeIndexed means the vector was inserted and the flag set.
	OutcomeIndexed VectorizationOutcome = "indexed"

	// OutcomeSkippedIneligible means the text was too short or the flag was already set.
	OutcomeSkippedIneligible VectorizationOutcome = "skipped_ineligible"

	// OutcomeSkippedDisabled means the feature flag is off.
	OutcomeSkippedDisabled VectorizationOutcome = "skipped_disabled"

	// OutcomeSkippedNoCredential means no usable embedding credential is configured.
	OutcomeSkippedNoCredential VectorizationOutcome = "skipped_no_credential"

	// OutcomeEmbeddingFailed means the embedding call failed; the record stays eligible.
	OutcomeEmbeddingFailed VectorizationOutcome = "embedding_failed"

	// OutcomeIndexFailed means the index rejected the insertion.
	OutcomeIndexFailed VectorizationOutcome = "index_failed"

	// OutcomeFlagDrift means the index holds the entry but the flag update failed.
	OutcomeFlagDrift VectorizationOutcome = "flag_drift"
)

// String returns the string representation.
func (o VectorizationOutcome) String() string {
	return string(o)
}

// Skipped returns true for outcomes that short-circuit before any network call.
func (o VectorizationOutcome) Skipped() bool {
	switch o {
	case OutcomeSkippedIneligible, OutcomeSkippedDisabled, OutcomeSkippedNoCredential:
		return true
	default:
		return false
	}
}

// VectorizationResult reports the outcome of one vectorization attempt.
type VectorizationResult struct {
	Tag     Tag
	Outcome VectorizationOutcome

	// Err holds the underlying failure for the failed and drift outcomes.
	Err error
}
