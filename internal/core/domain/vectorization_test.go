package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorizationPolicy_LongEnough_Boundary(t *testing.T) {
	p := VectorizationPolicy{Enabled: true, MinTextLength: 200}

	assert.False(t, p.LongEnough(strings.Repeat("a", 199)))
	assert.False(t, p.LongEnough(strings.Repeat("a", 200)), "exactly at threshold does not qualify")
	assert.True(t, p.LongEnough(strings.Repeat("a", 201)))
}

func TestVectorizationPolicy_CountsCharactersNotBytes(t *testing.T) {
	p := VectorizationPolicy{Enabled: true, MinTextLength: 200}

	// 200 two-byte characters is 400 bytes but still exactly at threshold.
	assert.False(t, p.LongEnough(strings.Repeat("é", 200)))
	assert.True(t, p.LongEnough(strings.Repeat("é", 201)))
}

func TestVectorizationPolicy_Qualifies(t *testing.T) {
	p := VectorizationPolicy{Enabled: true, MinTextLength: 10}
	long := strings.Repeat("x", 11)

	assert.True(t, p.Qualifies(long, false))
	assert.False(t, p.Qualifies(long, true), "flag gate holds")
	assert.False(t, p.Qualifies("short", false))
}

func TestVectorizationOutcome_Skipped(t *testing.T) {
	assert.True(t, OutcomeSkippedIneligible.Skipped())
	assert.True(t, OutcomeSkippedDisabled.Skipped())
	assert.True(t, OutcomeSkippedNoCredential.Skipped())
	assert.False(t, OutcomeIndexed.Skipped())
	assert.False(t, OutcomeEmbeddingFailed.Skipped())
	assert.False(t, OutcomeIndexFailed.Skipped())
	assert.False(t, OutcomeFlagDrift.Skipped())
}

func TestVectorizationSettings_Policy(t *testing.T) {
	s := VectorizationSettings{Enabled: true, MinTextLength: 50, ReindexOnEdit: true}
	p := s.Policy()

	assert.True(t, p.Enabled)
	assert.Equal(t, 50, p.MinTextLength)
}
