package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPipelineState_IsQueryable tests that only the final state is queryable
func TestPipelineState_IsQueryable(t *testing.T) {
	for _, s := range []PipelineState{StateEmpty, StateExtracting, StateChunking, StateIndexed} {
		assert.False(t, s.IsQueryable(), s.String())
	}
	assert.True(t, StateQueryable.IsQueryable())
}

// TestDocumentStatus_Failed tests failure detection
func TestDocumentStatus_Failed(t *testing.T) {
	assert.False(t, DocumentStatus{State: StateQueryable}.Failed())
	assert.True(t, DocumentStatus{State: StateChunking, Err: errors.New("boom")}.Failed())
}

// TestAnalysisType_IsValid tests analysis type validation
func TestAnalysisType_IsValid(t *testing.T) {
	for _, a := range AnalysisTypes() {
		assert.True(t, a.IsValid(), a.String())
	}
	assert.False(t, AnalysisType("astrology").IsValid())
	assert.False(t, AnalysisType("").IsValid())
}

// TestQueryOptions_HasScope tests scope detection
func TestQueryOptions_HasScope(t *testing.T) {
	assert.False(t, QueryOptions{K: 5}.HasScope())
	assert.True(t, QueryOptions{Scope: []string{"d1"}}.HasScope())
	assert.True(t, QueryOptions{Ticker: "NPN"}.HasScope())
}
