package retrieval

import (
	"context"
	"testing"

	"github.com/novalxp/novalxp-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticProvider struct {
	citations []domain.Citation
	err       error
}

func (p *staticProvider) Retrieve(ctx context.Context, req Request) ([]domain.Citation, error) {
	return p.citations, p.err
}

func TestEngine_DedupesAndTruncates(t *testing.T) {
	provider := &staticProvider{citations: []domain.Citation{
		{SourceID: "a", Title: "A"},
		{SourceID: "b", Title: "B"},
		{SourceID: "a", Title: "A duplicate"},
		{SourceID: "c", Title: "C"},
		{SourceID: "d", Title: "D"},
	}}
	engine := NewEngineWithProviders(ProviderLocal, map[string]Provider{ProviderLocal: provider})

	citations, err := engine.Retrieve(context.Background(), Request{QueryText: "q", TopK: 3})
	require.NoError(t, err)
	require.Len(t, citations, 3)

	// First-seen order survives dedup; the first "a" wins.
	assert.Equal(t, "a", citations[0].SourceID)
	assert.Equal(t, "A", citations[0].Title)
	assert.Equal(t, "b", citations[1].SourceID)
	assert.Equal(t, "c", citations[2].SourceID)

	seen := map[string]bool{}
	for _, c := range citations {
		assert.False(t, seen[c.SourceID])
		seen[c.SourceID] = true
	}
}

func TestEngine_DefaultTopK(t *testing.T) {
	provider := &staticProvider{citations: []domain.Citation{
		{SourceID: "1"}, {SourceID: "2"}, {SourceID: "3"}, {SourceID: "4"},
	}}
	engine := NewEngineWithProviders(ProviderLocal, map[string]Provider{ProviderLocal: provider})

	citations, err := engine.Retrieve(context.Background(), Request{QueryText: "q"})
	require.NoError(t, err)
	assert.Len(t, citations, defaultTopK)
}

func TestEngine_UnknownProvider(t *testing.T) {
	engine := NewEngineWithProviders("bogus", map[string]Provider{})
	_, err := engine.Retrieve(context.Background(), Request{QueryText: "q", TopK: 3})
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeRetrievalUnavailable, domain.AsBotError(err).Code)
}

func TestEngine_OpenSearchUnimplemented(t *testing.T) {
	engine := NewEngineWithProviders(ProviderOpenSearch, map[string]Provider{})
	_, err := engine.Retrieve(context.Background(), Request{QueryText: "q", TopK: 3})
	require.Error(t, err)
	botErr := domain.AsBotError(err)
	assert.Equal(t, domain.ErrCodeRetrievalUnavailable, botErr.Code)
	assert.False(t, botErr.Retryable)
}

func TestRankCandidates_StableTieBreak(t *testing.T) {
	ranked := rankCandidates([]scoredCandidate{
		{citation: domain.Citation{SourceID: "low"}, score: 1, order: 0},
		{citation: domain.Citation{SourceID: "first-high"}, score: 5, order: 1},
		{citation: domain.Citation{SourceID: "second-high"}, score: 5, order: 2},
	})

	require.Len(t, ranked, 3)
	assert.Equal(t, "first-high", ranked[0].SourceID)
	assert.Equal(t, "second-high", ranked[1].SourceID)
	assert.Equal(t, "low", ranked[2].SourceID)
}

func TestTruncateSnippet(t *testing.T) {
	short := "short snippet"
	assert.Equal(t, short, truncateSnippet(short))

	long := make([]rune, maxSnippetLen*2)
	for i := range long {
		long[i] = 'x'
	}
	truncated := truncateSnippet(string(long))
	assert.LessOrEqual(t, len([]rune(truncated)), maxSnippetLen)
}
