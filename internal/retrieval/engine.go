// Package retrieval implements the multi-provider context retrieval engine:
// it turns a classified query into a ranked, deduplicated, length-bounded
// list of citations from one of several interchangeable backends.
package retrieval

import (
	"context"
	"fmt"
	"sort"

	"github.com/novalxp/novalxp-bot/internal/config"
	"github.com/novalxp/novalxp-bot/internal/domain"
)

// Supported provider selectors.
const (
	ProviderLocal      = "local"
	ProviderCatalogAPI = "catalog_api"
	ProviderMoodleWS   = "moodle_ws"
	ProviderOpenSearch = "opensearch"
)

const defaultTopK = 3

// Request carries everything a provider needs to retrieve context for one
// query. Instances are created fresh per request and discarded afterwards.
type Request struct {
	QueryText  string
	IntentHint string
	Intent     domain.Intent
	Context    domain.ChatContext
	User       domain.ChatUser
	TopK       int
}

// Provider is an interchangeable retrieval backend.
type Provider interface {
	Retrieve(ctx context.Context, req Request) ([]domain.Citation, error)
}

// Engine dispatches retrieval to the configured provider and applies the
// cross-branch response invariants: source IDs deduplicated preserving
// first-seen order, then truncated to topK.
type Engine struct {
	provider  string
	providers map[string]Provider
}

// NewEngine builds an engine from an immutable configuration snapshot.
func NewEngine(cfg *config.Config) *Engine {
	return &Engine{
		provider: cfg.RetrievalProvider,
		providers: map[string]Provider{
			ProviderLocal:      NewLocalProvider(cfg.RetrievalCorpusPath),
			ProviderCatalogAPI: NewCatalogProvider(cfg.RetrievalCatalogAPIURL, cfg.RetrievalCatalogAPIToken),
			ProviderMoodleWS:   NewMoodleProvider(cfg),
		},
	}
}

// NewEngineWithProviders builds an engine over explicit providers.
func NewEngineWithProviders(provider string, providers map[string]Provider) *Engine {
	return &Engine{provider: provider, providers: providers}
}

// Retrieve returns at most req.TopK citations with unique source IDs,
// ordered by descending relevance.
func (e *Engine) Retrieve(ctx context.Context, req Request) ([]domain.Citation, error) {
	if req.TopK <= 0 {
		req.TopK = defaultTopK
	}

	if e.provider == ProviderOpenSearch {
		return nil, domain.NewBotError(domain.ErrCodeRetrievalUnavailable,
			"The opensearch retrieval provider is not implemented.", false)
	}

	provider, ok := e.providers[e.provider]
	if !ok {
		return nil, domain.NewBotError(domain.ErrCodeRetrievalUnavailable,
			fmt.Sprintf("Unknown retrieval provider %q.", e.provider), false)
	}

	citations, err := provider.Retrieve(ctx, req)
	if err != nil {
		return nil, err
	}

	citations = domain.DedupeCitations(citations)
	if len(citations) > req.TopK {
		citations = citations[:req.TopK]
	}
	return citations, nil
}

// scoredCandidate pairs a citation with its transient ranking score.
// Order keeps provider order for deterministic tie-breaking.
type scoredCandidate struct {
	citation domain.Citation
	score    int
	order    int
}

// rankCandidates sorts candidates by descending score, ties broken by the
// original provider order, and strips the scores.
func rankCandidates(candidates []scoredCandidate) []domain.Citation {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].order < candidates[j].order
	})

	out := make([]domain.Citation, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.citation)
	}
	return out
}

const maxSnippetLen = 280

// truncateSnippet bounds snippet length on a rune boundary.
func truncateSnippet(s string) string {
	runes := []rune(s)
	if len(runes) <= maxSnippetLen {
		return s
	}
	return string(runes[:maxSnippetLen-1]) + "…"
}
