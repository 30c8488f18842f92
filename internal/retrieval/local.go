package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/novalxp/novalxp-bot/internal/domain"
)

// LocalProvider retrieves from a static JSON corpus produced offline.
// The corpus is read on every call; there is no cross-request cache.
type LocalProvider struct {
	corpusPath string
}

// NewLocalProvider creates a local corpus provider.
func NewLocalProvider(corpusPath string) *LocalProvider {
	return &LocalProvider{corpusPath: corpusPath}
}

// corpusDocument is the strict ingestion schema for corpus records.
// SourceID and Title are required; everything else defaults to empty.
type corpusDocument struct {
	SourceID string   `json:"source_id"`
	Title    string   `json:"title"`
	URL      string   `json:"url"`
	Snippet  string   `json:"snippet"`
	Tags     []string `json:"tags"`
}

const (
	hintTagBonus      = 2
	onboardingBonus   = 10
	onboardingPenalty = -2
	onboardingTag     = "onboarding"
)

// Retrieve scores every corpus document lexically against the query,
// discards non-positive scores and returns the ranked remainder.
func (p *LocalProvider) Retrieve(ctx context.Context, req Request) ([]domain.Citation, error) {
	if p.corpusPath == "" {
		return nil, domain.NewBotError(domain.ErrCodeRetrievalUnavailable,
			"Local corpus path is not configured.", true)
	}

	corpus, err := loadCorpus(p.corpusPath)
	if err != nil {
		return nil, err
	}

	queryTokens := Tokenize(req.QueryText)
	onboardingQuery := isOnboardingQuery(queryTokens)

	candidates := make([]scoredCandidate, 0, len(corpus))
	for i, doc := range corpus {
		score := scoreDocument(queryTokens, doc, req.IntentHint, onboardingQuery)
		if score <= 0 {
			continue
		}
		candidates = append(candidates, scoredCandidate{
			citation: domain.Citation{
				SourceID: doc.SourceID,
				Title:    doc.Title,
				URL:      doc.URL,
				Snippet:  doc.Snippet,
			},
			score: score,
			order: i,
		})
	}

	return rankCandidates(candidates), nil
}

func scoreDocument(queryTokens []string, doc corpusDocument, intentHint string, onboardingQuery bool) int {
	haystack := doc.Title + " " + doc.Snippet + " " + strings.Join(doc.Tags, " ")
	score := lexicalScore(queryTokens, haystack)

	if intentHint != "" && hasTag(doc.Tags, intentHint) {
		score += hintTagBonus
	}

	if onboardingQuery {
		if hasTag(doc.Tags, onboardingTag) {
			score += onboardingBonus
		} else {
			score += onboardingPenalty
		}
	}
	return score
}

// isOnboardingQuery detects onboarding-flavored queries: an explicit
// onboarding or induction token, or the "new starter" phrase.
func isOnboardingQuery(queryTokens []string) bool {
	sawNew := false
	for _, token := range queryTokens {
		switch token {
		case "onboarding", "induction":
			return true
		case "new":
			sawNew = true
		case "starter", "starters", "joiner", "joiners":
			if sawNew {
				return true
			}
		}
	}
	return false
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}

// loadCorpus reads and validates the corpus file. Malformed files or
// records are rejected rather than coerced.
func loadCorpus(path string) ([]corpusDocument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewBotErrorWithCause(domain.ErrCodeRetrievalUnavailable,
			"Failed to read the local corpus file.", true, err)
	}

	var corpus []corpusDocument
	if err := json.Unmarshal(raw, &corpus); err != nil {
		return nil, domain.NewBotErrorWithCause(domain.ErrCodeRetrievalUnavailable,
			"The local corpus file is not a JSON array of documents.", true, err)
	}

	for i, doc := range corpus {
		if doc.SourceID == "" || doc.Title == "" {
			return nil, domain.NewBotError(domain.ErrCodeRetrievalUnavailable,
				fmt.Sprintf("Corpus record %d is missing source_id or title.", i), true)
		}
	}
	return corpus, nil
}
