package orchestrator

import (
	"strings"

	"github.com/novalxp/novalxp-bot/internal/domain"
)

// maxHighlightedCitations bounds how many citations drive coverage
// enforcement and suggested actions.
const maxHighlightedCitations = 3

// ensureRecommendationCoverage appends any top recommended course the
// answer text failed to mention, so the response never silently drops a
// retrieved recommendation.
func ensureRecommendationCoverage(answerText string, citations []domain.Citation) string {
	top := topCitations(citations)
	if len(top) == 0 {
		return answerText
	}

	lower := strings.ToLower(answerText)
	var lines []string
	for _, c := range top {
		if c.Title == "" || strings.Contains(lower, strings.ToLower(c.Title)) {
			continue
		}
		lines = append(lines, "- "+c.Title+": "+c.URL)
	}
	if len(lines) == 0 {
		return answerText
	}

	return answerText + "\n\nAdditional recommended courses from your catalog:\n" + strings.Join(lines, "\n")
}

// buildActions turns the top recommendation citations into open_url actions.
// Other intents carry no actions.
func buildActions(detected domain.Intent, citations []domain.Citation) []domain.Action {
	if detected != domain.IntentCourseRecommendation {
		return nil
	}
	top := topCitations(citations)
	actions := make([]domain.Action, 0, len(top))
	for _, c := range top {
		actions = append(actions, domain.Action{
			Type:  "open_url",
			Label: "Open: " + c.Title,
			URL:   c.URL,
		})
	}
	return actions
}

func topCitations(citations []domain.Citation) []domain.Citation {
	if len(citations) > maxHighlightedCitations {
		return citations[:maxHighlightedCitations]
	}
	return citations
}
