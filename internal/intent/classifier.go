// Package intent classifies free-text questions into the closed intent set
// that drives retrieval strategy and model routing.
package intent

import (
	"regexp"
	"strings"

	"github.com/novalxp/novalxp-bot/internal/domain"
)

// rule pairs a predicate over normalized text with the intent it selects.
// Rules are evaluated top to bottom and the first match wins, so narrower
// rules (progress, glossary) must stay ahead of the generic explainer rule.
type rule struct {
	name   string
	match  func(q string) bool
	intent domain.Intent
}

var whatDoesMeanPattern = regexp.MustCompile(`what\s+does\s+.+\s+mean`)

var rules = []rule{
	{
		name:   "navigation_cues",
		match:  containsAny("where", "find", "navigate", "menu", "click", "location", "page", "tab", "settings"),
		intent: domain.IntentSiteNavigation,
	},
	{
		name: "definition_policy_cues",
		match: func(q string) bool {
			if whatDoesMeanPattern.MatchString(q) {
				return true
			}
			return containsAny("define", "definition", "glossary", "policy", "rule", "late submission")(q)
		},
		intent: domain.IntentGlossaryPolicy,
	},
	{
		name:   "progress_cues",
		match:  containsAny("what's left", "whats left", "progress", "completion", "complete", "marked complete"),
		intent: domain.IntentProgressCompletion,
	},
	{
		name: "course_contents_pattern",
		match: func(q string) bool {
			asks := containsAny("what", "which", "list")(q)
			contents := containsAny("activities", "modules", "lessons", "topics")(q)
			courseVocab := containsAny("course", "programme", "program", "section", "week", "unit")(q)
			return asks && contents && courseVocab
		},
		intent: domain.IntentSectionExplainer,
	},
	{
		name:   "recommendation_cues",
		match:  containsAny("recommend", "next course", "learning plan", "onboarding", "induction", "new starter"),
		intent: domain.IntentCourseRecommendation,
	},
	{
		name:   "explainer_cues",
		match:  containsAny("explain", "summarize", "summarise", "section", "lesson"),
		intent: domain.IntentSectionExplainer,
	},
}

// Classify maps raw query text to an intent. It always returns a value,
// defaulting to IntentOther when no rule matches.
func Classify(text string) domain.Intent {
	q := strings.ToLower(text)
	for _, r := range rules {
		if r.match(q) {
			return r.intent
		}
	}
	return domain.IntentOther
}

func containsAny(cues ...string) func(string) bool {
	return func(q string) bool {
		for _, cue := range cues {
			if strings.Contains(q, cue) {
				return true
			}
		}
		return false
	}
}
