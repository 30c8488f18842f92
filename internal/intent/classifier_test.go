package intent

import (
	"testing"

	"github.com/novalxp/novalxp-bot/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.Intent
	}{
		{"navigation_where", "Where do I change my profile settings?", domain.IntentSiteNavigation},
		{"navigation_menu", "I cannot see the reports menu", domain.IntentSiteNavigation},
		{"glossary_quoted_term", `what does "KYC" mean?`, domain.IntentGlossaryPolicy},
		{"glossary_definition", "Give me the definition of onboarding buddy", domain.IntentGlossaryPolicy},
		{"policy_late_submission", "What is the late submission policy?", domain.IntentGlossaryPolicy},
		{"progress_whats_left", "what's left for me to do in my course?", domain.IntentProgressCompletion},
		{"progress_completion", "How is my completion looking this month?", domain.IntentProgressCompletion},
		{"progress_marked", "Why is this activity not marked complete?", domain.IntentProgressCompletion},
		{"contents_of_course", "Which modules are in the induction programme?", domain.IntentSectionExplainer},
		{"contents_topics", "list the topics covered in week 2 of this course", domain.IntentSectionExplainer},
		{"recommendation", "Can you recommend my next course?", domain.IntentCourseRecommendation},
		{"recommendation_new_starter", "I am a new starter, what onboarding courses exist?", domain.IntentCourseRecommendation},
		{"explainer_generic", "explain this to me please", domain.IntentSectionExplainer},
		{"explainer_summarize", "summarize this lesson for me", domain.IntentSectionExplainer},
		{"other_default", "hello there", domain.IntentOther},
		{"other_empty", "", domain.IntentOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

// Narrow rules must win over the later, broader explainer rule.
func TestClassify_RulePrecedence(t *testing.T) {
	assert.Equal(t, domain.IntentGlossaryPolicy, Classify("explain the late submission policy"))
	assert.Equal(t, domain.IntentProgressCompletion, Classify("explain my completion status"))
	assert.Equal(t, domain.IntentSiteNavigation, Classify("where is the section about grading?"))
}

func TestClassify_IsTotal(t *testing.T) {
	for _, text := range []string{"", "   ", "????", "42"} {
		got := Classify(text)
		assert.NotEmpty(t, got)
	}
}
