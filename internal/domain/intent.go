package domain

// Intent is the closed-set classification of a user query. It drives both
// the retrieval strategy and the generation model selection.
type Intent string

const (
	IntentSiteNavigation       Intent = "site_navigation"
	IntentCourseRecommendation Intent = "course_recommendation"
	IntentSectionExplainer     Intent = "section_explainer"
	IntentProgressCompletion   Intent = "progress_completion"
	IntentGlossaryPolicy       Intent = "glossary_policy"
	IntentOther                Intent = "other"
)

// RetrievalHint returns the corpus tag used to boost documents matching
// the classified intent. Empty for intents without a dedicated tag.
func (i Intent) RetrievalHint() string {
	switch i {
	case IntentCourseRecommendation:
		return "recommendation"
	case IntentSectionExplainer:
		return "section_explainer"
	case IntentSiteNavigation:
		return "site_navigation"
	case IntentProgressCompletion:
		return "progress_completion"
	case IntentGlossaryPolicy:
		return "glossary_policy"
	default:
		return ""
	}
}
