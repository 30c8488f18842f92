package retrieval

import "strings"

// departmentKeywords maps a user's department to course vocabulary worth
// boosting when recommending. The table is hand-tuned against the course
// catalog, not learned.
var departmentKeywords = map[string][]string{
	"engineering": {"software", "engineering", "technical", "coding", "development", "security"},
	"hr":          {"people", "management", "compliance", "onboarding", "wellbeing", "recruitment"},
	"finance":     {"finance", "accounting", "budget", "audit", "kyc", "reporting"},
	"sales":       {"sales", "customer", "negotiation", "crm", "pipeline"},
	"marketing":   {"marketing", "brand", "content", "social", "campaign"},
	"operations":  {"operations", "process", "logistics", "health", "safety"},
}

const (
	departmentKeywordBonus = 2
	broadQueryAmplifier    = 3
	broadQueryMaxTokens    = 3
)

// departmentBoost scores course text against the user's department
// keywords. Broad, low-specificity recommendation queries amplify the
// boost so the department signal can dominate weak lexical evidence.
func departmentBoost(department, courseText string, broadQuery bool) int {
	keywords, ok := departmentKeywords[strings.ToLower(strings.TrimSpace(department))]
	if !ok {
		return 0
	}

	lower := strings.ToLower(courseText)
	boost := 0
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			boost += departmentKeywordBonus
		}
	}
	if broadQuery {
		boost *= broadQueryAmplifier
	}
	return boost
}

// isBroadQuery treats short stopword-stripped queries ("recommend a
// course") as low-specificity.
func isBroadQuery(queryTokens []string) bool {
	return len(queryTokens) <= broadQueryMaxTokens
}
