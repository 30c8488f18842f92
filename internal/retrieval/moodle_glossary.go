package retrieval

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/novalxp/novalxp-bot/internal/domain"
	"github.com/novalxp/novalxp-bot/internal/moodle"
)

const maxGlossaryCourses = 3

// PolicySearchNoHitID identifies the synthetic citation emitted when
// neither glossary entries nor policy content matched the search target.
const PolicySearchNoHitID = "policy_search_nohit"

// Module types whose content is prose worth scanning for policy language.
var textBearingModTypes = map[string]struct{}{
	"page":   {},
	"book":   {},
	"lesson": {},
	"label":  {},
	"wiki":   {},
}

// policyKeywords flag policy-flavored module text even without an exact
// term hit.
var policyKeywords = []string{"policy", "policies", "rule", "late submission", "deadline", "penalty", "regulation"}

var (
	quotedTermPattern   = regexp.MustCompile(`["'\x{201C}\x{201D}\x{2018}\x{2019}]([^"'\x{201C}\x{201D}\x{2018}\x{2019}]+)["'\x{201C}\x{201D}\x{2018}\x{2019}]`)
	whatDoesTermPattern = regexp.MustCompile(`(?i)what\s+does\s+(.+?)\s+mean`)
)

// ExtractSearchTerm pulls the literal lookup term from a glossary/policy
// question: quoted text wins, then the "what does X mean" pattern, then
// the stopword-stripped query itself.
func ExtractSearchTerm(queryText string) string {
	if m := quotedTermPattern.FindStringSubmatch(queryText); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := whatDoesTermPattern.FindStringSubmatch(queryText); m != nil {
		return strings.TrimSpace(strings.Trim(m[1], `"'“”‘’`))
	}
	return strings.Join(TokenizeQuery(queryText), " ")
}

// retrieveGlossaryPolicy answers definition and policy questions from two
// sources: glossary entries matching the extracted term, and course content
// modules carrying the term or policy language. When both come up empty it
// emits exactly one synthetic no-hit citation carrying the search target.
func (p *MoodleProvider) retrieveGlossaryPolicy(ctx context.Context, req Request, queryTokens []string) ([]domain.Citation, error) {
	term := ExtractSearchTerm(req.QueryText)
	courseIDs := p.resolveCourseIDs(ctx, req, queryTokens, maxGlossaryCourses, true)

	var candidates []scoredCandidate
	order := 0

	if len(courseIDs) > 0 {
		glossaryCandidates, err := p.glossaryCandidates(ctx, courseIDs, term, &order)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, glossaryCandidates...)

		policyCandidates, err := p.policyCandidates(ctx, courseIDs, term, queryTokens, req.QueryText, &order)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, policyCandidates...)
	}

	if len(candidates) == 0 {
		return []domain.Citation{{
			SourceID: PolicySearchNoHitID,
			Title:    "No glossary or policy match",
			URL:      p.api.BaseURL(),
			Snippet:  "No glossary entry or policy document matched \"" + term + "\".",
		}}, nil
	}

	return rankCandidates(candidates), nil
}

// glossaryCandidates searches every glossary in the candidate courses for
// the term, falling back to listing all entries and matching locally when
// the search comes up empty.
func (p *MoodleProvider) glossaryCandidates(ctx context.Context, courseIDs []int, term string, order *int) ([]scoredCandidate, error) {
	glossaries, err := p.api.GetGlossariesByCourses(ctx, courseIDs)
	if err != nil {
		return nil, err
	}

	lowerTerm := strings.ToLower(term)
	var candidates []scoredCandidate
	for _, glossary := range glossaries {
		entries, err := p.api.SearchGlossaryEntries(ctx, glossary.ID, term)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			all, err := p.api.ListGlossaryEntries(ctx, glossary.ID)
			if err != nil {
				return nil, err
			}
			for _, entry := range all {
				if lowerTerm == "" || strings.Contains(strings.ToLower(entry.Concept), lowerTerm) {
					entries = append(entries, entry)
				}
			}
		}

		for _, entry := range entries {
			score := 1
			if lowerTerm != "" && strings.Contains(strings.ToLower(entry.Concept), lowerTerm) {
				score += exactTermBonus
			}
			candidates = append(candidates, scoredCandidate{
				citation: domain.Citation{
					SourceID: "moodle_glossary_" + strconv.Itoa(entry.ID),
					Title:    entry.Concept,
					URL:      p.api.GlossaryEntryURL(glossary.CourseID, entry.ID),
					Snippet:  truncateSnippet(moodle.StripHTML(entry.Definition)),
				},
				score: score,
				order: *order,
			})
			*order++
		}
	}
	return candidates, nil
}

// policyCandidates scans text-bearing modules of the candidate courses for
// the exact term or policy keywords. The "quick navigation" utility block
// present on many course pages is skipped unless the query is itself
// navigational.
func (p *MoodleProvider) policyCandidates(ctx context.Context, courseIDs []int, term string, queryTokens []string, queryText string, order *int) ([]scoredCandidate, error) {
	lowerTerm := strings.ToLower(term)
	navigational := isNavigationalQuery(queryText)

	trees := make([][]moodle.Section, len(courseIDs))
	err := p.forEachCourse(ctx, courseIDs, func(ctx context.Context, idx, courseID int) error {
		sections, err := p.api.GetCourseContents(ctx, courseID)
		if err != nil {
			return err
		}
		trees[idx] = sections
		return nil
	})
	if err != nil {
		return nil, err
	}

	var candidates []scoredCandidate
	for i, courseID := range courseIDs {
		for _, section := range trees[i] {
			for _, module := range section.Modules {
				if _, ok := textBearingModTypes[module.ModName]; !ok {
					continue
				}
				if !navigational && strings.Contains(strings.ToLower(module.Name), "quick navigation") {
					continue
				}

				text := module.Name + " " + moodle.StripHTML(module.Description)
				lower := strings.ToLower(text)

				exactHit := lowerTerm != "" && strings.Contains(lower, lowerTerm)
				if !exactHit && !containsPolicyKeyword(lower) {
					continue
				}

				score := lexicalScore(queryTokens, text)
				if exactHit {
					score += exactTermBonus
				}
				candidates = append(candidates, scoredCandidate{
					citation: p.moduleCitation(courseID, section, module),
					score:    score,
					order:    *order,
				})
				*order++
			}
		}
	}
	return candidates, nil
}

func containsPolicyKeyword(lowerText string) bool {
	for _, keyword := range policyKeywords {
		if strings.Contains(lowerText, keyword) {
			return true
		}
	}
	return false
}

// isNavigationalQuery mirrors the navigation cues of the intent classifier
// for the quick-navigation exclusion only.
func isNavigationalQuery(queryText string) bool {
	lower := strings.ToLower(queryText)
	for _, cue := range []string{"where", "navigate", "menu", "find", "click"} {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}
