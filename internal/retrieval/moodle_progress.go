package retrieval

import (
	"context"
	"strconv"
	"strings"

	"github.com/novalxp/novalxp-bot/internal/domain"
	"github.com/novalxp/novalxp-bot/internal/moodle"
)

const maxProgressCourses = 3

// retrieveProgress surfaces the activities still standing between the user
// and course completion: modules with completion tracking enabled that are
// not yet complete, each carrying the remaining completion conditions when
// the site exposes them.
func (p *MoodleProvider) retrieveProgress(ctx context.Context, req Request, queryTokens []string) ([]domain.Citation, error) {
	courseIDs := p.resolveCourseIDs(ctx, req, queryTokens, maxProgressCourses, true)
	if len(courseIDs) == 0 {
		return nil, nil
	}

	uid := parseUserID(req.User.ID)

	trees := make([][]moodle.Section, len(courseIDs))
	statuses := make([]map[int]moodle.ActivityCompletion, len(courseIDs))
	err := p.forEachCourse(ctx, courseIDs, func(ctx context.Context, idx, courseID int) error {
		sections, err := p.api.GetCourseContents(ctx, courseID)
		if err != nil {
			return err
		}
		trees[idx] = sections
		// Activity-level completion detail is optional on older sites;
		// a failed call degrades to unknown for every module.
		if uid > 0 {
			statuses[idx] = p.lookupActivityCompletion(ctx, courseID, uid)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var candidates []scoredCandidate
	order := 0
	for i, courseID := range courseIDs {
		for _, section := range trees[i] {
			for _, module := range section.Modules {
				if module.Completion <= 0 {
					continue
				}

				status, known := statuses[i][module.ID]
				if known && status.Complete() {
					continue
				}

				rationale := remainingConditions(status, known)
				snippet := rationale
				if snippet == "" {
					snippet = moodle.StripHTML(module.Description)
				}
				if snippet == "" {
					snippet = "Completion tracked activity in section: " + section.Name
				}

				score := lexicalScore(queryTokens, module.Name+" "+section.Name)
				if rationale != "" {
					score += rationaleBonus
				}

				citation := p.moduleCitation(courseID, section, module)
				citation.Snippet = truncateSnippet(snippet)
				candidates = append(candidates, scoredCandidate{
					citation: citation,
					score:    score,
					order:    order,
				})
				order++
			}
		}
	}

	return rankCandidates(candidates), nil
}

// lookupActivityCompletion is best-effort: nil means unknown for the whole
// course rather than a failed request.
func (p *MoodleProvider) lookupActivityCompletion(ctx context.Context, courseID, userID int) map[int]moodle.ActivityCompletion {
	activities, err := p.api.GetActivitiesCompletion(ctx, courseID, userID)
	if err != nil {
		return nil
	}
	out := make(map[int]moodle.ActivityCompletion, len(activities))
	for _, activity := range activities {
		out[activity.CMID] = activity
	}
	return out
}

// remainingConditions renders the unmet completion rules as a
// human-readable rationale, empty when nothing is known.
func remainingConditions(status moodle.ActivityCompletion, known bool) string {
	if !known {
		return ""
	}
	var unmet []string
	for _, detail := range status.Details {
		if detail.Met() || detail.RuleValue.Description == "" {
			continue
		}
		unmet = append(unmet, detail.RuleValue.Description)
	}
	if len(unmet) == 0 {
		return ""
	}
	return "Remaining: " + strings.Join(unmet, "; ")
}

func parseUserID(id string) int {
	uid, err := strconv.Atoi(id)
	if err != nil || uid < 0 {
		return 0
	}
	return uid
}
