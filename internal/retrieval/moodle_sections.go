package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/novalxp/novalxp-bot/internal/domain"
	"github.com/novalxp/novalxp-bot/internal/moodle"
)

const maxExplainerCourses = 2

// retrieveSections builds two independently ranked citation tiers from the
// content trees of the resolved courses: one citation per section and one
// per module. Each tier is sliced to topK before the tiers are combined;
// the engine then deduplicates and truncates across everything.
func (p *MoodleProvider) retrieveSections(ctx context.Context, req Request, queryTokens []string) ([]domain.Citation, error) {
	courseIDs := p.resolveCourseIDs(ctx, req, queryTokens, maxExplainerCourses, false)
	if len(courseIDs) == 0 {
		return nil, nil
	}

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

	var sectionTier, moduleTier []scoredCandidate
	order := 0
	for i, courseID := range courseIDs {
		for _, section := range trees[i] {
			sectionTier = append(sectionTier, scoredCandidate{
				citation: p.sectionCitation(courseID, section),
				score:    lexicalScore(queryTokens, section.Name+" "+moodle.StripHTML(section.Summary)),
				order:    order,
			})
			order++

			for _, module := range section.Modules {
				moduleTier = append(moduleTier, scoredCandidate{
					citation: p.moduleCitation(courseID, section, module),
					score:    lexicalScore(queryTokens, module.Name+" "+moodle.StripHTML(module.Description)),
					order:    order,
				})
				order++
			}
		}
	}

	citations := sliceTopK(rankCandidates(sectionTier), req.TopK)
	citations = append(citations, sliceTopK(rankCandidates(moduleTier), req.TopK)...)
	return citations, nil
}

func (p *MoodleProvider) sectionCitation(courseID int, section moodle.Section) domain.Citation {
	snippet := moodle.StripHTML(section.Summary)
	if snippet == "" {
		names := make([]string, 0, len(section.Modules))
		for _, module := range section.Modules {
			names = append(names, module.Name)
		}
		snippet = "Includes: " + strings.Join(names, ", ")
	}
	return domain.Citation{
		SourceID: fmt.Sprintf("moodle_section_%d_%d", courseID, section.ID),
		Title:    section.Name,
		URL:      p.api.CourseURL(courseID),
		Snippet:  truncateSnippet(snippet),
	}
}

func (p *MoodleProvider) moduleCitation(courseID int, section moodle.Section, module moodle.Module) domain.Citation {
	url := module.URL
	if url == "" {
		url = p.api.CourseURL(courseID)
	}
	snippet := moodle.StripHTML(module.Description)
	if snippet == "" {
		snippet = "Part of section: " + section.Name
	}
	return domain.Citation{
		SourceID: fmt.Sprintf("moodle_module_%d", module.ID),
		Title:    module.Name,
		URL:      url,
		Snippet:  truncateSnippet(snippet),
	}
}

func sliceTopK(citations []domain.Citation, topK int) []domain.Citation {
	if topK > 0 && len(citations) > topK {
		return citations[:topK]
	}
	return citations
}
