package retrieval

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/novalxp/novalxp-bot/internal/config"
	"github.com/novalxp/novalxp-bot/internal/domain"
	"github.com/novalxp/novalxp-bot/internal/moodle"
)

// Scoring adjustments for the live-platform recommendation branch.
const (
	enrolledIncompleteBonus = 4
	enrolledCompletePenalty = -5
	notEnrolledBonus        = 1
	rationaleBonus          = 2
	exactTermBonus          = 2
)

// moodleAPI is the slice of the Moodle client the provider composes.
type moodleAPI interface {
	BaseURL() string
	CourseURL(courseID int) string
	GlossaryEntryURL(courseID, entryID int) string
	SearchCourses(ctx context.Context, query string) ([]moodle.Course, error)
	ListCourses(ctx context.Context) ([]moodle.Course, error)
	GetCourseContents(ctx context.Context, courseID int) ([]moodle.Section, error)
	GetUserCourses(ctx context.Context, userID int) ([]moodle.EnrolledCourse, error)
	GetCourseCompletion(ctx context.Context, courseID, userID int) (moodle.Completion, error)
	GetActivitiesCompletion(ctx context.Context, courseID, userID int) ([]moodle.ActivityCompletion, error)
	GetUserByID(ctx context.Context, userID int) (*moodle.User, error)
	GetGlossariesByCourses(ctx context.Context, courseIDs []int) ([]moodle.Glossary, error)
	SearchGlossaryEntries(ctx context.Context, glossaryID int, query string) ([]moodle.GlossaryEntry, error)
	ListGlossaryEntries(ctx context.Context, glossaryID int) ([]moodle.GlossaryEntry, error)
}

// MoodleProvider retrieves citations by composing live learning-platform
// web service calls, dispatched per intent.
type MoodleProvider struct {
	api             moodleAPI
	departmentBoost bool
	maxConcurrency  int
}

// NewMoodleProvider builds the provider from configuration. When base URL
// or token are missing the provider stays unconfigured and Retrieve fails
// before issuing any call.
func NewMoodleProvider(cfg *config.Config) *MoodleProvider {
	p := &MoodleProvider{
		departmentBoost: cfg.DepartmentBoostEnabled,
		maxConcurrency:  cfg.RetrievalMoodleMaxConcurrency,
	}
	if cfg.HasMoodle() {
		p.api = moodle.NewClient(
			cfg.RetrievalMoodleBaseURL,
			cfg.RetrievalMoodleToken,
			cfg.RetrievalMoodleForwardedHost,
			cfg.MoodleTimeout(),
		)
	}
	return p
}

// NewMoodleProviderWithAPI builds the provider over an explicit API client.
func NewMoodleProviderWithAPI(api moodleAPI, departmentBoost bool, maxConcurrency int) *MoodleProvider {
	return &MoodleProvider{
		api:             api,
		departmentBoost: departmentBoost,
		maxConcurrency:  maxConcurrency,
	}
}

// Retrieve dispatches to the intent-specific branch. All branches append
// into one list; the engine deduplicates and truncates across them.
func (p *MoodleProvider) Retrieve(ctx context.Context, req Request) ([]domain.Citation, error) {
	if p.api == nil {
		return nil, domain.NewBotError(domain.ErrCodeRetrievalUnavailable,
			"Moodle base URL and token must be configured.", true)
	}

	queryTokens := TokenizeQuery(req.QueryText)

	switch req.Intent {
	case domain.IntentSectionExplainer:
		return p.retrieveSections(ctx, req, queryTokens)
	case domain.IntentProgressCompletion:
		return p.retrieveProgress(ctx, req, queryTokens)
	case domain.IntentGlossaryPolicy:
		return p.retrieveGlossaryPolicy(ctx, req, queryTokens)
	default:
		citations, err := p.retrieveCourses(ctx, req, queryTokens)
		if err != nil {
			return nil, err
		}
		// A recommendation asked from inside a course also pulls that
		// course's section data so the answer can reference where the
		// user currently is.
		if req.Intent == domain.IntentCourseRecommendation && req.Context.CourseID != "" {
			sectionCitations, err := p.retrieveSections(ctx, req, queryTokens)
			if err != nil {
				return nil, err
			}
			citations = append(citations, sectionCitations...)
		}
		return citations, nil
	}
}

// retrieveCourses handles course_recommendation, site_navigation and other:
// free-text course search with listing fallback, hidden-course filtering,
// and for recommendations enrollment, completion and department scoring.
func (p *MoodleProvider) retrieveCourses(ctx context.Context, req Request, queryTokens []string) ([]domain.Citation, error) {
	courses, err := p.searchOrListCourses(ctx, req.QueryText)
	if err != nil {
		return nil, err
	}

	recommend := req.Intent == domain.IntentCourseRecommendation

	var enrollment map[int]moodle.Completion
	department := req.User.Department
	if recommend {
		enrollment = p.lookupEnrollment(ctx, req.User.ID, courses)
		if department == "" && p.departmentBoost {
			department = p.lookupDepartment(ctx, req.User.ID)
		}
	}
	broad := isBroadQuery(queryTokens)

	candidates := make([]scoredCandidate, 0, len(courses))
	for i, course := range courses {
		text := course.Name() + " " + moodle.StripHTML(course.Summary)
		score := lexicalScore(queryTokens, text)

		if recommend {
			switch status, enrolled := enrollment[course.ID]; {
			case !enrolled:
				score += notEnrolledBonus
			case status == moodle.CompletionComplete:
				score += enrolledCompletePenalty
			default:
				// Incomplete, or unknown when the completion lookup
				// degraded: still worth recommending.
				score += enrolledIncompleteBonus
			}
			if p.departmentBoost {
				score += departmentBoost(department, text, broad)
			}
		}

		if score <= 0 {
			continue
		}
		candidates = append(candidates, scoredCandidate{
			citation: p.courseCitation(course),
			score:    score,
			order:    i,
		})
	}

	return rankCandidates(candidates), nil
}

func (p *MoodleProvider) courseCitation(course moodle.Course) domain.Citation {
	return domain.Citation{
		SourceID: fmt.Sprintf("moodle_course_%d", course.ID),
		Title:    course.Name(),
		URL:      p.api.CourseURL(course.ID),
		Snippet:  truncateSnippet(moodle.StripHTML(course.Summary)),
	}
}

// searchOrListCourses searches by free text and falls back to listing all
// courses when search errors or matches nothing. Hidden and system courses
// are filtered either way.
func (p *MoodleProvider) searchOrListCourses(ctx context.Context, queryText string) ([]moodle.Course, error) {
	courses, err := p.api.SearchCourses(ctx, queryText)
	if err != nil || len(courses) == 0 {
		courses, err = p.api.ListCourses(ctx)
		if err != nil {
			return nil, err
		}
	}

	visible := courses[:0:0]
	for _, course := range courses {
		if course.Hidden() {
			continue
		}
		visible = append(visible, course)
	}
	return visible, nil
}

// lookupEnrollment fetches the user's enrollment set and, per enrolled
// candidate course, the course-level completion tri-state. Both lookups
// degrade: a failed enrollment call yields an empty set, a failed
// completion call yields CompletionUnknown.
func (p *MoodleProvider) lookupEnrollment(ctx context.Context, userID string, courses []moodle.Course) map[int]moodle.Completion {
	uid, err := strconv.Atoi(userID)
	if err != nil {
		return nil
	}

	enrolled, err := p.api.GetUserCourses(ctx, uid)
	if err != nil {
		return nil
	}

	enrolledSet := make(map[int]struct{}, len(enrolled))
	for _, c := range enrolled {
		enrolledSet[c.ID] = struct{}{}
	}

	out := make(map[int]moodle.Completion, len(enrolledSet))
	for _, course := range courses {
		if _, ok := enrolledSet[course.ID]; !ok {
			continue
		}
		status, err := p.api.GetCourseCompletion(ctx, course.ID, uid)
		if err != nil {
			status = moodle.CompletionUnknown
		}
		out[course.ID] = status
	}
	return out
}

// lookupDepartment is a best-effort user profile read; it degrades to ""
// rather than failing the request.
func (p *MoodleProvider) lookupDepartment(ctx context.Context, userID string) string {
	uid, err := strconv.Atoi(userID)
	if err != nil {
		return ""
	}
	user, err := p.api.GetUserByID(ctx, uid)
	if err != nil || user == nil {
		return ""
	}
	return user.Department
}

// resolveCourseIDs finds target course ids for the content-centric
// branches: explicit context first, then query-inferred course search, then
// (when enabled) the user's incomplete enrolled courses.
func (p *MoodleProvider) resolveCourseIDs(ctx context.Context, req Request, queryTokens []string, max int, includeEnrolled bool) []int {
	if id, err := strconv.Atoi(req.Context.CourseID); err == nil && id > 0 {
		return []int{id}
	}

	if courses, err := p.searchOrListCourses(ctx, req.QueryText); err == nil {
		candidates := make([]scoredCandidate, 0, len(courses))
		for i, course := range courses {
			score := lexicalScore(queryTokens, course.Name()+" "+moodle.StripHTML(course.Summary))
			if score <= 0 {
				continue
			}
			candidates = append(candidates, scoredCandidate{
				citation: domain.Citation{SourceID: strconv.Itoa(course.ID)},
				score:    score,
				order:    i,
			})
		}
		ranked := rankCandidates(candidates)
		ids := make([]int, 0, max)
		for _, c := range ranked {
			if len(ids) == max {
				break
			}
			id, _ := strconv.Atoi(c.SourceID)
			ids = append(ids, id)
		}
		if len(ids) > 0 {
			return ids
		}
	}

	if includeEnrolled {
		return p.incompleteEnrolledCourses(ctx, req.User.ID, max)
	}
	return nil
}

// incompleteEnrolledCourses returns the user's enrolled courses that are
// not known to be complete, up to max.
func (p *MoodleProvider) incompleteEnrolledCourses(ctx context.Context, userID string, max int) []int {
	uid, err := strconv.Atoi(userID)
	if err != nil {
		return nil
	}
	enrolled, err := p.api.GetUserCourses(ctx, uid)
	if err != nil {
		return nil
	}

	ids := make([]int, 0, max)
	for _, course := range enrolled {
		if len(ids) == max {
			break
		}
		status, err := p.api.GetCourseCompletion(ctx, course.ID, uid)
		if err != nil {
			status = moodle.CompletionUnknown
		}
		if status == moodle.CompletionComplete {
			continue
		}
		ids = append(ids, course.ID)
	}
	return ids
}

// forEachCourse runs fn per course id, serially by default. A
// maxConcurrency above 1 opts into bounded parallel fan-out; result
// ordering stays with the caller via the index.
func (p *MoodleProvider) forEachCourse(ctx context.Context, ids []int, fn func(ctx context.Context, idx, courseID int) error) error {
	limit := p.maxConcurrency
	if limit <= 1 {
		for i, id := range ids {
			if err := fn(ctx, i, id); err != nil {
				return err
			}
		}
		return nil
	}

	sem := make(chan struct{}, limit)
	errs := make([]error, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		sem <- struct{}{}
		go func(i, id int) {
			defer wg.Done()
			defer func() { <-sem }()
			errs[i] = fn(ctx, i, id)
		}(i, id)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
