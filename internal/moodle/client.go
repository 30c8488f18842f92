// Package moodle is a thin client for the Moodle web service REST API,
// covering the read-only calls the retrieval engine composes.
package moodle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/novalxp/novalxp-bot/internal/domain"
)

const restPath = "/webservice/rest/server.php"

// maxResponseBytes bounds response reads; course content trees can be large
// but anything beyond this is not a usable web service response.
const maxResponseBytes = 8 << 20

// Client calls Moodle web service functions over the REST protocol.
type Client struct {
	baseURL       string
	token         string
	forwardedHost string
	httpClient    *http.Client
}

// NewClient creates a Moodle client. forwardedHost, when non-empty, overrides
// the Host header for deployments behind host-based routing.
func NewClient(baseURL, token, forwardedHost string, timeout time.Duration) *Client {
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		token:         token,
		forwardedHost: forwardedHost,
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// A redirect from the web service endpoint means a login page
				// or proxy misconfiguration, never a valid payload.
				return http.ErrUseLastResponse
			},
		},
	}
}

// BaseURL returns the configured site base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CourseURL builds the canonical course view URL.
func (c *Client) CourseURL(courseID int) string {
	return fmt.Sprintf("%s/course/view.php?id=%d", c.baseURL, courseID)
}

// GlossaryEntryURL builds the canonical glossary entry URL.
func (c *Client) GlossaryEntryURL(courseID, entryID int) string {
	return fmt.Sprintf("%s/mod/glossary/showentry.php?courseid=%d&eid=%d", c.baseURL, courseID, entryID)
}

// wsFault is the error shape Moodle returns with a 200 status.
type wsFault struct {
	Exception string `json:"exception"`
	ErrorCode string `json:"errorcode"`
	Message   string `json:"message"`
}

func (c *Client) call(ctx context.Context, wsfunction string, params url.Values, out any) error {
	form := url.Values{}
	for k, vs := range params {
		form[k] = vs
	}
	form.Set("wstoken", c.token)
	form.Set("wsfunction", wsfunction)
	form.Set("moodlewsrestformat", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+restPath, strings.NewReader(form.Encode()))
	if err != nil {
		return unavailable(fmt.Sprintf("failed to build %s request", wsfunction), err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.forwardedHost != "" {
		req.Host = c.forwardedHost
		req.Header.Set("X-Forwarded-Host", c.forwardedHost)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return unavailable(fmt.Sprintf("moodle call %s failed", wsfunction), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return unavailable(fmt.Sprintf("moodle call %s returned status %d", wsfunction, resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return unavailable(fmt.Sprintf("failed to read %s response", wsfunction), err)
	}

	var fault wsFault
	if json.Unmarshal(body, &fault) == nil && fault.Exception != "" {
		return unavailable(fmt.Sprintf("moodle %s error %s: %s", wsfunction, fault.ErrorCode, fault.Message), nil)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return unavailable(fmt.Sprintf("moodle call %s returned a non-JSON body", wsfunction), err)
	}
	return nil
}

func unavailable(message string, err error) *domain.BotError {
	return domain.NewBotErrorWithCause(domain.ErrCodeRetrievalUnavailable, message, true, err)
}

// SearchCourses runs a free-text course search. Deployments disagree on the
// accepted parameter shape, so a bare criteria pair is tried first and a
// paged shape second; a shape that errors or matches nothing yields to the
// next one.
func (c *Client) SearchCourses(ctx context.Context, query string) ([]Course, error) {
	shapes := []url.Values{
		{
			"criterianame":  {"search"},
			"criteriavalue": {query},
		},
		{
			"criterianame":    {"search"},
			"criteriavalue":   {query},
			"page":            {"0"},
			"perpage":         {"100"},
			"limittoenrolled": {"0"},
		},
	}

	var lastErr error
	for _, params := range shapes {
		var resp struct {
			Total   int      `json:"total"`
			Courses []Course `json:"courses"`
		}
		if err := c.call(ctx, "core_course_search_courses", params, &resp); err != nil {
			lastErr = err
			continue
		}
		if len(resp.Courses) > 0 {
			return resp.Courses, nil
		}
	}
	return nil, lastErr
}

// ListCourses returns every course on the site.
func (c *Client) ListCourses(ctx context.Context) ([]Course, error) {
	var courses []Course
	if err := c.call(ctx, "core_course_get_courses", url.Values{}, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// GetCourseContents returns the section/module tree of a course.
func (c *Client) GetCourseContents(ctx context.Context, courseID int) ([]Section, error) {
	params := url.Values{"courseid": {strconv.Itoa(courseID)}}
	var sections []Section
	if err := c.call(ctx, "core_course_get_contents", params, &sections); err != nil {
		return nil, err
	}
	return sections, nil
}

// GetUserCourses returns the courses the user is enrolled in.
func (c *Client) GetUserCourses(ctx context.Context, userID int) ([]EnrolledCourse, error) {
	params := url.Values{"userid": {strconv.Itoa(userID)}}
	var courses []EnrolledCourse
	if err := c.call(ctx, "core_enrol_get_users_courses", params, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// GetCourseCompletion returns the user's course-level completion as a
// tri-state. Errors are returned alongside CompletionUnknown so callers can
// degrade instead of aborting.
func (c *Client) GetCourseCompletion(ctx context.Context, courseID, userID int) (Completion, error) {
	params := url.Values{
		"courseid": {strconv.Itoa(courseID)},
		"userid":   {strconv.Itoa(userID)},
	}
	var resp struct {
		CompletionStatus struct {
			Completed bool `json:"completed"`
		} `json:"completionstatus"`
	}
	if err := c.call(ctx, "core_completion_get_course_completion_status", params, &resp); err != nil {
		return CompletionUnknown, err
	}
	if resp.CompletionStatus.Completed {
		return CompletionComplete, nil
	}
	return CompletionIncomplete, nil
}

// GetActivitiesCompletion returns per-activity completion statuses for a
// course, including rule details when the site exposes them.
func (c *Client) GetActivitiesCompletion(ctx context.Context, courseID, userID int) ([]ActivityCompletion, error) {
	params := url.Values{
		"courseid": {strconv.Itoa(courseID)},
		"userid":   {strconv.Itoa(userID)},
	}
	var resp struct {
		Statuses []ActivityCompletion `json:"statuses"`
	}
	if err := c.call(ctx, "core_completion_get_activities_completion_status", params, &resp); err != nil {
		return nil, err
	}
	return resp.Statuses, nil
}

// GetUserByID looks up a user record by id. Returns nil when not found.
func (c *Client) GetUserByID(ctx context.Context, userID int) (*User, error) {
	params := url.Values{
		"field":     {"id"},
		"values[0]": {strconv.Itoa(userID)},
	}
	var users []User
	if err := c.call(ctx, "core_user_get_users_by_field", params, &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

// GetGlossariesByCourses lists glossary activities across the given courses.
func (c *Client) GetGlossariesByCourses(ctx context.Context, courseIDs []int) ([]Glossary, error) {
	params := url.Values{}
	for i, id := range courseIDs {
		params.Set(fmt.Sprintf("courseids[%d]", i), strconv.Itoa(id))
	}
	var resp struct {
		Glossaries []Glossary `json:"glossaries"`
	}
	if err := c.call(ctx, "mod_glossary_get_glossaries_by_courses", params, &resp); err != nil {
		return nil, err
	}
	return resp.Glossaries, nil
}

// SearchGlossaryEntries runs a full-text search within one glossary.
func (c *Client) SearchGlossaryEntries(ctx context.Context, glossaryID int, query string) ([]GlossaryEntry, error) {
	params := url.Values{
		"id":         {strconv.Itoa(glossaryID)},
		"query":      {query},
		"fullsearch": {"1"},
		"from":       {"0"},
		"limit":      {"20"},
	}
	var resp struct {
		Count   int             `json:"count"`
		Entries []GlossaryEntry `json:"entries"`
	}
	if err := c.call(ctx, "mod_glossary_get_entries_by_search", params, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// ListGlossaryEntries lists entries of one glossary regardless of letter.
func (c *Client) ListGlossaryEntries(ctx context.Context, glossaryID int) ([]GlossaryEntry, error) {
	params := url.Values{
		"id":     {strconv.Itoa(glossaryID)},
		"letter": {"ALL"},
		"from":   {"0"},
		"limit":  {"50"},
	}
	var resp struct {
		Count   int             `json:"count"`
		Entries []GlossaryEntry `json:"entries"`
	}
	if err := c.call(ctx, "mod_glossary_get_entries_by_letter", params, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}
