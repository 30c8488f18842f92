package moodle

import (
	"html"
	"regexp"
	"strings"
)

// Completion is the tri-state outcome of a best-effort completion lookup.
// Unknown means the upstream call failed or the site does not track
// completion; it is a visible outcome, not a swallowed error.
type Completion int

const (
	CompletionUnknown Completion = iota
	CompletionIncomplete
	CompletionComplete
)

// Course is a course record from course search or listing calls.
// Visible is a pointer because search responses omit the field.
type Course struct {
	ID          int    `json:"id"`
	FullName    string `json:"fullname"`
	DisplayName string `json:"displayname"`
	ShortName   string `json:"shortname"`
	Summary     string `json:"summary"`
	Format      string `json:"format"`
	Visible     *int   `json:"visible,omitempty"`
}

// Hidden reports whether the course should never be surfaced to users:
// the site front-page pseudo-course, site-format courses, and courses
// explicitly marked invisible.
func (c Course) Hidden() bool {
	if c.ID == 1 || c.Format == "site" {
		return true
	}
	return c.Visible != nil && *c.Visible == 0
}

// Name prefers the display name over the internal full name.
func (c Course) Name() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.FullName
}

// Section is one entry of a course content tree.
type Section struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Summary string   `json:"summary"`
	Modules []Module `json:"modules"`
}

// Module is an activity or resource within a section. Completion follows
// Moodle's convention: 0 no tracking, 1 manual, 2 automatic.
type Module struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	ModName     string `json:"modname"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Completion  int    `json:"completion"`
}

// EnrolledCourse is a course from the user's enrollment listing.
type EnrolledCourse struct {
	ID       int    `json:"id"`
	FullName string `json:"fullname"`
	Summary  string `json:"summary"`
}

// ActivityCompletion is the per-activity completion status of one module.
type ActivityCompletion struct {
	CMID    int                `json:"cmid"`
	State   int                `json:"state"`
	Details []CompletionDetail `json:"details"`
}

// Complete reports whether the activity reached any completed state
// (complete, complete-pass or complete-fail).
func (a ActivityCompletion) Complete() bool {
	return a.State > 0
}

// CompletionDetail is one completion rule with its human-readable status.
type CompletionDetail struct {
	RuleName  string              `json:"rulename"`
	RuleValue CompletionRuleValue `json:"rulevalue"`
}

// CompletionRuleValue carries the rule state and its description.
type CompletionRuleValue struct {
	Status      int    `json:"status"`
	Description string `json:"description"`
}

// Met reports whether the rule is satisfied (status 1 incomplete, 2 met).
func (d CompletionDetail) Met() bool {
	return d.RuleValue.Status >= 2
}

// User is a platform user record; only the fields the assistant consumes.
type User struct {
	ID         int    `json:"id"`
	FullName   string `json:"fullname"`
	Department string `json:"department"`
}

// Glossary is a glossary activity attached to a course.
type Glossary struct {
	ID           int    `json:"id"`
	CourseModule int    `json:"coursemodule"`
	CourseID     int    `json:"courseid"`
	Name         string `json:"name"`
}

// GlossaryEntry is a single concept/definition pair.
type GlossaryEntry struct {
	ID         int    `json:"id"`
	Concept    string `json:"concept"`
	Definition string `json:"definition"`
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripHTML flattens Moodle rich-text fields to plain text: tags removed,
// entities decoded, whitespace collapsed.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	s = tagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}
