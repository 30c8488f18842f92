package moodle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/novalxp/novalxp-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-token", "", 2*time.Second)
}

func TestCall_SendsTokenAndFunction(t *testing.T) {
	var gotFunction, gotToken, gotFormat string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotFunction = r.PostFormValue("wsfunction")
		gotToken = r.PostFormValue("wstoken")
		gotFormat = r.PostFormValue("moodlewsrestformat")
		w.Write([]byte(`[]`))
	})

	_, err := client.ListCourses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "core_course_get_courses", gotFunction)
	assert.Equal(t, "test-token", gotToken)
	assert.Equal(t, "json", gotFormat)
}

func TestCall_MoodleFaultBecomesRetrievalUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"exception":"webservice_access_exception","errorcode":"accessexception","message":"Access control exception"}`))
	})

	_, err := client.ListCourses(context.Background())
	require.Error(t, err)
	botErr := domain.AsBotError(err)
	assert.Equal(t, domain.ErrCodeRetrievalUnavailable, botErr.Code)
	assert.True(t, botErr.Retryable)
	assert.Contains(t, botErr.Message, "accessexception")
}

func TestCall_RedirectBecomesRetrievalUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login/index.php", http.StatusFound)
	})

	_, err := client.ListCourses(context.Background())
	require.Error(t, err)
	botErr := domain.AsBotError(err)
	assert.Equal(t, domain.ErrCodeRetrievalUnavailable, botErr.Code)
	assert.True(t, botErr.Retryable)
}

func TestCall_NonJSONBodyBecomesRetrievalUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	})

	_, err := client.ListCourses(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeRetrievalUnavailable, domain.AsBotError(err).Code)
}

func TestCall_ForwardedHostHeader(t *testing.T) {
	var gotHost, gotForwarded string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHost = r.Host
		gotForwarded = r.Header.Get("X-Forwarded-Host")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tok", "lms.internal.example", time.Second)
	_, err := client.ListCourses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "lms.internal.example", gotHost)
	assert.Equal(t, "lms.internal.example", gotForwarded)
}

func TestSearchCourses_FallsBackToPagedShape(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		calls++
		if r.PostFormValue("perpage") == "" {
			// First shape: deployment rejects the bare criteria pair.
			w.Write([]byte(`{"exception":"invalid_parameter_exception","errorcode":"invalidparameter","message":"Invalid parameter"}`))
			return
		}
		w.Write([]byte(`{"total":1,"courses":[{"id":7,"fullname":"Safety Basics","summary":""}]}`))
	})

	courses, err := client.SearchCourses(context.Background(), "safety")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, 7, courses[0].ID)
	assert.Equal(t, 2, calls)
}

func TestSearchCourses_NoResultsNoError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total":0,"courses":[]}`))
	})

	courses, err := client.SearchCourses(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestGetCourseCompletion_TriState(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"completionstatus":{"completed":true}}`))
	})
	status, err := client.GetCourseCompletion(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.Equal(t, CompletionComplete, status)

	failing := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"exception":"moodle_exception","errorcode":"completionnotenabled","message":"Completion is not enabled"}`))
	})
	status, err = failing.GetCourseCompletion(context.Background(), 7, 3)
	require.Error(t, err)
	assert.Equal(t, CompletionUnknown, status)
}

func TestGetUserByID_Missing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	user, err := client.GetUserByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestCourseHidden(t *testing.T) {
	visible := 1
	invisible := 0

	assert.True(t, Course{ID: 1}.Hidden())
	assert.True(t, Course{ID: 5, Format: "site"}.Hidden())
	assert.True(t, Course{ID: 5, Visible: &invisible}.Hidden())
	assert.False(t, Course{ID: 5, Visible: &visible}.Hidden())
	assert.False(t, Course{ID: 5}.Hidden())
}

func TestStripHTML(t *testing.T) {
	in := `<p>Covers &amp; explains   <strong>late submission</strong> rules.</p>`
	assert.Equal(t, "Covers & explains late submission rules.", StripHTML(in))
	assert.Equal(t, "", StripHTML(""))
}
