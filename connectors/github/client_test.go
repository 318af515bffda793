package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextLink(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "empty", header: "", want: ""},
		{
			name:   "next and last",
			header: `<https://api.github.com/repos/o/r/issues?page=2>; rel="next", <https://api.github.com/repos/o/r/issues?page=5>; rel="last"`,
			want:   "https://api.github.com/repos/o/r/issues?page=2",
		},
		{
			name:   "last page",
			header: `<https://api.github.com/repos/o/r/issues?page=1>; rel="first", <https://api.github.com/repos/o/r/issues?page=4>; rel="prev"`,
			want:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextLink(tt.header))
		})
	}
}

func TestListAllIssues_PaginatesAndSkipsPRs(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octo/hello/issues", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "all", r.URL.Query().Get("state"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		assert.Equal(t, "2024-01-01T00:00:00Z", r.URL.Query().Get("since"))
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "" {
			w.Header().Set("Link", fmt.Sprintf(`<%s/repos/octo/hello/issues?page=2&state=all&per_page=100&since=2024-01-01T00:00:00Z>; rel="next"`, srv.URL))
			fmt.Fprint(w, `[
				{"number":1,"title":"First","state":"open","user":{"login":"alice"},"labels":[{"name":"bug"}],"created_at":"2024-01-02T00:00:00Z","updated_at":"2024-01-02T00:00:00Z"},
				{"number":2,"title":"A PR","state":"open","pull_request":{}}
			]`)
			return
		}
		fmt.Fprint(w, `[{"number":3,"title":"Third","state":"closed","milestone":{"title":"v1"},"created_at":"2024-01-03T00:00:00Z","updated_at":"2024-01-04T00:00:00Z","closed_at":"2024-01-04T00:00:00Z"}]`)
	}))
	defer srv.Close()

	c := New(context.Background(), srv.URL, "secret")
	got, err := c.ListAllIssues(context.Background(), "octo", "hello", "2024-01-01T00:00:00Z")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Number)
	assert.Equal(t, "alice", got[0].User.LoginOrEmpty())
	assert.Equal(t, "bug", got[0].Labels[0].Name)
	assert.Equal(t, 3, got[1].Number)
	assert.Equal(t, "v1", got[1].Milestone.Title)
	require.NotNil(t, got[1].ClosedAt)
}

func TestListAllComments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octo/hello/issues/comments", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		fmt.Fprint(w, `[{"issue_url":"https://api.github.com/repos/octo/hello/issues/7","body":"hi","user":{"login":"bob"},"created_at":"2024-01-05T00:00:00Z","updated_at":"2024-01-05T00:00:00Z"}]`)
	}))
	defer srv.Close()

	c := New(context.Background(), srv.URL, "")
	got, err := c.ListAllComments(context.Background(), "octo", "hello", "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 7, got[0].IssueNumber())
	assert.Equal(t, "bob", got[0].User.LoginOrEmpty())
}

func TestDo_RateLimitRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("X-RateLimit-Reset", fmt.Sprint(time.Now().Add(time.Minute).Unix()))
			w.WriteHeader(http.StatusForbidden)
			return
		}
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	c := New(context.Background(), srv.URL, "")
	var slept []time.Duration
	c.sleep = func(d time.Duration) { slept = append(slept, d) }

	got, err := c.ListAllIssues(context.Background(), "o", "r", "")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, int32(2), calls.Load())
	require.Len(t, slept, 1)
	assert.Greater(t, slept[0], time.Minute-5*time.Second)
}

func TestDo_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "rate limited without reset",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.WriteHeader(http.StatusForbidden)
			},
			want: "rate limited",
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
			},
			want: "returned 404",
		},
		{
			name: "bad json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"not":"an array"}`)
			},
			want: "decode",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := New(context.Background(), srv.URL, "").ListAllComments(context.Background(), "o", "r", "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPace(t *testing.T) {
	c := New(context.Background(), "", "")
	var slept []time.Duration
	c.sleep = func(d time.Duration) { slept = append(slept, d) }

	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("X-RateLimit-Remaining", "4000")
	resp.Header.Set("X-RateLimit-Reset", fmt.Sprint(time.Now().Add(time.Hour).Unix()))
	c.pace(resp)
	assert.Empty(t, slept)

	resp.Header.Set("X-RateLimit-Remaining", "10")
	c.pace(resp)
	require.Len(t, slept, 1)
	assert.Equal(t, 2*time.Second, slept[0])
}

func TestDo_StaleResetIsBounded(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", fmt.Sprint(time.Now().Add(-time.Hour).Unix()))
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(context.Background(), srv.URL, "")
	var slept []time.Duration
	c.sleep = func(d time.Duration) { slept = append(slept, d) }

	_, err := c.ListAllIssues(context.Background(), "o", "r", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Equal(t, int32(maxRateRetries+1), calls.Load())
	require.Len(t, slept, maxRateRetries)
	for _, d := range slept {
		assert.GreaterOrEqual(t, d, minRateWait)
	}
}
