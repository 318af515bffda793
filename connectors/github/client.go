package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	gh "issue-report/domain/github"
)

// Package github provides a minimal GitHub REST connector used by the export
// subcommand. It pages through list endpoints and handles rate limiting and auth.

const (
	DefaultBaseURL   = "https://api.github.com"
	acceptDefault    = "application/vnd.github+json"
	perPage          = 100
	rateSafetyMargin = 2 * time.Second
	minRateWait      = time.Second
	maxRateRetries   = 5
)

// Client is a thin wrapper over an oauth2 http.Client with helper methods.
// Use New to construct it.
type Client struct {
	c       *http.Client
	baseURL string
	sleep   func(time.Duration)
}

// New returns a client for the API rooted at baseURL (DefaultBaseURL when
// empty). A non-empty token is sent as a bearer token on every request.
func New(ctx context.Context, baseURL, token string) *Client {
	c := &http.Client{}
	if token != "" {
		c = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}
	c.Timeout = 30 * time.Second
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{c: c, baseURL: strings.TrimRight(baseURL, "/"), sleep: time.Sleep}
}

func (hc *Client) newRequest(ctx context.Context, method, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", acceptDefault)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	return req, nil
}

func (hc *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	for retries := 0; ; retries++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, err := hc.c.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0" {
			reset := resp.Header.Get("X-RateLimit-Reset")
			_ = drainAndClose(resp.Body)
			if retries >= maxRateRetries {
				return nil, fmt.Errorf("rate limited by GitHub API after %d retries", retries)
			}
			if reset != "" {
				if sec, err := strconv.ParseInt(reset, 10, 64); err == nil {
					// A reset already in the past still waits minRateWait.
					wait := max(time.Until(time.Unix(sec, 0))+rateSafetyMargin, minRateWait)
					slog.Warn("rate.limit.sleep", "wait", wait, "resetAt", time.Unix(sec, 0), "retry", retries+1)
					hc.sleep(wait)
					continue
				}
			}
			return nil, errors.New("rate limited by GitHub API")
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			hc.pace(resp)
			return resp, nil
		}
		// read body for diagnostics and return error
		b, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, fmt.Errorf("github API %s %s returned %d: %s", req.Method, req.URL.String(), resp.StatusCode, string(b))
	}
}

// pace inspects X-RateLimit headers after a successful response and sleeps
// when the remaining budget is low, spreading calls until the window resets.
func (hc *Client) pace(resp *http.Response) {
	rem, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining"))
	if err != nil {
		return
	}
	sec, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64)
	if err != nil {
		return
	}
	resetAt := time.Unix(sec, 0)
	window := time.Until(resetAt)
	if window <= 0 {
		return
	}
	switch {
	case rem <= 0:
		sleep := window + rateSafetyMargin
		slog.Warn("rate.pacing.sleep.empty", "sleep", sleep, "resetAt", resetAt)
		hc.sleep(sleep)
	case rem < 100:
		perReq := window / time.Duration(rem+1)
		if perReq > 2*time.Second {
			perReq = 2 * time.Second
		}
		slog.Info("rate.pacing.sleep", "sleep", perReq, "remaining", rem, "resetAt", resetAt)
		hc.sleep(perReq)
	}
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, rc)
	return rc.Close()
}

// nextLink returns the rel="next" target of a Link header, or "".
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		segs := strings.Split(part, ";")
		if len(segs) < 2 {
			continue
		}
		target := strings.Trim(strings.TrimSpace(segs[0]), "<>")
		for _, s := range segs[1:] {
			if strings.TrimSpace(s) == `rel="next"` {
				return target
			}
		}
	}
	return ""
}

// listAll follows Link pagination from rawURL and decodes every page as a
// JSON array of T.
func listAll[T any](ctx context.Context, hc *Client, rawURL string) ([]T, error) {
	var all []T
	for rawURL != "" {
		req, err := hc.newRequest(ctx, http.MethodGet, rawURL)
		if err != nil {
			return nil, err
		}
		resp, err := hc.do(ctx, req)
		if err != nil {
			return nil, err
		}
		var page []T
		err = json.NewDecoder(resp.Body).Decode(&page)
		_ = drainAndClose(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", rawURL, err)
		}
		all = append(all, page...)
		rawURL = nextLink(resp.Header.Get("Link"))
	}
	return all, nil
}

func (hc *Client) repoURL(owner, repo, suffix string, q url.Values) string {
	q.Set("per_page", strconv.Itoa(perPage))
	return fmt.Sprintf("%s/repos/%s/%s/%s?%s", hc.baseURL, url.PathEscape(owner), url.PathEscape(repo), suffix, q.Encode())
}

// ListAllIssues lists every issue of a repository, oldest first, optionally
// only those updated since an ISO8601 timestamp. Pull requests are skipped.
func (hc *Client) ListAllIssues(ctx context.Context, owner, repo, since string) ([]gh.Issue, error) {
	slog.Info("phase.issues.fetch.start", "owner", owner, "repo", repo, "since", since)
	q := url.Values{"state": {"all"}, "sort": {"created"}, "direction": {"asc"}}
	if since != "" {
		q.Set("since", since)
	}
	items, err := listAll[gh.Issue](ctx, hc, hc.repoURL(owner, repo, "issues", q))
	if err != nil {
		return nil, err
	}
	all := make([]gh.Issue, 0, len(items))
	for _, is := range items {
		if is.PullRequest != nil {
			continue
		}
		all = append(all, is)
	}
	slog.Info("phase.issues.fetch.done", "owner", owner, "repo", repo, "count", len(all), "skippedPRs", len(items)-len(all))
	return all, nil
}

// ListAllComments lists every issue comment of a repository in creation order.
func (hc *Client) ListAllComments(ctx context.Context, owner, repo, since string) ([]gh.Comment, error) {
	slog.Info("phase.comments.fetch.start", "owner", owner, "repo", repo, "since", since)
	q := url.Values{"sort": {"created"}, "direction": {"asc"}}
	if since != "" {
		q.Set("since", since)
	}
	all, err := listAll[gh.Comment](ctx, hc, hc.repoURL(owner, repo, "issues/comments", q))
	if err != nil {
		return nil, err
	}
	slog.Info("phase.comments.fetch.done", "owner", owner, "repo", repo, "count", len(all))
	return all, nil
}
