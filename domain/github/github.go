package github

import (
	"path"
	"strconv"
	"time"
)

// Issue represents a GitHub issue (excluding PRs which have PullRequest != nil)
type Issue struct {
	Number      int        `json:"number"`
	Title       string     `json:"title"`
	State       string     `json:"state"`
	Body        string     `json:"body"`
	HTMLURL     string     `json:"html_url"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ClosedAt    *time.Time `json:"closed_at"`
	User        *User      `json:"user"`
	Assignee    *User      `json:"assignee"`
	Assignees   []User     `json:"assignees"`
	Labels      []Label    `json:"labels"`
	Milestone   *Milestone `json:"milestone"`
	PullRequest *struct{}  `json:"pull_request"`
}

// Comment is an issue comment as returned by the repository-wide comments listing.
type Comment struct {
	IssueURL  string    `json:"issue_url"`
	Body      string    `json:"body"`
	User      *User     `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IssueNumber extracts the issue number from IssueURL
// (https://api.github.com/repos/o/r/issues/123). It returns 0 when the URL
// does not end in a number.
func (c Comment) IssueNumber() int {
	n, err := strconv.Atoi(path.Base(c.IssueURL))
	if err != nil {
		return 0
	}
	return n
}

type User struct {
	Login string `json:"login"`
}

type Label struct {
	Name string `json:"name"`
}

type Milestone struct {
	Title string `json:"title"`
}

// LoginOrEmpty returns the user's login, or "" for a nil user.
func (u *User) LoginOrEmpty() string {
	if u == nil {
		return ""
	}
	return u.Login
}
