package export

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	lo "github.com/samber/lo"

	"issue-report/connectors/config"
	ccsv "issue-report/connectors/csv"
	cg "issue-report/connectors/github"
	gh "issue-report/domain/github"
	"issue-report/domain/issues"
)

// Run executes the export subcommand: it downloads the issues and issue
// comments of one repository and writes them as a raw export.
//
// Usage:
//
//	GITHUB_TOKEN=ghp_xxx issue-report export -owner <owner> -repo <repo> [-since <ts>] [-out issues-with-comments.csv]
func Run(args []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	owner := fs.String("owner", cfg.GitHub.Owner, "repository owner (user or organization)")
	repo := fs.String("repo", cfg.GitHub.Repo, "repository name")
	since := fs.String("since", cfg.GitHub.Since, "Only issues updated since this ISO8601/RFC3339 time, e.g., 2025-01-01T00:00:00Z (optional)")
	out := fs.String("out", cfg.Paths.Raw, "raw export to write (.csv or .csv.gz)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *owner == "" || *repo == "" {
		slog.Error("export.validation.error", "reason", "missing owner or repo")
		return fmt.Errorf("missing required -owner and -repo (or github.owner and github.repo in config)")
	}
	if *since != "" {
		if _, err := time.Parse(time.RFC3339, *since); err != nil {
			return fmt.Errorf("invalid -since %q: %w", *since, err)
		}
	}

	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		slog.Warn("export.token.missing", "reason", "GITHUB_TOKEN not set, using unauthenticated requests")
	}

	slog.Info("export.start", "owner", *owner, "repo", *repo, "since", *since, "out", *out)
	ctx := context.Background()
	n, err := Export(ctx, cg.New(ctx, cfg.GitHub.APIURL, token), *owner, *repo, *since, *out)
	if err != nil {
		slog.Error("export.error", "owner", *owner, "repo", *repo, "error", err)
		return err
	}
	slog.Info("export.done", "rows", n, "out", *out)
	return nil
}

// Export fetches issues and comments through ghc and writes them to out. It
// returns the number of rows written.
func Export(ctx context.Context, ghc *cg.Client, owner, repo, since, out string) (int, error) {
	list, err := ghc.ListAllIssues(ctx, owner, repo, since)
	if err != nil {
		return 0, fmt.Errorf("list issues for %s/%s: %w", owner, repo, err)
	}
	comments, err := ghc.ListAllComments(ctx, owner, repo, since)
	if err != nil {
		return 0, fmt.Errorf("list comments for %s/%s: %w", owner, repo, err)
	}
	rows := BuildRows(list, comments)
	if err := ccsv.WriteRaw(out, rows); err != nil {
		return 0, fmt.Errorf("write %s: %w", out, err)
	}
	return len(rows), nil
}

// BuildRows lays issues out as raw export rows: each issue is followed by
// its comments in the order given. Comments whose issue is not in list (pull
// request comments, or issues outside the since window) are dropped.
func BuildRows(list []gh.Issue, comments []gh.Comment) []issues.RawRecord {
	byIssue := lo.GroupBy(comments, func(c gh.Comment) int { return c.IssueNumber() })

	rows := make([]issues.RawRecord, 0, len(list)+len(comments))
	kept := 0
	for _, is := range list {
		rows = append(rows, issueRow(is))
		for _, c := range byIssue[is.Number] {
			row := commentRow(c)
			row[issues.RawIssueNumber] = strconv.Itoa(is.Number)
			rows = append(rows, row)
			kept++
		}
	}
	if dropped := len(comments) - kept; dropped > 0 {
		slog.Debug("export.comments.dropped", "count", dropped)
	}
	return rows
}

func issueRow(is gh.Issue) issues.RawRecord {
	milestone := ""
	if is.Milestone != nil {
		milestone = is.Milestone.Title
	}
	return issues.RawRecord{
		issues.RawIssueNumber:    strconv.Itoa(is.Number),
		issues.RawIssueTitle:     is.Title,
		issues.RawIssueState:     is.State,
		issues.RawIssueLabels:    strings.Join(lo.Map(is.Labels, func(l gh.Label, _ int) string { return l.Name }), ", "),
		issues.RawIssueMilestone: milestone,
		issues.RawIssueUser:      is.User.LoginOrEmpty(),
		issues.RawIssueAssignee:  is.Assignee.LoginOrEmpty(),
		issues.RawIssueAssignees: strings.Join(usersToLogins(is.Assignees), ", "),
		issues.RawIssueCreatedAt: formatTime(&is.CreatedAt),
		issues.RawIssueUpdatedAt: formatTime(&is.UpdatedAt),
		issues.RawIssueClosedAt:  formatTime(is.ClosedAt),
		issues.RawIssueBody:      is.Body,
	}
}

// ghostLogin stands in for deleted accounts; an empty comment.user would make
// the row read back as an issue.
const ghostLogin = "ghost"

func commentRow(c gh.Comment) issues.RawRecord {
	user := c.User.LoginOrEmpty()
	if user == "" {
		user = ghostLogin
	}
	return issues.RawRecord{
		issues.RawCommentUser:      user,
		issues.RawCommentCreatedAt: formatTime(&c.CreatedAt),
		issues.RawCommentUpdatedAt: formatTime(&c.UpdatedAt),
		issues.RawCommentBody:      c.Body,
	}
}

func usersToLogins(us []gh.User) []string {
	res := make([]string, 0, len(us))
	for _, u := range us {
		if u.Login != "" {
			res = append(res, u.Login)
		}
	}
	return res
}

// formatTime renders t in UTC as RFC3339 so timestamps sort lexically.
func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
