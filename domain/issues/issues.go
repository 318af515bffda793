package issues

import "errors"

// Row types carried in the row_type column of the normalized table.
const (
	RowTypeIssue   = "issue"
	RowTypeComment = "comment"
)

// ErrMissingHeader is returned when a table has no header row.
var ErrMissingHeader = errors.New("missing header row")

// Source column names of the raw export.
const (
	RawIssueNumber      = "issue.number"
	RawIssueTitle       = "issue.title"
	RawIssueState       = "issue.state"
	RawIssueLabels      = "issue.labels"
	RawIssueMilestone   = "issue.milestone"
	RawIssueUser        = "issue.user"
	RawIssueAssignee    = "issue.assignee"
	RawIssueAssignees   = "issue.assignees"
	RawIssueCreatedAt   = "issue.created_at"
	RawIssueUpdatedAt   = "issue.updated_at"
	RawIssueClosedAt    = "issue.closed_at"
	RawIssueBody        = "issue.body"
	RawCommentUser      = "comment.user"
	RawCommentCreatedAt = "comment.created_at"
	RawCommentUpdatedAt = "comment.updated_at"
	RawCommentBody      = "comment.body"
)

// RawHeaders is the column order used when this tool writes a raw export itself.
var RawHeaders = []string{
	RawIssueNumber, RawIssueTitle, RawIssueState, RawIssueLabels, RawIssueMilestone,
	RawIssueUser, RawIssueAssignee, RawIssueAssignees, RawIssueCreatedAt, RawIssueUpdatedAt,
	RawIssueClosedAt, RawIssueBody, RawCommentUser, RawCommentCreatedAt, RawCommentUpdatedAt,
	RawCommentBody,
}

// Headers is the fixed column order of the normalized table.
var Headers = []string{
	"issue_number",
	"issue_title",
	"issue_state",
	"issue_labels",
	"issue_milestone",
	"issue_user",
	"issue_assignee",
	"issue_assignees",
	"issue_created_at",
	"issue_updated_at",
	"issue_closed_at",
	"issue_body",
	"comment_user",
	"comment_created_at",
	"comment_updated_at",
	"comment_body",
	"row_type",
}

// RawRecord is one row of the raw export keyed by dotted column name.
// Absent columns read as empty strings.
type RawRecord map[string]string

// Record is one row of the normalized table.
type Record struct {
	IssueNumber      string `json:"issue_number"`
	IssueTitle       string `json:"issue_title"`
	IssueState       string `json:"issue_state"`
	IssueLabels      string `json:"issue_labels"`
	IssueMilestone   string `json:"issue_milestone"`
	IssueUser        string `json:"issue_user"`
	IssueAssignee    string `json:"issue_assignee"`
	IssueAssignees   string `json:"issue_assignees"`
	IssueCreatedAt   string `json:"issue_created_at"`
	IssueUpdatedAt   string `json:"issue_updated_at"`
	IssueClosedAt    string `json:"issue_closed_at"`
	IssueBody        string `json:"issue_body"`
	CommentUser      string `json:"comment_user"`
	CommentCreatedAt string `json:"comment_created_at"`
	CommentUpdatedAt string `json:"comment_updated_at"`
	CommentBody      string `json:"comment_body"`
	RowType          string `json:"row_type"`
}

// IsIssue reports whether the record is tagged as an issue row.
func (r Record) IsIssue() bool { return r.RowType == RowTypeIssue }

// Row returns the record's cells in Headers order.
func (r Record) Row() []string {
	return []string{
		r.IssueNumber,
		r.IssueTitle,
		r.IssueState,
		r.IssueLabels,
		r.IssueMilestone,
		r.IssueUser,
		r.IssueAssignee,
		r.IssueAssignees,
		r.IssueCreatedAt,
		r.IssueUpdatedAt,
		r.IssueClosedAt,
		r.IssueBody,
		r.CommentUser,
		r.CommentCreatedAt,
		r.CommentUpdatedAt,
		r.CommentBody,
		r.RowType,
	}
}

// FromRow builds a record from cells laid out by idx (column name -> position).
// Cells missing from a short row read as empty strings.
func FromRow(idx map[string]int, rec []string) Record {
	get := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}
	return Record{
		IssueNumber:      get("issue_number"),
		IssueTitle:       get("issue_title"),
		IssueState:       get("issue_state"),
		IssueLabels:      get("issue_labels"),
		IssueMilestone:   get("issue_milestone"),
		IssueUser:        get("issue_user"),
		IssueAssignee:    get("issue_assignee"),
		IssueAssignees:   get("issue_assignees"),
		IssueCreatedAt:   get("issue_created_at"),
		IssueUpdatedAt:   get("issue_updated_at"),
		IssueClosedAt:    get("issue_closed_at"),
		IssueBody:        get("issue_body"),
		CommentUser:      get("comment_user"),
		CommentCreatedAt: get("comment_created_at"),
		CommentUpdatedAt: get("comment_updated_at"),
		CommentBody:      get("comment_body"),
		RowType:          get("row_type"),
	}
}
