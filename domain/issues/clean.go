package issues

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Truncation limits applied by Normalize.
const (
	MaxTitleLength = 100
	MaxBodyLength  = 150
)

// Ellipsis is appended to text cut at its maximum length.
const Ellipsis = "..."

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// Clean strips markup tags, decodes entities, collapses whitespace and
// truncates the result to maxLen runes plus Ellipsis.
func Clean(text string, maxLen int) string {
	if text == "" {
		return ""
	}
	text = tagPattern.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	// strings.Fields splits on Unicode whitespace, so &nbsp; collapses too.
	text = strings.Join(strings.Fields(text), " ")
	return Truncate(text, maxLen)
}

// Truncate cuts s to maxLen runes and appends Ellipsis when s is longer.
func Truncate(s string, maxLen int) string {
	if maxLen < 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + Ellipsis
}

// Normalize maps one raw export row onto the normalized schema.
func Normalize(raw RawRecord) Record {
	rowType := RowTypeIssue
	if raw[RawCommentUser] != "" {
		rowType = RowTypeComment
	}
	return Record{
		IssueNumber:      raw[RawIssueNumber],
		IssueTitle:       Clean(raw[RawIssueTitle], MaxTitleLength),
		IssueState:       raw[RawIssueState],
		IssueLabels:      raw[RawIssueLabels],
		IssueMilestone:   raw[RawIssueMilestone],
		IssueUser:        raw[RawIssueUser],
		IssueAssignee:    raw[RawIssueAssignee],
		IssueAssignees:   raw[RawIssueAssignees],
		IssueCreatedAt:   raw[RawIssueCreatedAt],
		IssueUpdatedAt:   raw[RawIssueUpdatedAt],
		IssueClosedAt:    raw[RawIssueClosedAt],
		IssueBody:        Clean(raw[RawIssueBody], MaxBodyLength),
		CommentUser:      raw[RawCommentUser],
		CommentCreatedAt: raw[RawCommentCreatedAt],
		CommentUpdatedAt: raw[RawCommentUpdatedAt],
		CommentBody:      Clean(raw[RawCommentBody], MaxBodyLength),
		RowType:          rowType,
	}
}
