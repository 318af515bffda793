package issues

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "empty", input: "", maxLen: 100, want: ""},
		{name: "tags and entities", input: "<b>Hi</b> &amp; bye", maxLen: 100, want: "Hi & bye"},
		{name: "tag content kept, tag dropped", input: `<a href="x">link</a> text`, maxLen: 100, want: "link text"},
		{name: "whitespace collapsed", input: "  line one\n\n\tline   two  ", maxLen: 100, want: "line one line two"},
		{name: "nbsp entity collapses", input: "a&nbsp;&nbsp; b", maxLen: 100, want: "a b"},
		{name: "numeric entity", input: "caf&#233;", maxLen: 100, want: "café"},
		{name: "only markup", input: "<br/><hr>", maxLen: 100, want: ""},
		{name: "truncated", input: "abcdefghij", maxLen: 4, want: "abcd..."},
		{name: "exactly max", input: "abcd", maxLen: 4, want: "abcd"},
		{name: "decoded lt survives", input: "a &lt;tag&gt; b", maxLen: 100, want: "a <tag> b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.input, tt.maxLen))
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{"Hi & bye", "plain text", "x", "already clean title with words"}
	for _, in := range inputs {
		once := Clean(in, MaxTitleLength)
		assert.Equal(t, in, once)
		assert.Equal(t, once, Clean(once, MaxTitleLength))
	}
}

func TestClean_TruncationLaw(t *testing.T) {
	for _, maxLen := range []int{1, 10, MaxTitleLength, MaxBodyLength} {
		in := strings.Repeat("word ", maxLen)
		out := Clean(in, maxLen)
		require.True(t, strings.HasSuffix(out, Ellipsis))
		assert.Equal(t, maxLen+len(Ellipsis), utf8.RuneCountInString(out))
	}
}

func TestTruncate_CountsRunes(t *testing.T) {
	assert.Equal(t, "ééé...", Truncate("éééé", 3))
	assert.Equal(t, "éééé", Truncate("éééé", 4))
}

func TestNormalize_IssueRow(t *testing.T) {
	rec := Normalize(RawRecord{
		RawIssueTitle:  "<b>Hi</b> &amp; bye",
		RawIssueNumber: "5",
	})

	assert.Equal(t, RowTypeIssue, rec.RowType)
	assert.Equal(t, "Hi & bye", rec.IssueTitle)
	assert.Equal(t, "5", rec.IssueNumber)
	assert.Empty(t, rec.CommentUser)
	assert.Empty(t, rec.CommentBody)
}

func TestNormalize_CommentRow(t *testing.T) {
	rec := Normalize(RawRecord{
		RawIssueNumber:      "7",
		RawCommentUser:      "octocat",
		RawCommentBody:      "<p>Looks   good</p>",
		RawCommentCreatedAt: "2021-02-03T04:05:06Z",
	})

	assert.Equal(t, RowTypeComment, rec.RowType)
	assert.Equal(t, "7", rec.IssueNumber)
	assert.Equal(t, "Looks good", rec.CommentBody)
	assert.Equal(t, "2021-02-03T04:05:06Z", rec.CommentCreatedAt)
}

func TestNormalize_PassThroughAndLimits(t *testing.T) {
	rec := Normalize(RawRecord{
		RawIssueState:     "Open ",
		RawIssueLabels:    "bug, ui",
		RawIssueMilestone: "v1",
		RawIssueAssignees: "a, b",
		RawIssueCreatedAt: "not-a-date",
		RawIssueTitle:     strings.Repeat("t", 150),
		RawIssueBody:      strings.Repeat("b", 200),
	})

	assert.Equal(t, "Open ", rec.IssueState)
	assert.Equal(t, "bug, ui", rec.IssueLabels)
	assert.Equal(t, "v1", rec.IssueMilestone)
	assert.Equal(t, "a, b", rec.IssueAssignees)
	assert.Equal(t, "not-a-date", rec.IssueCreatedAt)
	assert.Len(t, rec.IssueTitle, MaxTitleLength+len(Ellipsis))
	assert.Len(t, rec.IssueBody, MaxBodyLength+len(Ellipsis))
}

func TestRecord_RowRoundTrip(t *testing.T) {
	rec := Normalize(RawRecord{RawIssueNumber: "1", RawIssueTitle: "t", RawCommentUser: "u"})
	row := rec.Row()
	require.Len(t, row, len(Headers))

	idx := map[string]int{}
	for i, h := range Headers {
		idx[h] = i
	}
	assert.Equal(t, rec, FromRow(idx, row))
}

func TestFromRow_ShortRow(t *testing.T) {
	idx := map[string]int{"issue_number": 0, "row_type": 16}
	rec := FromRow(idx, []string{"9"})
	assert.Equal(t, "9", rec.IssueNumber)
	assert.Empty(t, rec.RowType)
}
