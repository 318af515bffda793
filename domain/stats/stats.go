// Package stats computes the aggregate snapshot shared by the summary and
// HTML renderers.
//
// Timestamps are compared as strings. This matches chronological order only
// when every value uses the same fixed-width ISO-8601 layout, which is what
// GitHub exports produce.
package stats

import (
	"sort"
	"strings"
	"unicode/utf8"

	lo "github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"issue-report/domain/issues"
)

// Well-known issue states.
const (
	StateOpen   = "open"
	StateClosed = "closed"
)

// DisplayState capitalizes a state for display: the first letter is upper-cased
// and the rest lower-cased, so "open" becomes "Open" and "in progress" becomes
// "In progress".
func DisplayState(state string) string {
	_, size := utf8.DecodeRuneInString(state)
	return cases.Upper(language.Und).String(state[:size]) + cases.Lower(language.Und).String(state[size:])
}

// Count is one entry of a frequency table.
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Frequency is a frequency table in descending count order. Entries with
// equal counts keep the order in which their value was first seen.
type Frequency []Count

// Top returns at most n leading entries.
func (f Frequency) Top(n int) Frequency {
	if n < 0 || n >= len(f) {
		return f
	}
	return f[:n]
}

// Total sums all counts.
func (f Frequency) Total() int {
	return lo.SumBy(f, func(c Count) int { return c.Count })
}

// DateRange holds the earliest and latest issue creation timestamps.
type DateRange struct {
	Earliest string `json:"earliest"`
	Latest   string `json:"latest"`
}

// Snapshot is the complete set of statistics computed from one normalized table.
type Snapshot struct {
	TotalIssues   int             `json:"total_issues"`
	TotalComments int             `json:"total_comments"`
	States        []Count         `json:"states"`
	Open          int             `json:"open"`
	Closed        int             `json:"closed"`
	Labels        Frequency       `json:"labels"`
	Authors       Frequency       `json:"authors"`
	Commenters    Frequency       `json:"commenters"`
	DateRange     *DateRange      `json:"date_range,omitempty"`
	Recent        []issues.Record `json:"recent"`
}

// TotalRows is the number of issue and comment rows together.
func (s Snapshot) TotalRows() int { return s.TotalIssues + s.TotalComments }

// Compute aggregates records into a Snapshot holding the recent most recently
// created issues.
func Compute(records []issues.Record, recent int) Snapshot {
	issueRows, commentRows := lo.FilterReject(records, func(r issues.Record, _ int) bool { return r.IsIssue() })

	labels := lo.FlatMap(issueRows, func(r issues.Record, _ int) []string { return SplitLabels(r.IssueLabels) })
	authors := lo.FilterMap(issueRows, func(r issues.Record, _ int) (string, bool) { return r.IssueUser, r.IssueUser != "" })
	commenters := lo.FilterMap(commentRows, func(r issues.Record, _ int) (string, bool) { return r.CommentUser, r.CommentUser != "" })
	states := lo.Map(issueRows, func(r issues.Record, _ int) string { return r.IssueState })

	stateCounts := insertionOrder(states)
	snap := Snapshot{
		TotalIssues:   len(issueRows),
		TotalComments: len(commentRows),
		States:        stateCounts,
		Labels:        Tally(labels),
		Authors:       Tally(authors),
		Commenters:    Tally(commenters),
		DateRange:     dateRange(issueRows),
		Recent:        Recent(issueRows, recent),
	}
	for _, c := range stateCounts {
		switch c.Value {
		case StateOpen:
			snap.Open = c.Count
		case StateClosed:
			snap.Closed = c.Count
		}
	}
	return snap
}

// SplitLabels splits a comma-separated label list, trimming each label.
func SplitLabels(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Tally builds a frequency table in descending order with first-seen tie-break.
func Tally(values []string) Frequency {
	f := insertionOrder(values)
	sort.SliceStable(f, func(i, j int) bool { return f[i].Count > f[j].Count })
	return f
}

func insertionOrder(values []string) Frequency {
	counts := lo.CountValues(values)
	return lo.Map(lo.Uniq(values), func(v string, _ int) Count { return Count{Value: v, Count: counts[v]} })
}

func dateRange(issueRows []issues.Record) *DateRange {
	dates := lo.FilterMap(issueRows, func(r issues.Record, _ int) (string, bool) {
		return r.IssueCreatedAt, r.IssueCreatedAt != ""
	})
	if len(dates) == 0 {
		return nil
	}
	return &DateRange{Earliest: lo.Min(dates), Latest: lo.Max(dates)}
}

// Recent returns the n issues with the greatest creation timestamp, newest
// first. Issues sharing a timestamp keep their table order.
func Recent(issueRows []issues.Record, n int) []issues.Record {
	sorted := make([]issues.Record, len(issueRows))
	copy(sorted, issueRows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].IssueCreatedAt > sorted[j].IssueCreatedAt })
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
