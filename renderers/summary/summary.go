// Package summary renders a Snapshot as the plain-text console summary.
package summary

import (
	"fmt"
	"io"
	"strings"

	"issue-report/domain/issues"
	"issue-report/domain/stats"
)

// RecentTitleLength is the number of runes of a recent issue title shown
// before it is cut.
const RecentTitleLength = 60

// DefaultTop is the number of entries printed per frequency table.
const DefaultTop = 10

var rule = strings.Repeat("=", 60)

// Write prints the summary of snap under title. Each frequency table lists at
// most top entries; the recent issues are the ones already held by snap.
func Write(w io.Writer, title string, snap stats.Snapshot, top int) error {
	var b strings.Builder

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, strings.ToUpper(title))
	fmt.Fprintln(&b, rule)

	fmt.Fprintf(&b, "\n📊 OVERVIEW:\n")
	fmt.Fprintf(&b, "   Total Issues: %d\n", snap.TotalIssues)
	fmt.Fprintf(&b, "   Total Comments: %d\n", snap.TotalComments)
	fmt.Fprintf(&b, "   Total Rows: %d\n", snap.TotalRows())

	fmt.Fprintf(&b, "\n🔍 ISSUE STATUS:\n")
	for _, c := range snap.States {
		fmt.Fprintf(&b, "   %s: %d\n", stats.DisplayState(c.Value), c.Count)
	}

	writeTable(&b, "🏷️  TOP LABELS", snap.Labels.Top(top))
	writeTable(&b, "👥 TOP ISSUE CREATORS", snap.Authors.Top(top))
	writeTable(&b, "💬 TOP COMMENTERS", snap.Commenters.Top(top))

	if dr := snap.DateRange; dr != nil {
		fmt.Fprintf(&b, "\n📅 DATE RANGE:\n")
		fmt.Fprintf(&b, "   Earliest Issue: %s\n", dr.Earliest)
		fmt.Fprintf(&b, "   Latest Issue: %s\n", dr.Latest)
	}

	fmt.Fprintf(&b, "\n🆕 RECENT ISSUES:\n")
	for _, r := range snap.Recent {
		fmt.Fprintf(&b, "   #%s: %s\n", r.IssueNumber, issues.Truncate(r.IssueTitle, RecentTitleLength))
		fmt.Fprintf(&b, "      State: %s, Created: %s\n", r.IssueState, r.IssueCreatedAt)
	}

	fmt.Fprintf(&b, "\n%s\n", rule)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeTable(b *strings.Builder, heading string, f stats.Frequency) {
	if len(f) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", heading)
	for _, c := range f {
		fmt.Fprintf(b, "   %s: %d\n", c.Value, c.Count)
	}
}
