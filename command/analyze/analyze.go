package analyze

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"issue-report/connectors/config"
	ccsv "issue-report/connectors/csv"
	"issue-report/domain/stats"
	"issue-report/renderers/summary"
)

// Run executes the analyze subcommand: it prints the text summary of the
// normalized table to stdout.
//
// Usage:
//
//	issue-report analyze [-in issues-clean.csv] [-title "Repository Analysis"] [-recent 5] [-top 10]
func Run(args []string) error {
	return run(args, os.Stdout)
}

func run(args []string, stdout io.Writer) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	in := fs.String("in", cfg.Paths.Clean, "normalized table to read")
	title := fs.String("title", cfg.Report.Title, "report title")
	recent := fs.Int("recent", cfg.Report.SummaryRecent, "number of recent issues to list")
	top := fs.Int("top", cfg.Report.SummaryTop, "entries per frequency table")
	if err := fs.Parse(args); err != nil {
		return err
	}

	records, err := ccsv.ReadNormalized(*in)
	if err != nil {
		return fmt.Errorf("read normalized table: %w", err)
	}
	snap := stats.Compute(records, *recent)
	slog.Debug("analyze.snapshot", "in", *in, "issues", snap.TotalIssues, "comments", snap.TotalComments)
	return summary.Write(stdout, *title, snap, *top)
}
