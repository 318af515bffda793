package report

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"issue-report/connectors/config"
	ccsv "issue-report/connectors/csv"
	"issue-report/domain/stats"
	"issue-report/renderers/htmlreport"
)

// Run executes the report subcommand: it writes the HTML report of the
// normalized table.
//
// Usage:
//
//	issue-report report [-in issues-clean.csv] [-out issues-report.html] [-title "Repository Analysis"] [-recent 10]
func Run(args []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	in := fs.String("in", cfg.Paths.Clean, "normalized table to read")
	out := fs.String("out", cfg.Paths.Report, "HTML file to write")
	title := fs.String("title", cfg.Report.Title, "report title")
	recent := fs.Int("recent", cfg.Report.HTMLRecent, "number of recent issues to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := htmlreport.Options{Title: *title, TopLabels: cfg.Report.TopLabels, TopUsers: cfg.Report.TopUsers}
	if err := Generate(*in, *out, *recent, opts); err != nil {
		slog.Error("report.error", "in", *in, "out", *out, "error", err)
		return err
	}
	slog.Info("report.done", "out", *out)
	fmt.Fprintf(os.Stderr, "HTML report generated: %s\n", *out)
	return nil
}

// Generate renders the normalized table at in as an HTML report at out.
func Generate(in, out string, recent int, opts htmlreport.Options) error {
	records, err := ccsv.ReadNormalized(in)
	if err != nil {
		return fmt.Errorf("read normalized table: %w", err)
	}
	snap := stats.Compute(records, recent)

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := htmlreport.Write(f, snap, opts); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
