package clean

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"issue-report/connectors/config"
	ccsv "issue-report/connectors/csv"
	"issue-report/domain/issues"
)

// ProgressEvery is the number of rows between two progress log lines.
const ProgressEvery = 10000

// Run executes the clean subcommand: it normalizes the raw export into the
// normalized table.
//
// Usage:
//
//	issue-report clean [-in issues-with-comments.csv] [-out issues-clean.csv]
func Run(args []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("clean", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	in := fs.String("in", cfg.Paths.Raw, "raw export to read (.csv, .csv.gz or .xlsx)")
	out := fs.String("out", cfg.Paths.Clean, "normalized table to write (.csv or .csv.gz)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	slog.Info("clean.start", "in", *in, "out", *out)
	n, err := Clean(*in, *out)
	if err != nil {
		slog.Error("clean.error", "in", *in, "rows", n, "error", err)
		return err
	}
	slog.Info("clean.done", "rows", n, "out", *out)
	return nil
}

// Clean streams every row of the raw export at in through issues.Normalize
// into the normalized table at out, one output row per input row in input
// order. It returns the number of rows written.
func Clean(in, out string) (int, error) {
	r, err := ccsv.OpenRaw(in)
	if err != nil {
		return 0, fmt.Errorf("open raw export: %w", err)
	}
	defer r.Close()

	w, err := ccsv.CreateWriter(out)
	if err != nil {
		return 0, fmt.Errorf("create normalized table: %w", err)
	}
	for {
		raw, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = w.Close()
			return w.Count(), fmt.Errorf("read %s row %d: %w", in, w.Count()+1, err)
		}
		if err := w.Write(issues.Normalize(raw)); err != nil {
			_ = w.Close()
			return w.Count(), err
		}
		if w.Count()%ProgressEvery == 0 {
			slog.Info("clean.progress", "rows", w.Count())
		}
	}
	if err := w.Close(); err != nil {
		return w.Count(), fmt.Errorf("close %s: %w", out, err)
	}
	return w.Count(), nil
}
