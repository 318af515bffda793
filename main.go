package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	cmdanalyze "issue-report/command/analyze"
	cmdclean "issue-report/command/clean"
	cmdexport "issue-report/command/export"
	cmdreport "issue-report/command/report"
	cmdweb "issue-report/command/web"
	"issue-report/connectors/config"
)

// Issue tracker export analyzer.
// Usage:
//   issue-report export -owner o -repo r   # GitHub -> issues-with-comments.csv
//   issue-report clean                     # raw export -> issues-clean.csv
//   issue-report analyze                   # text summary on stdout
//   issue-report report                    # issues-report.html
//   issue-report web                       # JSON API and live report
// Notes:
// - Defaults come from the YAML file at CONFIG_PATH (default ./config.yml) and ISSUES_* variables.
// - The raw export may be .csv, .csv.gz or .xlsx.

const usage = "usage: issue-report export -owner <o> -repo <r> [-since <ts>] [-out <csv>] | clean [-in <raw>] [-out <csv>] | analyze [-in <csv>] [-title <t>] [-recent <n>] | report [-in <csv>] [-out <html>] [-title <t>] [-recent <n>] | web [-addr :8080] [-data <csv>]\nENV: set CONFIG_PATH to point to a YAML config file (default ./config.yml); GITHUB_TOKEN for export"

var commands = map[string]func([]string) error{
	"export":  cmdexport.Run,
	"clean":   cmdclean.Run,
	"analyze": cmdanalyze.Run,
	"report":  cmdreport.Run,
	"web":     cmdweb.Run,
}

func main() {
	args := os.Args
	level := slog.LevelInfo
	// The config is loaded again by the subcommand; here it only sets the log level.
	if cfg, err := config.LoadFromEnv(); err == nil {
		level = cfg.Log.SlogLevel()
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h).With("run_id", uuid.NewString()))

	if len(args) > 1 {
		if run, ok := commands[args[1]]; ok {
			rest := append([]string{}, args[2:]...)
			if err := run(rest); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		}
	}
	fmt.Fprintln(os.Stderr, usage)
	os.Exit(2)
}
