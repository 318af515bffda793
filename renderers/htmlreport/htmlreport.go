// Package htmlreport renders a Snapshot as a self-contained HTML page.
package htmlreport

import (
	"fmt"
	"html/template"
	"io"

	"github.com/dustin/go-humanize"

	"issue-report/domain/stats"
)

// Default table sizes.
const (
	DefaultTopLabels = 15
	DefaultTopUsers  = 10
)

// Options controls how many rows each table shows.
type Options struct {
	Title     string
	TopLabels int
	TopUsers  int
}

// StatCard is one headline number.
type StatCard struct {
	Number string
	Label  string
}

// IssueCard is one entry of the recent issues list.
type IssueCard struct {
	Number    string
	Title     string
	State     string
	StateText string
	User      string
	CreatedAt string
}

// Data is the view-model consumed by the report template.
type Data struct {
	Title      string
	Cards      []StatCard
	Labels     stats.Frequency
	Authors    stats.Frequency
	Commenters stats.Frequency
	Recent     []IssueCard
}

// BuildData maps a snapshot onto the template view-model.
func BuildData(snap stats.Snapshot, opts Options) Data {
	d := Data{
		Title: opts.Title,
		Cards: []StatCard{
			{Number: humanize.Comma(int64(snap.TotalIssues)), Label: "Total Issues"},
			{Number: humanize.Comma(int64(snap.TotalComments)), Label: "Total Comments"},
			{Number: humanize.Comma(int64(snap.Open)), Label: "Open Issues"},
			{Number: humanize.Comma(int64(snap.Closed)), Label: "Closed Issues"},
		},
		Labels:     snap.Labels.Top(opts.TopLabels),
		Authors:    snap.Authors.Top(opts.TopUsers),
		Commenters: snap.Commenters.Top(opts.TopUsers),
		Recent:     make([]IssueCard, 0, len(snap.Recent)),
	}
	for _, r := range snap.Recent {
		d.Recent = append(d.Recent, IssueCard{
			Number:    r.IssueNumber,
			Title:     r.IssueTitle,
			State:     r.IssueState,
			StateText: stats.DisplayState(r.IssueState),
			User:      r.IssueUser,
			CreatedAt: r.IssueCreatedAt,
		})
	}
	return d
}

var reportTemplate = template.Must(template.New("report").Parse(htmlReportTemplate))

// Write renders the report for snap to w.
func Write(w io.Writer, snap stats.Snapshot, opts Options) error {
	if err := reportTemplate.Execute(w, BuildData(snap, opts)); err != nil {
		return fmt.Errorf("render report template: %w", err)
	}
	return nil
}

const htmlReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; background-color: #f5f5f5; }
        .container { max-width: 1200px; margin: 0 auto; background: white; padding: 20px; border-radius: 8px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
        h1 { color: #2c3e50; text-align: center; border-bottom: 3px solid #3498db; padding-bottom: 10px; }
        h2 { color: #34495e; margin-top: 30px; }
        .stats-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 20px; margin: 20px 0; }
        .stat-card { background: #ecf0f1; padding: 20px; border-radius: 8px; text-align: center; border-left: 4px solid #3498db; }
        .stat-number { font-size: 2em; font-weight: bold; color: #2c3e50; }
        .stat-label { color: #7f8c8d; margin-top: 5px; }
        .table-container { overflow-x: auto; margin: 20px 0; }
        table { width: 100%; border-collapse: collapse; margin: 20px 0; }
        th, td { padding: 12px; text-align: left; border-bottom: 1px solid #ddd; }
        th { background-color: #3498db; color: white; }
        tr:nth-child(even) { background-color: #f2f2f2; }
        tr:hover { background-color: #e8f4f8; }
        .issue-item { background: #f8f9fa; padding: 15px; margin: 10px 0; border-radius: 5px; border-left: 4px solid #e74c3c; }
        .issue-number { font-weight: bold; color: #2c3e50; }
        .issue-title { color: #34495e; margin: 5px 0; }
        .issue-meta { color: #7f8c8d; font-size: 0.9em; }
        .open { border-left-color: #e74c3c; }
        .closed { border-left-color: #27ae60; }
        .timestamp { color: #95a5a6; font-size: 0.8em; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Title}}</h1>

        <div class="stats-grid">
{{- range .Cards}}
            <div class="stat-card">
                <div class="stat-number">{{.Number}}</div>
                <div class="stat-label">{{.Label}}</div>
            </div>
{{- end}}
        </div>

        <h2>🏷️ Top Labels</h2>
        <div class="table-container">
            <table>
                <thead>
                    <tr><th>Label</th><th>Count</th></tr>
                </thead>
                <tbody>
{{- range .Labels}}
                    <tr><td>{{.Value}}</td><td>{{.Count}}</td></tr>
{{- end}}
                </tbody>
            </table>
        </div>

        <h2>👥 Top Issue Creators</h2>
        <div class="table-container">
            <table>
                <thead>
                    <tr><th>User</th><th>Issues Created</th></tr>
                </thead>
                <tbody>
{{- range .Authors}}
                    <tr><td>{{.Value}}</td><td>{{.Count}}</td></tr>
{{- end}}
                </tbody>
            </table>
        </div>

        <h2>💬 Top Commenters</h2>
        <div class="table-container">
            <table>
                <thead>
                    <tr><th>User</th><th>Comments</th></tr>
                </thead>
                <tbody>
{{- range .Commenters}}
                    <tr><td>{{.Value}}</td><td>{{.Count}}</td></tr>
{{- end}}
                </tbody>
            </table>
        </div>

        <h2>🆕 Recent Issues</h2>
{{- range .Recent}}
        <div class="issue-item {{.State}}">
            <div class="issue-number">#{{.Number}}</div>
            <div class="issue-title">{{.Title}}</div>
            <div class="issue-meta">
                State: {{.StateText}} |
                Created by: {{.User}} |
                <span class="timestamp">{{.CreatedAt}}</span>
            </div>
        </div>
{{- end}}
    </div>
</body>
</html>
`
