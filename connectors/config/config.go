package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. ISSUES_PATHS_CLEAN or
// ISSUES_REPORT_TOP_LABELS.
const EnvPrefix = "ISSUES"

// DefaultPath is used when CONFIG_PATH is unset.
const DefaultPath = "./config.yml"

// Config represents the structure of config.yml used by the tool.
type Config struct {
	Paths  Paths  `yaml:"paths"`
	Report Report `yaml:"report"`
	GitHub GitHub `yaml:"github"`
	Web    Web    `yaml:"web"`
	Log    Log    `yaml:"log"`
}

// Paths are the files each stage reads and writes.
type Paths struct {
	Raw    string `yaml:"raw" validate:"required"`
	Clean  string `yaml:"clean" validate:"required"`
	Report string `yaml:"report" validate:"required"`
}

// Report controls the summary and HTML renderers.
type Report struct {
	Title         string `yaml:"title" validate:"required"`
	SummaryRecent int    `yaml:"summary_recent" split_words:"true" validate:"min=0"`
	HTMLRecent    int    `yaml:"html_recent" split_words:"true" validate:"min=0"`
	SummaryTop    int    `yaml:"summary_top" split_words:"true" validate:"min=0"`
	TopLabels     int    `yaml:"top_labels" split_words:"true" validate:"min=0"`
	TopUsers      int    `yaml:"top_users" split_words:"true" validate:"min=0"`
}

// GitHub selects the repository the export stage reads from.
type GitHub struct {
	Owner  string `yaml:"owner"`
	Repo   string `yaml:"repo"`
	Since  string `yaml:"since"`
	APIURL string `yaml:"api_url" validate:"required,url"`
}

// Web configures the web subcommand.
type Web struct {
	Addr string `yaml:"addr" validate:"required"`
}

// Log configures the slog handler.
type Log struct {
	Level string `yaml:"level" validate:"oneof=debug info warn warning error"`
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() *Config {
	return &Config{
		Paths: Paths{
			Raw:    "issues-with-comments.csv",
			Clean:  "issues-clean.csv",
			Report: "issues-report.html",
		},
		Report: Report{
			Title:         "Repository Analysis",
			SummaryRecent: 5,
			HTMLRecent:    10,
			SummaryTop:    10,
			TopLabels:     15,
			TopUsers:      10,
		},
		GitHub: GitHub{APIURL: "https://api.github.com"},
		Web:    Web{Addr: ":8080"},
		Log:    Log{Level: "info"},
	}
}

// Load parses the YAML configuration file at path on top of Default, applies
// ISSUES_* environment overrides and validates the result. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		slog.Debug("config.loaded", "path", path)
	case errors.Is(err, os.ErrNotExist):
		slog.Debug("config.file.missing", "path", path)
	default:
		return nil, err
	}
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if err := validator.New().Struct(c); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}

// LoadFromEnv loads the file named by CONFIG_PATH, or DefaultPath.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultPath
	}
	return Load(path)
}

// SlogLevel maps Log.Level onto a slog level.
func (l Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
