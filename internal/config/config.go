package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default values
const (
	DefaultListen      = ":5000"
	DefaultDBPath      = "commitboard.db"
	DefaultLogLevel    = "INFO"
	DefaultMaxBodySize = 1048576 // 1 MB

	DefaultNotionAPIURL  = "https://api.notion.com/v1"
	DefaultNotionVersion = "2022-06-28"
)

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the server (e.g. ":5000").
	Listen string `yaml:"listen"`

	// DBPath is the SQLite database file path.
	DBPath string `yaml:"db_path"`

	// LogLevel is one of DEBUG, INFO, WARN, ERROR.
	LogLevel string `yaml:"log_level"`

	Webhook WebhookConfig `yaml:"webhook"`
	Notion  NotionConfig  `yaml:"notion"`
}

// WebhookConfig configures the GitHub webhook endpoint.
type WebhookConfig struct {
	// Secret is the shared HMAC secret. Usually supplied via the
	// GITHUB_WEBHOOK_SECRET environment variable rather than the file.
	Secret string `yaml:"secret,omitempty"`

	// MaxBodySize limits the request body (e.g. "1MB", "2048576").
	MaxBodySize string `yaml:"max_body_size,omitempty"`
}

// NotionConfig configures the Notion task-sync client.
type NotionConfig struct {
	APIURL     string `yaml:"api_url,omitempty"`
	Version    string `yaml:"version,omitempty"`
	Token      string `yaml:"token,omitempty"`
	DatabaseID string `yaml:"database_id,omitempty"`

	// Properties names the columns of the target Notion database. These are
	// deployment-specific; the defaults match an English-language board.
	Properties NotionProperties `yaml:"properties,omitempty"`
}

// NotionProperties maps task fields to Notion property names.
type NotionProperties struct {
	Title       string `yaml:"title,omitempty"`
	Status      string `yaml:"status,omitempty"`
	DoneValue   string `yaml:"done_value,omitempty"`
	CommitLink  string `yaml:"commit_link,omitempty"`
	Description string `yaml:"description,omitempty"`
	Author      string `yaml:"author,omitempty"`
	Assignee    string `yaml:"assignee,omitempty"`
}

// Load reads the YAML config at path and applies environment overrides.
// A missing file is not an error; defaults plus environment apply.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.fillDefaults()

	if _, err := cfg.Webhook.MaxBodyBytes(); err != nil {
		return nil, fmt.Errorf("webhook max_body_size: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Listen:   DefaultListen,
		DBPath:   DefaultDBPath,
		LogLevel: DefaultLogLevel,
	}
}

// applyEnv overlays environment variables. Secrets are environment-first so
// they stay out of config files.
func (c *Config) applyEnv() {
	if v := os.Getenv("COMMITBOARD_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("COMMITBOARD_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("COMMITBOARD_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("GITHUB_WEBHOOK_SECRET"); v != "" {
		c.Webhook.Secret = v
	}
	if v := os.Getenv("NOTION_API_TOKEN"); v != "" {
		c.Notion.Token = v
	}
	if v := os.Getenv("NOTION_DATABASE_ID"); v != "" {
		c.Notion.DatabaseID = v
	}
	if v := os.Getenv("NOTION_API_URL"); v != "" {
		c.Notion.APIURL = v
	}
	if v := os.Getenv("NOTION_VERSION"); v != "" {
		c.Notion.Version = v
	}
}

func (c *Config) fillDefaults() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.DBPath == "" {
		c.DBPath = DefaultDBPath
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Notion.APIURL == "" {
		c.Notion.APIURL = DefaultNotionAPIURL
	}
	if c.Notion.Version == "" {
		c.Notion.Version = DefaultNotionVersion
	}

	p := &c.Notion.Properties
	if p.Title == "" {
		p.Title = "Task"
	}
	if p.Status == "" {
		p.Status = "Status"
	}
	if p.DoneValue == "" {
		p.DoneValue = "Done"
	}
	if p.CommitLink == "" {
		p.CommitLink = "GitHub commit"
	}
	if p.Description == "" {
		p.Description = "Description"
	}
	if p.Author == "" {
		p.Author = "Commit author"
	}
	if p.Assignee == "" {
		p.Assignee = "Assignee"
	}
}

// MaxBodyBytes parses MaxBodySize strings like "1MB", "512KB", "2048576".
// Returns DefaultMaxBodySize if empty.
func (w WebhookConfig) MaxBodyBytes() (int64, error) {
	size := w.MaxBodySize
	if size == "" {
		return DefaultMaxBodySize, nil
	}

	// Handle unit suffixes (KB, MB, GB)
	upper := strings.ToUpper(size)
	multiplier := int64(1)

	if strings.HasSuffix(upper, "KB") {
		multiplier = 1024
		size = strings.TrimSuffix(upper, "KB")
	} else if strings.HasSuffix(upper, "MB") {
		multiplier = 1024 * 1024
		size = strings.TrimSuffix(upper, "MB")
	} else if strings.HasSuffix(upper, "GB") {
		multiplier = 1024 * 1024 * 1024
		size = strings.TrimSuffix(upper, "GB")
	}

	value, err := strconv.ParseInt(strings.TrimSpace(size), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value: %w", err)
	}

	if value <= 0 {
		return 0, fmt.Errorf("size must be positive")
	}

	result := value * multiplier
	if result < 0 { // Check for overflow
		return 0, fmt.Errorf("size too large")
	}

	return result, nil
}
