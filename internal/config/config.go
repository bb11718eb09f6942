// Package config loads the pagepublisher YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CurrentVersion is the only configuration version accepted by Load.
const CurrentVersion = "1.0"

// Config is the root configuration document.
type Config struct {
	Version    string           `yaml:"version"`
	Store      StoreConfig      `yaml:"store"`
	Blob       BlobConfig       `yaml:"blob"`
	Targets    []TargetConfig   `yaml:"targets"`
	Search     SearchConfig     `yaml:"search"`
	Publish    PublishConfig    `yaml:"publish"`
	Feeds      []FeedConfig     `yaml:"feeds,omitempty"`
	Daemon     DaemonConfig     `yaml:"daemon"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// StoreConfig configures the SQLite document store.
type StoreConfig struct {
	Path string `yaml:"path"`
	// TypeIndex creates the otype index on open. Defaults to true; set to
	// false to run against a store that must stay index-free.
	TypeIndex      *bool  `yaml:"type_index,omitempty"`
	ScanPageSize   int    `yaml:"scan_page_size"`
	ConfigDocument string `yaml:"config_document"`
}

// CreateTypeIndex reports whether the type index should be created.
func (s StoreConfig) CreateTypeIndex() bool {
	return s.TypeIndex == nil || *s.TypeIndex
}

// BlobConfig configures the filesystem artifact store.
type BlobConfig struct {
	BaseDir string `yaml:"base_dir"`
}

// TargetConfig maps a target environment name onto a bucket.
type TargetConfig struct {
	Name       string `yaml:"name"`
	Bucket     string `yaml:"bucket"`
	SiteURL    string `yaml:"site_url"`
	CDNBaseURL string `yaml:"cdn_base_url,omitempty"`
}

// SearchConfig configures search-index job delivery.
type SearchConfig struct {
	Enabled bool   `yaml:"enabled"`
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
	Stream  string `yaml:"stream"`
}

// PublishConfig configures the orchestrator.
type PublishConfig struct {
	Workers      int    `yaml:"workers"`
	TemplatesDir string `yaml:"templates_dir,omitempty"`
	// QueueSchedule is a cron expression for publishing queued pages.
	// Empty disables scheduled publishing.
	QueueSchedule string `yaml:"queue_schedule,omitempty"`
	QueueTarget   string `yaml:"queue_target,omitempty"`
}

// FeedConfig describes one generated feed.
type FeedConfig struct {
	Name     string   `yaml:"name"`
	Kind     FeedKind `yaml:"kind"`
	Key      string   `yaml:"key"`
	Category string   `yaml:"category,omitempty"`
	Title    string   `yaml:"title,omitempty"`
	Limit    int      `yaml:"limit,omitempty"`
}

// DaemonConfig configures the long-running process.
type DaemonConfig struct {
	HTTP HTTPConfig `yaml:"http"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// MonitoringConfig represents monitoring and observability configuration.
type MonitoringConfig struct {
	Metrics MonitoringMetrics `yaml:"metrics"`
	Logging MonitoringLogging `yaml:"logging"`
}

// MonitoringMetrics represents metrics configuration.
type MonitoringMetrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MonitoringLogging represents logging configuration.
type MonitoringLogging struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Target returns the target environment named env.
func (c *Config) Target(env string) (TargetConfig, bool) {
	for _, t := range c.Targets {
		if t.Name == env {
			return t, true
		}
	}
	return TargetConfig{}, false
}

// Load reads, expands, defaults and validates a configuration file.
// Variables from .env files are made available to ${VAR} expansion first.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	// #nosec G304 - configPath is operator supplied
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes configuration from YAML bytes.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported configuration version: %s (expected %s)", cfg.Version, CurrentVersion)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Example()
	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Example returns the configuration written by Init.
func Example() Config {
	cfg := Config{
		Version: CurrentVersion,
		Store:   StoreConfig{Path: "./pagepublisher.db", ConfigDocument: "config"},
		Blob:    BlobConfig{BaseDir: "./public"},
		Targets: []TargetConfig{
			{Name: "staging", Bucket: "site-staging", SiteURL: "https://staging.example.com"},
			{Name: "production", Bucket: "site-production", SiteURL: "https://www.example.com", CDNBaseURL: "${CDN_BASE_URL}"},
		},
		Search: SearchConfig{
			Enabled: false,
			NATSURL: "nats://localhost:4222",
			Subject: "search.index",
			Stream:  "SEARCH_INDEX",
		},
		Publish: PublishConfig{
			Workers:       4,
			TemplatesDir:  "./templates",
			QueueSchedule: "*/15 * * * *",
			QueueTarget:   "production",
		},
		Feeds: []FeedConfig{
			{Name: "sitemap", Kind: FeedSitemap, Key: "sitemap.xml"},
			{Name: "news", Kind: FeedAtom, Key: "feeds/news.xml", Category: "news", Title: "News", Limit: 50},
			{Name: "news-json", Kind: FeedJSON, Key: "feeds/news.json", Category: "news"},
		},
		Daemon: DaemonConfig{HTTP: HTTPConfig{Addr: ":8080"}},
		Monitoring: MonitoringConfig{
			Metrics: MonitoringMetrics{Enabled: true, Path: "/metrics"},
			Logging: MonitoringLogging{Level: LogLevelInfo, Format: LogFormatJSON},
		},
	}
	applyDefaults(&cfg)
	return cfg
}
