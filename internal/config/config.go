// Package config loads and validates stylebook.yaml.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Title       string        `yaml:"title"`
	Description string        `yaml:"description,omitempty"`
	Sources     SourcesConfig `yaml:"sources"`
	Output      OutputConfig  `yaml:"output"`
	Index       IndexConfig   `yaml:"index"`
	Preview     PreviewConfig `yaml:"preview"`
	Watch       WatchConfig   `yaml:"watch"`
	Notify      NotifyConfig  `yaml:"notify"`
	History     HistoryConfig `yaml:"history"`
	Metrics     MetricsConfig `yaml:"metrics"`
}

// SourcesConfig locates ruleset and guideline inputs.
type SourcesConfig struct {
	Rulesets   string   `yaml:"rulesets"`
	Guidelines string   `yaml:"guidelines"`
	Include    []string `yaml:"include,omitempty"` // doublestar globs, relative to each source dir
	Exclude    []string `yaml:"exclude,omitempty"`
}

// OutputConfig controls where the generated site lands.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"`
}

// IndexConfig tunes the cross-document groupings.
type IndexConfig struct {
	GroupSeparator  string `yaml:"group_separator,omitempty"`
	PrimaryPrefix   string `yaml:"primary_prefix,omitempty"`
	SecondaryPrefix string `yaml:"secondary_prefix,omitempty"`
}

// PreviewConfig configures the local preview server.
type PreviewConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// WatchConfig configures watch-mode rebuilds.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce,omitempty"`
	// Interval adds a periodic full rebuild on top of change-driven ones.
	// Zero disables it.
	Interval time.Duration `yaml:"interval,omitempty"`
}

// NotifyConfig configures build-completed event publishing.
type NotifyConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// HistoryConfig configures the build history store.
type HistoryConfig struct {
	Path string `yaml:"path,omitempty"`
}

// MetricsConfig toggles the Prometheus recorder.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load loads configuration from the specified file, expanding environment
// variables in the YAML content. A .env file alongside the process is loaded
// first when present.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Note: .env file couldn't be loaded: %v\n", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Title == "" {
		c.Title = "Engineering Stylebook"
	}
	if c.Sources.Rulesets == "" {
		c.Sources.Rulesets = "./rulesets"
	}
	if c.Sources.Guidelines == "" {
		c.Sources.Guidelines = "./guidelines"
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "./public"
	}
	if c.Index.GroupSeparator == "" {
		c.Index.GroupSeparator = "."
	}
	if c.Index.PrimaryPrefix == "" {
		c.Index.PrimaryPrefix = "go"
	}
	if c.Index.SecondaryPrefix == "" {
		c.Index.SecondaryPrefix = "ts"
	}
	if c.Preview.Addr == "" {
		c.Preview.Addr = ":8080"
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = 2 * time.Second
	}
	if c.Notify.Subject == "" {
		c.Notify.Subject = "stylebook.builds"
	}
	if c.History.Path == "" {
		c.History.Path = "./stylebook.db"
	}
}

// Validate rejects configurations the build cannot run with.
func (c *Config) Validate() error {
	if c.Output.Directory == "" {
		return fmt.Errorf("output.directory must not be empty")
	}
	if c.Notify.Enabled && c.Notify.URL == "" {
		return fmt.Errorf("notify.url is required when notify.enabled is true")
	}
	if c.Watch.Debounce < 0 || c.Watch.Interval < 0 {
		return fmt.Errorf("watch durations must not be negative")
	}
	return nil
}

const exampleConfig = `# stylebook configuration
title: Engineering Stylebook
description: Tool configurations and coding standards

sources:
  rulesets: ./rulesets
  guidelines: ./guidelines
  exclude:
    - "**/drafts/**"

output:
  directory: ./public
  clean: true

index:
  group_separator: "."
  primary_prefix: "go"
  secondary_prefix: "ts"

preview:
  addr: ":8080"

watch:
  debounce: 2s

notify:
  enabled: false
  url: nats://localhost:4222
  subject: stylebook.builds

history:
  path: ./stylebook.db

metrics:
  enabled: false
`

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	// #nosec G306 -- example config is not sensitive
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
