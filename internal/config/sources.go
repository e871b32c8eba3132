package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FeedSourceConfig is one RSS/Atom feed entry in sources.yaml.
type FeedSourceConfig struct {
	FeedURL string `yaml:"feed_url"`
	Section string `yaml:"section"`
}

// ArchiveSourceConfig is the archive discoverer's publication
// parameters in sources.yaml.
type ArchiveSourceConfig struct {
	BaseURL     string        `yaml:"base_url"`
	Publication string        `yaml:"publication"`
	CrawlDelay  time.Duration `yaml:"crawl_delay"`
}

// SourcesConfig is the static discovery source list of spec §4.3,
// loaded from a YAML file rather than the environment since it is a
// list, not a handful of scalars — mirroring the original's
// source-list bootstrapping from a config file.
type SourcesConfig struct {
	RSS     []FeedSourceConfig  `yaml:"rss"`
	Archive ArchiveSourceConfig `yaml:"archive"`
}

// LoadSourcesConfig reads and parses a sources.yaml file at path.
func LoadSourcesConfig(path string) (SourcesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SourcesConfig{}, fmt.Errorf("read sources file: %w", err)
	}

	var cfg SourcesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SourcesConfig{}, fmt.Errorf("parse sources file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate requires at least one feed or a configured archive
// publication; a sources file with neither discovers nothing.
func (c SourcesConfig) Validate() error {
	if len(c.RSS) == 0 && c.Archive.BaseURL == "" {
		return fmt.Errorf("sources file must configure at least one rss feed or an archive publication")
	}
	for i, feed := range c.RSS {
		if feed.FeedURL == "" {
			return fmt.Errorf("rss[%d]: feed_url must not be empty", i)
		}
		if feed.Section == "" {
			return fmt.Errorf("rss[%d]: section must not be empty", i)
		}
	}
	if c.Archive.BaseURL != "" && c.Archive.Publication == "" {
		return fmt.Errorf("archive: publication must not be empty when base_url is set")
	}
	return nil
}
