// Package config loads the regulatory source configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/elchacal801/flame-fraud/internal/core/domain"
)

// DefaultPath is the source config location relative to the project root.
const DefaultPath = "config/regulatory_sources.yaml"

// EnvConfigPath overrides DefaultPath when set.
const EnvConfigPath = "FLAME_REGULATORY_CONFIG"

var ErrConfigNotFound = errors.New("regulatory config not found")

type RegulatoryConfig struct {
	Sources map[string]SourceConfig `yaml:"sources"`
}

// SourceConfig is one entry under "sources". Endpoint keys differ per
// source in existing config files, so all of them are accepted.
type SourceConfig struct {
	Enabled         bool                `yaml:"enabled"`
	URL             string              `yaml:"url"`
	BaseURL         string              `yaml:"base_url"`
	FeedURL         string              `yaml:"feed_url"`
	SDNURL          string              `yaml:"sdn_url"`
	Format          string              `yaml:"format"`
	PageSize        int                 `yaml:"page_size"`
	MaxPages        int                 `yaml:"max_pages"`
	UserAgent       string              `yaml:"user_agent"`
	CategoryMapping map[string][]string `yaml:"category_mapping"`
}

// Endpoint returns the first configured endpoint key in the order
// sdn_url, feed_url, base_url, url, falling back to def.
func (c SourceConfig) Endpoint(def string) string {
	for _, v := range []string{c.SDNURL, c.FeedURL, c.BaseURL, c.URL} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return def
}

// Load reads and validates the YAML file at path.
func Load(path string) (*RegulatoryConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes config bytes. An empty document yields an empty config.
func Parse(data []byte) (*RegulatoryConfig, error) {
	var cfg RegulatoryConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse regulatory config: %w", err)
	}
	if cfg.Sources == nil {
		cfg.Sources = map[string]SourceConfig{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects threat path ids that would corrupt the CSV mapping column.
func (c *RegulatoryConfig) Validate() error {
	for name, src := range c.Sources {
		for category, ids := range src.CategoryMapping {
			for _, id := range ids {
				if strings.Contains(id, domain.TPIDSeparator) {
					return fmt.Errorf("source %s category %q: threat path id %q contains %q",
						name, category, id, domain.TPIDSeparator)
				}
			}
		}
	}
	return nil
}

// Source returns the entry for name and whether it exists.
func (c *RegulatoryConfig) Source(name string) (SourceConfig, bool) {
	src, ok := c.Sources[name]
	return src, ok
}

// ResolvePath picks the config path: explicit flag value, then env, then
// DefaultPath under root.
func ResolvePath(root, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(EnvConfigPath); v != "" {
		return v
	}
	return filepath.Join(root, DefaultPath)
}
