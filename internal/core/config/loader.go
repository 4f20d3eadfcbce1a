package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration after environment expansion and applies
// defaults.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Sink.BufferSize == 0 {
		cfg.Sink.BufferSize = 256
	}
	if cfg.Sink.Stream == "" {
		cfg.Sink.Stream = "faultline:errors"
	}
	if cfg.Sink.StreamMax == 0 {
		cfg.Sink.StreamMax = 1000
	}

	for i := range cfg.Regions {
		if cfg.Regions[i].Fallback == "" {
			cfg.Regions[i].Fallback = FallbackNotice
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks region declarations.
func (c *AppConfig) Validate() error {
	seen := make(map[string]bool, len(c.Regions))
	for i, r := range c.Regions {
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("regions[%d]: name is required", i)
		}
		if seen[r.Name] {
			return fmt.Errorf("regions[%d]: duplicate region %q", i, r.Name)
		}
		seen[r.Name] = true

		if strings.TrimSpace(r.Selector) == "" {
			return fmt.Errorf("region %q: selector is required", r.Name)
		}
		switch r.Fallback {
		case FallbackNotice:
		case FallbackRedirect:
			if r.Path == "" {
				return fmt.Errorf("region %q: redirect fallback needs a path", r.Name)
			}
		default:
			return fmt.Errorf("region %q: unknown fallback %q", r.Name, r.Fallback)
		}
	}
	return nil
}
