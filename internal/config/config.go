// Package config loads the static descriptor listing the organization
// and the repositories tracked by the digest.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ConfigError reports a missing, unparsable or incomplete descriptor.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Config is the static run configuration. It is immutable for the
// duration of a run.
type Config struct {
	Org   string
	Site  string
	Repos []string
}

// descriptor mirrors the YAML file. Repos is a mapping so entries can
// carry human-friendly keys; only the values (repository names) matter.
type descriptor struct {
	Org   string            `yaml:"org"`
	Site  string            `yaml:"site"`
	Repos map[string]string `yaml:"repos"`
}

const defaultSite = "https://make.wordpress.org/openverse"

// Load reads and validates the YAML descriptor at path. Repositories
// are ordered by their mapping key so every run sees the same order.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	var d descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	if d.Org == "" {
		return nil, &ConfigError{Path: path, Err: errors.New("missing required key: org")}
	}
	if len(d.Repos) == 0 {
		return nil, &ConfigError{Path: path, Err: errors.New("missing required key: repos")}
	}

	keys := make([]string, 0, len(d.Repos))
	for k := range d.Repos {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cfg := &Config{Org: d.Org, Site: d.Site}
	if cfg.Site == "" {
		cfg.Site = defaultSite
	}
	for _, k := range keys {
		cfg.Repos = append(cfg.Repos, d.Repos[k])
	}
	return cfg, nil
}
